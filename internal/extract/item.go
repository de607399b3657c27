package extract

// Item is an immutable snapshot of one plan entry as read from the host page.
// Every field is best effort: absent elements stay nil or empty, which is the
// normal case rather than an error.
type Item struct {
	ID string `json:"id" yaml:"id"`

	// TitleLink is the primary heading link carrying the course code as text
	// and a long-form accessible label.
	TitleLink *Link `json:"title_link,omitempty" yaml:"title_link,omitempty"`

	// Links holds every link inside the item in document order, the title
	// link included (flagged Primary).
	Links []Link `json:"links,omitempty" yaml:"links,omitempty"`

	// Badges are the short status/seats/credits labels.
	Badges []string `json:"badges,omitempty" yaml:"badges,omitempty"`

	// Spans are the inline text elements: learning format, location label,
	// the day-code label (identified by its title attribute).
	Spans []Span `json:"spans,omitempty" yaml:"spans,omitempty"`

	PrimaryCode *string `json:"primary_code,omitempty" yaml:"primary_code,omitempty"`
	Instructor  *string `json:"instructor,omitempty" yaml:"instructor,omitempty"`

	Times []TimeMarker `json:"times,omitempty" yaml:"times,omitempty"`
}

type Link struct {
	Text    string `json:"text" yaml:"text"`
	Href    string `json:"href,omitempty" yaml:"href,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Primary bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
}

type Span struct {
	Text       string `json:"text" yaml:"text"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	ParentText string `json:"parent_text,omitempty" yaml:"parent_text,omitempty"`
}

// TimeMarker is a time element: Datetime is its machine-readable attribute
// ("13:30"), Text its visible label ("1:30 PM").
type TimeMarker struct {
	Datetime string `json:"datetime,omitempty" yaml:"datetime,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
}

// isTitle reports whether l is the item's primary title link.
func (it Item) isTitle(l Link) bool {
	if l.Primary {
		return true
	}
	return it.TitleLink != nil && *it.TitleLink == l
}
