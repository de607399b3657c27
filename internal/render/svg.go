// Package render draws a built calendar as a standalone SVG week grid.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
)

// Options controls the drawing surface. Vertical geometry comes from the
// calendar's grid; only horizontal sizes are set here.
type Options struct {
	DayWidth    float64
	HourColumn  float64
	HeaderSize  float64
	FontFamily  string
	FontSize    int
	Background  string
	LineColor   string
	TextColor   string
	EventInset  float64
	EmptyNotice string
}

// DefaultOptions mirrors the on-page calendar styling.
func DefaultOptions() Options {
	return Options{
		DayWidth:    200,
		HourColumn:  60,
		HeaderSize:  30,
		FontFamily:  "Segoe UI, Roboto, Helvetica, Arial, sans-serif",
		FontSize:    12,
		Background:  "#ffffff",
		LineColor:   "#e0e0e0",
		TextColor:   "#333333",
		EventInset:  2,
		EmptyNotice: "No courses found",
	}
}

func (o *Options) normalize() {
	d := DefaultOptions()
	if o.DayWidth <= 0 {
		o.DayWidth = d.DayWidth
	}
	if o.HourColumn <= 0 {
		o.HourColumn = d.HourColumn
	}
	if o.HeaderSize <= 0 {
		o.HeaderSize = d.HeaderSize
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	if o.LineColor == "" {
		o.LineColor = d.LineColor
	}
	if o.TextColor == "" {
		o.TextColor = d.TextColor
	}
	if o.EventInset < 0 {
		o.EventInset = 0
	}
	if o.EmptyNotice == "" {
		o.EmptyNotice = d.EmptyNotice
	}
}

// SVG renders cal to an SVG document.
func SVG(cal schedule.Calendar, opts Options) string {
	opts.normalize()
	g := cal.Grid

	width := opts.HourColumn + float64(len(cal.Days))*opts.DayWidth
	height := opts.HeaderSize + g.Height()

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.hour-text { font-family: %s; font-size: %dpx; fill: #666666; }
.day-text { font-family: %s; font-size: %dpx; font-weight: bold; fill: %s; }
.event-code { font-family: %s; font-size: %dpx; font-weight: bold; }
.event-text { font-family: %s; font-size: %dpx; }
</style>
</defs>
`, num(width), num(height), opts.Background,
		opts.FontFamily, opts.FontSize-1,
		opts.FontFamily, opts.FontSize+1, opts.TextColor,
		opts.FontFamily, opts.FontSize,
		opts.FontFamily, opts.FontSize-1))

	// Hour rows.
	for i, label := range cal.Hours {
		y := opts.HeaderSize + float64(i)*g.HourHeight
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`+"\n",
			num(opts.HourColumn), num(y), num(width), num(y), opts.LineColor))
		svg.WriteString(fmt.Sprintf(`<text class="hour-text" x="%s" y="%s" text-anchor="end">%s</text>`+"\n",
			num(opts.HourColumn-6), num(y+float64(opts.FontSize)), escapeXML(label)))
	}

	// Day columns and their events.
	for i, day := range cal.Days {
		x := opts.HourColumn + float64(i)*opts.DayWidth
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`+"\n",
			num(x), num(x), num(height), opts.LineColor))
		svg.WriteString(fmt.Sprintf(`<text class="day-text" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			num(x+opts.DayWidth/2), num(opts.HeaderSize-10), escapeXML(day.Name)))

		for _, p := range day.Placements {
			drawPlacement(&svg, p, x, opts)
		}
	}

	if cal.Empty() {
		svg.WriteString(fmt.Sprintf(`<text class="day-text" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			num(width/2), num(opts.HeaderSize+g.Height()/2), escapeXML(opts.EmptyNotice)))
	}

	svg.WriteString("</svg>")
	return svg.String()
}

// Write renders cal to w.
func Write(w io.Writer, cal schedule.Calendar, opts Options) error {
	_, err := io.WriteString(w, SVG(cal, opts))
	return err
}

// drawPlacement draws one event block. Rect.Left/Width are percentages of
// the day column, Top/Height pixels below the header.
func drawPlacement(svg *strings.Builder, p schedule.Placement, dayX float64, opts Options) {
	inset := opts.EventInset
	x := dayX + p.Rect.Left/100*opts.DayWidth + inset
	w := p.Rect.Width/100*opts.DayWidth - 2*inset
	y := opts.HeaderSize + p.Rect.Top + inset
	h := p.Rect.Height - 2*inset
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	svg.WriteString(fmt.Sprintf(`<g id="%s">`+"\n", escapeXML(p.ID)))
	svg.WriteString(fmt.Sprintf(`<rect class="event" x="%s" y="%s" width="%s" height="%s" rx="4" fill="%s" stroke="%s" stroke-opacity="0.2"/>`+"\n",
		num(x), num(y), num(w), num(h), p.Color.Background, p.Color.Foreground))

	lines := []struct {
		class string
		text  string
	}{
		{"event-code", p.Event.Code},
		{"event-text", p.Event.CourseName},
		{"event-text", p.TimeText},
	}
	lineY := y + float64(opts.FontSize) + 2
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		// Stop once the text would leave the block.
		if lineY > y+h {
			break
		}
		svg.WriteString(fmt.Sprintf(`<text class="%s" x="%s" y="%s" fill="%s">%s</text>`+"\n",
			l.class, num(x+4), num(lineY), p.Color.Foreground, escapeXML(l.text)))
		lineY += float64(opts.FontSize) + 2
	}
	svg.WriteString("</g>\n")
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// escapeXML escapes special XML characters in a string to ensure valid SVG output.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
