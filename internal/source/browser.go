package source

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
)

const (
	DefaultWaitSelector = `li[id^="plan-item-"]`
	DefaultTimeoutSec   = 30
)

// collectorScript snapshots every plan item on the page into the shape of
// extract.Item. It only reads the DOM.
const collectorScript = `(() => {
  const text = el => el ? el.innerText : "";
  const link = (a, primary) => ({
    text: (a.textContent || "").trim(),
    href: a.href || "",
    label: a.getAttribute("aria-label") || "",
    primary: primary,
  });
  return Array.from(document.querySelectorAll('li[id^="plan-item-"]')).map(li => {
    const title = li.querySelector("h3 a");
    const primaryCode = li.querySelector(".code.primary");
    const instructor = li.querySelector(".section-instructor");
    return {
      id: li.id,
      title_link: title ? link(title, true) : null,
      links: Array.from(li.querySelectorAll("a")).map(a => link(a, a === title)),
      badges: Array.from(li.querySelectorAll(".badge")).map(text),
      spans: Array.from(li.querySelectorAll("span")).map(s => ({
        text: text(s),
        title: s.getAttribute("title") || "",
        parent_text: text(s.parentElement),
      })),
      primary_code: primaryCode ? text(primaryCode) : null,
      instructor: instructor ? text(instructor) : null,
      times: Array.from(li.querySelectorAll("time")).map(t => ({
        datetime: t.getAttribute("datetime") || "",
        text: text(t),
      })),
    };
  });
})()`

// Browser opens the plan page in headless Chromium and collects the items
// it renders.
type Browser struct {
	// URL of the plan page. An authenticated profile is expected to be
	// available to Chromium; the collector never logs in.
	URL string

	// WaitSelector is awaited before collecting. Defaults to the plan item
	// selector.
	WaitSelector string

	// Timeout bounds the whole navigation and collection.
	Timeout time.Duration
}

func (b *Browser) Load(parentCtx context.Context) ([]extract.Item, error) {
	if b.URL == "" {
		return nil, fmt.Errorf("source: browser URL is required")
	}
	wait := b.WaitSelector
	if wait == "" {
		wait = DefaultWaitSelector
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	appLog.Info("browser collect start", "url", redactURL(b.URL), "wait", wait)

	var items []extract.Item
	tasks := chromedp.Tasks{
		chromedp.Navigate(b.URL),
		chromedp.WaitVisible(wait, chromedp.ByQuery),
		// Small extra delay for late-bound time elements.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Evaluate(collectorScript, &items),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("source: chromedp run failed: %w", err)
	}

	appLog.Info("browser collect success", "url", redactURL(b.URL), "items", len(items))
	return items, nil
}
