package scraper

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// The issued-on banner carries either a 12-hour or a 24-hour publication time.
var issuedOnLayouts = []string{
	"Monday, 02 January 2006 at 3:04pm",
	"Monday, 02 January 2006 at 3:04PM",
	"Monday, 02 January 2006 at 15:04",
}

// Day headers without an explicit year, e.g. "Tuesday, 02 January".
const dayHeaderLayout = "Monday, 02 January"

// Headers with this text mark the start of trailing attribution content;
// scanning stops there.
const attributionSentinel = "Forecast by"

var detailBlockMatcher = cascadia.MustCompile("div.weather-detailed")

// Extractor parses the forecast page markup into per-day forecast records
// anchored on the page's issued-on timestamp.
type Extractor struct {
	logger Logger
}

// NewExtractor creates a new forecast extractor
func NewExtractor(logger Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Run extracts the issued-on timestamp and the ordered day forecasts from the
// raw page. A missing or unparseable issued-on banner fails the whole
// extraction, since every record's relative date depends on it. Individual
// field lookup failures only leave that field absent.
func (e *Extractor) Run(data []byte) (*time.Time, []Forecast) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		e.logger.Error(fmt.Sprintf("failed to parse page markup: %v", err))
		return nil, nil
	}

	issuedOn, ok := e.parseIssuedOn(doc)
	if !ok {
		return nil, nil
	}

	var forecasts []Forecast
	doc.Find("h2").EachWithBreak(func(_ int, header *goquery.Selection) bool {
		label := strings.TrimSpace(header.Text())
		if label == attributionSentinel {
			return false
		}

		forecasts = append(forecasts, e.buildForecast(issuedOn, label, header))
		return true
	})

	return &issuedOn, forecasts
}

// parseIssuedOn locates the issued-on banner and parses its timestamp. The
// banner reads "Issued on <timestamp> by <author>"; only the timestamp part
// is kept.
func (e *Extractor) parseIssuedOn(doc *goquery.Document) (time.Time, bool) {
	banner := doc.Find("div.weather-issued").First()
	if banner.Length() == 0 {
		e.logger.Error("could not find issued-on banner")
		return time.Time{}, false
	}

	text := strings.TrimSpace(banner.Text())
	text = strings.TrimPrefix(text, "Issued on ")
	if i := strings.Index(text, " by "); i >= 0 {
		text = text[:i]
	}

	for _, layout := range issuedOnLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}

	e.logger.Error(fmt.Sprintf("could not parse issued-on timestamp %q", text))
	return time.Time{}, false
}

// buildForecast resolves the header label to a date and looks up each field
// in the detail block that follows the header in document order.
func (e *Extractor) buildForecast(issuedOn time.Time, label string, header *goquery.Selection) Forecast {
	forecast := Forecast{Date: e.resolveDate(issuedOn, label)}

	detail := nextMatching(header, detailBlockMatcher)
	if detail == nil {
		e.logger.Error(fmt.Sprintf("no detail block found after header %q", label))
		return forecast
	}

	forecast.MaxTemp = stripTemperatureUnit(e.text(detail, "div.temperature-max"))
	forecast.MinTemp = stripTemperatureUnit(e.text(detail, "div.temperature-min"))
	forecast.WindSpeed = e.text(detail, "span.wind-speed")
	forecast.WindDirection = e.windDirection(e.attr(detail, "span.wind-speed", "title"))
	forecast.WeatherState = e.attr(detail, "img.weather-state", "alt")
	forecast.Description = e.text(detail, "div.weather-value p")
	forecast.Wind = e.text(detail, "div.weather-detail:nth-of-type(2) div.weather-value p")
	forecast.Visibility = e.text(detail, "div.weather-detail:nth-of-type(3) div.weather-value p")
	forecast.Rainfall = e.text(detail, "div.weather-detail:nth-of-type(4) div.weather-value")
	forecast.Comments = e.text(detail, "div.weather-detail:nth-of-type(5) div.weather-value p")

	return forecast
}

// resolveDate turns a day-header label into a concrete date relative to the
// issued-on timestamp. Weekday labels carry no year; they get the issued-on
// year, rolled forward by one when the result would fall before the issue
// date (forecasts spanning a year boundary).
func (e *Extractor) resolveDate(issuedOn time.Time, label string) *time.Time {
	issueDate := dateOnly(issuedOn)

	switch label {
	case "Today":
		return &issueDate
	case "Tomorrow":
		tomorrow := issueDate.AddDate(0, 0, 1)
		return &tomorrow
	}

	parsed, err := time.Parse(dayHeaderLayout, label)
	if err != nil {
		e.logger.Error(fmt.Sprintf("error calculating date for %q: %v", label, err))
		return nil
	}

	resolved := time.Date(issuedOn.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if resolved.Before(issueDate) {
		resolved = resolved.AddDate(1, 0, 0)
	}
	return &resolved
}

// text returns the trimmed text of the first element under root matching the
// selector, or nil with an ERROR logged when nothing matches.
func (e *Extractor) text(root *goquery.Selection, selector string) *string {
	found := root.Find(selector).First()
	if found.Length() == 0 {
		e.logger.Error(fmt.Sprintf("no element matched selector %q", selector))
		return nil
	}
	value := strings.TrimSpace(found.Text())
	return &value
}

// attr returns the named attribute of the first element under root matching
// the selector, or nil with an ERROR logged when the element or attribute is
// missing.
func (e *Extractor) attr(root *goquery.Selection, selector, name string) *string {
	found := root.Find(selector).First()
	if found.Length() == 0 {
		e.logger.Error(fmt.Sprintf("no element matched selector %q", selector))
		return nil
	}
	value, ok := found.Attr(name)
	if !ok {
		e.logger.Error(fmt.Sprintf("element matched by %q has no %q attribute", selector, name))
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

// windDirection normalizes the wind-speed title attribute, which reads
// "Wind direction: <direction> <trend>": the second colon-delimited token,
// then its first whitespace-separated word.
func (e *Extractor) windDirection(title *string) *string {
	if title == nil {
		return nil
	}
	parts := strings.Split(*title, ":")
	if len(parts) < 2 {
		e.logger.Error(fmt.Sprintf("unexpected wind direction attribute %q", *title))
		return nil
	}
	words := strings.Fields(parts[1])
	if len(words) == 0 {
		e.logger.Error(fmt.Sprintf("unexpected wind direction attribute %q", *title))
		return nil
	}
	return &words[0]
}

// stripTemperatureUnit removes the trailing degree suffix from a temperature
// string, leaving the numeric part.
func stripTemperatureUnit(value *string) *string {
	if value == nil {
		return nil
	}
	stripped := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*value), "°C"))
	return &stripped
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextMatching returns the first element after the selection in document
// order matched by m, wrapped as a selection, or nil. Unlike sibling-based
// traversal this also descends into following subtrees, so the detail block
// does not have to be a direct sibling of its header.
func nextMatching(s *goquery.Selection, m cascadia.Selector) *goquery.Selection {
	if len(s.Nodes) == 0 {
		return nil
	}
	for node := nextNode(s.Nodes[0]); node != nil; node = nextNode(node) {
		if node.Type == html.ElementNode && m.Match(node) {
			return goquery.NewDocumentFromNode(node).Selection
		}
	}
	return nil
}

// nextNode advances one step in document order: first child, else next
// sibling, else the nearest ancestor's next sibling.
func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}
