package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hackseek/scraper/internal/fetch"
	"github.com/hackseek/scraper/internal/model"
)

// MLH scrapes Major League Hacking event listings.
type MLH struct {
	client  fetch.Client
	baseURL string
	season  int
}

// NewMLH creates the MLH adapter, pointed at the current season.
func NewMLH(client fetch.Client) *MLH {
	return &MLH{
		client:  client,
		baseURL: "https://mlh.io",
		season:  time.Now().UTC().Year(),
	}
}

// Name implements Source.
func (m *MLH) Name() string { return "mlh" }

// Discover collects event URLs from the events page (mandatory) and the
// current season's listing (best-effort).
func (m *MLH) Discover(ctx context.Context) ([]string, error) {
	base, err := url.Parse(m.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "mlh: parse base url")
	}

	seen := make(map[string]bool)
	var urls []string
	collect := func(doc *goquery.Document) {
		doc.Find(`a[href*="/events/"]`).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			full := resolveURL(base, href)
			if full == "" || seen[full] {
				return
			}
			seen[full] = true
			urls = append(urls, full)
		})
	}

	body, err := m.client.Get(ctx, m.baseURL+"/events")
	if err != nil {
		return nil, eris.Wrap(err, "mlh: fetch events page")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "mlh: parse events page")
	}
	collect(doc)

	seasonURL := fmt.Sprintf("%s/seasons/%d/events", m.baseURL, m.season)
	if body, err := m.client.Get(ctx, seasonURL); err == nil {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
			collect(doc)
		}
	} else {
		zap.L().Debug("mlh: season listing unavailable", zap.Error(err))
	}

	zap.L().Info("mlh: discovered events", zap.Int("count", len(urls)))
	return urls, nil
}

// ParseItem parses one MLH event page. Pages without a title heading are
// soft-skipped.
func (m *MLH) ParseItem(ctx context.Context, itemURL string) (*model.RawHackathon, error) {
	body, err := m.client.Get(ctx, itemURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "mlh: parse %s", itemURL)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h2.event-name").First().Text())
	}
	if title == "" {
		return nil, nil
	}

	pageText := doc.Text()
	location := m.extractLocation(doc)
	start, end := ExtractDates(pageText)

	raw := &model.RawHackathon{
		Title:           title,
		Description:     m.extractDescription(doc),
		WebsiteURL:      itemURL,
		RegistrationURL: firstOr(registrationLink(doc), itemURL),
		Location:        location,
		IsOnline:        InferOnline(location),
		Categories:      []string{"Hackathon", "Programming", "Technology"},
		Technologies:    MatchTechnologies(pageText),
		Organizer:       "MLH",
		SourceID:        firstOr(lastPathSegment(itemURL), itemURL),
		SourceURL:       itemURL,
	}
	if !start.IsZero() {
		raw.StartDate = start
	}
	if !end.IsZero() {
		raw.EndDate = end
	}
	// MLH events rarely publish a headline prize, but sponsor prize
	// amounts do appear in page copy.
	if prize := ExtractPrize(pageText); prize > 0 {
		raw.PrizeMoney = prize
	}

	zap.L().Debug("mlh: parsed event", zap.String("title", title))
	return raw, nil
}

func (m *MLH) extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{`[class*="description"]`, `[class*="about"]`, "p"} {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(text) > 50 {
			return text
		}
	}
	return ""
}

func (m *MLH) extractLocation(doc *goquery.Document) string {
	for _, selector := range []string{`[class*="event-location"]`, `[class*="location"]`, `[class*="venue"]`} {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" && len(text) < 100 {
			return text
		}
	}
	return ""
}

// registrationLink finds the first link whose text looks like a
// registration call to action.
func registrationLink(doc *goquery.Document) string {
	var href string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(sel.Text())
		if strings.Contains(text, "register") || strings.Contains(text, "apply") ||
			strings.Contains(text, "participate") {
			if h, ok := sel.Attr("href"); ok && h != "" {
				href = h
				return false
			}
		}
		return true
	})
	return href
}

func firstOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
