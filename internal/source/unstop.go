package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/hackseek/scraper/internal/fetch"
	"github.com/hackseek/scraper/internal/model"
)

// Unstop scrapes unstop.com (formerly Dare2Compete) hackathon listings.
type Unstop struct {
	client  fetch.Client
	baseURL string
}

// NewUnstop creates the Unstop adapter.
func NewUnstop(client fetch.Client) *Unstop {
	return &Unstop{client: client, baseURL: "https://unstop.com"}
}

// Name implements Source.
func (u *Unstop) Name() string { return "unstop" }

// Discover collects opportunity URLs from the hackathons listing
// (mandatory) and the coding-competitions listing (best-effort).
func (u *Unstop) Discover(ctx context.Context) ([]string, error) {
	base, err := url.Parse(u.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "unstop: parse base url")
	}

	seen := make(map[string]bool)
	var urls []string
	collect := func(doc *goquery.Document) {
		doc.Find(`div[class*="opportunity-card"] a, div[class*="competition-card"] a, a[href*="/o/"]`).
			Each(func(_ int, sel *goquery.Selection) {
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

	body, err := u.client.Get(ctx, u.baseURL+"/hackathons")
	if err != nil {
		return nil, eris.Wrap(err, "unstop: fetch hackathons page")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "unstop: parse hackathons page")
	}
	collect(doc)

	if body, err := u.client.Get(ctx, u.baseURL+"/coding-competitions"); err == nil {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
			collect(doc)
		}
	} else {
		zap.L().Debug("unstop: coding-competitions listing unavailable", zap.Error(err))
	}

	zap.L().Info("unstop: discovered opportunities", zap.Int("count", len(urls)))
	return urls, nil
}

// ParseItem parses one Unstop opportunity page. Pages without a title
// heading are soft-skipped.
func (u *Unstop) ParseItem(ctx context.Context, itemURL string) (*model.RawHackathon, error) {
	body, err := u.client.Get(ctx, itemURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "unstop: parse %s", itemURL)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`h2[class*="title"], h2[class*="heading"]`).First().Text())
	}
	if title == "" {
		return nil, nil
	}

	pageText := doc.Text()
	location := u.extractLocation(doc)
	start, end := ExtractDates(pageText)

	raw := &model.RawHackathon{
		Title:           title,
		Description:     u.extractDescription(doc),
		WebsiteURL:      itemURL,
		RegistrationURL: u.registrationURL(doc, itemURL),
		Location:        location,
		IsOnline:        InferOnline(location),
		Categories:      u.extractCategories(doc, pageText),
		Technologies:    MatchTechnologies(pageText),
		SourceID:        unstopID(itemURL),
		SourceURL:       itemURL,
	}
	switch {
	case !start.IsZero() && !end.IsZero():
		raw.StartDate = start
		raw.EndDate = end
	case !start.IsZero():
		// A single date on an Unstop page is usually the registration
		// deadline, not the event start.
		raw.RegistrationDeadline = start
	}
	if prize := ExtractPrize(pageText); prize > 0 {
		raw.PrizeMoney = prize
	}

	zap.L().Debug("unstop: parsed opportunity", zap.String("title", title))
	return raw, nil
}

func (u *Unstop) extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{
		`div[class*="description"]`,
		`div[class*="about"]`,
		`div[class*="details"]`,
		`p[class*="description"]`,
	} {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(text) > 50 {
			return text
		}
	}
	return ""
}

func (u *Unstop) extractLocation(doc *goquery.Document) string {
	for _, selector := range []string{`[class*="location"]`, `[class*="venue"]`} {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" && len(text) < 100 {
			return text
		}
	}
	return ""
}

func (u *Unstop) extractCategories(doc *goquery.Document, pageText string) []string {
	var categories []string
	doc.Find(`[class*="tag"], [class*="category"], [class*="theme"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" && len(text) < 50 {
			categories = append(categories, text)
		}
	})
	return append(categories, MatchCategories(pageText)...)
}

func (u *Unstop) registrationURL(doc *goquery.Document, itemURL string) string {
	base, err := url.Parse(u.baseURL)
	if err != nil {
		return itemURL
	}
	if href := registrationLink(doc); href != "" {
		if full := resolveURL(base, href); full != "" {
			return full
		}
	}
	return itemURL
}

// unstopID prefers the numeric opportunity id found in URLs like
// /o/hackathon-name/123456; otherwise the last path segment, then the URL.
func unstopID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for _, part := range parts {
		if part != "" && isDigits(part) {
			return part
		}
	}
	if seg := lastPathSegment(rawURL); seg != "" {
		return seg
	}
	return rawURL
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
