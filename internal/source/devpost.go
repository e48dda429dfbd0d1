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

// Devpost scrapes devpost.com hackathon listings.
type Devpost struct {
	client  fetch.Client
	baseURL string
}

// NewDevpost creates the Devpost adapter.
func NewDevpost(client fetch.Client) *Devpost {
	return &Devpost{client: client, baseURL: "https://devpost.com"}
}

// Name implements Source.
func (d *Devpost) Name() string { return "devpost" }

// Discover collects hackathon URLs from the main listing page (mandatory)
// and the recently-added listing (best-effort).
func (d *Devpost) Discover(ctx context.Context) ([]string, error) {
	base, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "devpost: parse base url")
	}

	seen := make(map[string]bool)
	var urls []string
	collect := func(doc *goquery.Document) {
		doc.Find("a.link-to-software").Each(func(_ int, sel *goquery.Selection) {
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

	body, err := d.client.Get(ctx, d.baseURL+"/hackathons?search=")
	if err != nil {
		return nil, eris.Wrap(err, "devpost: fetch listing page")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "devpost: parse listing page")
	}
	collect(doc)

	// Recently-added listing is a bonus, not a requirement.
	if body, err := d.client.Get(ctx, d.baseURL+"/hackathons?search=&challenge_type=all&sort_by=recently-added"); err == nil {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
			collect(doc)
		}
	} else {
		zap.L().Debug("devpost: recently-added listing unavailable", zap.Error(err))
	}

	zap.L().Info("devpost: discovered hackathons", zap.Int("count", len(urls)))
	return urls, nil
}

// ParseItem parses one Devpost hackathon page. Pages without the challenge
// title anchor are soft-skipped.
func (d *Devpost) ParseItem(ctx context.Context, itemURL string) (*model.RawHackathon, error) {
	body, err := d.client.Get(ctx, itemURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "devpost: parse %s", itemURL)
	}

	title := strings.TrimSpace(doc.Find("h1#challenge-title").First().Text())
	if title == "" {
		return nil, nil
	}

	pageText := doc.Text()
	location := strings.TrimSpace(doc.Find("span.challenge-location").First().Text())
	start, end := ExtractDates(doc.Find("div.challenge-dates").Text())

	raw := &model.RawHackathon{
		Title:           title,
		Description:     strings.TrimSpace(doc.Find("div.challenge-description").First().Text()),
		WebsiteURL:      itemURL,
		RegistrationURL: itemURL,
		Location:        location,
		IsOnline:        InferOnline(location),
		Categories:      d.extractCategories(doc, pageText),
		Technologies:    MatchTechnologies(pageText),
		SourceID:        devpostID(itemURL),
		SourceURL:       itemURL,
	}
	if !start.IsZero() {
		raw.StartDate = start
	}
	if !end.IsZero() {
		raw.EndDate = end
	}
	if prize := ExtractPrize(pageText); prize > 0 {
		raw.PrizeMoney = prize
	}

	zap.L().Debug("devpost: parsed hackathon", zap.String("title", title))
	return raw, nil
}

// extractCategories combines theme/category tag elements with known
// category keywords found in the page text.
func (d *Devpost) extractCategories(doc *goquery.Document, pageText string) []string {
	var categories []string
	doc.Find(`[class*="theme"], [class*="category"]`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" && len(text) < 50 {
			categories = append(categories, text)
		}
	})
	return append(categories, MatchCategories(pageText)...)
}

// devpostID derives the source id. Hackathons live on per-event subdomains
// (myhack.devpost.com); project pages use /software/<slug>. Falls back to
// the last path segment, then the full URL.
func devpostID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if host := u.Hostname(); strings.HasSuffix(host, ".devpost.com") && host != "www.devpost.com" {
		return strings.SplitN(host, ".", 2)[0]
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "software" {
		return parts[1]
	}
	if seg := lastPathSegment(rawURL); seg != "" {
		return seg
	}
	return rawURL
}
