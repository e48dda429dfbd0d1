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

// hackerEarthDiscoverCap bounds discovery; HackerEarth listing pages repeat
// the same challenges across several carousels.
const hackerEarthDiscoverCap = 20

// HackerEarth scrapes hackerearth.com hackathon challenges. Events there
// are online-only.
type HackerEarth struct {
	client  fetch.Client
	baseURL string
}

// NewHackerEarth creates the HackerEarth adapter.
func NewHackerEarth(client fetch.Client) *HackerEarth {
	return &HackerEarth{client: client, baseURL: "https://www.hackerearth.com"}
}

// Name implements Source.
func (h *HackerEarth) Name() string { return "hackerearth" }

// Discover collects challenge URLs from the hackathon challenges listing.
func (h *HackerEarth) Discover(ctx context.Context) ([]string, error) {
	base, err := url.Parse(h.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "hackerearth: parse base url")
	}

	body, err := h.client.Get(ctx, h.baseURL+"/challenges/hackathon/")
	if err != nil {
		return nil, eris.Wrap(err, "hackerearth: fetch challenges page")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "hackerearth: parse challenges page")
	}

	seen := make(map[string]bool)
	var urls []string
	doc.Find(`a[href*="/challenges/hackathon/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		full := resolveURL(base, href)
		if full == "" || seen[full] || len(urls) >= hackerEarthDiscoverCap {
			return
		}
		seen[full] = true
		urls = append(urls, full)
	})

	zap.L().Info("hackerearth: discovered challenges", zap.Int("count", len(urls)))
	return urls, nil
}

// ParseItem parses one HackerEarth challenge page. Pages without a title
// heading are soft-skipped.
func (h *HackerEarth) ParseItem(ctx context.Context, itemURL string) (*model.RawHackathon, error) {
	body, err := h.client.Get(ctx, itemURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "hackerearth: parse %s", itemURL)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h2").First().Text())
	}
	if title == "" {
		return nil, nil
	}

	pageText := doc.Text()
	description := strings.TrimSpace(doc.Find(`div[class*="description"], div[class*="about"]`).First().Text())
	start, end := ExtractDates(pageText)

	raw := &model.RawHackathon{
		Title:           title,
		Description:     description,
		WebsiteURL:      itemURL,
		RegistrationURL: itemURL,
		Location:        "Online",
		IsOnline:        true,
		Categories:      append([]string{"Hackathon", "Programming"}, MatchCategories(pageText)...),
		Technologies:    MatchTechnologies(pageText),
		SourceID:        firstOr(lastPathSegment(itemURL), itemURL),
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

	zap.L().Debug("hackerearth: parsed challenge", zap.String("title", title))
	return raw, nil
}
