package source

import (
	_ "embed"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// inrPerUSD is the fixed conversion rate applied to INR prize amounts so
// every normalized prize is USD-denominated.
const inrPerUSD = 83.0

//go:embed keywords.yaml
var keywordsYAML []byte

// keywordTables holds the extraction vocabularies shared by all adapters.
type keywordTables struct {
	OnlineLocation []string `yaml:"online_location"`
	Categories     []string `yaml:"categories"`
	Technologies   []string `yaml:"technologies"`
}

var keywords = mustKeywords()

func mustKeywords() keywordTables {
	var kt keywordTables
	if err := yaml.Unmarshal(keywordsYAML, &kt); err != nil {
		panic("source: parse embedded keywords.yaml: " + err.Error())
	}
	return kt
}

// InferOnline decides online/offline from location text. No location text
// at all defaults to online; otherwise any online keyword marks the event
// online.
func InferOnline(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return true
	}
	for _, kw := range keywords.OnlineLocation {
		if strings.Contains(loc, kw) {
			return true
		}
	}
	return false
}

// MatchCategories scans page text for known category names,
// case-insensitively, preserving canonical casing.
func MatchCategories(pageText string) []string {
	return matchKeywords(strings.ToLower(pageText), keywords.Categories, true)
}

// MatchTechnologies scans page text for known technology names. Matches are
// case-sensitive since technology names double as ordinary words when
// lowercased.
func MatchTechnologies(pageText string) []string {
	return matchKeywords(pageText, keywords.Technologies, false)
}

func matchKeywords(text string, vocab []string, fold bool) []string {
	var found []string
	for _, kw := range vocab {
		needle := kw
		if fold {
			needle = strings.ToLower(kw)
		}
		if strings.Contains(text, needle) {
			found = append(found, kw)
		}
	}
	return found
}

var (
	usdRes = []*regexp.Regexp{
		regexp.MustCompile(`\$\s*([0-9][0-9,]*)`),
		regexp.MustCompile(`(?i)USD\s*([0-9][0-9,]*)`),
	}
	inrRes = []*regexp.Regexp{
		regexp.MustCompile(`₹\s*([0-9][0-9,]*)(?:\s*(lakhs?|crores?))?`),
		regexp.MustCompile(`(?i)INR\s*([0-9][0-9,]*)(?:\s*(lakhs?|crores?))?`),
		regexp.MustCompile(`(?i)Rs\.?\s*([0-9][0-9,]*)(?:\s*(lakhs?|crores?))?`),
	}
)

// ExtractPrize scans text for currency-prefixed amounts and returns the
// largest one in USD. INR amounts (with lakh/crore multipliers) convert at
// the fixed inrPerUSD rate. Returns 0 when no amount is found.
func ExtractPrize(text string) float64 {
	var maxUSD float64

	for _, re := range usdRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if amount, ok := parseAmount(m[1]); ok && amount > maxUSD {
				maxUSD = amount
			}
		}
	}

	for _, re := range inrRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			amount, ok := parseAmount(m[1])
			if !ok {
				continue
			}
			switch {
			case len(m) > 2 && strings.HasPrefix(strings.ToLower(m[2]), "lakh"):
				amount *= 100_000
			case len(m) > 2 && strings.HasPrefix(strings.ToLower(m[2]), "crore"):
				amount *= 10_000_000
			}
			if usd := amount / inrPerUSD; usd > maxUSD {
				maxUSD = usd
			}
		}
	}

	return maxUSD
}

func parseAmount(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

var (
	// "Mar 15 - Mar 17, 2024"
	dateRangeRe = regexp.MustCompile(`(\w{3}\s+\d{1,2})\s*-\s*(\w{3}\s+\d{1,2}),?\s*(\d{4})`)
	// "15/03/2024" (day first, per the sites that use this shape)
	dateNumericRe = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	// "Mar 15, 2024" / "March 15 2024"
	dateMonthRe = regexp.MustCompile(`([A-Z][a-z]{2,8})\s+(\d{1,2}),?\s+(\d{4})`)
)

// ExtractDates scans text for recognized date patterns. The earliest parsed
// value becomes the start and the latest the end; a single date yields only
// a start. Returned values are zero time.Time when absent.
func ExtractDates(text string) (start, end time.Time) {
	var dates []time.Time

	for _, m := range dateRangeRe.FindAllStringSubmatch(text, -1) {
		if t, err := time.Parse("Jan 2 2006", m[1]+" "+m[3]); err == nil {
			dates = append(dates, t)
		}
		if t, err := time.Parse("Jan 2 2006", m[2]+" "+m[3]); err == nil {
			dates = append(dates, t)
		}
	}
	for _, m := range dateNumericRe.FindAllStringSubmatch(text, -1) {
		if t, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
			dates = append(dates, t)
		}
	}
	for _, m := range dateMonthRe.FindAllStringSubmatch(text, -1) {
		joined := m[1] + " " + m[2] + " " + m[3]
		if t, err := time.Parse("Jan 2 2006", joined); err == nil {
			dates = append(dates, t)
		} else if t, err := time.Parse("January 2 2006", joined); err == nil {
			dates = append(dates, t)
		}
	}

	if len(dates) == 0 {
		return time.Time{}, time.Time{}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	start = dates[0]
	if len(dates) > 1 {
		end = dates[len(dates)-1]
	}
	return start, end
}

// lastPathSegment returns the final non-empty path segment of a URL, or ""
// when the URL has no usable path. The usual fallback source id convention.
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

// resolveURL resolves href against base, returning "" for unusable links.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}
