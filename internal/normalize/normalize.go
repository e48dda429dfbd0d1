// Package normalize converts loosely-typed scraped records into canonical
// ones. Every function here is total: malformed input degrades to absent
// (empty string, nil pointer, empty slice), never to an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/hackseek/scraper/internal/model"
)

// MaxDescriptionLen caps canonical description length, ellipsis included.
const MaxDescriptionLen = 5000

// maxListEntryLen drops over-long category/technology entries.
const maxListEntryLen = 100

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonDecimalRe = regexp.MustCompile(`[^\d.]`)

	// Absolute-URL shape: scheme, domain/localhost/IPv4, optional port, path.
	urlRe = regexp.MustCompile(`(?i)^https?://` +
		`(?:(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,6}\.?|` +
		`localhost|` +
		`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
		`(?::\d+)?` +
		`(?:/?|[/?]\S+)$`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&#39;", "'",
		"&nbsp;", " ",
	)

	// Accepted date layouts, tried in order. Anything else is absent.
	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
		"02/01/2006",
		"Jan 2 2006",
		"January 2, 2006",
	}

	truthyStrings = map[string]bool{
		"true": true, "1": true, "yes": true, "on": true,
		"online": true, "virtual": true,
	}

	onlineLocationWords = []string{"online", "virtual", "remote", "worldwide", "global"}
)

// Record normalizes a raw record into a canonical Hackathon for the given
// platform. scrapedAt stamps the record; it is the only non-derived field.
func Record(raw model.RawHackathon, platform string, scrapedAt time.Time) model.Hackathon {
	return model.Hackathon{
		Title:                Text(raw.Title),
		Description:          Description(raw.Description),
		WebsiteURL:           URL(raw.WebsiteURL),
		RegistrationURL:      URL(raw.RegistrationURL),
		StartDate:            Date(raw.StartDate),
		EndDate:              Date(raw.EndDate),
		RegistrationDeadline: Date(raw.RegistrationDeadline),
		Location:             Text(raw.Location),
		IsOnline:             Online(raw.IsOnline, Text(raw.Location)),
		PrizeMoney:           Prize(raw.PrizeMoney),
		Categories:           List(raw.Categories),
		Technologies:         List(raw.Technologies),
		Organizer:            Text(raw.Organizer),
		SourcePlatform:       Text(platform),
		SourceID:             Text(raw.SourceID),
		SourceURL:            URL(raw.SourceURL),
		ScrapedAt:            scrapedAt,
	}
}

// Text collapses whitespace runs, decodes common HTML entities, NFC-
// normalizes, and trims. Empty results stay empty.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = entityReplacer.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Description applies Text cleaning then truncates to MaxDescriptionLen
// characters, marking truncation with a trailing ellipsis. Truncation
// counts runes, never splitting a multibyte character.
func Description(s string) string {
	cleaned := Text(s)
	if utf8.RuneCountInString(cleaned) > MaxDescriptionLen {
		runes := []rune(cleaned)
		return string(runes[:MaxDescriptionLen-3]) + "..."
	}
	return cleaned
}

// URL validates s as an absolute http(s) URL. Protocol-relative URLs are
// promoted to https. Host-relative paths cannot be resolved without a base
// and are dropped. Anything failing the absolute-URL shape is dropped.
func URL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	case strings.HasPrefix(s, "/"):
		return ""
	default:
		s = "https://" + s
	}
	if !urlRe.MatchString(s) {
		return ""
	}
	return s
}

// Date coerces a raw date value to a *time.Time. Strings must match one of
// the accepted layouts; unparsable input is absent.
func Date(v any) *time.Time {
	switch d := v.(type) {
	case nil:
		return nil
	case time.Time:
		if d.IsZero() {
			return nil
		}
		t := d
		return &t
	case *time.Time:
		if d == nil || d.IsZero() {
			return nil
		}
		t := *d
		return &t
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

// Bool coerces a raw flag to a boolean. Recognized truthy strings and
// non-zero numbers map to true; everything else is false.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return truthyStrings[strings.ToLower(strings.TrimSpace(b))]
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	default:
		return false
	}
}

// Online resolves the online flag. An explicit raw value wins. With no
// explicit value the flag is inferred from the location text, defaulting
// to true when there is no location at all.
func Online(v any, location string) bool {
	if v != nil {
		return Bool(v)
	}
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return true
	}
	for _, word := range onlineLocationWords {
		if strings.Contains(loc, word) {
			return true
		}
	}
	return false
}

// Prize coerces a raw prize value to a positive amount. Strings are
// stripped of everything but digits and dots before parsing. Non-positive
// or unparsable values are absent.
func Prize(v any) *float64 {
	switch p := v.(type) {
	case float64:
		return positive(p)
	case int:
		return positive(float64(p))
	case int64:
		return positive(float64(p))
	case string:
		cleaned := nonDecimalRe.ReplaceAllString(p, "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		return positive(f)
	default:
		return nil
	}
}

func positive(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}

// List coerces categories/technologies to a cleaned slice. A single string
// splits on ',', ';', or '|'. Entries are Text-cleaned, over-length and
// empty entries dropped, and the result deduplicated case-insensitively
// while preserving first-seen order and original casing.
func List(v any) []string {
	var items []string
	switch a := v.(type) {
	case nil:
		return nil
	case []string:
		items = a
	case string:
		if strings.TrimSpace(a) == "" {
			return nil
		}
		items = strings.FieldsFunc(a, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		})
	default:
		return nil
	}

	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		cleaned := Text(item)
		if cleaned == "" || utf8.RuneCountInString(cleaned) >= maxListEntryLen {
			continue
		}
		key := strings.ToLower(cleaned)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, cleaned)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
