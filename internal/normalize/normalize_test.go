package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackseek/scraper/internal/model"
)

func TestText_CollapsesWhitespaceAndEntities(t *testing.T) {
	assert.Equal(t, "AI & ML Hackathon", Text("  AI &amp; ML\n\tHackathon  "))
	assert.Equal(t, `"Hack" 'Night'`, Text("&quot;Hack&quot; &#39;Night&apos;"))
	assert.Equal(t, "a b", Text("a  b"))
	assert.Equal(t, "", Text("   \n\t  "))
	assert.Equal(t, "", Text(""))
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"  Devfest   2025 ",
		"&amp;&amp;",
		"plain",
		"",
	}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "input %q", in)
	}
}

func TestDescription_TruncatesWithEllipsis(t *testing.T) {
	long := strings.Repeat("x", MaxDescriptionLen+500)
	got := Description(long)
	assert.Len(t, got, MaxDescriptionLen)
	assert.True(t, strings.HasSuffix(got, "..."))

	short := "A weekend hackathon."
	assert.Equal(t, short, Description(short))
}

func TestDescription_TruncationCountsCharactersNotBytes(t *testing.T) {
	// 3000 two-byte characters: under the cap despite being 6000 bytes.
	under := strings.Repeat("é", 3000)
	assert.Equal(t, under, Description(under))

	over := strings.Repeat("é", MaxDescriptionLen+500)
	got := Description(over)
	assert.Equal(t, MaxDescriptionLen, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestURL_Validation(t *testing.T) {
	assert.Equal(t, "https://devpost.com/hack", URL("https://devpost.com/hack"))
	assert.Equal(t, "http://devpost.com", URL("http://devpost.com"))
	assert.Equal(t, "https://mlh.io/events", URL("//mlh.io/events"))
	assert.Equal(t, "https://unstop.com", URL("unstop.com"))
	assert.Equal(t, "https://localhost:8080/x", URL("https://localhost:8080/x"))

	// Host-relative paths cannot be resolved without a base.
	assert.Equal(t, "", URL("/hackathons/123"))
	assert.Equal(t, "", URL("ftp://example.com/file"))
	assert.Equal(t, "", URL("javascript:void(0)"))
	assert.Equal(t, "", URL("not a url"))
	assert.Equal(t, "", URL(""))
}

func TestURL_RejectedInputStaysAbsent(t *testing.T) {
	rejected := []string{"/relative/path", "mailto:a@b.com", "://broken"}
	for _, in := range rejected {
		assert.Empty(t, URL(in), "input %q", in)
	}
}

func TestDate_AcceptedLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2025-03-15":           time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		"2025-03-15 10:30:00":  time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		"03/15/2025":           time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		"Mar 15 2025":          time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		"March 15, 2025":       time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		"2025-03-15T10:30:00Z": time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got := Date(in)
		require.NotNil(t, got, "input %q", in)
		assert.True(t, want.Equal(*got), "input %q: got %v", in, *got)
	}
}

func TestDate_UnparsableIsAbsent(t *testing.T) {
	assert.Nil(t, Date("soon"))
	assert.Nil(t, Date("2025-13-45"))
	assert.Nil(t, Date(""))
	assert.Nil(t, Date(nil))
	assert.Nil(t, Date(42))
	assert.Nil(t, Date(time.Time{}))
	assert.Nil(t, Date((*time.Time)(nil)))
}

func TestDate_PassesThroughTime(t *testing.T) {
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	got := Date(want)
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got))

	got = Date(&want)
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got))
}

func TestBool_Coercion(t *testing.T) {
	assert.True(t, Bool(true))
	assert.True(t, Bool("true"))
	assert.True(t, Bool("YES"))
	assert.True(t, Bool(" Online "))
	assert.True(t, Bool("virtual"))
	assert.True(t, Bool(1))
	assert.True(t, Bool(float64(2)))

	assert.False(t, Bool(false))
	assert.False(t, Bool("no"))
	assert.False(t, Bool("offline"))
	assert.False(t, Bool(0))
	assert.False(t, Bool(nil))
	assert.False(t, Bool([]string{"online"}))
}

func TestOnline_ExplicitValueWins(t *testing.T) {
	assert.True(t, Online(true, "Berlin, Germany"))
	assert.False(t, Online(false, "Online"))
}

func TestOnline_InferredFromLocation(t *testing.T) {
	assert.True(t, Online(nil, "Virtual, Worldwide"))
	assert.True(t, Online(nil, "Remote (global)"))
	assert.False(t, Online(nil, "Berlin, Germany"))
	assert.True(t, Online(nil, ""))
}

func TestPrize_Coercion(t *testing.T) {
	got := Prize("$50,000")
	require.NotNil(t, got)
	assert.Equal(t, 50000.0, *got)

	got = Prize("10000.50 USD")
	require.NotNil(t, got)
	assert.Equal(t, 10000.50, *got)

	got = Prize(float64(2500))
	require.NotNil(t, got)
	assert.Equal(t, 2500.0, *got)

	assert.Nil(t, Prize("free"))
	assert.Nil(t, Prize("$0"))
	assert.Nil(t, Prize(-100))
	assert.Nil(t, Prize(nil))
	assert.Nil(t, Prize(""))
}

func TestList_SplitAndDedup(t *testing.T) {
	got := List("AI/ML, AI/ML, Web Dev")
	assert.Equal(t, []string{"AI/ML", "Web Dev"}, got)
}

func TestList_CaseInsensitiveDedupKeepsFirstCasing(t *testing.T) {
	got := List("Python; python | PYTHON, Go")
	assert.Equal(t, []string{"Python", "Go"}, got)
}

func TestList_DropsEmptyAndOverlong(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := List([]string{" ", long, "Rust"})
	assert.Equal(t, []string{"Rust"}, got)

	assert.Nil(t, List(""))
	assert.Nil(t, List(nil))
	assert.Nil(t, List(42))
	assert.Nil(t, List([]string{"", "  "}))
}

func TestList_EntryLengthCountsCharactersNotBytes(t *testing.T) {
	// 60 two-byte characters: 120 bytes, but under the 100-character cap.
	multibyte := strings.Repeat("ü", 60)
	assert.Equal(t, []string{multibyte}, List([]string{multibyte}))
	assert.Nil(t, List([]string{strings.Repeat("ü", 120)}))
}

func TestRecord_FullCoercion(t *testing.T) {
	scrapedAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	raw := model.RawHackathon{
		Title:       "  DevHack   2025 ",
		Description: "48 hours of &amp; building.",
		WebsiteURL:  "//devhack.example.com",
		StartDate:   "2025-03-15",
		Location:    "Virtual, Worldwide",
		IsOnline:    nil,
		PrizeMoney:  "$50,000",
		Categories:  "AI/ML, AI/ML, Web Dev",
		SourceID:    "devhack-2025",
		SourceURL:   "https://devpost.com/devhack-2025",
	}

	h := Record(raw, "devpost", scrapedAt)

	assert.Equal(t, "DevHack 2025", h.Title)
	assert.Equal(t, "48 hours of & building.", h.Description)
	assert.Equal(t, "https://devhack.example.com", h.WebsiteURL)
	require.NotNil(t, h.StartDate)
	assert.Nil(t, h.EndDate)
	assert.Equal(t, "Virtual, Worldwide", h.Location)
	assert.True(t, h.IsOnline)
	require.NotNil(t, h.PrizeMoney)
	assert.Equal(t, 50000.0, *h.PrizeMoney)
	assert.Equal(t, []string{"AI/ML", "Web Dev"}, h.Categories)
	assert.Equal(t, "devpost", h.SourcePlatform)
	assert.Equal(t, "devhack-2025", h.SourceID)
	assert.Equal(t, scrapedAt, h.ScrapedAt)
	assert.True(t, h.HasIdentity())
}

func TestRecord_EmptyInputNeverPanics(t *testing.T) {
	h := Record(model.RawHackathon{}, "", time.Time{})
	assert.Empty(t, h.Title)
	assert.Nil(t, h.StartDate)
	assert.Nil(t, h.PrizeMoney)
	assert.Nil(t, h.Categories)
	assert.True(t, h.IsOnline) // no location at all reads as online
	assert.False(t, h.HasIdentity())
}

func TestRecord_AdversarialValuesDegradeToAbsent(t *testing.T) {
	raw := model.RawHackathon{
		Title:        "Edge Case Expo",
		WebsiteURL:   "/relative/only",
		StartDate:    []byte("2025-01-01"),
		EndDate:      map[string]any{"date": "2025-01-02"},
		IsOnline:     struct{}{},
		PrizeMoney:   []int{1, 2, 3},
		Categories:   12.5,
		Technologies: true,
	}
	h := Record(raw, "devpost", time.Now())
	assert.Equal(t, "Edge Case Expo", h.Title)
	assert.Empty(t, h.WebsiteURL)
	assert.Nil(t, h.StartDate)
	assert.Nil(t, h.EndDate)
	assert.False(t, h.IsOnline)
	assert.Nil(t, h.PrizeMoney)
	assert.Nil(t, h.Categories)
	assert.Nil(t, h.Technologies)
}
