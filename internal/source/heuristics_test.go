package source

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferOnline(t *testing.T) {
	assert.True(t, InferOnline(""))
	assert.True(t, InferOnline("   "))
	assert.True(t, InferOnline("Online"))
	assert.True(t, InferOnline("Virtual, Worldwide"))
	assert.True(t, InferOnline("Remote (global)"))
	assert.True(t, InferOnline("Pan India"))

	assert.False(t, InferOnline("San Francisco, CA"))
	assert.False(t, InferOnline("IIT Bombay Campus"))
}

func TestMatchCategories_CaseInsensitive(t *testing.T) {
	got := MatchCategories("A weekend of blockchain and WEB DEVELOPMENT projects")
	assert.Contains(t, got, "Blockchain")
	assert.Contains(t, got, "Web Development")
}

func TestMatchTechnologies_CaseSensitive(t *testing.T) {
	got := MatchTechnologies("Build with Python and React. We like go but not the language name here.")
	assert.Contains(t, got, "Python")
	assert.Contains(t, got, "React")
	assert.NotContains(t, got, "Go")
}

func TestExtractPrize_USD(t *testing.T) {
	assert.Equal(t, 50000.0, ExtractPrize("Win $50,000 in prizes! Runner up gets $5,000."))
	assert.Equal(t, 12000.0, ExtractPrize("Total pool USD 12,000"))
	assert.Equal(t, 0.0, ExtractPrize("Swag and glory only"))
}

func TestExtractPrize_INRConversion(t *testing.T) {
	got := ExtractPrize("Prize: ₹83,000 for the winner")
	assert.InDelta(t, 1000.0, got, 0.01)

	got = ExtractPrize("Prizes worth INR 2 lakhs")
	assert.InDelta(t, 200000.0/83.0, got, 0.01)

	got = ExtractPrize("Rs. 1 crore total pool")
	assert.InDelta(t, 10000000.0/83.0, got, 0.01)
}

func TestExtractPrize_PicksLargestAcrossCurrencies(t *testing.T) {
	got := ExtractPrize("First prize $1,000, grand pool ₹8,30,000")
	// 830000 INR is 10000 USD, larger than the USD amount.
	assert.InDelta(t, 10000.0, got, 0.01)
}

func TestExtractDates_Range(t *testing.T) {
	start, end := ExtractDates("Runs Mar 15 - Mar 17, 2024 at the venue")
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), end)
}

func TestExtractDates_SingleDateYieldsOnlyStart(t *testing.T) {
	start, end := ExtractDates("Deadline: March 15, 2024")
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, end.IsZero())
}

func TestExtractDates_NumericDayFirst(t *testing.T) {
	start, _ := ExtractDates("Submissions close 15/03/2024")
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), start)
}

func TestExtractDates_EarliestAndLatestWin(t *testing.T) {
	start, end := ExtractDates("Kickoff Jan 5, 2024. Finals Mar 20, 2024. Midpoint Feb 1, 2024.")
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), end)
}

func TestExtractDates_NoneFound(t *testing.T) {
	start, end := ExtractDates("no dates here")
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "devhack-2025", lastPathSegment("https://example.com/events/devhack-2025"))
	assert.Equal(t, "devhack-2025", lastPathSegment("https://example.com/events/devhack-2025/"))
	assert.Equal(t, "", lastPathSegment("https://example.com"))
	assert.Equal(t, "", lastPathSegment("://bad"))
}

func TestResolveURL(t *testing.T) {
	base, err := url.Parse("https://devpost.com")
	require.NoError(t, err)

	assert.Equal(t, "https://devpost.com/hack", resolveURL(base, "/hack"))
	assert.Equal(t, "https://other.com/x", resolveURL(base, "https://other.com/x"))
	assert.Equal(t, "", resolveURL(base, "#section"))
	assert.Equal(t, "", resolveURL(base, "javascript:void(0)"))
	assert.Equal(t, "", resolveURL(base, "mailto:a@b.com"))
	assert.Equal(t, "", resolveURL(base, "  "))
}
