package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackseek/scraper/internal/model"
)

func TestIsDuplicate_IdentityMatchBeatsTitle(t *testing.T) {
	a := model.Hackathon{SourcePlatform: "devpost", SourceID: "devhack-2025", Title: "DevHack 2025"}
	b := model.Hackathon{SourcePlatform: "devpost", SourceID: "devhack-2025", Title: "A Completely Different Name"}
	assert.True(t, IsDuplicate(a, b))
}

func TestIsDuplicate_DifferentIdentityFallsBackToTitle(t *testing.T) {
	a := model.Hackathon{SourcePlatform: "devpost", SourceID: "one", Title: "Global AI Hackathon 2025"}
	b := model.Hackathon{SourcePlatform: "mlh", SourceID: "two", Title: "Global AI Hackathon 2025"}
	assert.True(t, IsDuplicate(a, b))

	b.Title = "HackNight"
	assert.False(t, IsDuplicate(a, b))
}

func TestIsDuplicate_TitleContainment(t *testing.T) {
	a := model.Hackathon{Title: "Global AI Hackathon"}
	b := model.Hackathon{Title: "The Global AI Hackathon, San Francisco Edition"}
	assert.True(t, IsDuplicate(a, b))
}

func TestIsDuplicate_ShortTitlesRequireExactMatch(t *testing.T) {
	a := model.Hackathon{Title: "Hack"}
	b := model.Hackathon{Title: "HackNight"}
	assert.False(t, IsDuplicate(a, b))

	b.Title = "hack"
	assert.True(t, IsDuplicate(a, b))
}

func TestIsDuplicate_EmptyTitlesNeverMatch(t *testing.T) {
	a := model.Hackathon{}
	b := model.Hackathon{}
	assert.False(t, IsDuplicate(a, b))

	b.Title = "Something"
	assert.False(t, IsDuplicate(a, b))
}

func TestIsDuplicate_Symmetric(t *testing.T) {
	records := []model.Hackathon{
		{SourcePlatform: "devpost", SourceID: "x", Title: "DevHack 2025"},
		{SourcePlatform: "devpost", SourceID: "y", Title: "DevHack 2025 Summer Edition"},
		{Title: "Hack"},
		{Title: ""},
		{SourcePlatform: "mlh", SourceID: "x", Title: "Totally Unrelated Event Name"},
	}
	for i := range records {
		for j := range records {
			assert.Equal(t,
				IsDuplicate(records[i], records[j]),
				IsDuplicate(records[j], records[i]),
				"asymmetric for (%d, %d)", i, j,
			)
		}
	}
}

func TestFindDuplicates(t *testing.T) {
	records := []model.Hackathon{
		{SourcePlatform: "devpost", SourceID: "a", Title: "Alpha Hackathon 2025"},
		{SourcePlatform: "devpost", SourceID: "b", Title: "Beta Jam"},
		{SourcePlatform: "devpost", SourceID: "a", Title: "Renamed Alpha"},
		{Title: "Beta Jam"},
	}
	pairs := FindDuplicates(records)
	assert.ElementsMatch(t, []Pair{{I: 0, J: 2}, {I: 1, J: 3}}, pairs)
}

func TestFindDuplicates_NoneAndEmpty(t *testing.T) {
	assert.Empty(t, FindDuplicates(nil))
	assert.Empty(t, FindDuplicates([]model.Hackathon{
		{Title: "Alpha Hackathon Yearly"},
		{Title: "An Entirely Different Gathering"},
	}))
}
