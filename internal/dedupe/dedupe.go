// Package dedupe flags duplicate hackathon records for intra-run metrics.
// The persistence upsert key is the authoritative dedup mechanism; this
// detector only informs run reporting.
package dedupe

import (
	"strings"

	"github.com/hackseek/scraper/internal/model"
)

// fuzzyMinTitleLen gates substring matching so short titles don't collide.
const fuzzyMinTitleLen = 10

// IsDuplicate reports whether two records refer to the same listing.
// Identity match on (source_platform, source_id) wins; otherwise titles are
// compared exactly and, when both exceed fuzzyMinTitleLen, by containment.
// Symmetric in its arguments.
func IsDuplicate(a, b model.Hackathon) bool {
	if a.HasIdentity() && b.HasIdentity() &&
		a.SourcePlatform == b.SourcePlatform && a.SourceID == b.SourceID {
		return true
	}

	titleA := strings.ToLower(strings.TrimSpace(a.Title))
	titleB := strings.ToLower(strings.TrimSpace(b.Title))
	if titleA == "" || titleB == "" {
		return false
	}
	if titleA == titleB {
		return true
	}
	if len(titleA) > fuzzyMinTitleLen && len(titleB) > fuzzyMinTitleLen {
		return strings.Contains(titleA, titleB) || strings.Contains(titleB, titleA)
	}
	return false
}

// Pair holds the indexes of two records flagged as duplicates.
type Pair struct {
	I, J int
}

// FindDuplicates returns all duplicate pairs (i < j) within one run's
// records.
func FindDuplicates(records []model.Hackathon) []Pair {
	var pairs []Pair
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			if IsDuplicate(records[i], records[j]) {
				pairs = append(pairs, Pair{I: i, J: j})
			}
		}
	}
	return pairs
}
