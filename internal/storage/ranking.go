package storage

import (
	"sort"

	"github.com/mcoot/roomrank/internal/model"
)

// SortStandings orders standings by score descending then address ascending
// and truncates to limit (no truncation when limit <= 0). It sorts in place.
func SortStandings(standings []model.Standing, limit int) []model.Standing {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Address < standings[j].Address
	})
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}
	return standings
}
