package services

import (
	"sort"

	"ecotrace/internal/models"
)

// RankUsers returns a copy of rows sorted ascending by TotalEmission, with
// Rank set to each row's 1-based position. Ties keep their input order.
func RankUsers(rows []models.LeaderboardRow) []models.LeaderboardRow {
	ranked := make([]models.LeaderboardRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalEmission < ranked[j].TotalEmission
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
