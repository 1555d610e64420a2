package services

import (
	"testing"

	"ecotrace/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRankUsers(t *testing.T) {
	input := []models.LeaderboardRow{
		{UserID: 1, Username: "a", TotalEmission: 3.0},
		{UserID: 2, Username: "b", TotalEmission: 1.0},
		{UserID: 3, Username: "c", TotalEmission: 3.0},
		{UserID: 4, Username: "d", TotalEmission: 0},
	}
	original := append([]models.LeaderboardRow(nil), input...)

	ranked := RankUsers(input)

	assert.Equal(t, original, input, "input must not be mutated")
	assert.Equal(t, []int64{4, 2, 1, 3}, userIDs(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].TotalEmission, ranked[i].TotalEmission)
	}
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRankUsersEmpty(t *testing.T) {
	assert.NotNil(t, RankUsers(nil))
	assert.Empty(t, RankUsers(nil))
	assert.Empty(t, RankUsers([]models.LeaderboardRow{}))
}

func userIDs(rows []models.LeaderboardRow) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	return ids
}
