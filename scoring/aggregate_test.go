package scoring

import (
	"testing"

	"github.com/courtside/volleytrack/models"
	"github.com/stretchr/testify/assert"
)

func TestAggregateZeroMatches(t *testing.T) {
	total := Aggregate(nil)
	assert.Equal(t, models.PlayerStats{}, total)
	assert.Equal(t, 0, TotalEarned(total))
	assert.Equal(t, 0, TotalFaults(total))
	assert.Equal(t, 0.0, LeaderboardScore(total))
}

func TestAggregateSumsAcrossMatches(t *testing.T) {
	rows := []models.PlayerStats{
		{MatchID: 1, Set: 1, Aces: 2, Spikes: 1, NetTouches: 1},
		{MatchID: 1, Set: 2, Digs: 3, Faults: 2},
		{MatchID: 2, Set: 1, Aces: 1, Blocks: 2, NeutralBlocks: 1},
	}

	total := Aggregate(rows)
	assert.Equal(t, 3, total.Aces)
	assert.Equal(t, 1, total.Spikes)
	assert.Equal(t, 2, total.Blocks)
	assert.Equal(t, 3, total.Digs)
	assert.Equal(t, 1, total.NetTouches)
	assert.Equal(t, 2, total.Faults)
	assert.Equal(t, 1, total.NeutralBlocks)

	assert.Equal(t, 9, TotalEarned(total))
	assert.Equal(t, 3, TotalFaults(total))
}

func TestLeaderboardScoreWeights(t *testing.T) {
	s := models.PlayerStats{
		Points: 1, // 3
		Spikes: 2, // 4
		Aces:   1, // 2
		Blocks: 2, // 3
		Tips:   1, // 1
		Digs:   2, // 2

		ServeErrors: 1, // -1
		Carries:     1, // -1
	}
	assert.InDelta(t, 13.0, LeaderboardScore(s), 1e-9)
}

func TestLeaderboardScoreFlooredAtZero(t *testing.T) {
	s := models.PlayerStats{
		Digs:        1, // +1
		ServeErrors: 2,
		NetTouches:  2, // -4 total
	}
	assert.Equal(t, 0.0, LeaderboardScore(s))
}
