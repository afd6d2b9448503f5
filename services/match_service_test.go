package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/services"
)

func TestMatchCreateValidatesTeams(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input services.MatchInput
	}{
		{"missing team A", services.MatchInput{TeamBID: f.teamB.ID}},
		{"missing team B", services.MatchInput{TeamAID: f.teamA.ID}},
		{"same team twice", services.MatchInput{TeamAID: f.teamA.ID, TeamBID: f.teamA.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.matchSvc.Create(ctx, tc.input)
			assert.ErrorIs(t, err, services.ErrMatchTeamsRequired)
		})
	}
}

func TestMatchCreateStartsAtSetOne(t *testing.T) {
	f := newStatFixture(t)

	match, err := f.matchSvc.Create(context.Background(), services.MatchInput{
		CourtNumber: 2,
		TeamAID:     f.teamA.ID,
		TeamBID:     f.teamB.ID,
		StartTime:   time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	assert.Equal(t, 1, match.CurrentSet)
	require.Len(t, match.Sets, 3)
	for _, set := range match.Sets {
		assert.False(t, set.Completed)
		assert.Zero(t, set.ScoreA)
		assert.Zero(t, set.ScoreB)
	}
}

func TestAdvanceSetLocksAndRepointsMirror(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	// Score 2-1 in set 1, then advance.
	f.record(t, f.playerA.ID, f.teamA.ID, "spikes")
	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	f.record(t, f.playerB.ID, f.teamB.ID, "tips")

	match, err := f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, match.CurrentSet)
	assert.True(t, match.Set(1).Completed)
	assert.Equal(t, 2, match.Set(1).ScoreA)
	assert.Equal(t, 1, match.Set(1).ScoreB)

	// The aggregate mirror now shows set 2, which starts at zero.
	assert.Equal(t, 0, match.ScoreA)
	assert.Equal(t, 0, match.ScoreB)
	assert.False(t, match.Set(2).Completed)
}

func TestAdvanceSetValidFromFirstTwoSetsOnly(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	_, err := f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	require.NoError(t, err)
	match, err := f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, match.CurrentSet)

	_, err = f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	assert.ErrorIs(t, err, services.ErrInvalidSetAdvance)
}

func TestAdvanceSetRejectsCompletedMatch(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	_, err := f.matchSvc.Finalize(ctx, f.match.ID, nil)
	require.NoError(t, err)

	_, err = f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	assert.ErrorIs(t, err, services.ErrMatchCompleted)
}

func TestAdvanceSetAuditsTrackerTeam(t *testing.T) {
	f := newStatFixture(t)

	_, err := f.matchSvc.AdvanceSet(context.Background(), f.match.ID, &f.teamA.ID)
	require.NoError(t, err)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, models.TrackerActionSetAdvance, entry.Action)
	require.NotNil(t, entry.TeamID)
	assert.Equal(t, f.teamA.ID, *entry.TeamID)
	require.NotNil(t, entry.MatchID)
	assert.Equal(t, f.match.ID, *entry.MatchID)
}

func TestFinalizeLocksEverySet(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	match, err := f.matchSvc.Finalize(ctx, f.match.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	for _, set := range match.Sets {
		assert.True(t, set.Completed)
	}

	// Finalizing twice is rejected.
	_, err = f.matchSvc.Finalize(ctx, f.match.ID, nil)
	assert.ErrorIs(t, err, services.ErrMatchCompleted)
}

func TestGetScoreReflectsSetHistory(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	_, err := f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	require.NoError(t, err)
	f.record(t, f.playerB.ID, f.teamB.ID, "aces")

	score, err := f.matchSvc.GetScore(ctx, f.match.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, score.CurrentSet)
	assert.Equal(t, 0, score.ScoreA)
	assert.Equal(t, 1, score.ScoreB)
	require.Len(t, score.Sets, 3)
	assert.Equal(t, 1, score.Sets[0].ScoreA)
	assert.Equal(t, 0, score.Sets[0].ScoreB)
}

func TestMatchScoreForUnknownMatch(t *testing.T) {
	f := newStatFixture(t)

	_, err := f.matchSvc.GetScore(context.Background(), 404)
	assert.ErrorIs(t, err, services.ErrMatchNotFound)
}
