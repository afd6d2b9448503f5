package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/volleytrack/metrics"
	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/scoring"
	"github.com/courtside/volleytrack/services"
)

type statFixture struct {
	svc       services.StatService
	matchSvc  services.MatchService
	matches   *memMatchRepo
	stats     *memStatRepo
	logs      *memStatLogRepo
	players   *memPlayerRepo
	teams     *memTeamRepo
	audit     *memTrackerLogRepo
	broadcast *fakeBroadcaster

	teamA, teamB     *models.Team
	playerA, playerB *models.Player
	match            *models.Match
}

func newStatFixture(t *testing.T) *statFixture {
	t.Helper()
	ctx := context.Background()

	f := &statFixture{
		matches:   newMemMatchRepo(),
		stats:     newMemStatRepo(),
		logs:      newMemStatLogRepo(),
		players:   newMemPlayerRepo(),
		teams:     newMemTeamRepo(),
		audit:     &memTrackerLogRepo{},
		broadcast: &fakeBroadcaster{},
	}

	f.teamA = &models.Team{Name: "Ravens"}
	f.teamB = &models.Team{Name: "Sharks"}
	require.NoError(t, f.teams.Create(ctx, f.teamA))
	require.NoError(t, f.teams.Create(ctx, f.teamB))

	f.playerA = &models.Player{Name: "Ada Park"}
	f.playerB = &models.Player{Name: "Bea Cruz"}
	require.NoError(t, f.players.Create(ctx, f.playerA))
	require.NoError(t, f.players.Create(ctx, f.playerB))

	f.match = &models.Match{
		CourtNumber:   1,
		TeamAID:       f.teamA.ID,
		TeamBID:       f.teamB.ID,
		TrackerTeamID: &f.teamA.ID,
		StartTime:     time.Now(),
	}
	require.NoError(t, f.matches.Create(ctx, f.match))

	f.svc = services.NewStatService(
		memTransactor{}, f.stats, f.logs, f.matches, f.players, f.teams,
		f.audit, f.broadcast, metrics.Noop{},
	)
	f.matchSvc = services.NewMatchService(
		memTransactor{}, f.matches, f.teams, f.audit, f.broadcast, metrics.Noop{},
	)
	return f
}

func (f *statFixture) record(t *testing.T, playerID, teamID int, stat string) *services.RecordStatResult {
	t.Helper()
	res, err := f.svc.RecordStat(context.Background(), nil, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: playerID,
		TeamID:   teamID,
		Stat:     stat,
	})
	require.NoError(t, err)
	return res
}

func TestRecordStatEarnedScoresOwnTeam(t *testing.T) {
	f := newStatFixture(t)

	res := f.record(t, f.playerA.ID, f.teamA.ID, "aces")

	assert.Equal(t, scoring.CategoryEarned, res.Category)
	assert.Equal(t, 1, res.DeltaA)
	assert.Equal(t, 0, res.DeltaB)
	assert.Empty(t, res.Warning)

	require.NotNil(t, res.Score)
	assert.Equal(t, 1, res.Score.ScoreA)
	assert.Equal(t, 0, res.Score.ScoreB)

	// The set pair and the aggregate mirror move together.
	match, err := f.matches.GetByID(context.Background(), f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, match.ScoreA)
	assert.Equal(t, 1, match.Set(1).ScoreA)
	assert.Equal(t, 0, match.Set(1).ScoreB)

	stats, err := f.stats.Get(context.Background(), f.match.ID, f.playerA.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Aces)

	logs, err := f.svc.MatchLogs(context.Background(), f.match.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "aces", logs[0].StatName)
	assert.Equal(t, "earned", logs[0].Category)
	assert.Equal(t, 1, logs[0].Set)
	assert.Equal(t, "Ravens", logs[0].TeamName)

	require.Len(t, f.broadcast.messages, 1)
}

func TestRecordStatFaultScoresOpponent(t *testing.T) {
	f := newStatFixture(t)

	res := f.record(t, f.playerB.ID, f.teamB.ID, "netTouches")

	assert.Equal(t, scoring.CategoryFault, res.Category)
	assert.Equal(t, 1, res.DeltaA)
	assert.Equal(t, 0, res.DeltaB)
	assert.Equal(t, 1, res.Score.ScoreA)
	assert.Equal(t, 0, res.Score.ScoreB)
}

func TestRecordStatNeutralBlockNeverScores(t *testing.T) {
	f := newStatFixture(t)

	res, err := f.svc.RecordStat(context.Background(), nil, services.RecordStatInput{
		MatchID:   f.match.ID,
		PlayerID:  f.playerA.ID,
		TeamID:    f.teamA.ID,
		Stat:      "blocks",
		BlockType: scoring.BlockTypeTouch,
	})
	require.NoError(t, err)

	assert.Equal(t, scoring.CategoryNeutral, res.Category)
	assert.Equal(t, "neutralBlocks", res.Entry.StatName)
	assert.Equal(t, 0, res.DeltaA)
	assert.Equal(t, 0, res.DeltaB)
	assert.Equal(t, 0, res.Score.ScoreA)
	assert.Equal(t, 0, res.Score.ScoreB)

	stats, err := f.stats.Get(context.Background(), f.match.ID, f.playerA.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NeutralBlocks)
	assert.Equal(t, 0, stats.Blocks)
}

func TestRecordStatPointBlockScores(t *testing.T) {
	f := newStatFixture(t)

	res, err := f.svc.RecordStat(context.Background(), nil, services.RecordStatInput{
		MatchID:   f.match.ID,
		PlayerID:  f.playerA.ID,
		TeamID:    f.teamA.ID,
		Stat:      "blocks",
		BlockType: scoring.BlockTypePoint,
	})
	require.NoError(t, err)

	assert.Equal(t, "blocks", res.Entry.StatName)
	assert.Equal(t, 1, res.Score.ScoreA)
}

func TestRecordStatUnknownName(t *testing.T) {
	f := newStatFixture(t)

	_, err := f.svc.RecordStat(context.Background(), nil, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerA.ID,
		TeamID:   f.teamA.ID,
		Stat:     "highFives",
	})
	assert.ErrorIs(t, err, services.ErrUnknownStat)
}

func TestRecordStatUnknownTeamLogsWithoutScoring(t *testing.T) {
	f := newStatFixture(t)

	res, err := f.svc.RecordStat(context.Background(), nil, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerA.ID,
		TeamID:   999,
		Stat:     "spikes",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, 0, res.DeltaA)
	assert.Equal(t, 0, res.DeltaB)
	assert.Equal(t, 0, res.Score.ScoreA)
	assert.Equal(t, 0, res.Score.ScoreB)

	// The event itself is still counted and logged.
	stats, err := f.stats.Get(context.Background(), f.match.ID, f.playerA.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Spikes)

	logs, err := f.svc.MatchLogs(context.Background(), f.match.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRecordStatLockedSet(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	_, err := f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	require.NoError(t, err)

	// Set 2 is now current; force it locked to hit the guard directly.
	match, err := f.matches.GetByID(ctx, f.match.ID)
	require.NoError(t, err)
	match.Set(2).Completed = true

	_, err = f.svc.RecordStat(ctx, nil, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerA.ID,
		TeamID:   f.teamA.ID,
		Stat:     "aces",
	})
	assert.ErrorIs(t, err, services.ErrSetLocked)
}

func TestRecordStatFinalizedMatch(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	_, err := f.matchSvc.Finalize(ctx, f.match.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.RecordStat(ctx, nil, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerA.ID,
		TeamID:   f.teamA.ID,
		Stat:     "aces",
	})
	assert.ErrorIs(t, err, services.ErrMatchCompleted)
}

func TestRecordStatTrackerTeamAuthorization(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	wrongTeam := &models.Session{Role: models.RoleTracker, TeamID: f.teamB.ID, Name: "Sharks"}
	_, err := f.svc.RecordStat(ctx, wrongTeam, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerB.ID,
		TeamID:   f.teamB.ID,
		Stat:     "digs",
	})
	assert.ErrorIs(t, err, services.ErrNotTrackerTeam)

	rightTeam := &models.Session{Role: models.RoleTracker, TeamID: f.teamA.ID, Name: "Ravens"}
	_, err = f.svc.RecordStat(ctx, rightTeam, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerA.ID,
		TeamID:   f.teamA.ID,
		Stat:     "digs",
	})
	assert.NoError(t, err)

	admin := &models.Session{Role: models.RoleAdmin, UserID: 1, Name: "Admin"}
	_, err = f.svc.RecordStat(ctx, admin, services.RecordStatInput{
		MatchID:  f.match.ID,
		PlayerID: f.playerB.ID,
		TeamID:   f.teamB.ID,
		Stat:     "digs",
	})
	assert.NoError(t, err)
}

func TestRecordStatAuditsScoreChanges(t *testing.T) {
	f := newStatFixture(t)

	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.TrackerActionScoreChange, f.audit.entries[0].Action)

	// Neutral events do not touch the score, so nothing is audited.
	_, err := f.svc.RecordStat(context.Background(), nil, services.RecordStatInput{
		MatchID:   f.match.ID,
		PlayerID:  f.playerA.ID,
		TeamID:    f.teamA.ID,
		Stat:      "blocks",
		BlockType: scoring.BlockTypeTouch,
	})
	require.NoError(t, err)
	assert.Len(t, f.audit.entries, 1)
}

func TestUndoLastReversesEventAndScore(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	f.record(t, f.playerA.ID, f.teamA.ID, "spikes")
	rec := f.record(t, f.playerB.ID, f.teamB.ID, "aces")

	res, err := f.svc.UndoLast(ctx, nil, f.match.ID, rec.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Entry.ID, res.Entry.ID)

	// Back to just the spike: 1-0 with one remaining log entry.
	assert.Equal(t, 1, res.Score.ScoreA)
	assert.Equal(t, 0, res.Score.ScoreB)

	stats, err := f.stats.Get(ctx, f.match.ID, f.playerB.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Aces)

	logs, err := f.svc.MatchLogs(ctx, f.match.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "spikes", logs[0].StatName)
}

func TestUndoLastRejectsNonLatestEntry(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	first := f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	f.record(t, f.playerA.ID, f.teamA.ID, "spikes")

	_, err := f.svc.UndoLast(ctx, nil, f.match.ID, first.Entry.ID)
	assert.ErrorIs(t, err, services.ErrNotLatestEntry)

	// Nothing was mutated by the rejected undo.
	match, err := f.matches.GetByID(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, match.ScoreA)

	logs, err := f.svc.MatchLogs(ctx, f.match.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestUndoLastWithoutEntries(t *testing.T) {
	f := newStatFixture(t)

	_, err := f.svc.UndoLast(context.Background(), nil, f.match.ID, "")
	assert.ErrorIs(t, err, services.ErrNoEntriesToUndo)
}

func TestUndoLastClampsCountersAtZero(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	// Hand-craft a log entry whose counter was never incremented. The
	// reversal must leave the stats and scores at zero, not negative.
	entry := &models.StatLog{
		ID:       "orphan-entry",
		MatchID:  f.match.ID,
		PlayerID: f.playerA.ID,
		TeamID:   f.teamA.ID,
		StatName: "aces",
		Value:    1,
		Category: string(scoring.CategoryEarned),
		Set:      1,
	}
	require.NoError(t, f.logs.Append(ctx, nil, entry))

	res, err := f.svc.UndoLast(ctx, nil, f.match.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score.ScoreA)
	assert.Equal(t, 0, res.Score.ScoreB)
}

func TestUndoLastRejectsLockedSet(t *testing.T) {
	f := newStatFixture(t)
	ctx := context.Background()

	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	_, err := f.matchSvc.AdvanceSet(ctx, f.match.ID, nil)
	require.NoError(t, err)

	// The latest entry belongs to set 1, which is now locked.
	_, err = f.svc.UndoLast(ctx, nil, f.match.ID, "")
	assert.ErrorIs(t, err, services.ErrSetLocked)
}

func TestMatchStatsUnknownMatch(t *testing.T) {
	f := newStatFixture(t)

	_, err := f.svc.MatchStats(context.Background(), 404)
	assert.ErrorIs(t, err, services.ErrMatchNotFound)
}

func TestTotalsWithoutAnyStats(t *testing.T) {
	f := newStatFixture(t)

	totals, err := f.svc.Totals(context.Background(), f.playerA.ID)
	require.NoError(t, err)
	assert.Equal(t, f.playerA.ID, totals.PlayerID)
	assert.Equal(t, 0, totals.TotalEarned)
	assert.Equal(t, 0, totals.TotalFaults)
	assert.Zero(t, totals.Score)
}

func TestLeaderboardOrdering(t *testing.T) {
	f := newStatFixture(t)

	// Ada: 2 aces at weight 2 each = 4.0.
	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	f.record(t, f.playerA.ID, f.teamA.ID, "aces")
	// Bea: 1 dig (weight 1) = 1.0.
	f.record(t, f.playerB.ID, f.teamB.ID, "digs")

	entries, err := f.svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, f.playerA.ID, entries[0].PlayerID)
	assert.Greater(t, entries[0].Score, entries[1].Score)
}

func TestLeaderboardTiesBreakByName(t *testing.T) {
	f := newStatFixture(t)

	entries, err := f.svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada Park", entries[0].PlayerName)
	assert.Equal(t, "Bea Cruz", entries[1].PlayerName)
}
