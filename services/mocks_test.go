package services_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/repositories"
)

// In-memory fakes for the repository interfaces. They implement the same
// atomic-increment and clamping semantics as the Postgres layer so the
// service tests exercise the real business rules.

type memTransactor struct{}

func (memTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeBroadcaster struct {
	messages []interface{}
	rooms    []string
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.rooms = append(b.rooms, roomID)
	b.messages = append(b.messages, message)
}

type memPlayerRepo struct {
	players map[int]*models.Player
	nextID  int
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (r *memPlayerRepo) Create(_ context.Context, p *models.Player) error {
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	r.players[p.ID] = p
	return nil
}

func (r *memPlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return p, nil
}

func (r *memPlayerRepo) List(_ context.Context) ([]*models.Player, error) {
	ids := make([]int, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.players[id])
	}
	return out, nil
}

func (r *memPlayerRepo) Update(_ context.Context, p *models.Player) error {
	if _, ok := r.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	r.players[p.ID] = p
	return nil
}

func (r *memPlayerRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

type memTeamRepo struct {
	teams  map[int]*models.Team
	hashes map[int]string
	nextID int
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{teams: make(map[int]*models.Team), hashes: make(map[int]string), nextID: 1}
}

func (r *memTeamRepo) Create(_ context.Context, t *models.Team) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	r.teams[t.ID] = t
	return nil
}

func (r *memTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return t, nil
}

func (r *memTeamRepo) List(_ context.Context) ([]*models.Team, error) {
	out := make([]*models.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	return out, nil
}

func (r *memTeamRepo) Update(_ context.Context, t *models.Team) error {
	if _, ok := r.teams[t.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.teams[t.ID] = t
	return nil
}

func (r *memTeamRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *memTeamRepo) SetPlayers(_ context.Context, teamID int, playerIDs []int) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.PlayerIDs = playerIDs
	return nil
}

func (r *memTeamRepo) ListPlayers(_ context.Context, teamID int) ([]models.Player, error) {
	return nil, nil
}

func (r *memTeamRepo) UpdateLogoKey(_ context.Context, teamID int, logoKey *string) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *memTeamRepo) SetPasswordHash(_ context.Context, teamID int, hash string) error {
	if _, ok := r.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.hashes[teamID] = hash
	return nil
}

func (r *memTeamRepo) GetPasswordHash(_ context.Context, teamID int) (string, error) {
	hash, ok := r.hashes[teamID]
	if !ok {
		return "", repositories.ErrTeamCredsNotSet
	}
	return hash, nil
}

type memMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *memMatchRepo) Create(_ context.Context, m *models.Match) error {
	m.ID = r.nextID
	r.nextID++
	m.Status = models.MatchStatusScheduled
	m.CurrentSet = 1
	m.Sets = []models.SetScore{{Number: 1}, {Number: 2}, {Number: 3}}
	m.CreatedAt = time.Now()
	r.matches[m.ID] = m
	return nil
}

func (r *memMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m, nil
}

func (r *memMatchRepo) List(_ context.Context, status *models.MatchStatus) ([]*models.Match, error) {
	out := make([]*models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if status == nil || m.Status == *status {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMatchRepo) Update(_ context.Context, m *models.Match) error {
	existing, ok := r.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	existing.CourtNumber = m.CourtNumber
	existing.TeamAID = m.TeamAID
	existing.TeamBID = m.TeamBID
	existing.TrackerTeamID = m.TrackerTeamID
	existing.StartTime = m.StartTime
	return nil
}

func (r *memMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *memMatchRepo) AddSetScore(_ context.Context, _ repositories.SQLExecutor, matchID, setNumber, deltaA, deltaB int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	set := m.Set(setNumber)
	if set == nil {
		return repositories.ErrMatchSetNotFound
	}
	set.ScoreA = clampZero(set.ScoreA + deltaA)
	set.ScoreB = clampZero(set.ScoreB + deltaB)
	return nil
}

func (r *memMatchRepo) AddMirrorScore(_ context.Context, _ repositories.SQLExecutor, matchID, deltaA, deltaB int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreA = clampZero(m.ScoreA + deltaA)
	m.ScoreB = clampZero(m.ScoreB + deltaB)
	return nil
}

func (r *memMatchRepo) GetSets(_ context.Context, matchID int) ([]models.SetScore, error) {
	m, ok := r.matches[matchID]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return m.Sets, nil
}

func (r *memMatchRepo) CompleteSet(_ context.Context, _ repositories.SQLExecutor, matchID, setNumber int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	set := m.Set(setNumber)
	if set == nil {
		return repositories.ErrMatchSetNotFound
	}
	set.Completed = true
	return nil
}

func (r *memMatchRepo) SetCurrentSet(_ context.Context, _ repositories.SQLExecutor, matchID, setNumber, scoreA, scoreB int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.CurrentSet = setNumber
	m.ScoreA = scoreA
	m.ScoreB = scoreB
	return nil
}

func (r *memMatchRepo) Finalize(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusCompleted
	for i := range m.Sets {
		m.Sets[i].Completed = true
	}
	return nil
}

type statKey struct {
	matchID, playerID, set int
}

type memStatRepo struct {
	stats map[statKey]*models.PlayerStats
}

func newMemStatRepo() *memStatRepo {
	return &memStatRepo{stats: make(map[statKey]*models.PlayerStats)}
}

func (r *memStatRepo) row(matchID, playerID, set int) *models.PlayerStats {
	key := statKey{matchID, playerID, set}
	if s, ok := r.stats[key]; ok {
		return s
	}
	s := &models.PlayerStats{MatchID: matchID, PlayerID: playerID, Set: set}
	r.stats[key] = s
	return s
}

func (r *memStatRepo) Increment(_ context.Context, _ repositories.SQLExecutor, matchID, playerID, set int, statName string, value int) error {
	return bumpStat(r.row(matchID, playerID, set), statName, value, false)
}

func (r *memStatRepo) Decrement(_ context.Context, _ repositories.SQLExecutor, matchID, playerID, set int, statName string, value int) error {
	key := statKey{matchID, playerID, set}
	s, ok := r.stats[key]
	if !ok {
		return nil // missing row is treated as already zero
	}
	return bumpStat(s, statName, -value, true)
}

func (r *memStatRepo) Get(_ context.Context, matchID, playerID, set int) (*models.PlayerStats, error) {
	s, ok := r.stats[statKey{matchID, playerID, set}]
	if !ok {
		return nil, repositories.ErrPlayerStatsAbsent
	}
	return s, nil
}

func (r *memStatRepo) ListByMatch(_ context.Context, matchID int) ([]models.PlayerStats, error) {
	out := make([]models.PlayerStats, 0)
	for key, s := range r.stats {
		if key.matchID == matchID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStatRepo) ListByPlayer(_ context.Context, playerID int, matchIDs []int) ([]models.PlayerStats, error) {
	out := make([]models.PlayerStats, 0)
	for key, s := range r.stats {
		if key.playerID == playerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStatRepo) ListAll(_ context.Context) ([]models.PlayerStats, error) {
	out := make([]models.PlayerStats, 0, len(r.stats))
	for _, s := range r.stats {
		out = append(out, *s)
	}
	return out, nil
}

func bumpStat(s *models.PlayerStats, name string, delta int, clamp bool) error {
	fields := map[string]*int{
		"aces": &s.Aces, "spikes": &s.Spikes, "blocks": &s.Blocks,
		"tips": &s.Tips, "dumps": &s.Dumps, "digs": &s.Digs, "points": &s.Points,
		"serveErrors": &s.ServeErrors, "spikeErrors": &s.SpikeErrors,
		"netTouches": &s.NetTouches, "footFaults": &s.FootFaults,
		"carries": &s.Carries, "reaches": &s.Reaches,
		"outOfBounds": &s.OutOfBounds, "faults": &s.Faults,
		"neutralBlocks": &s.NeutralBlocks,
	}
	field, ok := fields[name]
	if !ok {
		return repositories.ErrStatUnknown
	}
	*field += delta
	if clamp && *field < 0 {
		*field = 0
	}
	return nil
}

type memStatLogRepo struct {
	entries []*models.StatLog
	clock   time.Time
}

func newMemStatLogRepo() *memStatLogRepo {
	return &memStatLogRepo{clock: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *memStatLogRepo) Append(_ context.Context, _ repositories.SQLExecutor, e *models.StatLog) error {
	r.clock = r.clock.Add(time.Second)
	e.CreatedAt = r.clock
	r.entries = append(r.entries, e)
	return nil
}

func (r *memStatLogRepo) Latest(_ context.Context, matchID int) (*models.StatLog, error) {
	var latest *models.StatLog
	for _, e := range r.entries {
		if e.MatchID != matchID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, repositories.ErrStatLogNotFound
	}
	return latest, nil
}

func (r *memStatLogRepo) GetByID(_ context.Context, id string) (*models.StatLog, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repositories.ErrStatLogNotFound
}

func (r *memStatLogRepo) ListByMatch(_ context.Context, matchID int) ([]*models.StatLog, error) {
	out := make([]*models.StatLog, 0)
	for _, e := range r.entries {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memStatLogRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return repositories.ErrStatLogNotFound
}

type memTrackerLogRepo struct {
	entries []*models.TrackerLog
}

func (r *memTrackerLogRepo) Append(_ context.Context, e *models.TrackerLog) error {
	if e.ID == "" {
		e.ID = fmt.Sprintf("tl-%d", len(r.entries)+1)
	}
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memTrackerLogRepo) List(_ context.Context, limit int) ([]*models.TrackerLog, error) {
	return r.entries, nil
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
