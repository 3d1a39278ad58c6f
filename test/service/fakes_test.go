package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rinkstats/hockey-stats-service/internal/metrics"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

func newMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

// fakeTeams is an in-memory TeamRepository.
type fakeTeams struct {
	mu     sync.Mutex
	nextID int64
	teams  map[int64]model.Team
}

func newFakeTeams() *fakeTeams { return &fakeTeams{teams: make(map[int64]model.Team)} }

func (f *fakeTeams) add(name string) model.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := model.Team{ID: f.nextID, Name: name}
	f.teams[t.ID] = t
	return t
}

func (f *fakeTeams) Create(_ context.Context, t model.Team) (model.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.teams {
		if existing.Name == t.Name {
			return model.Team{}, repository.ErrAlreadyExists
		}
	}
	f.nextID++
	t.ID = f.nextID
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeTeams) GetByID(_ context.Context, id int64) (model.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return model.Team{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTeams) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Team], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res repository.PageResult[model.Team]
	for _, t := range f.teams {
		res.Items = append(res.Items, t)
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakeTeams) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.teams[id]
	return ok, nil
}

var _ repository.TeamRepository = (*fakeTeams)(nil)

// fakePlayers is an in-memory PlayerRepository.
type fakePlayers struct {
	mu      sync.Mutex
	nextID  int64
	players map[int64]model.Player
	hidden  map[int64]bool
}

func newFakePlayers() *fakePlayers {
	return &fakePlayers{players: make(map[int64]model.Player), hidden: make(map[int64]bool)}
}

// hide makes Exists report the player as gone while GetByID still serves the
// cached row, like a roster deletion landing mid-operation.
func (f *fakePlayers) hide(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hidden[id] = true
}

func (f *fakePlayers) add(teamID int64) model.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := model.Player{ID: f.nextID, TeamID: teamID, FirstName: "P", LastName: fmt.Sprintf("%d", f.nextID), Position: "C"}
	f.players[p.ID] = p
	return p
}

func (f *fakePlayers) Create(_ context.Context, p model.Player) (model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.players[p.ID] = p
	return p, nil
}

func (f *fakePlayers) GetByID(_ context.Context, id int64) (model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePlayers) ListByTeam(_ context.Context, teamID int64, _ repository.Page) (repository.PageResult[model.Player], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res repository.PageResult[model.Player]
	for _, p := range f.players {
		if p.TeamID == teamID {
			res.Items = append(res.Items, p)
		}
	}
	res.Total = len(res.Items)
	return res, nil
}

func (f *fakePlayers) ListIDsByTeam(_ context.Context, teamID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, p := range f.players {
		if p.TeamID == teamID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakePlayers) ListAllIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.players))
	for id := range f.players {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakePlayers) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hidden[id] {
		return false, nil
	}
	_, ok := f.players[id]
	return ok, nil
}

var _ repository.PlayerRepository = (*fakePlayers)(nil)

// fakeGames is an in-memory GameRepository.
type fakeGames struct {
	mu     sync.Mutex
	nextID int64
	games  map[int64]model.Game
}

func newFakeGames() *fakeGames { return &fakeGames{games: make(map[int64]model.Game)} }

func (f *fakeGames) add(homeID, awayID int64) model.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g := model.Game{ID: f.nextID, HomeTeamID: homeID, AwayTeamID: awayID, Status: "in_progress"}
	f.games[g.ID] = g
	return g
}

func (f *fakeGames) Create(_ context.Context, g model.Game) (model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	g.ID = f.nextID
	f.games[g.ID] = g
	return g, nil
}

func (f *fakeGames) GetByID(_ context.Context, id int64) (model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return g, nil
}

func (f *fakeGames) List(_ context.Context, _ repository.Page) (repository.PageResult[model.Game], error) {
	return repository.PageResult[model.Game]{}, nil
}

var _ repository.GameRepository = (*fakeGames)(nil)

// eventRefs mirrors the player extraction the event store performs so the
// fake can answer by-player queries.
func eventRefs(e model.GameEvent) []int64 {
	var ids []int64
	switch e.Type {
	case model.EventGoal:
		if d := e.Details.Goal; d != nil {
			ids = append(ids, d.ScorerID)
			if d.PrimaryAssistID != nil {
				ids = append(ids, *d.PrimaryAssistID)
			}
			if d.SecondaryAssistID != nil {
				ids = append(ids, *d.SecondaryAssistID)
			}
			ids = append(ids, d.OnIce...)
		}
	case model.EventPenalty:
		if d := e.Details.Penalty; d != nil {
			ids = append(ids, d.PlayerID)
		}
	case model.EventShot:
		if d := e.Details.Shot; d != nil {
			ids = append(ids, d.PlayerID)
			if d.GoalieID != nil {
				ids = append(ids, *d.GoalieID)
			}
		}
	case model.EventHit:
		if d := e.Details.Hit; d != nil {
			ids = append(ids, d.PlayerID)
		}
	case model.EventFaceoff:
		if d := e.Details.Faceoff; d != nil {
			ids = append(ids, d.PlayerID)
		}
	}
	return ids
}

func refsContain(e model.GameEvent, playerID int64) bool {
	for _, id := range eventRefs(e) {
		if id == playerID {
			return true
		}
	}
	return false
}

// fakeEvents is an in-memory append-only EventRepository.
type fakeEvents struct {
	mu       sync.Mutex
	nextID   int64
	events   []model.GameEvent
	teams    map[int64]int64 // playerID -> teamID, for CountByTeam
	listWait time.Duration   // makes ListByPlayer behave like a slow history scan
}

func newFakeEvents() *fakeEvents { return &fakeEvents{teams: make(map[int64]int64)} }

func (f *fakeEvents) Append(_ context.Context, e model.GameEvent) (model.GameEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeEvents) ListByGame(_ context.Context, gameID int64) ([]model.GameEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.GameEvent
	for _, e := range f.events {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListByPlayer(ctx context.Context, playerID int64) ([]model.GameEvent, error) {
	f.mu.Lock()
	wait := f.listWait
	f.mu.Unlock()
	if wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.GameEvent
	for _, e := range f.events {
		if refsContain(e, playerID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	list, _ := f.ListByPlayer(ctx, playerID)
	return len(list), nil
}

func (f *fakeEvents) CountByTeam(_ context.Context, teamID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		for _, id := range eventRefs(e) {
			if f.teams[id] == teamID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeEvents) CountAll(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events), nil
}

var _ repository.EventRepository = (*fakeEvents)(nil)

type statKey struct {
	eventID  int64
	playerID int64
	statType model.StatType
}

// fakeGameStats is an in-memory GameStatRepository with the same idempotent
// insert semantics as the Postgres implementation.
type fakeGameStats struct {
	mu     sync.Mutex
	nextID int64
	rows   map[statKey]model.AtomicStat
	teams  map[int64]int64 // playerID -> teamID
}

func newFakeGameStats() *fakeGameStats {
	return &fakeGameStats{rows: make(map[statKey]model.AtomicStat), teams: make(map[int64]int64)}
}

func (f *fakeGameStats) Insert(_ context.Context, s model.AtomicStat) (model.AtomicStat, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := statKey{eventID: s.EventID, playerID: s.PlayerID, statType: s.StatType}
	if existing, ok := f.rows[k]; ok {
		return existing, false, nil
	}
	f.nextID++
	s.ID = f.nextID
	f.rows[k] = s
	return s, true, nil
}

func (f *fakeGameStats) ListByPlayer(_ context.Context, playerID int64) ([]model.AtomicStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AtomicStat
	for _, s := range f.rows {
		if s.PlayerID == playerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeGameStats) DeleteByPlayer(_ context.Context, playerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, s := range f.rows {
		if s.PlayerID == playerID {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeGameStats) CountByPlayer(_ context.Context, playerID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if s.PlayerID == playerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeGameStats) CountByTeam(_ context.Context, teamID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if f.teams[s.PlayerID] == teamID {
			n++
		}
	}
	return n, nil
}

func (f *fakeGameStats) CountAll(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

var _ repository.GameStatRepository = (*fakeGameStats)(nil)

type aggKey struct {
	playerID int64
	statType model.StatType
}

// fakePlayerStats is an in-memory PlayerStatRepository.
type fakePlayerStats struct {
	mu         sync.Mutex
	nextID     int64
	rows       map[aggKey]model.PlayerStat
	teams      map[int64]int64
	upsertErrs []error // consumed one per Upsert call, in order
}

func newFakePlayerStats() *fakePlayerStats {
	return &fakePlayerStats{rows: make(map[aggKey]model.PlayerStat), teams: make(map[int64]int64)}
}

// failUpserts queues errors for the next Upsert calls, simulating write
// races lost to a concurrent recompute.
func (f *fakePlayerStats) failUpserts(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertErrs = append(f.upsertErrs, errs...)
}

func (f *fakePlayerStats) Upsert(_ context.Context, s model.PlayerStat) (model.PlayerStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.upsertErrs) > 0 {
		err := f.upsertErrs[0]
		f.upsertErrs = f.upsertErrs[1:]
		if err != nil {
			return model.PlayerStat{}, err
		}
	}
	k := aggKey{playerID: s.PlayerID, statType: s.StatType}
	if existing, ok := f.rows[k]; ok {
		s.ID = existing.ID
	} else {
		f.nextID++
		s.ID = f.nextID
	}
	f.rows[k] = s
	return s, nil
}

func (f *fakePlayerStats) ListByPlayer(_ context.Context, playerID int64) ([]model.PlayerStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PlayerStat
	for _, s := range f.rows {
		if s.PlayerID == playerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePlayerStats) DeleteStale(_ context.Context, playerID int64, keep []model.StatType) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keepSet := make(map[model.StatType]bool, len(keep))
	for _, t := range keep {
		keepSet[t] = true
	}
	var n int64
	for k, s := range f.rows {
		if s.PlayerID == playerID && !keepSet[s.StatType] {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

func (f *fakePlayerStats) CountByPlayer(_ context.Context, playerID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if s.PlayerID == playerID {
			n++
		}
	}
	return n, nil
}

func (f *fakePlayerStats) CountByTeam(_ context.Context, teamID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if f.teams[s.PlayerID] == teamID {
			n++
		}
	}
	return n, nil
}

func (f *fakePlayerStats) CountAll(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

var _ repository.PlayerStatRepository = (*fakePlayerStats)(nil)

// fakeTx runs the unit of work without a real transaction.
type fakeTx struct{}

func (f *fakeTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var _ repository.TxManager = (*fakeTx)(nil)
