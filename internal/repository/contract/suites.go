// Package contract holds reusable repository contract suites. Any storage
// implementation can run them through small factory functions, so Postgres and
// future backends are held to the same behavior.
package contract

import (
	"context"
	"testing"
	"time"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

type TeamFactory func(t *testing.T) (repository.TeamRepository, func())

type PlayerFactory func(t *testing.T) (repo repository.PlayerRepository, createTeam func(ctx context.Context, name string) (int64, error), cleanup func())

type GameFactory func(t *testing.T) (repo repository.GameRepository, createTeam func(ctx context.Context, name string) (int64, error), cleanup func())

// EventFixture seeds a game with one player per side and exposes their ids.
type EventFixture struct {
	GameID       int64
	HomePlayerID int64
	AwayPlayerID int64
}

type EventFactory func(t *testing.T) (repo repository.EventRepository, seed func(ctx context.Context) (EventFixture, error), cleanup func())

type GameStatFactory func(t *testing.T) (repo repository.GameStatRepository, events repository.EventRepository, seed func(ctx context.Context) (EventFixture, error), cleanup func())

type PlayerStatFactory func(t *testing.T) (repo repository.PlayerStatRepository, mkPlayer func(ctx context.Context) (int64, error), cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, teams repository.TeamRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func RunTeamRepositoryContract(t *testing.T, makeRepo TeamFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Team{Name: "Ice Hawks"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != created.ID || got.Name != created.Name {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			name := "T-" + string(rune('A'+i))
			if _, err := repo.Create(ctx, model.Team{Name: name}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
	})

	t.Run("create_duplicate_name_conflict", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Team{Name: "Dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, model.Team{Name: "Dup"})
		if err == nil || err != repository.ErrAlreadyExists {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, err := mkTeam(ctx, "Polar Bears")
		if err != nil {
			t.Fatalf("seed team: %v", err)
		}
		created, err := repo.Create(ctx, model.Player{TeamID: teamID, FirstName: "Erik", LastName: "Lind", Position: "C"})
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != created.ID || got.TeamID != teamID {
			t.Fatalf("mismatch: %+v", got)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 42424242)
		if err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_ids_by_team", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		teamID, err := mkTeam(ctx, "Roster")
		if err != nil {
			t.Fatalf("seed team: %v", err)
		}
		want := make(map[int64]bool)
		for i := 0; i < 4; i++ {
			p, err := repo.Create(ctx, model.Player{TeamID: teamID, FirstName: "P", LastName: string(rune('A' + i)), Position: "D"})
			if err != nil {
				t.Fatalf("seed player %d: %v", i, err)
			}
			want[p.ID] = true
		}
		ids, err := repo.ListIDsByTeam(ctx, teamID)
		if err != nil {
			t.Fatalf("list ids: %v", err)
		}
		if len(ids) != len(want) {
			t.Fatalf("expected %d ids, got %d", len(want), len(ids))
		}
		for _, id := range ids {
			if !want[id] {
				t.Fatalf("unexpected id %d", id)
			}
		}
	})

	t.Run("create_fk_violation_conflict", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Create(context.Background(), model.Player{TeamID: 9999999, FirstName: "X", LastName: "Y", Position: "G"})
		if err == nil || err != repository.ErrConflict {
			t.Fatalf("expected ErrConflict on FK violation, got %v", err)
		}
	})
}

func RunGameRepositoryContract(t *testing.T, makeRepo GameFactory) {
	t.Helper()

	t.Run("create_get_list", func(t *testing.T) {
		repo, mkTeam, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		homeID, _ := mkTeam(ctx, "Home")
		awayID, _ := mkTeam(ctx, "Away")
		g, err := repo.Create(ctx, model.Game{Date: time.Now().UTC(), HomeTeamID: homeID, AwayTeamID: awayID, Status: "scheduled"})
		if err != nil {
			t.Fatalf("create game: %v", err)
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != g.ID || got.HomeTeamID != homeID || got.AwayTeamID != awayID {
			t.Fatalf("mismatch: %+v", got)
		}
		page, err := repo.List(ctx, repository.Page{Limit: 10, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page.Items) < 1 || page.Total < 1 {
			t.Fatalf("unexpected list: %#v", page)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 7777777)
		if err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunEventRepositoryContract(t *testing.T, makeRepo EventFactory) {
	t.Helper()

	t.Run("append_and_list_by_game", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		fx, err := seed(ctx)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		e := model.GameEvent{
			GameID:   fx.GameID,
			Type:     model.EventHit,
			Period:   1,
			TeamSide: model.SideHome,
			Details:  model.EventDetails{Hit: &model.HitDetails{PlayerID: fx.HomePlayerID}},
		}
		appended, err := repo.Append(ctx, e)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if appended.ID == 0 {
			t.Fatalf("expected assigned id")
		}
		list, err := repo.ListByGame(ctx, fx.GameID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].ID != appended.ID {
			t.Fatalf("unexpected list: %#v", list)
		}
		if list[0].Details.Hit == nil || list[0].Details.Hit.PlayerID != fx.HomePlayerID {
			t.Fatalf("details did not round-trip: %#v", list[0].Details)
		}
	})

	t.Run("list_by_player_covers_all_roles", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		fx, err := seed(ctx)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		// The away player appears only inside the on-ice list of a home goal.
		goal := model.GameEvent{
			GameID:   fx.GameID,
			Type:     model.EventGoal,
			Period:   2,
			TeamSide: model.SideHome,
			Details: model.EventDetails{Goal: &model.GoalDetails{
				ScorerID: fx.HomePlayerID,
				OnIce:    []int64{fx.HomePlayerID, fx.AwayPlayerID},
			}},
		}
		if _, err := repo.Append(ctx, goal); err != nil {
			t.Fatalf("append: %v", err)
		}
		list, err := repo.ListByPlayer(ctx, fx.AwayPlayerID)
		if err != nil {
			t.Fatalf("list by player: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected on-ice presence to be queryable, got %d events", len(list))
		}
		n, err := repo.CountByPlayer(ctx, fx.AwayPlayerID)
		if err != nil || n != 1 {
			t.Fatalf("count by player: n=%d err=%v", n, err)
		}
	})
}

func RunGameStatRepositoryContract(t *testing.T, makeRepo GameStatFactory) {
	t.Helper()

	t.Run("insert_is_idempotent", func(t *testing.T) {
		repo, events, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		fx, err := seed(ctx)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ev, err := events.Append(ctx, model.GameEvent{
			GameID:   fx.GameID,
			Type:     model.EventHit,
			Period:   1,
			TeamSide: model.SideHome,
			Details:  model.EventDetails{Hit: &model.HitDetails{PlayerID: fx.HomePlayerID}},
		})
		if err != nil {
			t.Fatalf("append event: %v", err)
		}
		s := model.AtomicStat{EventID: ev.ID, GameID: fx.GameID, PlayerID: fx.HomePlayerID, StatType: model.StatHits, Period: 1, Value: 1}
		_, inserted, err := repo.Insert(ctx, s)
		if err != nil || !inserted {
			t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
		}
		_, inserted, err = repo.Insert(ctx, s)
		if err != nil {
			t.Fatalf("second insert: %v", err)
		}
		if inserted {
			t.Fatalf("expected duplicate insert to be skipped")
		}
		list, err := repo.ListByPlayer(ctx, fx.HomePlayerID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected exactly one row, got %d", len(list))
		}
	})

	t.Run("delete_by_player", func(t *testing.T) {
		repo, events, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		fx, err := seed(ctx)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ev, err := events.Append(ctx, model.GameEvent{
			GameID:   fx.GameID,
			Type:     model.EventShot,
			Period:   1,
			TeamSide: model.SideHome,
			Details:  model.EventDetails{Shot: &model.ShotDetails{PlayerID: fx.HomePlayerID}},
		})
		if err != nil {
			t.Fatalf("append event: %v", err)
		}
		if _, _, err := repo.Insert(ctx, model.AtomicStat{EventID: ev.ID, GameID: fx.GameID, PlayerID: fx.HomePlayerID, StatType: model.StatShots, Period: 1, Value: 1}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		n, err := repo.DeleteByPlayer(ctx, fx.HomePlayerID)
		if err != nil || n != 1 {
			t.Fatalf("delete: n=%d err=%v", n, err)
		}
		cnt, err := repo.CountByPlayer(ctx, fx.HomePlayerID)
		if err != nil || cnt != 0 {
			t.Fatalf("count after delete: n=%d err=%v", cnt, err)
		}
	})
}

func RunPlayerStatRepositoryContract(t *testing.T, makeRepo PlayerStatFactory) {
	t.Helper()

	t.Run("upsert_and_list", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		pid, err := mkPlayer(ctx)
		if err != nil {
			t.Fatalf("mkPlayer: %v", err)
		}
		s1, err := repo.Upsert(ctx, model.PlayerStat{PlayerID: pid, StatType: model.StatGoals, Value: 3, GamesPlayed: 2})
		if err != nil {
			t.Fatalf("upsert1: %v", err)
		}
		if s1.Value != 3 {
			t.Fatalf("unexpected value: %d", s1.Value)
		}
		s2, err := repo.Upsert(ctx, model.PlayerStat{PlayerID: pid, StatType: model.StatGoals, Value: 5, GamesPlayed: 3})
		if err != nil {
			t.Fatalf("upsert2: %v", err)
		}
		if s2.Value != 5 || s2.GamesPlayed != 3 {
			t.Fatalf("upsert didn't update: %+v", s2)
		}
		list, err := repo.ListByPlayer(ctx, pid)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 aggregate, got %d", len(list))
		}
	})

	t.Run("delete_stale", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		pid, err := mkPlayer(ctx)
		if err != nil {
			t.Fatalf("mkPlayer: %v", err)
		}
		if _, err := repo.Upsert(ctx, model.PlayerStat{PlayerID: pid, StatType: model.StatGoals, Value: 1, GamesPlayed: 1}); err != nil {
			t.Fatalf("seed goals: %v", err)
		}
		if _, err := repo.Upsert(ctx, model.PlayerStat{PlayerID: pid, StatType: model.StatHits, Value: 4, GamesPlayed: 1}); err != nil {
			t.Fatalf("seed hits: %v", err)
		}
		n, err := repo.DeleteStale(ctx, pid, []model.StatType{model.StatGoals})
		if err != nil || n != 1 {
			t.Fatalf("delete stale: n=%d err=%v", n, err)
		}
		list, err := repo.ListByPlayer(ctx, pid)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].StatType != model.StatGoals {
			t.Fatalf("expected only goals to survive, got %#v", list)
		}
	})

	t.Run("list_empty_ok", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		pid, err := mkPlayer(ctx)
		if err != nil {
			t.Fatalf("mkPlayer: %v", err)
		}
		list, err := repo.ListByPlayer(ctx, pid)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 0 {
			t.Fatalf("expected empty list, got %d", len(list))
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxCommit"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, teams, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := assertErr("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := teams.Create(ctx, model.Team{Name: "TxRollback"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if err == nil || err.Error() != errMarker.Error() {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := teams.GetByID(ctx, createdID); err == nil || err != repository.ErrNotFound {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// assertErr builds a sentinel error without importing errors to keep helpers local.
func assertErr(msg string) error { return &sentinel{msg} }

type sentinel struct{ s string }

func (e *sentinel) Error() string { return e.s }
