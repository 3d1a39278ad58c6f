package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rinkstats/hockey-stats-service/internal/service"
)

func newAggregator(atomic *fakeGameStats, aggregates *fakePlayerStats) *service.Aggregator {
	return service.NewAggregator(atomic, aggregates, &fakeTx{}, newMetrics(), zerolog.New(io.Discard))
}

func seedAtomic(t *testing.T, stats *fakeGameStats, rows []model.AtomicStat) {
	t.Helper()
	for i, s := range rows {
		if s.EventID == 0 {
			s.EventID = int64(1000 + i)
		}
		if _, _, err := stats.Insert(context.Background(), s); err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
	}
}

func aggByType(list []model.PlayerStat, st model.StatType) (model.PlayerStat, bool) {
	for _, s := range list {
		if s.StatType == st {
			return s, true
		}
	}
	return model.PlayerStat{}, false
}

func TestAggregator_SignedSumsNetOut(t *testing.T) {
	atomic := newFakeGameStats()
	aggregates := newFakePlayerStats()
	agg := newAggregator(atomic, aggregates)
	const pid = int64(1)

	seedAtomic(t, atomic, []model.AtomicStat{
		{GameID: 1, PlayerID: pid, StatType: model.StatPlusMinus, Value: 1},
		{GameID: 1, PlayerID: pid, StatType: model.StatPlusMinus, Value: 1},
		{GameID: 2, PlayerID: pid, StatType: model.StatPlusMinus, Value: -1},
	})

	out, err := agg.Recompute(context.Background(), pid)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	pm, ok := aggByType(out, model.StatPlusMinus)
	if !ok {
		t.Fatalf("missing plus/minus aggregate: %+v", out)
	}
	if pm.Value != 1 {
		t.Fatalf("expected net +1, got %d", pm.Value)
	}
	if pm.GamesPlayed != 2 {
		t.Fatalf("expected 2 distinct games, got %d", pm.GamesPlayed)
	}
}

func TestAggregator_GamesPlayedCountsDistinctGames(t *testing.T) {
	atomic := newFakeGameStats()
	aggregates := newFakePlayerStats()
	agg := newAggregator(atomic, aggregates)
	const pid = int64(2)

	seedAtomic(t, atomic, []model.AtomicStat{
		{GameID: 10, PlayerID: pid, StatType: model.StatGoals, Value: 1},
		{GameID: 10, PlayerID: pid, StatType: model.StatGoals, Value: 1},
		{GameID: 10, PlayerID: pid, StatType: model.StatGoals, Value: 1},
		{GameID: 11, PlayerID: pid, StatType: model.StatHits, Value: 1},
	})

	out, err := agg.Recompute(context.Background(), pid)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	goals, _ := aggByType(out, model.StatGoals)
	if goals.Value != 3 || goals.GamesPlayed != 1 {
		t.Fatalf("goals: got value=%d games=%d, want 3/1", goals.Value, goals.GamesPlayed)
	}
	hits, _ := aggByType(out, model.StatHits)
	if hits.Value != 1 || hits.GamesPlayed != 1 {
		t.Fatalf("hits: got value=%d games=%d, want 1/1", hits.Value, hits.GamesPlayed)
	}
}

func TestAggregator_EmptyHistoryClearsAggregates(t *testing.T) {
	atomic := newFakeGameStats()
	aggregates := newFakePlayerStats()
	agg := newAggregator(atomic, aggregates)
	const pid = int64(3)
	ctx := context.Background()

	// Leftover aggregate from a previous run whose atomic rows are gone.
	if _, err := aggregates.Upsert(ctx, model.PlayerStat{PlayerID: pid, StatType: model.StatGoals, Value: 9, GamesPlayed: 4}); err != nil {
		t.Fatalf("seed stale aggregate: %v", err)
	}

	out, err := agg.Recompute(ctx, pid)
	if err != nil {
		t.Fatalf("recompute with empty history must not error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no aggregates, got %+v", out)
	}
	left, err := aggregates.ListByPlayer(ctx, pid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("stale aggregates should be cleared, got %+v", left)
	}
}

func TestAggregator_RecomputeIsDeterministic(t *testing.T) {
	atomic := newFakeGameStats()
	aggregates := newFakePlayerStats()
	agg := newAggregator(atomic, aggregates)
	const pid = int64(4)
	ctx := context.Background()

	seedAtomic(t, atomic, []model.AtomicStat{
		{GameID: 1, PlayerID: pid, StatType: model.StatGoals, Value: 1},
		{GameID: 2, PlayerID: pid, StatType: model.StatAssists, Value: 1},
		{GameID: 2, PlayerID: pid, StatType: model.StatPlusMinus, Value: -1},
	})

	first, err := agg.Recompute(ctx, pid)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := agg.Recompute(ctx, pid)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("recompute not stable: %d vs %d rows", len(first), len(second))
	}
	for i := range first {
		if first[i].StatType != second[i].StatType || first[i].Value != second[i].Value || first[i].GamesPlayed != second[i].GamesPlayed {
			t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAggregator_RetriesOnceOnWriteConflict(t *testing.T) {
	atomic := newFakeGameStats()
	aggregates := newFakePlayerStats()
	agg := newAggregator(atomic, aggregates)
	const pid = int64(5)
	ctx := context.Background()

	seedAtomic(t, atomic, []model.AtomicStat{
		{GameID: 1, PlayerID: pid, StatType: model.StatGoals, Value: 1},
	})
	// First upsert loses the insert race; the retry sees a clean queue.
	aggregates.failUpserts(repository.ErrAlreadyExists)

	out, err := agg.Recompute(ctx, pid)
	if err != nil {
		t.Fatalf("transient conflict should recover via retry: %v", err)
	}
	goals, ok := aggByType(out, model.StatGoals)
	if !ok || goals.Value != 1 {
		t.Fatalf("expected goals aggregate after retry, got %+v", out)
	}
	stored, err := aggregates.ListByPlayer(ctx, pid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored aggregate, got %+v", stored)
	}
}

func TestAggregator_GivesUpAfterSecondConflict(t *testing.T) {
	atomic := newFakeGameStats()
	aggregates := newFakePlayerStats()
	agg := newAggregator(atomic, aggregates)
	const pid = int64(6)
	ctx := context.Background()

	seedAtomic(t, atomic, []model.AtomicStat{
		{GameID: 1, PlayerID: pid, StatType: model.StatGoals, Value: 1},
	})
	// Both the original attempt and the single retry conflict.
	aggregates.failUpserts(repository.ErrAlreadyExists, repository.ErrAlreadyExists)

	_, err := agg.Recompute(ctx, pid)
	if !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("expected conflict to surface after one retry, got %v", err)
	}
}

func TestAggregator_RejectsBadPlayerID(t *testing.T) {
	agg := newAggregator(newFakeGameStats(), newFakePlayerStats())
	_, err := agg.Recompute(context.Background(), 0)
	if !serviceErrIsInvalid(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
