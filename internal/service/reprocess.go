package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rinkstats/hockey-stats-service/internal/metrics"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scope names for reprocessing runs and consistency reports.
const (
	ScopePlayer = "player"
	ScopeTeam   = "team"
	ScopeGlobal = "global"
)

type reprocessService struct {
	events      repository.EventRepository
	atomic      repository.GameStatRepository
	players     repository.PlayerRepository
	recorder    *Recorder
	aggregator  *Aggregator
	tx          repository.TxManager
	maxWorkers  int
	unitTimeout time.Duration
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewReprocessor builds the orchestrator that rebuilds derived stats from
// the event history, per player, per roster, or across the whole dataset.
func NewReprocessor(
	events repository.EventRepository,
	atomic repository.GameStatRepository,
	players repository.PlayerRepository,
	recorder *Recorder,
	aggregator *Aggregator,
	tx repository.TxManager,
	maxWorkers int,
	unitTimeout time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) Reprocessor {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	l := logger.With().Str("module", "service").Str("component", "reprocessor").Logger()
	return &reprocessService{
		events:      events,
		atomic:      atomic,
		players:     players,
		recorder:    recorder,
		aggregator:  aggregator,
		tx:          tx,
		maxWorkers:  maxWorkers,
		unitTimeout: unitTimeout,
		metrics:     m,
		log:         l,
	}
}

// ReprocessPlayer rebuilds a single player's atomic rows from the full event
// history and recomputes their aggregates. The delete-and-replay runs in one
// transaction so readers never observe a half-rebuilt history. Replaying the
// same history twice yields identical aggregates.
func (s *reprocessService) ReprocessPlayer(ctx context.Context, playerID int64) ([]model.PlayerStat, error) {
	if playerID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}

	start := time.Now()
	var roleFailures []RoleFailure
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.atomic.DeleteByPlayer(ctx, playerID); err != nil {
			return fmt.Errorf("clear atomic stats: %w", err)
		}
		events, err := s.events.ListByPlayer(ctx, playerID)
		if err != nil {
			return fmt.Errorf("load event history: %w", err)
		}
		for _, e := range events {
			res, err := s.recorder.RecordFromEvent(ctx, e)
			if err != nil {
				return fmt.Errorf("replay event %d: %w", e.ID, err)
			}
			// Only failures for the player being rebuilt fail this unit;
			// other players' roles are rebuilt by their own reprocess.
			for _, f := range res.Failures {
				if f.PlayerID == playerID {
					roleFailures = append(roleFailures, f)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(roleFailures) > 0 {
		// A missing stat must stay visible, not be papered over by aggregation.
		sentinel := ErrUnknownAlignment
		if roleFailures[0].Reason == reasonInvalidPlayer {
			sentinel = ErrInvalidPlayerRef
		}
		return nil, fmt.Errorf("player %d: %d role(s) failed to record (first: %s): %w",
			playerID, len(roleFailures), roleFailures[0].Reason, sentinel)
	}

	stats, err := s.aggregator.Recompute(ctx, playerID)
	if err != nil {
		return nil, err
	}
	s.metrics.ReprocessUnitDuration.Observe(time.Since(start).Seconds())
	s.log.Info().Int64("player_id", playerID).Int("aggregates", len(stats)).Dur("took", time.Since(start)).Msg("player reprocessed")
	return stats, nil
}

// ReprocessTeam rebuilds every roster member. One player's failure lands in
// the outcome map without aborting siblings.
func (s *reprocessService) ReprocessTeam(ctx context.Context, teamID int64) (*ReprocessRun, error) {
	if teamID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	ids, err := s.players.ListIDsByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return s.runBatch(ctx, ScopeTeam, ids), nil
}

// ReprocessAll rebuilds every player in the system.
func (s *reprocessService) ReprocessAll(ctx context.Context) (*ReprocessRun, error) {
	ids, err := s.players.ListAllIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.runBatch(ctx, ScopeGlobal, ids), nil
}

// runBatch fans per-player units out over a bounded worker group.
// Cancellation is cooperative: the context is checked before each unit is
// scheduled, and in-flight units observe it through their own deadline ctx.
func (s *reprocessService) runBatch(ctx context.Context, scope string, playerIDs []int64) *ReprocessRun {
	run := &ReprocessRun{
		ID:        uuid.NewString(),
		Scope:     scope,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
		Outcomes:  make(map[int64]PlayerOutcome, len(playerIDs)),
	}

	var mu sync.Mutex
	record := func(playerID int64, o PlayerOutcome) {
		mu.Lock()
		run.Outcomes[playerID] = o
		mu.Unlock()
	}

	g := new(errgroup.Group)
	g.SetLimit(s.maxWorkers)

	for _, playerID := range playerIDs {
		if err := ctx.Err(); err != nil {
			record(playerID, PlayerOutcome{Status: OutcomeFailure, Error: err.Error()})
			continue
		}
		g.Go(func() error {
			unitCtx := ctx
			if s.unitTimeout > 0 {
				var cancel context.CancelFunc
				unitCtx, cancel = context.WithTimeout(ctx, s.unitTimeout)
				defer cancel()
			}
			stats, err := s.ReprocessPlayer(unitCtx, playerID)
			if err != nil {
				record(playerID, PlayerOutcome{Status: OutcomeFailure, Error: err.Error()})
				return nil // sibling units keep going
			}
			record(playerID, PlayerOutcome{Status: OutcomeSuccess, Stats: len(stats)})
			return nil
		})
	}
	_ = g.Wait()

	run.FinishedAt = time.Now().UTC()
	run.Status = RunStatusCompleted
	for _, o := range run.Outcomes {
		if o.Status == OutcomeFailure {
			run.Status = RunStatusCompletedWithErrors
			break
		}
	}
	s.metrics.ReprocessRunsTotal.WithLabelValues(scope, run.Status).Inc()
	s.log.Info().
		Str("run_id", run.ID).
		Str("scope", scope).
		Str("status", run.Status).
		Int("players", len(playerIDs)).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("reprocess run finished")
	return run
}

var _ Reprocessor = (*reprocessService)(nil)
