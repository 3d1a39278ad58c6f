package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rinkstats/hockey-stats-service/internal/metrics"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

// Aggregator recomputes a player's per-stat-type totals from the full atomic
// stat history. Aggregates are disposable: every recompute derives them from
// scratch and overwrites whatever was there.
type Aggregator struct {
	atomic     repository.GameStatRepository
	aggregates repository.PlayerStatRepository
	tx         repository.TxManager
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

func NewAggregator(atomic repository.GameStatRepository, aggregates repository.PlayerStatRepository, tx repository.TxManager, m *metrics.Metrics, logger zerolog.Logger) *Aggregator {
	l := logger.With().Str("module", "service").Str("component", "aggregator").Logger()
	return &Aggregator{atomic: atomic, aggregates: aggregates, tx: tx, metrics: m, log: l}
}

type statGroup struct {
	value int
	games map[int64]struct{}
}

// Recompute rebuilds every aggregate row for the player. Values are signed
// sums so plus/minus nets out, and games played counts distinct game IDs per
// stat type. A player with no atomic rows gets an empty result and any
// leftover aggregate rows cleared; that is a valid terminal state, not an error.
func (a *Aggregator) Recompute(ctx context.Context, playerID int64) ([]model.PlayerStat, error) {
	if playerID <= 0 {
		return nil, NewInvalidInputError([]FieldError{{Field: "player_id", Message: "must be > 0"}})
	}

	out, err := a.recomputeOnce(ctx, playerID)
	if errors.Is(err, repository.ErrAlreadyExists) || errors.Is(err, repository.ErrConflict) {
		// Lost a first-insert race with a concurrent recompute. Both sides
		// derive the same values from the same table, so one retry settles it.
		a.log.Warn().Int64("player_id", playerID).Msg("aggregate write conflict, retrying once")
		out, err = a.recomputeOnce(ctx, playerID)
	}
	if err != nil {
		a.metrics.AggregateRecomputesTotal.WithLabelValues("failure").Inc()
		a.log.Error().Err(err).Int64("player_id", playerID).Msg("recompute failed")
		return nil, err
	}
	a.metrics.AggregateRecomputesTotal.WithLabelValues("success").Inc()
	return out, nil
}

func (a *Aggregator) recomputeOnce(ctx context.Context, playerID int64) ([]model.PlayerStat, error) {
	rows, err := a.atomic.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	groups := make(map[model.StatType]*statGroup, 8)
	for _, row := range rows {
		g, ok := groups[row.StatType]
		if !ok {
			g = &statGroup{games: make(map[int64]struct{}, 4)}
			groups[row.StatType] = g
		}
		g.value += row.Value
		g.games[row.GameID] = struct{}{}
	}

	// Stable order keeps the upsert sequence deterministic across reruns.
	types := make([]model.StatType, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	out := make([]model.PlayerStat, 0, len(types))
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, t := range types {
			g := groups[t]
			row, err := a.aggregates.Upsert(ctx, model.PlayerStat{
				PlayerID:    playerID,
				StatType:    t,
				Value:       g.value,
				GamesPlayed: len(g.games),
			})
			if err != nil {
				return err
			}
			out = append(out, row)
		}
		// Clear aggregates whose stat type lost all atomic backing.
		if _, err := a.aggregates.DeleteStale(ctx, playerID, types); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
