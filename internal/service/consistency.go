package service

import (
	"context"

	"github.com/rinkstats/hockey-stats-service/internal/metrics"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

type consistencyService struct {
	events     repository.EventRepository
	atomic     repository.GameStatRepository
	aggregates repository.PlayerStatRepository
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewConsistencyReporter builds the read-only reporter that compares raw
// event counts against derived counts to surface pipeline gaps.
func NewConsistencyReporter(events repository.EventRepository, atomic repository.GameStatRepository, aggregates repository.PlayerStatRepository, m *metrics.Metrics, logger zerolog.Logger) ConsistencyReporter {
	l := logger.With().Str("module", "service").Str("component", "consistency").Logger()
	return &consistencyService{events: events, atomic: atomic, aggregates: aggregates, metrics: m, log: l}
}

// Report counts events, atomic rows and aggregates inside the scope and
// flags the two gap conditions: events with no recording, and recordings
// with no aggregation. It never mutates anything.
func (s *consistencyService) Report(ctx context.Context, scope ConsistencyScope) (model.ConsistencyReport, error) {
	var ferrs []FieldError
	switch scope.Kind {
	case ScopePlayer, ScopeTeam:
		if scope.ID <= 0 {
			ferrs = append(ferrs, FieldError{Field: "id", Message: "must be > 0 for player/team scope"})
		}
	case ScopeGlobal:
	default:
		ferrs = append(ferrs, FieldError{Field: "scope", Message: "must be player, team or global"})
	}
	if err := NewInvalidInputError(ferrs); err != nil {
		return model.ConsistencyReport{}, err
	}

	report := model.ConsistencyReport{Scope: scope.Kind, ScopeID: scope.ID}
	var err error

	switch scope.Kind {
	case ScopePlayer:
		if report.EventCount, err = s.events.CountByPlayer(ctx, scope.ID); err != nil {
			return model.ConsistencyReport{}, err
		}
		if report.AtomicStatCount, err = s.atomic.CountByPlayer(ctx, scope.ID); err != nil {
			return model.ConsistencyReport{}, err
		}
		if report.AggregateCount, err = s.aggregates.CountByPlayer(ctx, scope.ID); err != nil {
			return model.ConsistencyReport{}, err
		}
	case ScopeTeam:
		if report.EventCount, err = s.events.CountByTeam(ctx, scope.ID); err != nil {
			return model.ConsistencyReport{}, err
		}
		if report.AtomicStatCount, err = s.atomic.CountByTeam(ctx, scope.ID); err != nil {
			return model.ConsistencyReport{}, err
		}
		if report.AggregateCount, err = s.aggregates.CountByTeam(ctx, scope.ID); err != nil {
			return model.ConsistencyReport{}, err
		}
	case ScopeGlobal:
		if report.EventCount, err = s.events.CountAll(ctx); err != nil {
			return model.ConsistencyReport{}, err
		}
		if report.AtomicStatCount, err = s.atomic.CountAll(ctx); err != nil {
			return model.ConsistencyReport{}, err
		}
		if report.AggregateCount, err = s.aggregates.CountAll(ctx); err != nil {
			return model.ConsistencyReport{}, err
		}
	}

	report.RecordingGap = report.EventCount > 0 && report.AtomicStatCount == 0
	report.AggregationGap = report.AtomicStatCount > 0 && report.AggregateCount == 0
	if report.RecordingGap {
		s.metrics.ConsistencyGapsTotal.WithLabelValues("recording").Inc()
		s.log.Warn().Str("scope", scope.Kind).Int64("id", scope.ID).Msg("events present but no atomic stats recorded")
	}
	if report.AggregationGap {
		s.metrics.ConsistencyGapsTotal.WithLabelValues("aggregation").Inc()
		s.log.Warn().Str("scope", scope.Kind).Int64("id", scope.ID).Msg("atomic stats present but no aggregates computed")
	}
	return report, nil
}

var _ ConsistencyReporter = (*consistencyService)(nil)
