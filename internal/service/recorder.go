package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rinkstats/hockey-stats-service/internal/metrics"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

// Penalty minutes by severity.
const (
	minorPenaltyMinutes = 2
	majorPenaltyMinutes = 5
)

// Role names used in failure reports.
const (
	roleScorer          = "scorer"
	rolePrimaryAssist   = "primary_assist"
	roleSecondaryAssist = "secondary_assist"
	roleOnIce           = "on_ice"
	rolePenalized       = "penalized"
	roleShooter         = "shooter"
	roleGoalie          = "goalie"
	roleHitter          = "hitter"
	roleFaceoff         = "faceoff"
)

const (
	reasonInvalidPlayer    = "invalid_player_reference"
	reasonUnknownAlignment = "unknown_team_alignment"
)

// Recorder translates one game event into atomic stat rows. Each role is
// validated independently: a bad reference fails that role only, the rest of
// the event still records, and every failure is reported back.
type Recorder struct {
	stats    repository.GameStatRepository
	players  repository.PlayerRepository
	resolver Resolver
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewRecorder(stats repository.GameStatRepository, players repository.PlayerRepository, resolver Resolver, m *metrics.Metrics, logger zerolog.Logger) *Recorder {
	l := logger.With().Str("module", "service").Str("component", "recorder").Logger()
	return &Recorder{stats: stats, players: players, resolver: resolver, metrics: m, log: l}
}

// emission is one pending atomic stat for one role of one event.
type emission struct {
	role     string
	playerID int64
	statType model.StatType
	value    int
	detail   string
}

// RecordFromEvent derives and persists the atomic stats for a single event.
// The event itself is never mutated. Inserts are idempotent on
// (event, player, stat type); a replayed emission counts as a skip.
func (r *Recorder) RecordFromEvent(ctx context.Context, e model.GameEvent) (RecordResult, error) {
	if err := validateEvent(e); err != nil {
		return RecordResult{}, err
	}

	var res RecordResult

	emissions, err := r.planEmissions(ctx, e, &res)
	if err != nil {
		return RecordResult{}, err
	}

	for _, em := range emissions {
		ok, err := r.playerKnown(ctx, em.playerID)
		if err != nil {
			return RecordResult{}, err
		}
		if !ok {
			r.failRole(&res, em.role, em.playerID, reasonInvalidPlayer)
			continue
		}

		stat := model.AtomicStat{
			EventID:  e.ID,
			GameID:   e.GameID,
			PlayerID: em.playerID,
			StatType: em.statType,
			Period:   e.Period,
			Value:    em.value,
			Detail:   em.detail,
		}
		written, inserted, err := r.stats.Insert(ctx, stat)
		if err != nil {
			return RecordResult{}, fmt.Errorf("insert %s for player %d: %w", em.statType, em.playerID, err)
		}
		if !inserted {
			res.Skipped++
			r.metrics.AtomicStatsSkippedTotal.WithLabelValues(string(em.statType)).Inc()
			continue
		}
		res.Stats = append(res.Stats, written)
		r.metrics.AtomicStatsWrittenTotal.WithLabelValues(string(em.statType)).Inc()
	}

	r.metrics.EventsRecordedTotal.WithLabelValues(string(e.Type)).Inc()
	r.log.Debug().
		Int64("event_id", e.ID).
		Str("type", string(e.Type)).
		Int("recorded", len(res.Stats)).
		Int("skipped", res.Skipped).
		Int("failed_roles", len(res.Failures)).
		Msg("event recorded")
	return res, nil
}

// planEmissions expands the event's typed details into per-role emissions.
// Plus/minus resolution happens here so an alignment failure is attributed
// to the on-ice role it belongs to.
func (r *Recorder) planEmissions(ctx context.Context, e model.GameEvent, res *RecordResult) ([]emission, error) {
	var out []emission

	switch e.Type {
	case model.EventGoal:
		d := e.Details.Goal
		out = append(out, emission{role: roleScorer, playerID: d.ScorerID, statType: model.StatGoals, value: 1})
		if d.PrimaryAssistID != nil {
			out = append(out, emission{role: rolePrimaryAssist, playerID: *d.PrimaryAssistID, statType: model.StatAssists, value: 1, detail: "primary"})
		}
		if d.SecondaryAssistID != nil {
			out = append(out, emission{role: roleSecondaryAssist, playerID: *d.SecondaryAssistID, statType: model.StatAssists, value: 1, detail: "secondary"})
		}
		for _, playerID := range d.OnIce {
			value, err := r.resolver.Resolve(ctx, e.GameID, playerID, e.TeamSide)
			if err != nil {
				if errors.Is(err, ErrUnknownAlignment) {
					r.failRole(res, roleOnIce, playerID, reasonUnknownAlignment)
					continue
				}
				return nil, err
			}
			detail := "plus"
			if value < 0 {
				detail = "minus"
			}
			out = append(out, emission{role: roleOnIce, playerID: playerID, statType: model.StatPlusMinus, value: value, detail: detail})
		}

	case model.EventPenalty:
		d := e.Details.Penalty
		minutes := minorPenaltyMinutes
		if d.Severity == model.PenaltyMajor {
			minutes = majorPenaltyMinutes
		}
		out = append(out, emission{role: rolePenalized, playerID: d.PlayerID, statType: model.StatPenalties, value: minutes})

	case model.EventShot:
		d := e.Details.Shot
		statType := model.StatShots
		if d.Against {
			statType = model.StatShotsAgainst
		}
		out = append(out, emission{role: roleShooter, playerID: d.PlayerID, statType: statType, value: 1})
		if d.Against && d.Saved && d.GoalieID != nil {
			out = append(out, emission{role: roleGoalie, playerID: *d.GoalieID, statType: model.StatSaves, value: 1})
		}

	case model.EventHit:
		out = append(out, emission{role: roleHitter, playerID: e.Details.Hit.PlayerID, statType: model.StatHits, value: 1})

	case model.EventFaceoff:
		d := e.Details.Faceoff
		statType := model.StatFaceoffLosses
		if d.Won {
			statType = model.StatFaceoffWins
		}
		out = append(out, emission{role: roleFaceoff, playerID: d.PlayerID, statType: statType, value: 1})
	}

	return out, nil
}

func (r *Recorder) playerKnown(ctx context.Context, playerID int64) (bool, error) {
	if playerID <= 0 {
		return false, nil
	}
	ok, err := r.players.Exists(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("player %d existence check: %w", playerID, err)
	}
	return ok, nil
}

func (r *Recorder) failRole(res *RecordResult, role string, playerID int64, reason string) {
	res.Failures = append(res.Failures, RoleFailure{Role: role, PlayerID: playerID, Reason: reason})
	r.metrics.RoleFailuresTotal.WithLabelValues(reason).Inc()
	r.log.Warn().Str("role", role).Int64("player_id", playerID).Str("reason", reason).Msg("role not recorded")
}

// validateEvent requires a persisted event with a valid shape.
func validateEvent(e model.GameEvent) error {
	if e.ID <= 0 {
		return NewInvalidInputError([]FieldError{{Field: "id", Message: "event must be persisted before recording"}})
	}
	return validateEventShape(e)
}

// validateEventShape checks the details variant matches the event type and
// the scalar fields are sane. Usable before the event has an ID.
func validateEventShape(e model.GameEvent) error {
	var ferrs []FieldError
	if e.GameID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "game_id", Message: "must be > 0"})
	}
	if e.Period <= 0 {
		ferrs = append(ferrs, FieldError{Field: "period", Message: "must be > 0"})
	}
	if e.TeamSide != model.SideHome && e.TeamSide != model.SideAway {
		ferrs = append(ferrs, FieldError{Field: "team_side", Message: "must be home or away"})
	}

	var detail bool
	switch e.Type {
	case model.EventGoal:
		detail = e.Details.Goal != nil
	case model.EventPenalty:
		detail = e.Details.Penalty != nil
	case model.EventShot:
		detail = e.Details.Shot != nil
	case model.EventHit:
		detail = e.Details.Hit != nil
	case model.EventFaceoff:
		detail = e.Details.Faceoff != nil
	default:
		ferrs = append(ferrs, FieldError{Field: "type", Message: "unknown event type"})
	}
	if !detail && isKnownEventType(e.Type) {
		ferrs = append(ferrs, FieldError{Field: "details", Message: "details must match event type"})
	}

	return NewInvalidInputError(ferrs)
}

func isKnownEventType(t model.EventType) bool {
	switch t {
	case model.EventGoal, model.EventPenalty, model.EventShot, model.EventHit, model.EventFaceoff:
		return true
	default:
		return false
	}
}
