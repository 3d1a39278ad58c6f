package service

import (
	"context"
	"time"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

type eventService struct {
	events   repository.EventRepository
	games    repository.GameRepository
	recorder *Recorder
	tx       repository.TxManager
	log      zerolog.Logger
}

// NewEventService builds the entry point for live game tracking: append an
// event, then run it through the recorder synchronously.
func NewEventService(events repository.EventRepository, games repository.GameRepository, recorder *Recorder, tx repository.TxManager, logger zerolog.Logger) EventService {
	l := logger.With().Str("module", "service").Str("component", "event").Logger()
	return &eventService{events: events, games: games, recorder: recorder, tx: tx, log: l}
}

// SubmitEvent appends the event and records its atomic stats in one
// transaction. Role-level failures commit with the event (the gap stays
// visible and reprocessing can fill it later); dependency failures roll the
// whole submission back.
func (s *eventService) SubmitEvent(ctx context.Context, e model.GameEvent) (model.GameEvent, RecordResult, error) {
	start := time.Now()

	var ferrs []FieldError
	if e.GameID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "game_id", Message: "must be > 0"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.GameEvent{}, RecordResult{}, err
	}
	if _, err := s.games.GetByID(ctx, e.GameID); err != nil {
		return model.GameEvent{}, RecordResult{}, err
	}
	// Validate the shape before persisting anything; the recorder applies the
	// same check after append, but a malformed event must not enter the log.
	if err := validateEventShape(e); err != nil {
		return model.GameEvent{}, RecordResult{}, err
	}

	var stored model.GameEvent
	var result RecordResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		appended, err := s.events.Append(ctx, e)
		if err != nil {
			return err
		}
		stored = appended
		res, err := s.recorder.RecordFromEvent(ctx, appended)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Int64("game_id", e.GameID).Str("type", string(e.Type)).Msg("submit event failed")
		return model.GameEvent{}, RecordResult{}, err
	}

	s.log.Info().
		Dur("took", time.Since(start)).
		Int64("event_id", stored.ID).
		Str("type", string(stored.Type)).
		Int("stats", len(result.Stats)).
		Int("failed_roles", len(result.Failures)).
		Msg("event submitted")
	return stored, result, nil
}

func (s *eventService) ListEventsByGame(ctx context.Context, gameID int64) ([]model.GameEvent, error) {
	if gameID <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "game_id", Message: "must be > 0"}})
	}
	return s.events.ListByGame(ctx, gameID)
}

var _ EventService = (*eventService)(nil)
