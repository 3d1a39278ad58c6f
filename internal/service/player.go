package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
	"github.com/rs/zerolog"
)

type playerService struct {
	players    repository.PlayerRepository
	teams      repository.TeamRepository
	aggregates repository.PlayerStatRepository
	log        zerolog.Logger
}

func NewPlayerService(players repository.PlayerRepository, teams repository.TeamRepository, aggregates repository.PlayerStatRepository, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{players: players, teams: teams, aggregates: aggregates, log: l}
}

func (s *playerService) CreatePlayer(ctx context.Context, teamID int64, firstName, lastName, position string) (model.Player, error) {
	start := time.Now()
	rawFirst, rawLast, rawPos := firstName, lastName, position

	// Normalize early so validation and persistence see canonical values.
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	position = normalizePosition(position)

	var ferrs []FieldError
	if teamID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "team_id", Message: "must be > 0"})
	}
	if firstName == "" {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "must not be empty"})
	} else if ln := len([]rune(firstName)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "first_name", Message: "length must be <= 50"})
	}
	if lastName == "" {
		ferrs = append(ferrs, FieldError{Field: "last_name", Message: "must not be empty"})
	} else if ln := len([]rune(lastName)); ln > 50 {
		ferrs = append(ferrs, FieldError{Field: "last_name", Message: "length must be <= 50"})
	}
	if !isValidPosition(position) { // after normalizePosition
		ferrs = append(ferrs, FieldError{Field: "position", Message: "must be one of C, LW, RW, D, G"})
	}

	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Str("fn_raw", rawFirst).Str("ln_raw", rawLast).Str("pos_raw", rawPos).Msg("player validation failed")
		return model.Player{}, err
	}

	// Existence check improves client UX vs deferring to FK violation.
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ferrs = append(ferrs, FieldError{Field: "team_id", Message: "team does not exist"})
			return model.Player{}, newInvalidInput(ferrs)
		}
		return model.Player{}, err
	}

	out, err := s.players.Create(ctx, model.Player{TeamID: teamID, FirstName: firstName, LastName: lastName, Position: position})
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", teamID).Str("fn", firstName).Str("ln", lastName).Msg("create player failed")
		return model.Player{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", out.ID).Msg("player created")
	return out, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int64) (model.Player, error) {
	if id <= 0 {
		return model.Player{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	return s.players.GetByID(ctx, id)
}

func (s *playerService) ListPlayersByTeam(ctx context.Context, teamID int64, page repository.Page) (repository.PageResult[model.Player], error) {
	if teamID <= 0 {
		return repository.PageResult[model.Player]{}, newInvalidInput([]FieldError{{Field: "team_id", Message: "must be > 0"}})
	}
	p := normalizePage(page)
	res, err := s.players.ListByTeam(ctx, teamID, p)
	if err != nil {
		s.log.Error().Err(err).Int64("team_id", teamID).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list players failed")
		return repository.PageResult[model.Player]{}, err
	}
	return res, nil
}

// PlayerAggregates returns the player's aggregate rows. An empty slice with
// a nil error means "no stats yet"; callers can tell that apart from a
// computation failure, which always carries an error.
func (s *playerService) PlayerAggregates(ctx context.Context, playerID int64) ([]model.PlayerStat, error) {
	if playerID <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, err
	}
	stats, err := s.aggregates.ListByPlayer(ctx, playerID)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", playerID).Msg("failed to list player aggregates")
		return nil, err
	}
	return stats, nil
}
