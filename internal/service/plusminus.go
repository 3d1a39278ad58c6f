package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

type plusMinusResolver struct {
	players repository.PlayerRepository
	games   repository.GameRepository
}

// NewPlusMinusResolver builds the team-alignment resolver backing on-ice
// plus/minus recording.
func NewPlusMinusResolver(players repository.PlayerRepository, games repository.GameRepository) Resolver {
	return &plusMinusResolver{players: players, games: games}
}

// Resolve returns +1 when the player's team scored and -1 when it was scored
// against. An unresolvable player team or game surfaces ErrUnknownAlignment;
// the caller must not substitute a zero-value stat.
func (r *plusMinusResolver) Resolve(ctx context.Context, gameID, playerID int64, scoringSide model.TeamSide) (int, error) {
	player, err := r.players.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("player %d: %w", playerID, ErrUnknownAlignment)
		}
		return 0, err
	}

	game, err := r.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("game %d: %w", gameID, ErrUnknownAlignment)
		}
		return 0, err
	}

	if player.TeamID != game.HomeTeamID && player.TeamID != game.AwayTeamID {
		return 0, fmt.Errorf("player %d team %d not in game %d: %w", playerID, player.TeamID, gameID, ErrUnknownAlignment)
	}

	isHome := player.TeamID == game.HomeTeamID
	playersSideScored := (isHome && scoringSide == model.SideHome) || (!isHome && scoringSide == model.SideAway)
	if playersSideScored {
		return 1, nil
	}
	return -1, nil
}

var _ Resolver = (*plusMinusResolver)(nil)
