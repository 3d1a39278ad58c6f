package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

type eventRepository struct{ pool *pgxpool.Pool }

func NewEventRepository(pool *pgxpool.Pool) repository.EventRepository {
	return &eventRepository{pool: pool}
}

// Append inserts an immutable event row. The details payload is stored as
// JSONB, and every referenced player ID is denormalized into player_ids so
// by-player replay queries stay a plain array match instead of a JSONB crawl.
func (r *eventRepository) Append(ctx context.Context, e model.GameEvent) (model.GameEvent, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameEvent{}, err
	}
	payload, err := json.Marshal(e.Details)
	if err != nil {
		return model.GameEvent{}, fmt.Errorf("marshal event details: %w", err)
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO game_events (game_id, type, period, team_side, details, player_ids)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, game_id, type, period, team_side, details, created_at`,
		e.GameID, string(e.Type), e.Period, string(e.TeamSide), payload, referencedPlayerIDs(e.Details),
	)
	return scanEvent(row)
}

func (r *eventRepository) ListByGame(ctx context.Context, gameID int64) ([]model.GameEvent, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, game_id, type, period, team_side, details, created_at
		 FROM game_events WHERE game_id = $1 ORDER BY created_at, id`, gameID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListByPlayer(ctx context.Context, playerID int64) ([]model.GameEvent, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, game_id, type, period, team_side, details, created_at
		 FROM game_events WHERE $1 = ANY(player_ids) ORDER BY created_at, id`, playerID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM game_events WHERE $1 = ANY(player_ids)`, playerID)
}

func (r *eventRepository) CountByTeam(ctx context.Context, teamID int64) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM game_events e
		 JOIN games g ON e.game_id = g.id
		 WHERE g.home_team_id = $1 OR g.away_team_id = $1`, teamID)
}

func (r *eventRepository) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM game_events`)
}

func (r *eventRepository) count(ctx context.Context, sql string, args ...any) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int
	exec := getQ(ctx, r.pool)
	if err := exec.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

func scanEvent(row pgx.Row) (model.GameEvent, error) {
	var out model.GameEvent
	var typ, side string
	var payload []byte
	if err := row.Scan(&out.ID, &out.GameID, &typ, &out.Period, &side, &payload, &out.CreatedAt); err != nil {
		return model.GameEvent{}, repository.MapPgError(err)
	}
	out.Type = model.EventType(typ)
	out.TeamSide = model.TeamSide(side)
	if err := json.Unmarshal(payload, &out.Details); err != nil {
		return model.GameEvent{}, fmt.Errorf("unmarshal event details: %w", err)
	}
	return out, nil
}

func scanEvents(rows pgx.Rows) ([]model.GameEvent, error) {
	res := make([]model.GameEvent, 0, 16)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// referencedPlayerIDs flattens every player reference out of the details
// union, regardless of role.
func referencedPlayerIDs(d model.EventDetails) []int64 {
	ids := make([]int64, 0, 8)
	seen := make(map[int64]struct{}, 8)
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	switch {
	case d.Goal != nil:
		add(d.Goal.ScorerID)
		if d.Goal.PrimaryAssistID != nil {
			add(*d.Goal.PrimaryAssistID)
		}
		if d.Goal.SecondaryAssistID != nil {
			add(*d.Goal.SecondaryAssistID)
		}
		for _, id := range d.Goal.OnIce {
			add(id)
		}
	case d.Penalty != nil:
		add(d.Penalty.PlayerID)
	case d.Shot != nil:
		add(d.Shot.PlayerID)
		if d.Shot.GoalieID != nil {
			add(*d.Shot.GoalieID)
		}
	case d.Hit != nil:
		add(d.Hit.PlayerID)
	case d.Faceoff != nil:
		add(d.Faceoff.PlayerID)
	}
	return ids
}

var _ repository.EventRepository = (*eventRepository)(nil)
