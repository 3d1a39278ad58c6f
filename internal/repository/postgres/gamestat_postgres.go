package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

type gameStatRepository struct{ pool *pgxpool.Pool }

func NewGameStatRepository(pool *pgxpool.Pool) repository.GameStatRepository {
	return &gameStatRepository{pool: pool}
}

// Insert writes one atomic stat row. The (event_id, player_id, stat_type)
// unique constraint plus DO NOTHING turns a replay into a skip instead of a
// duplicate; inserted=false signals the skip to the caller.
func (r *gameStatRepository) Insert(ctx context.Context, s model.AtomicStat) (model.AtomicStat, bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.AtomicStat{}, false, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO game_stats (event_id, game_id, player_id, stat_type, period, value, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (event_id, player_id, stat_type) DO NOTHING
		 RETURNING id, event_id, game_id, player_id, stat_type, period, value, detail, created_at`,
		s.EventID, s.GameID, s.PlayerID, string(s.StatType), s.Period, s.Value, s.Detail,
	)
	var out model.AtomicStat
	var statType string
	err := row.Scan(&out.ID, &out.EventID, &out.GameID, &out.PlayerID, &statType, &out.Period, &out.Value, &out.Detail, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict path: the row already exists from an earlier pass.
			return s, false, nil
		}
		return model.AtomicStat{}, false, repository.MapPgError(err)
	}
	out.StatType = model.StatType(statType)
	return out, true, nil
}

func (r *gameStatRepository) ListByPlayer(ctx context.Context, playerID int64) ([]model.AtomicStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, event_id, game_id, player_id, stat_type, period, value, detail, created_at
		 FROM game_stats WHERE player_id = $1 ORDER BY id`, playerID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.AtomicStat, 0, 32)
	for rows.Next() {
		var it model.AtomicStat
		var statType string
		if err := rows.Scan(&it.ID, &it.EventID, &it.GameID, &it.PlayerID, &statType, &it.Period, &it.Value, &it.Detail, &it.CreatedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		it.StatType = model.StatType(statType)
		res = append(res, it)
	}
	return res, rows.Err()
}

// DeleteByPlayer clears a player's atomic rows ahead of a replay so stats
// from since-deleted events cannot survive a rebuild.
func (r *gameStatRepository) DeleteByPlayer(ctx context.Context, playerID int64) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM game_stats WHERE player_id = $1`, playerID)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *gameStatRepository) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM game_stats WHERE player_id = $1`, playerID)
}

func (r *gameStatRepository) CountByTeam(ctx context.Context, teamID int64) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM game_stats gs
		 JOIN players p ON gs.player_id = p.id
		 WHERE p.team_id = $1`, teamID)
}

func (r *gameStatRepository) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM game_stats`)
}

func (r *gameStatRepository) count(ctx context.Context, sql string, args ...any) (int, error) {
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

var _ repository.GameStatRepository = (*gameStatRepository)(nil)
