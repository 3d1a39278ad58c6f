package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

type playerStatRepository struct{ pool *pgxpool.Pool }

func NewPlayerStatRepository(pool *pgxpool.Pool) repository.PlayerStatRepository {
	return &playerStatRepository{pool: pool}
}

// Upsert writes one aggregate row in a single conditional statement so
// concurrent recomputes for the same player cannot tear a row.
func (r *playerStatRepository) Upsert(ctx context.Context, s model.PlayerStat) (model.PlayerStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerStat{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO player_stats (player_id, stat_type, value, games_played)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (player_id, stat_type)
		 DO UPDATE SET
			value = EXCLUDED.value,
			games_played = EXCLUDED.games_played,
			updated_at = NOW()
		 RETURNING id, player_id, stat_type, value, games_played, updated_at`,
		s.PlayerID, string(s.StatType), s.Value, s.GamesPlayed,
	)
	var out model.PlayerStat
	var statType string
	if err := row.Scan(&out.ID, &out.PlayerID, &statType, &out.Value, &out.GamesPlayed, &out.UpdatedAt); err != nil {
		return model.PlayerStat{}, repository.MapPgError(err)
	}
	out.StatType = model.StatType(statType)
	return out, nil
}

func (r *playerStatRepository) ListByPlayer(ctx context.Context, playerID int64) ([]model.PlayerStat, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, player_id, stat_type, value, games_played, updated_at
		 FROM player_stats WHERE player_id = $1 ORDER BY stat_type`, playerID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	res := make([]model.PlayerStat, 0, 8)
	for rows.Next() {
		var it model.PlayerStat
		var statType string
		if err := rows.Scan(&it.ID, &it.PlayerID, &statType, &it.Value, &it.GamesPlayed, &it.UpdatedAt); err != nil {
			return nil, repository.MapPgError(err)
		}
		it.StatType = model.StatType(statType)
		res = append(res, it)
	}
	return res, rows.Err()
}

// DeleteStale removes aggregate rows whose stat type no longer has atomic
// backing. An empty keep list clears every row for the player.
func (r *playerStatRepository) DeleteStale(ctx context.Context, playerID int64, keep []model.StatType) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	keepStrs := make([]string, 0, len(keep))
	for _, k := range keep {
		keepStrs = append(keepStrs, string(k))
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`DELETE FROM player_stats WHERE player_id = $1 AND stat_type <> ALL($2)`,
		playerID, keepStrs,
	)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *playerStatRepository) CountByPlayer(ctx context.Context, playerID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM player_stats WHERE player_id = $1`, playerID)
}

func (r *playerStatRepository) CountByTeam(ctx context.Context, teamID int64) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM player_stats ps
		 JOIN players p ON ps.player_id = p.id
		 WHERE p.team_id = $1`, teamID)
}

func (r *playerStatRepository) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM player_stats`)
}

func (r *playerStatRepository) count(ctx context.Context, sql string, args ...any) (int, error) {
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

var _ repository.PlayerStatRepository = (*playerStatRepository)(nil)
