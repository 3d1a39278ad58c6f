package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`INSERT INTO players (team_id, first_name, last_name, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, team_id, first_name, last_name, position, created_at, updated_at`,
		p.TeamID, p.FirstName, p.LastName, p.Position,
	)
	var out model.Player
	if err := row.Scan(&out.ID, &out.TeamID, &out.FirstName, &out.LastName, &out.Position, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) GetByID(ctx context.Context, id int64) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	exec := getQ(ctx, r.pool)
	row := exec.QueryRow(ctx,
		`SELECT id, team_id, first_name, last_name, position, created_at, updated_at
		 FROM players WHERE id = $1`, id,
	)
	var out model.Player
	if err := row.Scan(&out.ID, &out.TeamID, &out.FirstName, &out.LastName, &out.Position, &out.CreatedAt, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) ListByTeam(ctx context.Context, teamID int64, p repository.Page) (repository.PageResult[model.Player], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Player]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT id, team_id, first_name, last_name, position, created_at, updated_at, COUNT(*) OVER() AS total
		 FROM players WHERE team_id = $1
		 ORDER BY id
		 LIMIT $2 OFFSET $3`,
		teamID, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Player]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Player]{Items: make([]model.Player, 0, limit)}
	for rows.Next() {
		var it model.Player
		var total int
		if err := rows.Scan(&it.ID, &it.TeamID, &it.FirstName, &it.LastName, &it.Position, &it.CreatedAt, &it.UpdatedAt, &total); err != nil {
			return repository.PageResult[model.Player]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	return res, nil
}

// ListIDsByTeam returns the full roster as bare IDs for reprocessing fan-out.
func (r *playerRepository) ListIDsByTeam(ctx context.Context, teamID int64) ([]int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id FROM players WHERE team_id = $1 ORDER BY id`, teamID)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListAllIDs returns every player ID in the system for a global reprocess.
func (r *playerRepository) ListAllIDs(ctx context.Context) ([]int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id FROM players ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Exists performs a lightweight check to see if a player with the given ID exists.
func (r *playerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var exists bool
	exec := getQ(ctx, r.pool)
	err := exec.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return exists, nil
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	ids := make([]int64, 0, 32)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, repository.MapPgError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
