package repository

import (
	"context"

	"github.com/rinkstats/hockey-stats-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// TeamRepository declares persistence operations for teams.
// I return domain models and surface domain errors from errors.go rather than PG codes.
type TeamRepository interface {
	Create(ctx context.Context, t model.Team) (model.Team, error)
	GetByID(ctx context.Context, id int64) (model.Team, error)
	List(ctx context.Context, p Page) (PageResult[model.Team], error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// PlayerRepository declares persistence operations for players.
// ListIDsByTeam backs roster-wide reprocessing; ListAllIDs backs the global pass.
type PlayerRepository interface {
	Create(ctx context.Context, p model.Player) (model.Player, error)
	GetByID(ctx context.Context, id int64) (model.Player, error)
	ListByTeam(ctx context.Context, teamID int64, p Page) (PageResult[model.Player], error)
	ListIDsByTeam(ctx context.Context, teamID int64) ([]int64, error)
	ListAllIDs(ctx context.Context) ([]int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// GameRepository declares persistence operations for games.
type GameRepository interface {
	Create(ctx context.Context, g model.Game) (model.Game, error)
	GetByID(ctx context.Context, id int64) (model.Game, error)
	List(ctx context.Context, p Page) (PageResult[model.Game], error)
}

// EventRepository declares operations on the append-only game event log.
// Events are immutable once appended; reads are ordered by creation time so
// replays observe the original tracking order.
type EventRepository interface {
	Append(ctx context.Context, e model.GameEvent) (model.GameEvent, error)
	ListByGame(ctx context.Context, gameID int64) ([]model.GameEvent, error)
	// ListByPlayer returns every event referencing the player in any role.
	ListByPlayer(ctx context.Context, playerID int64) ([]model.GameEvent, error)
	CountByPlayer(ctx context.Context, playerID int64) (int, error)
	CountByTeam(ctx context.Context, teamID int64) (int, error)
	CountAll(ctx context.Context) (int, error)
}

// GameStatRepository declares operations for atomic per-event stat rows.
// Insert is idempotent on (event_id, player_id, stat_type): a replayed row
// reports inserted=false instead of creating a duplicate.
type GameStatRepository interface {
	Insert(ctx context.Context, s model.AtomicStat) (stat model.AtomicStat, inserted bool, err error)
	ListByPlayer(ctx context.Context, playerID int64) ([]model.AtomicStat, error)
	DeleteByPlayer(ctx context.Context, playerID int64) (int64, error)
	CountByPlayer(ctx context.Context, playerID int64) (int, error)
	CountByTeam(ctx context.Context, teamID int64) (int, error)
	CountAll(ctx context.Context) (int, error)
}

// PlayerStatRepository declares operations for aggregate rows.
// Upsert is a single conditional statement keyed on (player_id, stat_type);
// DeleteStale removes aggregates whose stat type no longer has atomic rows.
type PlayerStatRepository interface {
	Upsert(ctx context.Context, s model.PlayerStat) (model.PlayerStat, error)
	ListByPlayer(ctx context.Context, playerID int64) ([]model.PlayerStat, error)
	DeleteStale(ctx context.Context, playerID int64, keep []model.StatType) (int64, error)
	CountByPlayer(ctx context.Context, playerID int64) (int, error)
	CountByTeam(ctx context.Context, teamID int64) (int, error)
	CountAll(ctx context.Context) (int, error)
}
