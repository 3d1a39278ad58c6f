// Package service holds business logic orchestration across repositories and handlers.
// The event-to-statistic pipeline lives here: recorder, plus/minus resolver,
// aggregator, reprocessing orchestrator and consistency reporter.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rinkstats/hockey-stats-service/internal/model"
	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownAlignment means a player's team or a game's sides could not be
// resolved, so a plus/minus value cannot be computed. Never defaulted to zero.
var ErrUnknownAlignment = errors.New("unknown team alignment")

// ErrInvalidPlayerRef means an event role points at a player that does not exist.
var ErrInvalidPlayerRef = errors.New("invalid player reference")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// newInvalidInput is the in-package shorthand services use.
func newInvalidInput(fe []FieldError) error { return NewInvalidInputError(fe) }

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// RoleFailure reports one event role that could not be recorded. Valid roles
// of the same event are still processed; nothing fails silently.
type RoleFailure struct {
	Role     string `json:"role"`
	PlayerID int64  `json:"player_id"`
	Reason   string `json:"reason"`
}

// RecordResult is the outcome of recording a single event: the atomic rows
// written (or already present from an earlier pass) plus per-role failures.
type RecordResult struct {
	Stats    []model.AtomicStat `json:"stats"`
	Failures []RoleFailure      `json:"failures,omitempty"`
	Skipped  int                `json:"skipped,omitempty"`
}

// Run statuses for batch reprocessing.
const (
	RunStatusRunning             = "running"
	RunStatusCompleted           = "completed"
	RunStatusCompletedWithErrors = "completed_with_errors"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PlayerOutcome is the per-player result inside a batch reprocessing run.
type PlayerOutcome struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Stats  int    `json:"stats"`
}

// ReprocessRun describes one batch reprocessing invocation. One player's
// failure never aborts siblings; it lands in Outcomes instead.
type ReprocessRun struct {
	ID         string                  `json:"id"`
	Scope      string                  `json:"scope"`
	Status     string                  `json:"status"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Outcomes   map[int64]PlayerOutcome `json:"outcomes"`
}

// Resolver decides the plus/minus sign for a player given which side scored.
type Resolver interface {
	Resolve(ctx context.Context, gameID, playerID int64, scoringSide model.TeamSide) (int, error)
}

// TeamService defines team-oriented use cases.
type TeamService interface {
	CreateTeam(ctx context.Context, name string) (model.Team, error)
	GetTeam(ctx context.Context, id int64) (model.Team, error)
	ListTeams(ctx context.Context, page repository.Page) (repository.PageResult[model.Team], error)
}

// PlayerService defines player-oriented use cases.
type PlayerService interface {
	CreatePlayer(ctx context.Context, teamID int64, firstName, lastName, position string) (model.Player, error)
	GetPlayer(ctx context.Context, id int64) (model.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID int64, page repository.Page) (repository.PageResult[model.Player], error)
	PlayerAggregates(ctx context.Context, playerID int64) ([]model.PlayerStat, error)
}

// GameService defines game-oriented use cases.
type GameService interface {
	CreateGame(ctx context.Context, date time.Time, homeID, awayID int64, status string) (model.Game, error)
	GetGame(ctx context.Context, id int64) (model.Game, error)
	ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error)
}

// EventService accepts live game events and runs them through the recorder.
type EventService interface {
	SubmitEvent(ctx context.Context, e model.GameEvent) (model.GameEvent, RecordResult, error)
	ListEventsByGame(ctx context.Context, gameID int64) ([]model.GameEvent, error)
}

// Reprocessor rebuilds derived statistics from the event history.
type Reprocessor interface {
	ReprocessPlayer(ctx context.Context, playerID int64) ([]model.PlayerStat, error)
	ReprocessTeam(ctx context.Context, teamID int64) (*ReprocessRun, error)
	ReprocessAll(ctx context.Context) (*ReprocessRun, error)
}

// ConsistencyScope selects what slice of the dataset a report covers.
type ConsistencyScope struct {
	Kind string // player, team, global
	ID   int64  // unused for global
}

// ConsistencyReporter surfaces processing gaps between raw events and
// derived statistics. Read-only.
type ConsistencyReporter interface {
	Report(ctx context.Context, scope ConsistencyScope) (model.ConsistencyReport, error)
}
