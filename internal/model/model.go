// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// Team represents a hockey team.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Player represents a skater or goalie belonging to a team.
type Player struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Position  string    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Game represents a scheduled or finished match between two teams.
type Game struct {
	ID         int64     `json:"id"`
	Date       time.Time `json:"date"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	Status     string    `json:"status"` // scheduled, in_progress, finished
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TeamSide identifies which bench an event belongs to.
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// EventType enumerates trackable in-game events.
type EventType string

const (
	EventGoal    EventType = "goal"
	EventPenalty EventType = "penalty"
	EventShot    EventType = "shot"
	EventHit     EventType = "hit"
	EventFaceoff EventType = "faceoff"
)

// PenaltySeverity determines penalty minutes.
type PenaltySeverity string

const (
	PenaltyMinor PenaltySeverity = "minor"
	PenaltyMajor PenaltySeverity = "major"
)

// StatType enumerates atomic and aggregate statistic kinds.
type StatType string

const (
	StatGoals         StatType = "goals"
	StatAssists       StatType = "assists"
	StatHits          StatType = "hits"
	StatPenalties     StatType = "penalties"
	StatShots         StatType = "shots"
	StatShotsAgainst  StatType = "shots_against"
	StatSaves         StatType = "saves"
	StatFaceoffWins   StatType = "faceoff_wins"
	StatFaceoffLosses StatType = "faceoff_losses"
	StatPlusMinus     StatType = "plus_minus"
)

// EventDetails is the tagged union of per-event-type payloads. Exactly one
// field matching the event type must be set; the rest stay nil.
type EventDetails struct {
	Goal    *GoalDetails    `json:"goal,omitempty"`
	Penalty *PenaltyDetails `json:"penalty,omitempty"`
	Shot    *ShotDetails    `json:"shot,omitempty"`
	Hit     *HitDetails     `json:"hit,omitempty"`
	Faceoff *FaceoffDetails `json:"faceoff,omitempty"`
}

// GoalDetails names the players involved in a goal. Assist references are
// optional; OnIce lists every player on the ice at the moment of scoring,
// from both teams.
type GoalDetails struct {
	ScorerID          int64   `json:"scorer_id"`
	PrimaryAssistID   *int64  `json:"primary_assist_id,omitempty"`
	SecondaryAssistID *int64  `json:"secondary_assist_id,omitempty"`
	OnIce             []int64 `json:"on_ice"`
}

// PenaltyDetails names the penalized player and the call severity.
type PenaltyDetails struct {
	PlayerID int64           `json:"player_id"`
	Severity PenaltySeverity `json:"severity"`
}

// ShotDetails names the shooter. Against flags a shot faced rather than
// taken; a saved shot-against may carry the goalie who stopped it.
type ShotDetails struct {
	PlayerID int64  `json:"player_id"`
	Against  bool   `json:"against"`
	Saved    bool   `json:"saved"`
	GoalieID *int64 `json:"goalie_id,omitempty"`
}

// HitDetails names the player who threw the hit.
type HitDetails struct {
	PlayerID int64 `json:"player_id"`
}

// FaceoffDetails names the player taking the draw and whether they won it.
type FaceoffDetails struct {
	PlayerID int64 `json:"player_id"`
	Won      bool  `json:"won"`
}

// GameEvent is an immutable fact recorded by game tracking. Events are
// created once and never mutated; derived stats reference them by ID.
type GameEvent struct {
	ID        int64        `json:"id"`
	GameID    int64        `json:"game_id"`
	Type      EventType    `json:"type"`
	Period    int          `json:"period"`
	TeamSide  TeamSide     `json:"team_side"`
	Details   EventDetails `json:"details"`
	CreatedAt time.Time    `json:"created_at"`
}

// AtomicStat is a single derived fact: one player, one stat type, one value,
// produced from exactly one event. The (event, player, stat type) triple is
// unique; replaying an event cannot create a second row.
type AtomicStat struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	GameID    int64     `json:"game_id"`
	PlayerID  int64     `json:"player_id"`
	StatType  StatType  `json:"stat_type"`
	Period    int       `json:"period"`
	Value     int       `json:"value"`
	Detail    string    `json:"detail,omitempty"` // "primary"/"secondary" for assists, "plus"/"minus" for plus_minus
	CreatedAt time.Time `json:"created_at"`
}

// PlayerStat is the per-player, per-stat-type aggregate. Entirely derived
// from AtomicStat history and rebuilt on demand, never hand-edited.
type PlayerStat struct {
	ID          int64     `json:"id"`
	PlayerID    int64     `json:"player_id"`
	StatType    StatType  `json:"stat_type"`
	Value       int       `json:"value"`
	GamesPlayed int       `json:"games_played"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ConsistencyReport compares raw event counts against derived counts so
// operators can spot a pipeline that did not run.
type ConsistencyReport struct {
	Scope           string `json:"scope"`
	ScopeID         int64  `json:"scope_id,omitempty"`
	EventCount      int    `json:"event_count"`
	AtomicStatCount int    `json:"atomic_stat_count"`
	AggregateCount  int    `json:"aggregate_count"`
	RecordingGap    bool   `json:"recording_gap"`
	AggregationGap  bool   `json:"aggregation_gap"`
}
