package models

import "time"

type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
	GameStatusCancelled  GameStatus = "cancelled"
)

// Game is the central entity of the tracker. Team slots hold either a real
// team name or a placeholder ("TBD", "Winner of Semifinal 1", "1st Pool A")
// until an upstream game resolves them.
type Game struct {
	ID           string  `json:"id"`
	TournamentID string  `json:"tournament_id"`
	DivisionID   string  `json:"division_id"`
	PoolID       *string `json:"pool_id,omitempty"`
	LocationID   *string `json:"location_id,omitempty"`

	TeamA         string  `json:"team_a"`
	TeamB         string  `json:"team_b"`
	TeamAImageURL *string `json:"team_a_image_url,omitempty"`
	TeamBImageURL *string `json:"team_b_image_url,omitempty"`

	ScoreA int        `json:"score_a"`
	ScoreB int        `json:"score_b"`
	Status GameStatus `json:"status"`

	// Upstream links: at most two game ids whose winners/losers feed this
	// game's slots (index 0 -> team A, index 1 -> team B unless
	// BracketPosition overrides).
	DependsOnGames  []string `json:"depends_on_games,omitempty"`
	BracketPosition *int     `json:"bracket_position,omitempty"`

	// Advancement targets, current schema generation.
	WinnerAdvancesTo []string `json:"winner_advances_to,omitempty"`
	LoserAdvancesTo  []string `json:"loser_advances_to,omitempty"`

	// Legacy single-target schema, still present on older documents. Read
	// through services.AdvancementData, never directly.
	WinnerFeedsIntoGame *string `json:"winner_feeds_into_game,omitempty"`
	LoserFeedsIntoGame  *string `json:"loser_feeds_into_game,omitempty"`

	GameLabel   *string   `json:"game_label,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GameUpdate is a partial update: nil fields are left untouched by the store.
// An image URL set to the empty string clears the stored value.
type GameUpdate struct {
	TeamA         *string     `json:"team_a,omitempty"`
	TeamB         *string     `json:"team_b,omitempty"`
	TeamAImageURL *string     `json:"team_a_image_url,omitempty"`
	TeamBImageURL *string     `json:"team_b_image_url,omitempty"`
	ScoreA        *int        `json:"score_a,omitempty"`
	ScoreB        *int        `json:"score_b,omitempty"`
	Status        *GameStatus `json:"status,omitempty"`

	WinnerAdvancesTo *[]string `json:"winner_advances_to,omitempty"`
	LoserAdvancesTo  *[]string `json:"loser_advances_to,omitempty"`

	LocationID  *string    `json:"location_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	UpdatedAt   *time.Time `json:"-"`
}

// GameFieldUpdate pairs a game id with the partial fields to write, for
// batched store updates.
type GameFieldUpdate struct {
	GameID string     `json:"game_id"`
	Fields GameUpdate `json:"fields"`
}
