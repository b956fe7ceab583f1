package models

import "time"

// Follow marks a game on a user's followed-games list. Rows are removed when
// the game is deleted or when a reset cascade replaces the followed team with
// a placeholder.
type Follow struct {
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	CreatedAt time.Time `json:"created_at"`
}
