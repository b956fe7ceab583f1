package services

import (
	"context"

	"github.com/courtside-app/courtside-server/models"
)

// GameStore is the persistence boundary the engine runs against. The postgres
// implementation lives in repositories; tests use an in-memory fake.
type GameStore interface {
	GetGame(ctx context.Context, id string) (*models.Game, error)
	// UpdateGame writes only the non-nil fields of the update.
	UpdateGame(ctx context.Context, id string, fields models.GameUpdate) error
	// BatchUpdateGames applies all updates atomically. Batches are bounded
	// (repositories.MaxBatchSize); exceeding the bound is a caller error.
	BatchUpdateGames(ctx context.Context, updates []models.GameFieldUpdate) error
	// GetGamesFedBy returns games whose dependency or advancement fields
	// reference gameID.
	GetGamesFedBy(ctx context.Context, gameID string) ([]*models.Game, error)
	GetGamesByDivision(ctx context.Context, divisionID string) ([]*models.Game, error)
}

// FollowCleaner removes a game from every user's followed-games list. Used on
// the placeholder-reset path only; failures are logged, never fatal.
type FollowCleaner interface {
	RemoveGameFromAllFollowers(ctx context.Context, gameID string) error
}

// StatsInvalidator drops derived standings/statistics caches. Fire and
// forget: a failed invalidation never fails the update that triggered it.
type StatsInvalidator interface {
	InvalidateTeamCache(ctx context.Context, teamName, divisionID string) error
	InvalidateDivisionCache(ctx context.Context, divisionID string) error
	InvalidatePoolCache(ctx context.Context, poolID string) error
}
