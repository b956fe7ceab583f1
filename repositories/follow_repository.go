package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type FollowRepository interface {
	Add(ctx context.Context, userID, gameID string) error
	Remove(ctx context.Context, userID, gameID string) error
	ListGameIDsByUser(ctx context.Context, userID string) ([]string, error)
	// RemoveGameFromAllFollowers drops a game from every user's followed
	// list, used when a reset cascade invalidates the followed team.
	RemoveGameFromAllFollowers(ctx context.Context, gameID string) error
}

type postgresFollowRepository struct {
	db *sql.DB
}

func NewPostgresFollowRepository(db *sql.DB) FollowRepository {
	return &postgresFollowRepository{db: db}
}

func (r *postgresFollowRepository) Add(ctx context.Context, userID, gameID string) error {
	query := `
		INSERT INTO follows (user_id, game_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, game_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, gameID); err != nil {
		return fmt.Errorf("failed to follow game %s for user %s: %w", gameID, userID, err)
	}
	return nil
}

func (r *postgresFollowRepository) Remove(ctx context.Context, userID, gameID string) error {
	query := `DELETE FROM follows WHERE user_id = $1 AND game_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, gameID); err != nil {
		return fmt.Errorf("failed to unfollow game %s for user %s: %w", gameID, userID, err)
	}
	return nil
}

func (r *postgresFollowRepository) ListGameIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT game_id FROM follows WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follows for user %s: %w", userID, err)
	}
	defer rows.Close()

	gameIDs := make([]string, 0)
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("failed to scan follow row: %w", err)
		}
		gameIDs = append(gameIDs, gameID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during follow rows iteration: %w", err)
	}
	return gameIDs, nil
}

func (r *postgresFollowRepository) RemoveGameFromAllFollowers(ctx context.Context, gameID string) error {
	query := `DELETE FROM follows WHERE game_id = $1`
	if _, err := r.db.ExecContext(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to remove game %s from followers: %w", gameID, err)
	}
	return nil
}
