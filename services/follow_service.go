package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside-app/courtside-server/models"
	"github.com/courtside-app/courtside-server/repositories"
)

// FollowService manages the set of games a user tracks for live updates.
type FollowService interface {
	FollowGame(ctx context.Context, userID, gameID string) error
	UnfollowGame(ctx context.Context, userID, gameID string) error
	ListFollowedGames(ctx context.Context, userID string) ([]*models.Game, error)
}

type followService struct {
	followRepo repositories.FollowRepository
	gameRepo   repositories.GameRepository
	logger     *slog.Logger
}

func NewFollowService(followRepo repositories.FollowRepository, gameRepo repositories.GameRepository, logger *slog.Logger) FollowService {
	return &followService{followRepo: followRepo, gameRepo: gameRepo, logger: logger}
}

func (s *followService) FollowGame(ctx context.Context, userID, gameID string) error {
	// Following a nonexistent game would leave an orphan row that no
	// cascade ever cleans up.
	if _, err := s.gameRepo.GetGame(ctx, gameID); err != nil {
		return err
	}
	if err := s.followRepo.Add(ctx, userID, gameID); err != nil {
		return fmt.Errorf("failed to follow game: %w", err)
	}
	return nil
}

func (s *followService) UnfollowGame(ctx context.Context, userID, gameID string) error {
	if err := s.followRepo.Remove(ctx, userID, gameID); err != nil {
		return fmt.Errorf("failed to unfollow game: %w", err)
	}
	return nil
}

// ListFollowedGames resolves each followed id to its current state.
// Games deleted since the follow was created are dropped from the result.
func (s *followService) ListFollowedGames(ctx context.Context, userID string) ([]*models.Game, error) {
	gameIDs, err := s.followRepo.ListGameIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}

	games := make([]*models.Game, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		game, err := s.gameRepo.GetGame(ctx, gameID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				s.logger.Debug("skipping deleted followed game",
					slog.String("user_id", userID),
					slog.String("game_id", gameID))
				continue
			}
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}
