package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside-app/courtside-server/models"
	"golang.org/x/sync/errgroup"
)

// UpdateResult is the facade's answer to one update call. Errors block and
// mean nothing was (or will remain) written by this call; warnings are
// advisory and accompany an otherwise successful update.
type UpdateResult struct {
	Success       bool           `json:"success"`
	UpdatedGame   *models.Game   `json:"updated_game,omitempty"`
	AffectedGames []*models.Game `json:"affected_games"`
	Warnings      []string       `json:"warnings"`
	Errors        []string       `json:"errors"`
}

// GameService is the single entry point for mutating games: validation,
// persistence, advancement/cascade and result reporting, with retries around
// every store call.
type GameService interface {
	UpdateGame(ctx context.Context, gameID string, upd models.GameUpdate) *UpdateResult
	ValidateGameUpdate(ctx context.Context, game *models.Game, upd models.GameUpdate) ValidationResult
	ValidateAdvancement(ctx context.Context, gameID string, cfg AdvancementConfig) AdvancementValidationResult
	SaveAdvancement(ctx context.Context, gameID string, cfg AdvancementConfig) (AdvancementValidationResult, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	GetDownstreamGames(ctx context.Context, gameID string) ([]*models.Game, error)
}

type gameService struct {
	store     GameStore
	validator *ValidationEngine
	graph     *GraphValidator
	cascade   *CascadeEngine
	stats     StatsInvalidator
	retry     RetryConfig
	logger    *slog.Logger
}

func NewGameService(
	store GameStore,
	follows FollowCleaner,
	stats StatsInvalidator,
	retry RetryConfig,
	logger *slog.Logger,
) GameService {
	return &gameService{
		store:     store,
		validator: NewValidationEngine(store),
		graph:     NewGraphValidator(store, logger),
		cascade:   NewCascadeEngine(store, follows, logger),
		stats:     stats,
		retry:     retry,
		logger:    logger,
	}
}

func (s *gameService) UpdateGame(ctx context.Context, gameID string, upd models.GameUpdate) *UpdateResult {
	res := &UpdateResult{
		AffectedGames: []*models.Game{},
		Warnings:      []string{},
		Errors:        []string{},
	}

	var current *models.Game
	err := s.retry.Do(ctx, func() error {
		game, err := s.store.GetGame(ctx, gameID)
		if err == nil {
			current = game
		}
		return err
	})
	if err != nil {
		return s.failedResult(ctx, gameID, res, "load game", err)
	}

	vres := s.validator.Validate(ctx, current, upd)
	for _, warning := range vres.Warnings {
		res.Warnings = append(res.Warnings, warning.Message)
	}
	if !vres.Valid {
		for _, issue := range vres.Errors {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
		}
		return res
	}

	now := time.Now()
	upd.UpdatedAt = &now
	if err := s.retry.Do(ctx, func() error { return s.store.UpdateGame(ctx, gameID, upd) }); err != nil {
		return s.failedResult(ctx, gameID, res, "persist update", err)
	}

	var updated *models.Game
	err = s.retry.Do(ctx, func() error {
		game, err := s.store.GetGame(ctx, gameID)
		if err == nil {
			updated = game
		}
		return err
	})
	if err != nil {
		return s.failedResult(ctx, gameID, res, "reload game", err)
	}
	res.UpdatedGame = updated

	s.runCascade(ctx, res, current, updated)
	s.invalidateCaches(ctx, updated)

	res.Success = true
	return res
}

// runCascade picks the propagation path for the status transition. The
// primary write has already committed, so any failure here is reported as a
// warning rather than rolling the update back.
func (s *gameService) runCascade(ctx context.Context, res *UpdateResult, oldGame, newGame *models.Game) {
	wasCompleted := oldGame.Status == models.GameStatusCompleted
	isCompleted := newGame.Status == models.GameStatusCompleted

	var (
		cres *CascadeResult
		err  error
		code IssueCode
	)
	switch {
	case !wasCompleted && isCompleted:
		code = CodeAdvancementFailed
		cres, err = s.cascade.AdvanceTeams(ctx, newGame)
	case wasCompleted:
		code = CodeCascadeFailed
		cres, err = s.cascade.CascadeGameChanges(ctx, oldGame, newGame)
	default:
		return
	}

	if err != nil {
		s.logger.Error("downstream propagation failed",
			slog.String("operation", string(code)),
			slog.String("game_id", newGame.ID),
			slog.Any("error", err))
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", code, err))
		return
	}
	res.AffectedGames = cres.AffectedGames
	if !cres.Success {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%s: game updated, but %d dependent game(s) could not be updated automatically",
			code, len(cres.FailedUpdates)))
		for _, failed := range cres.FailedUpdates {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", failed.GameID, failed.Error))
		}
	}
}

// invalidateCaches drops derived statistics for both teams, the division and
// the pool. Best-effort and parallel; failures are logged only.
func (s *gameService) invalidateCaches(ctx context.Context, game *models.Game) {
	g, gCtx := errgroup.WithContext(ctx)
	for _, team := range []string{game.TeamA, game.TeamB} {
		if IsPlaceholder(team) {
			continue
		}
		team := team
		g.Go(func() error {
			return s.stats.InvalidateTeamCache(gCtx, team, game.DivisionID)
		})
	}
	g.Go(func() error { return s.stats.InvalidateDivisionCache(gCtx, game.DivisionID) })
	if game.PoolID != nil {
		poolID := *game.PoolID
		g.Go(func() error { return s.stats.InvalidatePoolCache(gCtx, poolID) })
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("statistics cache invalidation failed",
			slog.String("game_id", game.ID),
			slog.Any("error", err))
	}
}

// failedResult categorizes an unrecoverable store error and attempts one last
// best-effort re-fetch so the error response still carries the game state.
func (s *gameService) failedResult(ctx context.Context, gameID string, res *UpdateResult, operation string, err error) *UpdateResult {
	s.logger.Error("game update failed",
		slog.String("operation", operation),
		slog.String("game_id", gameID),
		slog.Any("error", err))
	res.Errors = append(res.Errors, fmt.Sprintf("%s: failed to %s: %v", classifyError(err), operation, err))
	if game, refetchErr := s.store.GetGame(ctx, gameID); refetchErr == nil {
		res.UpdatedGame = game
	}
	res.Success = false
	return res
}

func (s *gameService) ValidateGameUpdate(ctx context.Context, game *models.Game, upd models.GameUpdate) ValidationResult {
	return s.validator.Validate(ctx, game, upd)
}

func (s *gameService) ValidateAdvancement(ctx context.Context, gameID string, cfg AdvancementConfig) AdvancementValidationResult {
	return s.graph.Validate(ctx, gameID, cfg)
}

// SaveAdvancement persists a new advancement configuration after graph
// validation. Invalid configurations are returned without any write. Saves
// always target the current schema generation.
func (s *gameService) SaveAdvancement(ctx context.Context, gameID string, cfg AdvancementConfig) (AdvancementValidationResult, error) {
	vres := s.graph.Validate(ctx, gameID, cfg)
	if !vres.Valid {
		return vres, nil
	}
	now := time.Now()
	winner := append([]string{}, cfg.WinnerAdvancesTo...)
	loser := append([]string{}, cfg.LoserAdvancesTo...)
	upd := models.GameUpdate{
		WinnerAdvancesTo: &winner,
		LoserAdvancesTo:  &loser,
		UpdatedAt:        &now,
	}
	err := s.retry.Do(ctx, func() error { return s.store.UpdateGame(ctx, gameID, upd) })
	return vres, err
}

func (s *gameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game *models.Game
	err := s.retry.Do(ctx, func() error {
		fetched, err := s.store.GetGame(ctx, gameID)
		if err == nil {
			game = fetched
		}
		return err
	})
	return game, err
}

func (s *gameService) GetDownstreamGames(ctx context.Context, gameID string) ([]*models.Game, error) {
	var games []*models.Game
	err := s.retry.Do(ctx, func() error {
		fetched, err := s.store.GetGamesFedBy(ctx, gameID)
		if err == nil {
			games = fetched
		}
		return err
	})
	return games, err
}
