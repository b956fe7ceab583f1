package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/courtside-app/courtside-server/models"
	"github.com/courtside-app/courtside-server/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGameStore is an in-memory GameStore with per-game error injection,
// mirroring the postgres repository's partial-update semantics.
type fakeGameStore struct {
	mu    sync.Mutex
	games map[string]*models.Game

	getErrs    map[string]error
	updateErr  error
	batchErr   error
	fedByErr   error
	getCalls   int
	batchCalls int
}

func newFakeGameStore(games ...*models.Game) *fakeGameStore {
	s := &fakeGameStore{
		games:   make(map[string]*models.Game),
		getErrs: make(map[string]error),
	}
	for _, game := range games {
		s.games[game.ID] = cloneGame(game)
	}
	return s
}

func cloneGame(game *models.Game) *models.Game {
	clone := *game
	clone.DependsOnGames = append([]string(nil), game.DependsOnGames...)
	clone.WinnerAdvancesTo = append([]string(nil), game.WinnerAdvancesTo...)
	clone.LoserAdvancesTo = append([]string(nil), game.LoserAdvancesTo...)
	clone.TeamAImageURL = cloneStringPtr(game.TeamAImageURL)
	clone.TeamBImageURL = cloneStringPtr(game.TeamBImageURL)
	clone.WinnerFeedsIntoGame = cloneStringPtr(game.WinnerFeedsIntoGame)
	clone.LoserFeedsIntoGame = cloneStringPtr(game.LoserFeedsIntoGame)
	clone.GameLabel = cloneStringPtr(game.GameLabel)
	return &clone
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (s *fakeGameStore) GetGame(ctx context.Context, id string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if err, ok := s.getErrs[id]; ok {
		return nil, err
	}
	game, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, repositories.ErrGameNotFound)
	}
	return cloneGame(game), nil
}

func (s *fakeGameStore) UpdateGame(ctx context.Context, id string, fields models.GameUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	game, ok := s.games[id]
	if !ok {
		return fmt.Errorf("game %s: %w", id, repositories.ErrGameNotFound)
	}
	applyUpdate(game, fields)
	return nil
}

func (s *fakeGameStore) BatchUpdateGames(ctx context.Context, updates []models.GameFieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls++
	if s.batchErr != nil {
		return s.batchErr
	}
	for _, upd := range updates {
		if _, ok := s.games[upd.GameID]; !ok {
			return fmt.Errorf("game %s: %w", upd.GameID, repositories.ErrGameNotFound)
		}
	}
	for _, upd := range updates {
		applyUpdate(s.games[upd.GameID], upd.Fields)
	}
	return nil
}

func (s *fakeGameStore) GetGamesFedBy(ctx context.Context, gameID string) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fedByErr != nil {
		return nil, s.fedByErr
	}
	var fed []*models.Game
	for _, game := range s.games {
		if references(game, gameID) {
			fed = append(fed, cloneGame(game))
		}
	}
	return fed, nil
}

func (s *fakeGameStore) GetGamesByDivision(ctx context.Context, divisionID string) ([]*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var games []*models.Game
	for _, game := range s.games {
		if game.DivisionID == divisionID {
			games = append(games, cloneGame(game))
		}
	}
	return games, nil
}

func (s *fakeGameStore) mustGet(id string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		panic("fakeGameStore: no game " + id)
	}
	return cloneGame(game)
}

func references(game *models.Game, gameID string) bool {
	for _, id := range game.DependsOnGames {
		if id == gameID {
			return true
		}
	}
	for _, id := range game.WinnerAdvancesTo {
		if id == gameID {
			return true
		}
	}
	for _, id := range game.LoserAdvancesTo {
		if id == gameID {
			return true
		}
	}
	if game.WinnerFeedsIntoGame != nil && *game.WinnerFeedsIntoGame == gameID {
		return true
	}
	if game.LoserFeedsIntoGame != nil && *game.LoserFeedsIntoGame == gameID {
		return true
	}
	return false
}

func applyUpdate(game *models.Game, fields models.GameUpdate) {
	if fields.TeamA != nil {
		game.TeamA = *fields.TeamA
	}
	if fields.TeamB != nil {
		game.TeamB = *fields.TeamB
	}
	if fields.TeamAImageURL != nil {
		game.TeamAImageURL = imageValue(fields.TeamAImageURL)
	}
	if fields.TeamBImageURL != nil {
		game.TeamBImageURL = imageValue(fields.TeamBImageURL)
	}
	if fields.ScoreA != nil {
		game.ScoreA = *fields.ScoreA
	}
	if fields.ScoreB != nil {
		game.ScoreB = *fields.ScoreB
	}
	if fields.Status != nil {
		game.Status = *fields.Status
	}
	if fields.WinnerAdvancesTo != nil {
		game.WinnerAdvancesTo = append([]string(nil), (*fields.WinnerAdvancesTo)...)
		game.WinnerFeedsIntoGame = nil
	}
	if fields.LoserAdvancesTo != nil {
		game.LoserAdvancesTo = append([]string(nil), (*fields.LoserAdvancesTo)...)
		game.LoserFeedsIntoGame = nil
	}
	if fields.LocationID != nil {
		game.LocationID = fields.LocationID
	}
	if fields.ScheduledAt != nil {
		game.ScheduledAt = *fields.ScheduledAt
	}
	if fields.UpdatedAt != nil {
		game.UpdatedAt = *fields.UpdatedAt
	}
}

// An empty-string image clears the stored value, matching the repository.
func imageValue(v *string) *string {
	if *v == "" {
		return nil
	}
	return cloneStringPtr(v)
}

type fakeFollows struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (f *fakeFollows) RemoveGameFromAllFollowers(ctx context.Context, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, gameID)
	return nil
}

type fakeStats struct {
	mu        sync.Mutex
	teams     []string
	divisions []string
	pools     []string
	err       error
}

func (f *fakeStats) InvalidateTeamCache(ctx context.Context, teamName, divisionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.teams = append(f.teams, teamName)
	return nil
}

func (f *fakeStats) InvalidateDivisionCache(ctx context.Context, divisionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.divisions = append(f.divisions, divisionID)
	return nil
}

func (f *fakeStats) InvalidatePoolCache(ctx context.Context, poolID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pools = append(f.pools, poolID)
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func statusPtr(s models.GameStatus) *models.GameStatus { return &s }

// zeroRetry keeps facade tests fast: retries still happen, delays do not.
func zeroRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, InitialDelay: 0, Multiplier: 1, MaxDelay: 0}
}
