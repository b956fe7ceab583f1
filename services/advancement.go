package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside-app/courtside-server/models"
	"github.com/courtside-app/courtside-server/repositories"
)

const (
	// MaxAdvancementTargets caps winner+loser destinations per game.
	MaxAdvancementTargets = 10
	// MaxIncomingAdvancements caps how many games may advance into one game
	// (two team slots, two incoming edges).
	MaxIncomingAdvancements = 2
)

// AdvancementConfig is the canonical in-memory view of a game's advancement
// targets, regardless of which schema generation the stored record carries.
type AdvancementConfig struct {
	WinnerAdvancesTo []string `json:"winner_advances_to"`
	LoserAdvancesTo  []string `json:"loser_advances_to"`
}

// AdvancementData reconciles the two schema generations at the read boundary:
// the current list fields win when either is non-empty, otherwise the legacy
// single-target fields are lifted into lists. Nothing outside this function
// branches on schema generation.
func AdvancementData(game *models.Game) AdvancementConfig {
	if len(game.WinnerAdvancesTo) > 0 || len(game.LoserAdvancesTo) > 0 {
		return AdvancementConfig{
			WinnerAdvancesTo: game.WinnerAdvancesTo,
			LoserAdvancesTo:  game.LoserAdvancesTo,
		}
	}
	var cfg AdvancementConfig
	if game.WinnerFeedsIntoGame != nil && *game.WinnerFeedsIntoGame != "" {
		cfg.WinnerAdvancesTo = []string{*game.WinnerFeedsIntoGame}
	}
	if game.LoserFeedsIntoGame != nil && *game.LoserFeedsIntoGame != "" {
		cfg.LoserAdvancesTo = []string{*game.LoserFeedsIntoGame}
	}
	return cfg
}

type AdvancementValidationResult struct {
	Valid                bool              `json:"valid"`
	Errors               []ValidationIssue `json:"errors"`
	CircularDependencies []string          `json:"circular_dependencies"`
	CapacityIssues       []string          `json:"capacity_issues"`
}

// GraphValidator checks a proposed advancement configuration against capacity
// limits and cycle freedom before it may be saved. Nodes are game ids fetched
// on demand from the store and memoized for the duration of one validation.
type GraphValidator struct {
	store  GameStore
	logger *slog.Logger
}

func NewGraphValidator(store GameStore, logger *slog.Logger) *GraphValidator {
	return &GraphValidator{store: store, logger: logger}
}

func (v *GraphValidator) Validate(ctx context.Context, gameID string, cfg AdvancementConfig) AdvancementValidationResult {
	res := AdvancementValidationResult{
		Errors:               []ValidationIssue{},
		CircularDependencies: []string{},
		CapacityIssues:       []string{},
	}

	destinations := append(append([]string{}, cfg.WinnerAdvancesTo...), cfg.LoserAdvancesTo...)
	if len(destinations) > MaxAdvancementTargets {
		res.Errors = append(res.Errors, ValidationIssue{
			Code:    CodeTooManyDestinations,
			Message: fmt.Sprintf("%d destinations configured, maximum is %d", len(destinations), MaxAdvancementTargets),
		})
	}

	proposedCounts := make(map[string]int, len(destinations))
	for _, destID := range destinations {
		if destID == gameID {
			res.Errors = append(res.Errors, ValidationIssue{
				Code:    CodeSelfReference,
				Message: "a game cannot advance into itself",
			})
			continue
		}
		proposedCounts[destID]++
	}

	source, err := v.store.GetGame(ctx, gameID)
	if err != nil {
		res.Errors = append(res.Errors, ValidationIssue{
			Code:    CodeInvalidGameID,
			Message: fmt.Sprintf("source game %s could not be loaded: %v", gameID, err),
		})
		res.Valid = false
		return res
	}

	for destID, proposed := range proposedCounts {
		dest, err := v.store.GetGame(ctx, destID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				res.Errors = append(res.Errors, ValidationIssue{
					Code:    CodeInvalidGameID,
					Message: fmt.Sprintf("destination game %s does not exist", destID),
				})
			} else {
				res.Errors = append(res.Errors, ValidationIssue{
					Code:    CodeInvalidGameID,
					Message: fmt.Sprintf("destination game %s could not be loaded: %v", destID, err),
				})
			}
			continue
		}
		if dest.DivisionID != source.DivisionID {
			res.Errors = append(res.Errors, ValidationIssue{
				Code:    CodeDifferentDivision,
				Message: fmt.Sprintf("destination game %s is in division %s, source is in %s", destID, dest.DivisionID, source.DivisionID),
			})
		}
		incoming, err := v.countIncoming(ctx, destID, gameID)
		if err != nil {
			v.logger.Warn("could not count incoming advancements, skipping capacity check",
				slog.String("game_id", destID), slog.Any("error", err))
			continue
		}
		if incoming+proposed > MaxIncomingAdvancements {
			res.Errors = append(res.Errors, ValidationIssue{
				Code:    CodeGameAtCapacity,
				Message: fmt.Sprintf("game %s already receives %d advancing teams, cannot accept %d more", destID, incoming, proposed),
			})
			res.CapacityIssues = append(res.CapacityIssues, destID)
		}
	}

	if cycle := v.findCycle(ctx, gameID, cfg); len(cycle) > 0 {
		res.Errors = append(res.Errors, ValidationIssue{
			Code:    CodeCircularDependency,
			Message: fmt.Sprintf("advancement would create a cycle through games %v", cycle),
		})
		res.CircularDependencies = cycle
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// countIncoming counts existing advancement edges into destID, excluding any
// edge originating at excludeID (the source being re-configured).
func (v *GraphValidator) countIncoming(ctx context.Context, destID, excludeID string) (int, error) {
	feeders, err := v.store.GetGamesFedBy(ctx, destID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, feeder := range feeders {
		if feeder.ID == excludeID {
			continue
		}
		data := AdvancementData(feeder)
		for _, id := range data.WinnerAdvancesTo {
			if id == destID {
				count++
			}
		}
		for _, id := range data.LoserAdvancesTo {
			if id == destID {
				count++
			}
		}
	}
	return count, nil
}

// findCycle runs a depth-first search over the advancement graph starting at
// gameID, substituting the proposed configuration for gameID's own edges and
// the stored configuration for every other node. A node revisited while still
// on the DFS stack is a cycle; the ids on the cyclic path are returned.
// Fully-explored nodes are memoized; unreadable destinations are skipped, as
// they may not exist yet during incremental configuration.
func (v *GraphValidator) findCycle(ctx context.Context, gameID string, cfg AdvancementConfig) []string {
	explored := make(map[string]bool)
	onStack := make(map[string]bool)
	games := make(map[string]*models.Game)

	edges := func(id string) []string {
		if id == gameID {
			return append(append([]string{}, cfg.WinnerAdvancesTo...), cfg.LoserAdvancesTo...)
		}
		game, ok := games[id]
		if !ok {
			fetched, err := v.store.GetGame(ctx, id)
			if err != nil {
				games[id] = nil
				return nil
			}
			games[id] = fetched
			game = fetched
		}
		if game == nil {
			return nil
		}
		data := AdvancementData(game)
		return append(append([]string{}, data.WinnerAdvancesTo...), data.LoserAdvancesTo...)
	}

	var path []string
	var visit func(id string) []string
	visit = func(id string) []string {
		if explored[id] {
			return nil
		}
		if onStack[id] {
			// Report every game on the cyclic portion of the path.
			for i, pathID := range path {
				if pathID == id {
					return append([]string{}, path[i:]...)
				}
			}
			return append([]string{}, path...)
		}
		onStack[id] = true
		path = append(path, id)
		for _, next := range edges(id) {
			if cycle := visit(next); len(cycle) > 0 {
				return cycle
			}
		}
		path = path[:len(path)-1]
		onStack[id] = false
		explored[id] = true
		return nil
	}

	return visit(gameID)
}
