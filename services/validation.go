package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside-app/courtside-server/models"
	"github.com/courtside-app/courtside-server/repositories"
)

// ValidationEngine checks a proposed game update before any mutation. Rules
// run independently and every violation is collected; warnings never block.
type ValidationEngine struct {
	store GameStore
}

func NewValidationEngine(store GameStore) *ValidationEngine {
	return &ValidationEngine{store: store}
}

func (e *ValidationEngine) Validate(ctx context.Context, game *models.Game, upd models.GameUpdate) ValidationResult {
	res := ValidationResult{
		Errors:   []ValidationIssue{},
		Warnings: []ValidationIssue{},
	}

	scoreA := game.ScoreA
	if upd.ScoreA != nil {
		scoreA = *upd.ScoreA
	}
	scoreB := game.ScoreB
	if upd.ScoreB != nil {
		scoreB = *upd.ScoreB
	}

	if upd.ScoreA != nil || upd.ScoreB != nil {
		if scoreA < 0 || scoreB < 0 {
			res.Errors = append(res.Errors, ValidationIssue{
				Code:    CodeInvalidScores,
				Message: fmt.Sprintf("scores must be non-negative integers, got %d-%d", scoreA, scoreB),
			})
		}
		// Positive scores are meaningless while a slot is unresolved; zero
		// scores stay allowed so a placeholder game can be reset.
		if HasPlaceholderTeams(game) && (scoreA > 0 || scoreB > 0) {
			res.Errors = append(res.Errors, ValidationIssue{
				Code:    CodePlaceholderTeams,
				Message: "cannot record a score while a team slot is still a placeholder",
			})
		}
		if scoreA > 0 && scoreA == scoreB {
			res.Warnings = append(res.Warnings, ValidationIssue{
				Code:    CodeTieGame,
				Message: fmt.Sprintf("game is tied %d-%d and may need manual review", scoreA, scoreB),
			})
		}
	}

	if upd.Status != nil && *upd.Status != models.GameStatusCancelled && *upd.Status != models.GameStatusScheduled {
		if HasPlaceholderTeams(game) {
			res.Errors = append(res.Errors, ValidationIssue{
				Code:    CodePlaceholderTeams,
				Message: fmt.Sprintf("cannot move to status %q while a team slot is still a placeholder", *upd.Status),
			})
		}
	}

	if upd.Status != nil && *upd.Status == models.GameStatusInProgress {
		if issue := e.checkDependencies(ctx, game); issue != nil {
			res.Errors = append(res.Errors, *issue)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// checkDependencies verifies every upstream game has completed before this
// one may start. It is the only rule that reads the store.
func (e *ValidationEngine) checkDependencies(ctx context.Context, game *models.Game) *ValidationIssue {
	var unmet []string
	for _, depID := range game.DependsOnGames {
		dep, err := e.store.GetGame(ctx, depID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				unmet = append(unmet, depID)
				continue
			}
			return &ValidationIssue{
				Code:    CodeValidationFailed,
				Message: fmt.Sprintf("could not verify dependency %s: %v", depID, err),
			}
		}
		if dep.Status != models.GameStatusCompleted {
			unmet = append(unmet, depID)
		}
	}
	if len(unmet) > 0 {
		return &ValidationIssue{
			Code:    CodeDependenciesNotMet,
			Message: fmt.Sprintf("upstream games not completed: %s", strings.Join(unmet, ", ")),
		}
	}
	return nil
}
