package services

import (
	"context"
	"errors"
	"testing"

	"github.com/courtside-app/courtside-server/models"
)

func hasIssue(issues []ValidationIssue, code IssueCode) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestValidateRejectsNegativeScores(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "Rockets", TeamB: "Comets"}

	res := engine.Validate(context.Background(), game, models.GameUpdate{ScoreA: intPtr(-1), ScoreB: intPtr(3)})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !hasIssue(res.Errors, CodeInvalidScores) {
		t.Errorf("expected %s error, got %v", CodeInvalidScores, res.Errors)
	}
}

func TestValidateRejectsScoresOnPlaceholderGame(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "Winner of sf1", TeamB: "Comets"}

	res := engine.Validate(context.Background(), game, models.GameUpdate{ScoreA: intPtr(10), ScoreB: intPtr(5)})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !hasIssue(res.Errors, CodePlaceholderTeams) {
		t.Errorf("expected %s error, got %v", CodePlaceholderTeams, res.Errors)
	}
}

func TestValidateAllowsZeroScoresOnPlaceholderGame(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "TBD", TeamB: "TBD", ScoreA: 3, ScoreB: 1}

	res := engine.Validate(context.Background(), game, models.GameUpdate{ScoreA: intPtr(0), ScoreB: intPtr(0)})
	if !res.Valid {
		t.Fatalf("expected zero scores to pass on a placeholder game, got %v", res.Errors)
	}
}

func TestValidateWarnsOnTie(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "Rockets", TeamB: "Comets"}

	res := engine.Validate(context.Background(), game, models.GameUpdate{ScoreA: intPtr(7), ScoreB: intPtr(7)})
	if !res.Valid {
		t.Fatalf("a tie must warn, not block: %v", res.Errors)
	}
	if !hasIssue(res.Warnings, CodeTieGame) {
		t.Errorf("expected %s warning, got %v", CodeTieGame, res.Warnings)
	}
}

func TestValidateZeroZeroIsNotATie(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "Rockets", TeamB: "Comets"}

	res := engine.Validate(context.Background(), game, models.GameUpdate{ScoreA: intPtr(0), ScoreB: intPtr(0)})
	if hasIssue(res.Warnings, CodeTieGame) {
		t.Error("0-0 should not produce a tie warning")
	}
}

func TestValidateRejectsCompletionWithPlaceholders(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "1st Pool A", TeamB: "Comets"}

	res := engine.Validate(context.Background(), game, models.GameUpdate{Status: statusPtr(models.GameStatusCompleted)})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !hasIssue(res.Errors, CodePlaceholderTeams) {
		t.Errorf("expected %s error, got %v", CodePlaceholderTeams, res.Errors)
	}
}

func TestValidateAllowsCancellationWithPlaceholders(t *testing.T) {
	engine := NewValidationEngine(newFakeGameStore())
	game := &models.Game{ID: "g1", TeamA: "TBD", TeamB: "TBD"}

	for _, status := range []models.GameStatus{models.GameStatusCancelled, models.GameStatusScheduled} {
		res := engine.Validate(context.Background(), game, models.GameUpdate{Status: statusPtr(status)})
		if !res.Valid {
			t.Errorf("status %s should be allowed on a placeholder game, got %v", status, res.Errors)
		}
	}
}

func TestValidateDependenciesNotMet(t *testing.T) {
	store := newFakeGameStore(
		&models.Game{ID: "dep1", TeamA: "A", TeamB: "B", Status: models.GameStatusCompleted},
		&models.Game{ID: "dep2", TeamA: "C", TeamB: "D", Status: models.GameStatusScheduled},
	)
	engine := NewValidationEngine(store)
	game := &models.Game{
		ID: "g1", TeamA: "Rockets", TeamB: "Comets",
		DependsOnGames: []string{"dep1", "dep2", "missing"},
	}

	res := engine.Validate(context.Background(), game, models.GameUpdate{Status: statusPtr(models.GameStatusInProgress)})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !hasIssue(res.Errors, CodeDependenciesNotMet) {
		t.Fatalf("expected %s error, got %v", CodeDependenciesNotMet, res.Errors)
	}
	// One issue covers all unmet dependencies.
	count := 0
	for _, issue := range res.Errors {
		if issue.Code == CodeDependenciesNotMet {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected a single aggregated dependency issue, got %d", count)
	}
}

func TestValidateDependencyStoreErrorBlocks(t *testing.T) {
	store := newFakeGameStore()
	store.getErrs["dep1"] = errors.New("connection refused")
	engine := NewValidationEngine(store)
	game := &models.Game{ID: "g1", TeamA: "Rockets", TeamB: "Comets", DependsOnGames: []string{"dep1"}}

	res := engine.Validate(context.Background(), game, models.GameUpdate{Status: statusPtr(models.GameStatusInProgress)})
	if res.Valid {
		t.Fatal("unverifiable dependencies must block the update")
	}
	if !hasIssue(res.Errors, CodeValidationFailed) {
		t.Errorf("expected %s error, got %v", CodeValidationFailed, res.Errors)
	}
}

func TestValidateDependenciesIgnoredUnlessStarting(t *testing.T) {
	store := newFakeGameStore() // dependencies do not exist in the store
	engine := NewValidationEngine(store)
	game := &models.Game{ID: "g1", TeamA: "Rockets", TeamB: "Comets", DependsOnGames: []string{"missing"}}

	res := engine.Validate(context.Background(), game, models.GameUpdate{ScoreA: intPtr(2), ScoreB: intPtr(1)})
	if !res.Valid {
		t.Fatalf("dependency checks should only run when moving to in_progress, got %v", res.Errors)
	}
}
