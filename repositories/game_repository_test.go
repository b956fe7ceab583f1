package repositories

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/courtside-app/courtside-server/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestBuildGameUpdateClausesSkipsNilFields(t *testing.T) {
	clauses, args := buildGameUpdateClauses(models.GameUpdate{})
	if len(clauses) != 0 || len(args) != 0 {
		t.Errorf("empty update must produce no clauses, got %v / %v", clauses, args)
	}
}

func TestBuildGameUpdateClausesPlaceholders(t *testing.T) {
	status := models.GameStatusCompleted
	clauses, args := buildGameUpdateClauses(models.GameUpdate{
		TeamA:  strPtr("Rockets"),
		ScoreA: intPtr(21),
		Status: &status,
	})
	if len(clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %v", clauses)
	}
	joined := strings.Join(clauses, ", ")
	for _, want := range []string{"team_a = $1", "score_a = $2", "status = $3"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected clause %q in %q", want, joined)
		}
	}
	if len(args) != 3 {
		t.Errorf("expected 3 args, got %v", args)
	}
}

func TestBuildGameUpdateClausesEmptyImageClearsColumn(t *testing.T) {
	clauses, args := buildGameUpdateClauses(models.GameUpdate{TeamAImageURL: strPtr("")})
	if len(clauses) != 1 || clauses[0] != "team_a_image_url = NULL" {
		t.Errorf("expected NULL clause, got %v", clauses)
	}
	if len(args) != 0 {
		t.Errorf("clearing an image must not bind an argument, got %v", args)
	}
}

func TestBuildGameUpdateClausesRetiresLegacyColumns(t *testing.T) {
	winner := []string{"g2"}
	loser := []string{}
	clauses, _ := buildGameUpdateClauses(models.GameUpdate{
		WinnerAdvancesTo: &winner,
		LoserAdvancesTo:  &loser,
	})
	joined := strings.Join(clauses, ", ")
	if !strings.Contains(joined, "winner_feeds_into_game = NULL") {
		t.Errorf("writing the winner list must retire the legacy column, got %q", joined)
	}
	if !strings.Contains(joined, "loser_feeds_into_game = NULL") {
		t.Errorf("writing the loser list must retire the legacy column, got %q", joined)
	}
}

func TestBuildGameUpdateClausesTimestamp(t *testing.T) {
	now := time.Now()
	clauses, args := buildGameUpdateClauses(models.GameUpdate{UpdatedAt: &now})
	if len(clauses) != 1 || clauses[0] != "updated_at = $1" {
		t.Errorf("unexpected clauses: %v", clauses)
	}
	if len(args) != 1 {
		t.Errorf("expected 1 arg, got %v", args)
	}
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckAffectedRows(t *testing.T) {
	if err := checkAffectedRows(fakeResult{rows: 1}, ErrGameNotFound); err != nil {
		t.Errorf("one affected row must pass, got %v", err)
	}
	if err := checkAffectedRows(fakeResult{rows: 0}, ErrGameNotFound); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("zero affected rows must report not found, got %v", err)
	}
	if err := checkAffectedRows(fakeResult{err: errors.New("driver broke")}, ErrGameNotFound); err == nil {
		t.Error("driver error must propagate")
	}
}
