package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/courtside-app/courtside-server/models"
)

func newTestGameService(store *fakeGameStore, follows *fakeFollows, stats *fakeStats) GameService {
	return NewGameService(store, follows, stats, zeroRetry(), testLogger())
}

func TestUpdateGameCompletionAdvancesTeams(t *testing.T) {
	semi := &models.Game{
		ID: "semi", TournamentID: "t1", DivisionID: "d1", PoolID: strPtr("p1"),
		TeamA: "Rockets", TeamB: "Comets",
		Status:           models.GameStatusInProgress,
		WinnerAdvancesTo: []string{"final"},
	}
	final := &models.Game{ID: "final", DivisionID: "d1", TeamA: "TBD", TeamB: "Sharks"}
	store := newFakeGameStore(semi, final)
	stats := &fakeStats{}
	svc := newTestGameService(store, &fakeFollows{}, stats)

	res := svc.UpdateGame(context.Background(), "semi", models.GameUpdate{
		ScoreA: intPtr(21),
		ScoreB: intPtr(14),
		Status: statusPtr(models.GameStatusCompleted),
	})

	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if res.UpdatedGame == nil || res.UpdatedGame.Status != models.GameStatusCompleted {
		t.Fatalf("updated game not reported: %+v", res.UpdatedGame)
	}
	if res.UpdatedGame.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be stamped")
	}
	if len(res.AffectedGames) != 1 || res.AffectedGames[0].ID != "final" {
		t.Fatalf("expected final in affected games, got %+v", res.AffectedGames)
	}
	if got := store.mustGet("final").TeamA; got != "Rockets" {
		t.Errorf("winner not advanced, got %q", got)
	}
	if len(stats.divisions) == 0 || stats.divisions[0] != "d1" {
		t.Errorf("division cache not invalidated: %v", stats.divisions)
	}
	if len(stats.pools) != 1 || stats.pools[0] != "p1" {
		t.Errorf("pool cache not invalidated: %v", stats.pools)
	}
	if len(stats.teams) != 2 {
		t.Errorf("expected both team caches invalidated, got %v", stats.teams)
	}
}

func TestUpdateGameValidationFailureWritesNothing(t *testing.T) {
	game := &models.Game{ID: "g1", DivisionID: "d1", TeamA: "Rockets", TeamB: "Comets", ScoreA: 5}
	store := newFakeGameStore(game)
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res := svc.UpdateGame(context.Background(), "g1", models.GameUpdate{ScoreA: intPtr(-3)})

	if res.Success {
		t.Fatal("expected failure")
	}
	if len(res.Errors) == 0 || !strings.HasPrefix(res.Errors[0], string(CodeInvalidScores)) {
		t.Fatalf("expected %s error, got %v", CodeInvalidScores, res.Errors)
	}
	if got := store.mustGet("g1").ScoreA; got != 5 {
		t.Errorf("store must be untouched after validation failure, score = %d", got)
	}
}

func TestUpdateGameStoreFailureClassifiedAsNetwork(t *testing.T) {
	store := newFakeGameStore()
	store.getErrs["g1"] = errors.New("connection refused")
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res := svc.UpdateGame(context.Background(), "g1", models.GameUpdate{ScoreA: intPtr(1)})

	if res.Success {
		t.Fatal("expected failure")
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], string(CodeNetworkError)) {
		t.Fatalf("expected %s classification, got %v", CodeNetworkError, res.Errors)
	}
	// The retry wrapper re-attempted before giving up.
	if store.getCalls < 3 {
		t.Errorf("expected retried reads, got %d calls", store.getCalls)
	}
}

func TestUpdateGameMissingGameNotRetried(t *testing.T) {
	store := newFakeGameStore()
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res := svc.UpdateGame(context.Background(), "ghost", models.GameUpdate{ScoreA: intPtr(1)})

	if res.Success {
		t.Fatal("expected failure")
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], string(CodeGameNotFound)) {
		t.Fatalf("expected %s classification, got %v", CodeGameNotFound, res.Errors)
	}
	// One load plus the best-effort refetch in the failure path.
	if store.getCalls != 2 {
		t.Errorf("not-found must not be retried, got %d calls", store.getCalls)
	}
}

func TestUpdateGamePartialCascadeFailureSurfacesWarnings(t *testing.T) {
	semi := &models.Game{
		ID: "semi", DivisionID: "d1", TeamA: "Rockets", TeamB: "Comets",
		Status:           models.GameStatusInProgress,
		WinnerAdvancesTo: []string{"final"},
		LoserAdvancesTo:  []string{"consolation"},
	}
	final := &models.Game{ID: "final", DivisionID: "d1", TeamA: "TBD", TeamB: "Sharks"}
	store := newFakeGameStore(semi, final)
	store.getErrs["consolation"] = errors.New("game consolation: not reachable right now")
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res := svc.UpdateGame(context.Background(), "semi", models.GameUpdate{
		ScoreA: intPtr(21),
		ScoreB: intPtr(14),
		Status: statusPtr(models.GameStatusCompleted),
	})

	if !res.Success {
		t.Fatalf("primary write succeeded, result must succeed: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected cascade warnings")
	}
	found := false
	for _, warning := range res.Warnings {
		if strings.Contains(warning, "consolation") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning naming the failed destination, got %v", res.Warnings)
	}
	if len(res.AffectedGames) != 1 || res.AffectedGames[0].ID != "final" {
		t.Errorf("successful destination still reported, got %+v", res.AffectedGames)
	}
}

func TestUpdateGameRepeatedResetIsNoop(t *testing.T) {
	semi := &models.Game{
		ID: "semi", DivisionID: "d1", TeamA: "Rockets", TeamB: "Comets",
		Status:           models.GameStatusInProgress,
		WinnerAdvancesTo: []string{"final"},
	}
	final := &models.Game{ID: "final", DivisionID: "d1", TeamA: "TBD", TeamB: "Sharks",
		DependsOnGames: []string{"semi"}}
	store := newFakeGameStore(semi, final)
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	complete := svc.UpdateGame(context.Background(), "semi", models.GameUpdate{
		ScoreA: intPtr(21),
		ScoreB: intPtr(14),
		Status: statusPtr(models.GameStatusCompleted),
	})
	if !complete.Success {
		t.Fatalf("completion failed: %v", complete.Errors)
	}

	reset := svc.UpdateGame(context.Background(), "semi", models.GameUpdate{
		Status: statusPtr(models.GameStatusScheduled),
	})
	if !reset.Success {
		t.Fatalf("reset failed: %v", reset.Errors)
	}
	if got := store.mustGet("final").TeamA; got != "Winner of semi" {
		t.Fatalf("reset did not restore the placeholder, got %q", got)
	}
	batchesAfterReset := store.batchCalls

	again := svc.UpdateGame(context.Background(), "semi", models.GameUpdate{
		Status: statusPtr(models.GameStatusScheduled),
	})
	if !again.Success {
		t.Fatalf("repeated reset failed: %v", again.Errors)
	}
	if store.batchCalls != batchesAfterReset {
		t.Errorf("repeated reset must not cascade again, batch calls went %d -> %d",
			batchesAfterReset, store.batchCalls)
	}
	if len(again.AffectedGames) != 0 {
		t.Errorf("repeated reset must not report affected games, got %+v", again.AffectedGames)
	}
	if got := store.mustGet("final").TeamA; got != "Winner of semi" {
		t.Errorf("placeholder must survive a repeated reset, got %q", got)
	}
}

func TestUpdateGameTieCompletionWarnsAndSkipsAdvancement(t *testing.T) {
	semi := &models.Game{
		ID: "semi", DivisionID: "d1", TeamA: "Rockets", TeamB: "Comets",
		Status:           models.GameStatusInProgress,
		WinnerAdvancesTo: []string{"final"},
	}
	final := &models.Game{ID: "final", DivisionID: "d1", TeamA: "TBD", TeamB: "Sharks"}
	store := newFakeGameStore(semi, final)
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res := svc.UpdateGame(context.Background(), "semi", models.GameUpdate{
		ScoreA: intPtr(10),
		ScoreB: intPtr(10),
		Status: statusPtr(models.GameStatusCompleted),
	})

	if !res.Success {
		t.Fatalf("tie completion persists and warns, got errors: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected warnings for the unresolved tie")
	}
	if got := store.mustGet("final").TeamA; got != "TBD" {
		t.Errorf("no advancement may happen on a tie, final team A = %q", got)
	}
}

func TestSaveAdvancementInvalidConfigNotPersisted(t *testing.T) {
	game := &models.Game{ID: "g1", DivisionID: "d1", TeamA: "A", TeamB: "B"}
	store := newFakeGameStore(game)
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res, err := svc.SaveAdvancement(context.Background(), "g1", AdvancementConfig{
		WinnerAdvancesTo: []string{"g1"},
	})
	if err != nil {
		t.Fatalf("SaveAdvancement() error = %v", err)
	}
	if res.Valid {
		t.Fatal("self reference must be invalid")
	}
	if got := store.mustGet("g1").WinnerAdvancesTo; len(got) != 0 {
		t.Errorf("invalid config must not be written, got %v", got)
	}
}

func TestSaveAdvancementPersistsAndRetiresLegacyFields(t *testing.T) {
	game := &models.Game{ID: "g1", DivisionID: "d1", TeamA: "A", TeamB: "B",
		WinnerFeedsIntoGame: strPtr("old-target")}
	dest := &models.Game{ID: "g2", DivisionID: "d1", TeamA: "C", TeamB: "D"}
	store := newFakeGameStore(game, dest)
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	res, err := svc.SaveAdvancement(context.Background(), "g1", AdvancementConfig{
		WinnerAdvancesTo: []string{"g2"},
		LoserAdvancesTo:  []string{},
	})
	if err != nil {
		t.Fatalf("SaveAdvancement() error = %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid config, got %v", res.Errors)
	}

	saved := store.mustGet("g1")
	if len(saved.WinnerAdvancesTo) != 1 || saved.WinnerAdvancesTo[0] != "g2" {
		t.Errorf("winner list not saved, got %v", saved.WinnerAdvancesTo)
	}
	if saved.WinnerFeedsIntoGame != nil {
		t.Errorf("legacy field must be retired on save, got %v", *saved.WinnerFeedsIntoGame)
	}
}

func TestGetDownstreamGames(t *testing.T) {
	source := &models.Game{ID: "semi", DivisionID: "d1", TeamA: "A", TeamB: "B"}
	fed := &models.Game{ID: "final", DivisionID: "d1", TeamA: "TBD", TeamB: "C",
		DependsOnGames: []string{"semi"}}
	unrelated := &models.Game{ID: "other", DivisionID: "d1", TeamA: "D", TeamB: "E"}
	store := newFakeGameStore(source, fed, unrelated)
	svc := newTestGameService(store, &fakeFollows{}, &fakeStats{})

	games, err := svc.GetDownstreamGames(context.Background(), "semi")
	if err != nil {
		t.Fatalf("GetDownstreamGames() error = %v", err)
	}
	if len(games) != 1 || games[0].ID != "final" {
		t.Errorf("expected only the fed game, got %+v", games)
	}
}
