package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside-app/courtside-server/models"
)

// FailedUpdate records one destination game a cascade could not update.
type FailedUpdate struct {
	GameID string `json:"game_id"`
	Error  string `json:"error"`
}

// CascadeResult reports the downstream effects of one advancement or cascade.
// Success means every destination was written and re-read; partial failures
// leave Success false while AffectedGames still lists what did go through.
type CascadeResult struct {
	Success           bool           `json:"success"`
	SuccessfulUpdates []string       `json:"successful_updates"`
	FailedUpdates     []FailedUpdate `json:"failed_updates"`
	AffectedGames     []*models.Game `json:"affected_games"`
}

func emptyCascadeResult() *CascadeResult {
	return &CascadeResult{
		Success:           true,
		SuccessfulUpdates: []string{},
		FailedUpdates:     []FailedUpdate{},
		AffectedGames:     []*models.Game{},
	}
}

// cascadeTarget is one staged downstream write: a team name (real or
// synthesized placeholder) bound for a slot of the destination game.
type cascadeTarget struct {
	gameID     string
	team       string
	imageURL   *string
	clearImage bool
}

// CascadeEngine propagates a completed game's result through the bracket/pool
// graph: writing winners and losers into downstream games, pushing corrected
// results after a score edit, and reversing advancements when a completed
// game is reset.
type CascadeEngine struct {
	store   GameStore
	follows FollowCleaner
	logger  *slog.Logger
}

func NewCascadeEngine(store GameStore, follows FollowCleaner, logger *slog.Logger) *CascadeEngine {
	return &CascadeEngine{store: store, follows: follows, logger: logger}
}

// winnerLoser splits a game's teams by score. ok is false on a tie, when no
// winner can be determined.
func winnerLoser(game *models.Game) (winner, loser string, winnerImage, loserImage *string, ok bool) {
	switch {
	case game.ScoreA > game.ScoreB:
		return game.TeamA, game.TeamB, game.TeamAImageURL, game.TeamBImageURL, true
	case game.ScoreB > game.ScoreA:
		return game.TeamB, game.TeamA, game.TeamBImageURL, game.TeamAImageURL, true
	default:
		return "", "", nil, nil, false
	}
}

// AdvanceTeams writes the winner and loser of a newly-completed game into
// every destination named by its reconciled advancement configuration.
func (e *CascadeEngine) AdvanceTeams(ctx context.Context, game *models.Game) (*CascadeResult, error) {
	winner, loser, winnerImage, loserImage, ok := winnerLoser(game)
	if !ok {
		return nil, fmt.Errorf("game %s: %w", game.ID, ErrTieUnresolved)
	}

	cfg := AdvancementData(game)
	targets := make([]cascadeTarget, 0, len(cfg.WinnerAdvancesTo)+len(cfg.LoserAdvancesTo))
	for _, destID := range cfg.WinnerAdvancesTo {
		targets = append(targets, cascadeTarget{gameID: destID, team: winner, imageURL: winnerImage})
	}
	for _, destID := range cfg.LoserAdvancesTo {
		targets = append(targets, cascadeTarget{gameID: destID, team: loser, imageURL: loserImage})
	}
	if len(targets) == 0 {
		return emptyCascadeResult(), nil
	}

	e.logger.Info("advancing teams",
		slog.String("game_id", game.ID),
		slog.String("winner", winner),
		slog.Int("destinations", len(targets)))
	return e.cascadeToMultipleGames(ctx, game.ID, targets), nil
}

// CascadeGameChanges propagates a change to an already-completed game. Two
// transitions cascade: a score correction that flips the winner or loser, and
// a manual reset back to scheduled, which restores synthesized placeholders
// downstream. Anything else (including completed -> cancelled) is a no-op.
func (e *CascadeEngine) CascadeGameChanges(ctx context.Context, oldGame, newGame *models.Game) (*CascadeResult, error) {
	wasCompleted := oldGame.Status == models.GameStatusCompleted
	if !wasCompleted {
		return emptyCascadeResult(), nil
	}

	if newGame.Status == models.GameStatusScheduled {
		return e.resetDownstream(ctx, newGame)
	}
	if newGame.Status != models.GameStatusCompleted {
		return emptyCascadeResult(), nil
	}

	oldWinner, oldLoser, _, _, oldOK := winnerLoser(oldGame)
	newWinner, newLoser, winnerImage, loserImage, newOK := winnerLoser(newGame)
	if !newOK {
		return nil, fmt.Errorf("game %s: corrected score is a tie: %w", newGame.ID, ErrTieUnresolved)
	}

	cfg := AdvancementData(newGame)
	var targets []cascadeTarget
	if !oldOK || newWinner != oldWinner {
		for _, destID := range cfg.WinnerAdvancesTo {
			targets = append(targets, cascadeTarget{gameID: destID, team: newWinner, imageURL: winnerImage})
		}
	}
	if !oldOK || newLoser != oldLoser {
		for _, destID := range cfg.LoserAdvancesTo {
			targets = append(targets, cascadeTarget{gameID: destID, team: newLoser, imageURL: loserImage})
		}
	}
	if len(targets) == 0 {
		return emptyCascadeResult(), nil
	}

	e.logger.Info("cascading corrected result",
		slog.String("game_id", newGame.ID),
		slog.String("new_winner", newWinner),
		slog.Int("destinations", len(targets)))
	return e.cascadeToMultipleGames(ctx, newGame.ID, targets), nil
}

// resetDownstream replaces previously-advanced teams with placeholder text
// and clears carried images, then asks the follow-list collaborator to drop
// the games that took the placeholder write. Destinations that failed to
// update still display the advanced team and keep their followers. The
// cleanup itself is best-effort; its failure is logged and never fails the
// reset.
func (e *CascadeEngine) resetDownstream(ctx context.Context, game *models.Game) (*CascadeResult, error) {
	label := game.ID
	if game.GameLabel != nil && *game.GameLabel != "" {
		label = *game.GameLabel
	}

	cfg := AdvancementData(game)
	targets := make([]cascadeTarget, 0, len(cfg.WinnerAdvancesTo)+len(cfg.LoserAdvancesTo))
	for _, destID := range cfg.WinnerAdvancesTo {
		targets = append(targets, cascadeTarget{gameID: destID, team: "Winner of " + label, clearImage: true})
	}
	for _, destID := range cfg.LoserAdvancesTo {
		targets = append(targets, cascadeTarget{gameID: destID, team: "Loser of " + label, clearImage: true})
	}
	if len(targets) == 0 {
		return emptyCascadeResult(), nil
	}

	e.logger.Info("resetting downstream games",
		slog.String("game_id", game.ID),
		slog.Int("destinations", len(targets)))
	res := e.cascadeToMultipleGames(ctx, game.ID, targets)

	for _, gameID := range res.SuccessfulUpdates {
		if err := e.follows.RemoveGameFromAllFollowers(ctx, gameID); err != nil {
			e.logger.Warn("follow-list cleanup failed",
				slog.String("game_id", gameID),
				slog.Any("error", err))
		}
	}
	return res, nil
}

// cascadeToMultipleGames applies one team write per destination. Destinations
// that fail to read are recorded as failed and excluded; the rest go to the
// store as a single atomic batch. A failed batch marks every remaining
// destination failed with the batch error. After a successful batch each
// destination is re-fetched independently to build the affected-games report,
// so one unreadable game does not hide the others' success.
func (e *CascadeEngine) cascadeToMultipleGames(ctx context.Context, sourceID string, targets []cascadeTarget) *CascadeResult {
	res := emptyCascadeResult()
	now := time.Now()

	prepared := make([]models.GameFieldUpdate, 0, len(targets))
	for _, target := range targets {
		dest, err := e.store.GetGame(ctx, target.gameID)
		if err != nil {
			e.logger.Warn("cascade destination unreadable",
				slog.String("source_id", sourceID),
				slog.String("game_id", target.gameID),
				slog.Any("error", err))
			res.FailedUpdates = append(res.FailedUpdates, FailedUpdate{GameID: target.gameID, Error: err.Error()})
			continue
		}

		team := target.team
		fields := models.GameUpdate{UpdatedAt: &now}
		switch ResolveSlot(dest, sourceID) {
		case SlotTeamA:
			fields.TeamA = &team
			fields.TeamAImageURL = cascadeImage(target)
		case SlotTeamB:
			fields.TeamB = &team
			fields.TeamBImageURL = cascadeImage(target)
		}
		prepared = append(prepared, models.GameFieldUpdate{GameID: target.gameID, Fields: fields})
	}

	if len(prepared) > 0 {
		if err := e.store.BatchUpdateGames(ctx, prepared); err != nil {
			e.logger.Error("cascade batch write failed",
				slog.String("source_id", sourceID),
				slog.Int("destinations", len(prepared)),
				slog.Any("error", err))
			for _, upd := range prepared {
				res.FailedUpdates = append(res.FailedUpdates, FailedUpdate{GameID: upd.GameID, Error: err.Error()})
			}
			res.Success = false
			return res
		}
		// The batch committed; per-game reporting is best-effort from here.
		for _, upd := range prepared {
			refreshed, err := e.store.GetGame(ctx, upd.GameID)
			if err != nil {
				res.FailedUpdates = append(res.FailedUpdates, FailedUpdate{GameID: upd.GameID, Error: err.Error()})
				continue
			}
			res.SuccessfulUpdates = append(res.SuccessfulUpdates, upd.GameID)
			res.AffectedGames = append(res.AffectedGames, refreshed)
		}
	}

	res.Success = len(res.FailedUpdates) == 0
	return res
}

// cascadeImage picks the image field value for a staged write: the carried
// image when the advancing team has one, an explicit clear on reset, nil to
// leave the stored value alone.
func cascadeImage(target cascadeTarget) *string {
	if target.clearImage {
		empty := ""
		return &empty
	}
	return target.imageURL
}
