package services

import "github.com/courtside-app/courtside-server/models"

// TeamSlot names one of the two team positions in a game record.
type TeamSlot string

const (
	SlotTeamA TeamSlot = "teamA"
	SlotTeamB TeamSlot = "teamB"
)

// ResolveSlot decides which slot of a downstream game an advancing team
// occupies, in priority order:
//
//  1. the one slot still holding a placeholder, if exactly one does (never
//     overwrite an already-advanced team when an empty slot exists);
//  2. the game's bracket position: even -> team A, odd -> team B;
//  3. the source game's index in DependsOnGames: 0 -> team A, 1 -> team B;
//  4. team A. This last fallback can overwrite a real team when both slots
//     are already filled and no structural link points at the source.
func ResolveSlot(downstream *models.Game, sourceGameID string) TeamSlot {
	aPlaceholder := IsPlaceholder(downstream.TeamA)
	bPlaceholder := IsPlaceholder(downstream.TeamB)
	if aPlaceholder != bPlaceholder {
		if aPlaceholder {
			return SlotTeamA
		}
		return SlotTeamB
	}

	if downstream.BracketPosition != nil {
		if *downstream.BracketPosition%2 == 0 {
			return SlotTeamA
		}
		return SlotTeamB
	}

	for i, depID := range downstream.DependsOnGames {
		if depID == sourceGameID {
			if i == 0 {
				return SlotTeamA
			}
			return SlotTeamB
		}
	}

	return SlotTeamA
}
