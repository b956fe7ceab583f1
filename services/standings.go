package services

import (
	"sort"

	"github.com/courtside-app/courtside-server/models"
)

// TeamStanding is one row of a division or pool table, derived from
// completed games only.
type TeamStanding struct {
	Team          string `json:"team"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Ties          int    `json:"ties"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
}

// ComputeStandings folds completed games into a sorted standings table.
// Placeholder team slots are skipped; they have no record yet.
func ComputeStandings(games []*models.Game) []TeamStanding {
	byTeam := make(map[string]*TeamStanding)
	record := func(team string, scored, allowed int) *TeamStanding {
		standing, ok := byTeam[team]
		if !ok {
			standing = &TeamStanding{Team: team}
			byTeam[team] = standing
		}
		standing.PointsFor += scored
		standing.PointsAgainst += allowed
		return standing
	}

	for _, game := range games {
		if game.Status != models.GameStatusCompleted {
			continue
		}
		if IsPlaceholder(game.TeamA) || IsPlaceholder(game.TeamB) {
			continue
		}
		a := record(game.TeamA, game.ScoreA, game.ScoreB)
		b := record(game.TeamB, game.ScoreB, game.ScoreA)
		switch {
		case game.ScoreA > game.ScoreB:
			a.Wins++
			b.Losses++
		case game.ScoreB > game.ScoreA:
			b.Wins++
			a.Losses++
		default:
			a.Ties++
			b.Ties++
		}
	}

	standings := make([]TeamStanding, 0, len(byTeam))
	for _, standing := range byTeam {
		standings = append(standings, *standing)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		diffI := standings[i].PointsFor - standings[i].PointsAgainst
		diffJ := standings[j].PointsFor - standings[j].PointsAgainst
		if diffI != diffJ {
			return diffI > diffJ
		}
		return standings[i].Team < standings[j].Team
	})
	return standings
}
