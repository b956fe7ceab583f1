package services

import (
	"regexp"
	"strings"

	"github.com/courtside-app/courtside-server/models"
)

// seedPlaceholderPattern matches pool-seed placeholders like "1st Pool A" or
// "2nd Pool B" written by tournament setup before pool play finishes.
var seedPlaceholderPattern = regexp.MustCompile(`^[0-9]+(st|nd|rd|th)\s`)

// IsPlaceholder reports whether a team slot still holds an undetermined
// placeholder rather than a real team name.
func IsPlaceholder(teamName string) bool {
	name := strings.TrimSpace(teamName)
	if name == "" || name == "TBD" {
		return true
	}
	if strings.HasPrefix(name, "Winner of ") || strings.HasPrefix(name, "Loser of ") {
		return true
	}
	return seedPlaceholderPattern.MatchString(name)
}

// HasPlaceholderTeams reports whether either team slot of the game is still a
// placeholder.
func HasPlaceholderTeams(game *models.Game) bool {
	if game == nil {
		return false
	}
	return IsPlaceholder(game.TeamA) || IsPlaceholder(game.TeamB)
}
