package services

import (
	"testing"

	"github.com/courtside-app/courtside-server/models"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		team string
		want bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"TBD", "TBD", true},
		{"winner reference", "Winner of Semifinal 1", true},
		{"loser reference", "Loser of Game 12", true},
		{"first pool seed", "1st Pool A", true},
		{"second pool seed", "2nd Pool B", true},
		{"third pool seed", "3rd Pool C", true},
		{"fourth pool seed", "4th Pool A", true},
		{"real team", "Rockets", false},
		{"team starting with number but no ordinal", "76ers", false},
		{"team containing winner mid-name", "The Winners", false},
		{"ordinal without trailing space", "1st", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlaceholder(tt.team); got != tt.want {
				t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.team, got, tt.want)
			}
		})
	}
}

func TestHasPlaceholderTeams(t *testing.T) {
	if HasPlaceholderTeams(nil) {
		t.Error("nil game should not report placeholders")
	}
	game := &models.Game{TeamA: "Rockets", TeamB: "TBD"}
	if !HasPlaceholderTeams(game) {
		t.Error("expected placeholder in team B to be detected")
	}
	game.TeamB = "Comets"
	if HasPlaceholderTeams(game) {
		t.Error("two real teams should not report placeholders")
	}
}
