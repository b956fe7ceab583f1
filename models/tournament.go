package models

import "time"

type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCanceled  TournamentStatus = "canceled"
)

type Tournament struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Sport     string           `json:"sport"`
	City      *string          `json:"city,omitempty"`
	Status    TournamentStatus `json:"status"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	LogoKey   *string          `json:"-"`
	LogoURL   *string          `json:"logo_url,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Division struct {
	ID           string  `json:"id"`
	TournamentID string  `json:"tournament_id"`
	Name         string  `json:"name"`
	AgeGroup     *string `json:"age_group,omitempty"`
}

type Location struct {
	ID           string   `json:"id"`
	TournamentID string   `json:"tournament_id"`
	Name         string   `json:"name"`
	Address      *string  `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}
