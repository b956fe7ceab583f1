package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtside-app/courtside-server/models"
)

type LocationRepository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Location, error)
}

type postgresLocationRepository struct {
	db *sql.DB
}

func NewPostgresLocationRepository(db *sql.DB) LocationRepository {
	return &postgresLocationRepository{db: db}
}

func (r *postgresLocationRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Location, error) {
	query := `
		SELECT id, tournament_id, name, address, latitude, longitude
		FROM locations WHERE tournament_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	locations := make([]*models.Location, 0)
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(
			&location.ID,
			&location.TournamentID,
			&location.Name,
			&location.Address,
			&location.Latitude,
			&location.Longitude,
		); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during location rows iteration: %w", err)
	}
	return locations, nil
}
