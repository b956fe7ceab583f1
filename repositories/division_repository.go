package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside-app/courtside-server/models"
)

type DivisionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Division, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Division, error)
}

type postgresDivisionRepository struct {
	db *sql.DB
}

func NewPostgresDivisionRepository(db *sql.DB) DivisionRepository {
	return &postgresDivisionRepository{db: db}
}

func (r *postgresDivisionRepository) GetByID(ctx context.Context, id string) (*models.Division, error) {
	query := `SELECT id, tournament_id, name, age_group FROM divisions WHERE id = $1`
	division := &models.Division{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&division.ID, &division.TournamentID, &division.Name, &division.AgeGroup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("division %s: %w", id, ErrDivisionNotFound)
		}
		return nil, fmt.Errorf("failed to scan division %s: %w", id, err)
	}
	return division, nil
}

func (r *postgresDivisionRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Division, error) {
	query := `SELECT id, tournament_id, name, age_group FROM divisions WHERE tournament_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query divisions for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	divisions := make([]*models.Division, 0)
	for rows.Next() {
		division := &models.Division{}
		if err := rows.Scan(&division.ID, &division.TournamentID, &division.Name, &division.AgeGroup); err != nil {
			return nil, fmt.Errorf("failed to scan division row: %w", err)
		}
		divisions = append(divisions, division)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during division rows iteration: %w", err)
	}
	return divisions, nil
}
