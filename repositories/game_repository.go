package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/courtside-app/courtside-server/models"
	"github.com/lib/pq"
)

// MaxBatchSize bounds one atomic batch update. Exceeding it is a caller
// error, never a silent truncation.
const MaxBatchSize = 500

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, id string) (*models.Game, error)
	UpdateGame(ctx context.Context, id string, fields models.GameUpdate) error
	BatchUpdateGames(ctx context.Context, updates []models.GameFieldUpdate) error
	GetGamesFedBy(ctx context.Context, gameID string) ([]*models.Game, error)
	GetGamesByDivision(ctx context.Context, divisionID string) ([]*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `
	id, tournament_id, division_id, pool_id, location_id,
	team_a, team_b, team_a_image_url, team_b_image_url,
	score_a, score_b, status,
	depends_on_games, bracket_position,
	winner_advances_to, loser_advances_to,
	winner_feeds_into_game, loser_feeds_into_game,
	game_label, scheduled_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID,
		&game.TournamentID,
		&game.DivisionID,
		&game.PoolID,
		&game.LocationID,
		&game.TeamA,
		&game.TeamB,
		&game.TeamAImageURL,
		&game.TeamBImageURL,
		&game.ScoreA,
		&game.ScoreB,
		&game.Status,
		pq.Array(&game.DependsOnGames),
		&game.BracketPosition,
		pq.Array(&game.WinnerAdvancesTo),
		pq.Array(&game.LoserAdvancesTo),
		&game.WinnerFeedsIntoGame,
		&game.LoserFeedsIntoGame,
		&game.GameLabel,
		&game.ScheduledAt,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games
			(id, tournament_id, division_id, pool_id, location_id,
			 team_a, team_b, team_a_image_url, team_b_image_url,
			 score_a, score_b, status,
			 depends_on_games, bracket_position,
			 winner_advances_to, loser_advances_to,
			 winner_feeds_into_game, loser_feeds_into_game,
			 game_label, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		game.ID,
		game.TournamentID,
		game.DivisionID,
		game.PoolID,
		game.LocationID,
		game.TeamA,
		game.TeamB,
		game.TeamAImageURL,
		game.TeamBImageURL,
		game.ScoreA,
		game.ScoreB,
		game.Status,
		pq.Array(game.DependsOnGames),
		game.BracketPosition,
		pq.Array(game.WinnerAdvancesTo),
		pq.Array(game.LoserAdvancesTo),
		game.WinnerFeedsIntoGame,
		game.LoserFeedsIntoGame,
		game.GameLabel,
		game.ScheduledAt,
	).Scan(&game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", game.ID, err)
	}
	return nil
}

func (r *postgresGameRepository) GetGame(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
		}
		return nil, fmt.Errorf("failed to scan game %s: %w", id, err)
	}
	return game, nil
}

// buildGameUpdateClauses turns the non-nil fields of a partial update into
// SET clauses. Image URLs set to the empty string are written as NULL.
// Writing the current-generation advancement lists retires the legacy
// single-target columns on the same row.
func buildGameUpdateClauses(fields models.GameUpdate) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, column+" = $"+strconv.Itoa(len(args)))
	}
	setImage := func(column string, value *string) {
		if *value == "" {
			clauses = append(clauses, column+" = NULL")
			return
		}
		set(column, *value)
	}

	if fields.TeamA != nil {
		set("team_a", *fields.TeamA)
	}
	if fields.TeamB != nil {
		set("team_b", *fields.TeamB)
	}
	if fields.TeamAImageURL != nil {
		setImage("team_a_image_url", fields.TeamAImageURL)
	}
	if fields.TeamBImageURL != nil {
		setImage("team_b_image_url", fields.TeamBImageURL)
	}
	if fields.ScoreA != nil {
		set("score_a", *fields.ScoreA)
	}
	if fields.ScoreB != nil {
		set("score_b", *fields.ScoreB)
	}
	if fields.Status != nil {
		set("status", *fields.Status)
	}
	if fields.WinnerAdvancesTo != nil {
		set("winner_advances_to", pq.Array(*fields.WinnerAdvancesTo))
		clauses = append(clauses, "winner_feeds_into_game = NULL")
	}
	if fields.LoserAdvancesTo != nil {
		set("loser_advances_to", pq.Array(*fields.LoserAdvancesTo))
		clauses = append(clauses, "loser_feeds_into_game = NULL")
	}
	if fields.LocationID != nil {
		set("location_id", *fields.LocationID)
	}
	if fields.ScheduledAt != nil {
		set("scheduled_at", *fields.ScheduledAt)
	}
	if fields.UpdatedAt != nil {
		set("updated_at", *fields.UpdatedAt)
	}
	return clauses, args
}

func updateGameExec(ctx context.Context, exec SQLExecutor, id string, fields models.GameUpdate) error {
	clauses, args := buildGameUpdateClauses(fields)
	if len(clauses) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString("UPDATE games SET ")
	query.WriteString(strings.Join(clauses, ", "))
	args = append(args, id)
	query.WriteString(" WHERE id = $" + strconv.Itoa(len(args)))

	result, err := exec.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", id, err)
	}
	return checkAffectedRows(result, fmt.Errorf("game %s: %w", id, ErrGameNotFound))
}

func (r *postgresGameRepository) UpdateGame(ctx context.Context, id string, fields models.GameUpdate) error {
	return updateGameExec(ctx, r.db, id, fields)
}

// BatchUpdateGames applies every update inside one transaction: all
// destinations commit together or none do.
func (r *postgresGameRepository) BatchUpdateGames(ctx context.Context, updates []models.GameFieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if len(updates) > MaxBatchSize {
		return fmt.Errorf("%w: %d updates, maximum %d", ErrBatchTooLarge, len(updates), MaxBatchSize)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	for _, upd := range updates {
		if err := updateGameExec(ctx, tx, upd.GameID, upd.Fields); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("batch update failed: %w (rollback also failed: %v)", err, rbErr)
			}
			return fmt.Errorf("batch update failed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch update: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) GetGamesFedBy(ctx context.Context, gameID string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE $1 = ANY(depends_on_games)
		   OR $1 = ANY(winner_advances_to)
		   OR $1 = ANY(loser_advances_to)
		   OR winner_feeds_into_game = $1
		   OR loser_feeds_into_game = $1
		ORDER BY scheduled_at ASC, id ASC`
	return r.queryGames(ctx, query, gameID)
}

func (r *postgresGameRepository) GetGamesByDivision(ctx context.Context, divisionID string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE division_id = $1 ORDER BY scheduled_at ASC, id ASC`
	return r.queryGames(ctx, query, divisionID)
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE tournament_id = $1 ORDER BY scheduled_at ASC, id ASC`
	return r.queryGames(ctx, query, tournamentID)
}

func (r *postgresGameRepository) queryGames(ctx context.Context, query string, arg interface{}) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}
