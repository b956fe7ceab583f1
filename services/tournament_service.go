package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/courtside-app/courtside-server/models"
	"github.com/courtside-app/courtside-server/repositories"
	"github.com/courtside-app/courtside-server/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StandingsCache caches computed division standings. A cache miss returns
// ok=false; writes are best-effort.
type StandingsCache interface {
	GetDivisionStandings(ctx context.Context, divisionID string) ([]TeamStanding, bool)
	SetDivisionStandings(ctx context.Context, divisionID string, standings []TeamStanding)
}

// TournamentOverview bundles everything a client needs to render a
// tournament landing screen in one response.
type TournamentOverview struct {
	Tournament *models.Tournament `json:"tournament"`
	Divisions  []*models.Division `json:"divisions"`
	Locations  []*models.Location `json:"locations"`
}

type TournamentService interface {
	List(ctx context.Context) ([]*models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	Create(ctx context.Context, tournament *models.Tournament) (*models.Tournament, error)
	Overview(ctx context.Context, id string) (*TournamentOverview, error)
	Divisions(ctx context.Context, tournamentID string) ([]*models.Division, error)
	Locations(ctx context.Context, tournamentID string) ([]*models.Location, error)
	TournamentGames(ctx context.Context, tournamentID string) ([]*models.Game, error)
	CreateGame(ctx context.Context, game *models.Game) (*models.Game, error)
	DivisionGames(ctx context.Context, divisionID string) ([]*models.Game, error)
	DivisionStandings(ctx context.Context, divisionID string) ([]TeamStanding, error)
	UploadLogo(ctx context.Context, tournamentID, fileName, contentType string, file io.Reader) (string, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	divisionRepo   repositories.DivisionRepository
	locationRepo   repositories.LocationRepository
	gameRepo       repositories.GameRepository
	standings      StandingsCache
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	divisionRepo repositories.DivisionRepository,
	locationRepo repositories.LocationRepository,
	gameRepo repositories.GameRepository,
	standings StandingsCache,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		divisionRepo:   divisionRepo,
		locationRepo:   locationRepo,
		gameRepo:       gameRepo,
		standings:      standings,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for _, t := range tournaments {
		s.populateLogoURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) Create(ctx context.Context, tournament *models.Tournament) (*models.Tournament, error) {
	if tournament.Name == "" || tournament.Sport == "" {
		return nil, fmt.Errorf("%w: tournament name and sport are required", ErrInvalidInput)
	}
	if tournament.EndDate.Before(tournament.StartDate) {
		return nil, fmt.Errorf("%w: tournament cannot end before it starts", ErrInvalidInput)
	}
	tournament.ID = uuid.NewString()
	if tournament.Status == "" {
		tournament.Status = models.TournamentStatusUpcoming
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

// CreateGame inserts one game into an existing division. Team slots may hold
// placeholder names; advancement edges are configured separately through
// SaveAdvancement so they pass graph validation.
func (s *tournamentService) CreateGame(ctx context.Context, game *models.Game) (*models.Game, error) {
	if game.TeamA == "" || game.TeamB == "" {
		return nil, fmt.Errorf("%w: both team slots are required", ErrInvalidInput)
	}
	division, err := s.divisionRepo.GetByID(ctx, game.DivisionID)
	if err != nil {
		return nil, err
	}
	if division.TournamentID != game.TournamentID {
		return nil, fmt.Errorf("%w: division %s does not belong to tournament %s",
			ErrInvalidInput, game.DivisionID, game.TournamentID)
	}
	game.ID = uuid.NewString()
	if game.Status == "" {
		game.Status = models.GameStatusScheduled
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Overview fetches the tournament, its divisions and its locations in
// parallel.
func (s *tournamentService) Overview(ctx context.Context, id string) (*TournamentOverview, error) {
	overview := &TournamentOverview{}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tournament, err := s.tournamentRepo.GetByID(gCtx, id)
		if err != nil {
			return err
		}
		s.populateLogoURL(tournament)
		overview.Tournament = tournament
		return nil
	})
	g.Go(func() error {
		divisions, err := s.divisionRepo.ListByTournament(gCtx, id)
		if err != nil {
			return err
		}
		overview.Divisions = divisions
		return nil
	})
	g.Go(func() error {
		locations, err := s.locationRepo.ListByTournament(gCtx, id)
		if err != nil {
			return err
		}
		overview.Locations = locations
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

func (s *tournamentService) Divisions(ctx context.Context, tournamentID string) ([]*models.Division, error) {
	return s.divisionRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) Locations(ctx context.Context, tournamentID string) ([]*models.Location, error) {
	return s.locationRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) TournamentGames(ctx context.Context, tournamentID string) ([]*models.Game, error) {
	return s.gameRepo.ListByTournament(ctx, tournamentID)
}

func (s *tournamentService) DivisionGames(ctx context.Context, divisionID string) ([]*models.Game, error) {
	return s.gameRepo.GetGamesByDivision(ctx, divisionID)
}

// DivisionStandings serves the cached table when present and recomputes
// it from division games otherwise.
func (s *tournamentService) DivisionStandings(ctx context.Context, divisionID string) ([]TeamStanding, error) {
	if standings, ok := s.standings.GetDivisionStandings(ctx, divisionID); ok {
		return standings, nil
	}
	games, err := s.gameRepo.GetGamesByDivision(ctx, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load games for standings: %w", err)
	}
	standings := ComputeStandings(games)
	s.standings.SetDivisionStandings(ctx, divisionID, standings)
	return standings, nil
}

// UploadLogo stores the image in object storage under a fresh key,
// records the key and returns the public URL. The previous logo object,
// if any, is deleted best-effort.
func (s *tournamentService) UploadLogo(ctx context.Context, tournamentID, fileName, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadsDisabled
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(fileName))
	key := fmt.Sprintf("tournaments/%s/logo-%s%s", tournamentID, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload tournament logo: %w", err)
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &result.Key); err != nil {
		return "", fmt.Errorf("failed to store logo key for tournament %s: %w", tournamentID, err)
	}

	if tournament.LogoKey != nil && *tournament.LogoKey != "" && *tournament.LogoKey != result.Key {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Warn("failed to delete previous tournament logo",
				slog.String("tournament_id", tournamentID),
				slog.String("key", *tournament.LogoKey),
				slog.Any("error", err))
		}
	}
	return result.Location, nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if t.LogoKey == nil || *t.LogoKey == "" || s.uploader == nil {
		return
	}
	if publicURL := s.uploader.GetPublicURL(*t.LogoKey); publicURL != "" {
		t.LogoURL = &publicURL
	}
}
