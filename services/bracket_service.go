package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-tracker/brackets"
	"github.com/Dosada05/bracket-tracker/models"
	"github.com/Dosada05/bracket-tracker/repositories"
	"golang.org/x/sync/errgroup"
)

// TournamentOverview is everything a scoreboard needs in one response.
type TournamentOverview struct {
	TournamentID string               `json:"tournament_id"`
	Competitors  []models.Competitor  `json:"competitors"`
	Bracket      *models.BracketState `json:"bracket,omitempty"`
	CurrentMatch *models.Match        `json:"current_match,omitempty"`
	Standings    []models.Standing    `json:"standings"`
	Champion     *models.Competitor   `json:"champion,omitempty"`
}

type BracketService interface {
	Generate(ctx context.Context, tournamentID string) (*models.BracketState, error)
	Get(ctx context.Context, tournamentID string) (*models.BracketState, error)
	Advance(ctx context.Context, tournamentID string) (*models.BracketState, error)
	CurrentMatch(ctx context.Context, tournamentID string) (*models.Match, error)
	Standings(ctx context.Context, tournamentID string) ([]models.Standing, error)
	Overview(ctx context.Context, tournamentID string) (*TournamentOverview, error)
}

type bracketService struct {
	store          *BracketStore
	competitorRepo repositories.CompetitorRepository
	generator      brackets.BracketGenerator
	engine         *brackets.Engine
	logger         *slog.Logger
}

func NewBracketService(
	store *BracketStore,
	competitorRepo repositories.CompetitorRepository,
	engine *brackets.Engine,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		store:          store,
		competitorRepo: competitorRepo,
		generator:      engine,
		engine:         engine,
		logger:         logger,
	}
}

// Generate seeds a new bracket from the tournament roster, replacing any
// existing bracket, and advances past first round byes.
func (s *bracketService) Generate(ctx context.Context, tournamentID string) (*models.BracketState, error) {
	var roster []models.Competitor
	st, err := s.store.replace(ctx, tournamentID, func() (*models.BracketState, error) {
		var err error
		roster, err = s.competitorRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for tournament %s: %w", tournamentID, err)
		}
		generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{Competitors: roster})
		if err != nil {
			return nil, err
		}
		return s.engine.Advance(ctx, generated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.String("tournament_id", tournamentID),
		slog.String("format", s.generator.GetName()),
		slog.Int("competitors", len(roster)))
	return st, nil
}

func (s *bracketService) Get(ctx context.Context, tournamentID string) (*models.BracketState, error) {
	return s.store.load(ctx, tournamentID)
}

func (s *bracketService) Advance(ctx context.Context, tournamentID string) (*models.BracketState, error) {
	return s.store.update(ctx, tournamentID, func(st *models.BracketState) (*models.BracketState, error) {
		return s.engine.Advance(ctx, st)
	})
}

// CurrentMatch returns nil without an error when nothing is left to play.
func (s *bracketService) CurrentMatch(ctx context.Context, tournamentID string) (*models.Match, error) {
	st, err := s.store.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.CurrentMatch(st), nil
}

func (s *bracketService) Standings(ctx context.Context, tournamentID string) ([]models.Standing, error) {
	st, err := s.store.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.Standings(st), nil
}

// Overview loads the roster and the bracket concurrently. A tournament
// without a bracket yet still gets its roster back.
func (s *bracketService) Overview(ctx context.Context, tournamentID string) (*TournamentOverview, error) {
	overview := &TournamentOverview{TournamentID: tournamentID, Standings: []models.Standing{}}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roster, err := s.competitorRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load roster for tournament %s: %w", tournamentID, err)
		}
		overview.Competitors = roster
		return nil
	})
	g.Go(func() error {
		st, err := s.store.load(gCtx, tournamentID)
		if errors.Is(err, ErrBracketNotGenerated) {
			return nil
		}
		if err != nil {
			return err
		}
		overview.Bracket = st
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if overview.Bracket != nil {
		overview.CurrentMatch = brackets.CurrentMatch(overview.Bracket)
		overview.Standings = brackets.Standings(overview.Bracket)
		if id, ok := brackets.Champion(overview.Bracket); ok {
			if c, found := overview.Bracket.Competitor(id); found {
				champion := c.Clone()
				overview.Champion = &champion
			}
		}
	}
	return overview, nil
}
