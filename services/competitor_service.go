package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Dosada05/bracket-tracker/models"
	"github.com/Dosada05/bracket-tracker/repositories"
	"github.com/google/uuid"
)

type AddCompetitorInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Skill     float64 `json:"skill"`
	Placement *int    `json:"placement"`
}

// CompetitorService manages the roster. Roster and seed changes do not touch
// an existing bracket; it has to be regenerated, which ApplySeedingScores
// does on its own.
type CompetitorService interface {
	Add(ctx context.Context, tournamentID string, input AddCompetitorInput) (*models.Competitor, error)
	Remove(ctx context.Context, tournamentID, competitorID string) error
	List(ctx context.Context, tournamentID string) ([]models.Competitor, error)
	SetSeed(ctx context.Context, tournamentID, competitorID string, placement *int) (*models.Competitor, error)
	ResetSeeding(ctx context.Context, tournamentID string) error
	ResetRoster(ctx context.Context, tournamentID string) (int64, error)
	ApplySeedingScores(ctx context.Context, tournamentID string, scores map[string]float64) (*models.BracketState, error)
}

type competitorService struct {
	db             *sql.DB
	store          *BracketStore
	competitorRepo repositories.CompetitorRepository
	bracketService BracketService
	logger         *slog.Logger
}

func NewCompetitorService(
	db *sql.DB,
	store *BracketStore,
	competitorRepo repositories.CompetitorRepository,
	bracketService BracketService,
	logger *slog.Logger,
) CompetitorService {
	return &competitorService{
		db:             db,
		store:          store,
		competitorRepo: competitorRepo,
		bracketService: bracketService,
		logger:         logger,
	}
}

func (s *competitorService) Add(ctx context.Context, tournamentID string, input AddCompetitorInput) (*models.Competitor, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrCompetitorNameRequired)
	}
	if math.IsNaN(input.Skill) || math.IsInf(input.Skill, 0) {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, ErrInvalidSkill)
	}
	if err := validatePlacement(input.Placement); err != nil {
		return nil, err
	}

	c := &models.Competitor{
		ID:        strings.TrimSpace(input.ID),
		Name:      name,
		Skill:     input.Skill,
		Placement: input.Placement,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	err := s.store.locked(ctx, tournamentID, func() error {
		return s.competitorRepo.Create(ctx, nil, tournamentID, c)
	})
	if err != nil {
		return nil, translateError(err)
	}
	s.logger.Info("competitor added",
		slog.String("tournament_id", tournamentID),
		slog.String("competitor_id", c.ID))
	return c, nil
}

func (s *competitorService) Remove(ctx context.Context, tournamentID, competitorID string) error {
	err := s.store.locked(ctx, tournamentID, func() error {
		return s.competitorRepo.Delete(ctx, tournamentID, competitorID)
	})
	if err != nil {
		return translateError(err)
	}
	s.logger.Info("competitor removed",
		slog.String("tournament_id", tournamentID),
		slog.String("competitor_id", competitorID))
	return nil
}

func (s *competitorService) List(ctx context.Context, tournamentID string) ([]models.Competitor, error) {
	return s.competitorRepo.ListByTournament(ctx, tournamentID)
}

// SetSeed sets or, with a nil placement, clears a manual seed.
func (s *competitorService) SetSeed(ctx context.Context, tournamentID, competitorID string, placement *int) (*models.Competitor, error) {
	if err := validatePlacement(placement); err != nil {
		return nil, err
	}
	err := s.store.locked(ctx, tournamentID, func() error {
		return s.competitorRepo.UpdatePlacement(ctx, nil, tournamentID, competitorID, placement)
	})
	if err != nil {
		return nil, translateError(err)
	}
	c, err := s.competitorRepo.FindByID(ctx, tournamentID, competitorID)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (s *competitorService) ResetSeeding(ctx context.Context, tournamentID string) error {
	return s.store.locked(ctx, tournamentID, func() error {
		return s.competitorRepo.ClearPlacements(ctx, nil, tournamentID)
	})
}

// ResetRoster deletes every competitor of the tournament together with its
// bracket, in one transaction.
func (s *competitorService) ResetRoster(ctx context.Context, tournamentID string) (int64, error) {
	var deleted int64
	err := s.store.locked(ctx, tournamentID, func() error {
		return s.inTx(ctx, tournamentID, func(tx *sql.Tx) error {
			var err error
			if deleted, err = s.competitorRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
				return err
			}
			return s.store.drop(ctx, tx, tournamentID)
		})
	})
	if err != nil {
		return 0, err
	}
	s.store.forget(ctx, tournamentID)
	s.logger.Info("roster reset",
		slog.String("tournament_id", tournamentID),
		slog.Int64("removed", deleted))
	return deleted, nil
}

// ApplySeedingScores turns cumulative seeding scores into placements (highest
// score seeded first, ties broken by skill), clears the placement of every
// competitor without a score and regenerates the bracket.
func (s *competitorService) ApplySeedingScores(ctx context.Context, tournamentID string, scores map[string]float64) (*models.BracketState, error) {
	roster, err := s.competitorRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %s: %w", tournamentID, err)
	}

	known := make(map[string]models.Competitor, len(roster))
	for _, c := range roster {
		known[c.ID] = c
	}
	scored := make([]string, 0, len(scores))
	for id, score := range scores {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %w: %q", ErrValidationFailed, ErrUnknownSeedingEntry, id)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("%w: seeding score for %q is not a finite number", ErrValidationFailed, id)
		}
		scored = append(scored, id)
	}
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		if known[a].Skill != known[b].Skill {
			return known[a].Skill > known[b].Skill
		}
		return a < b
	})

	if err := s.writePlacements(ctx, tournamentID, scored); err != nil {
		return nil, err
	}
	s.logger.Info("seeding applied",
		slog.String("tournament_id", tournamentID),
		slog.Int("seeded", len(scored)),
		slog.Int("unseeded", len(roster)-len(scored)))

	return s.bracketService.Generate(ctx, tournamentID)
}

func (s *competitorService) writePlacements(ctx context.Context, tournamentID string, ordered []string) error {
	return s.store.locked(ctx, tournamentID, func() error {
		return s.inTx(ctx, tournamentID, func(tx *sql.Tx) error {
			if err := s.competitorRepo.ClearPlacements(ctx, tx, tournamentID); err != nil {
				return err
			}
			for i, id := range ordered {
				placement := i + 1
				if err := s.competitorRepo.UpdatePlacement(ctx, tx, tournamentID, id, &placement); err != nil {
					return translateError(err)
				}
			}
			return nil
		})
	})
}

// inTx runs fn in a transaction that is committed when fn succeeds and rolled
// back otherwise.
func (s *competitorService) inTx(ctx context.Context, tournamentID string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit changes for tournament %s: %w", tournamentID, cErr)
		}
	}()

	return fn(tx)
}

func validatePlacement(placement *int) error {
	if placement != nil && *placement < 1 {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrInvalidPlacement)
	}
	return nil
}
