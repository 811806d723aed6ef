package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/bracket-tracker/brackets"
	"github.com/Dosada05/bracket-tracker/models"
	"github.com/Dosada05/bracket-tracker/repositories"
	"github.com/Dosada05/bracket-tracker/storage"
	"golang.org/x/sync/semaphore"
)

// tournamentLocks hands out one weight-1 semaphore per tournament so that
// load, mutate and save never interleave for the same bracket.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[string]*semaphore.Weighted)}
}

func (l *tournamentLocks) acquire(ctx context.Context, tournamentID string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.locks[tournamentID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.locks[tournamentID] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for tournament %s: %w", tournamentID, err)
	}
	return func() { sem.Release(1) }, nil
}

// BracketStore wraps the bracket repository with per-tournament locking and
// snapshot archiving. All services that change a bracket share one store.
type BracketStore struct {
	repo    repositories.BracketRepository
	archive storage.SnapshotArchive
	locks   *tournamentLocks
	logger  *slog.Logger
}

func NewBracketStore(repo repositories.BracketRepository, archive storage.SnapshotArchive, logger *slog.Logger) *BracketStore {
	if archive == nil {
		archive = storage.NewNoopSnapshotArchive()
	}
	return &BracketStore{
		repo:    repo,
		archive: archive,
		locks:   newTournamentLocks(),
		logger:  logger,
	}
}

func (s *BracketStore) load(ctx context.Context, tournamentID string) (*models.BracketState, error) {
	st, err := s.repo.Load(ctx, tournamentID)
	if err != nil {
		return nil, translateError(err)
	}
	return st, nil
}

// update runs one load, mutate, save cycle under the tournament lock. Nothing
// is written when mutate fails.
func (s *BracketStore) update(ctx context.Context, tournamentID string, mutate func(*models.BracketState) (*models.BracketState, error)) (*models.BracketState, error) {
	release, err := s.locks.acquire(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	next, err := mutate(current)
	if err != nil {
		return nil, translateError(err)
	}
	next.Version = current.Version
	if err := s.save(ctx, tournamentID, next); err != nil {
		return nil, err
	}
	return next, nil
}

// locked runs fn while holding the tournament lock. Roster writes go through
// it so that a bracket is never generated from a half-changed roster.
func (s *BracketStore) locked(ctx context.Context, tournamentID string, fn func() error) error {
	release, err := s.locks.acquire(ctx, tournamentID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// drop deletes the stored bracket inside exec. A tournament without a bracket
// is not an error. The caller must hold the tournament lock.
func (s *BracketStore) drop(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) error {
	err := s.repo.Delete(ctx, exec, tournamentID)
	if err != nil && !errors.Is(err, repositories.ErrBracketNotFound) {
		return err
	}
	return nil
}

// forget drops the archived "latest" snapshot after a bracket was deleted.
// Failures are logged only.
func (s *BracketStore) forget(ctx context.Context, tournamentID string) {
	if err := s.archive.Forget(ctx, tournamentID); err != nil {
		s.logger.Warn("archived snapshot not removed",
			slog.String("tournament_id", tournamentID),
			slog.Any("error", err))
	}
}

// replace stores a freshly generated state, overwriting whatever bracket the
// tournament had. build runs under the tournament lock.
func (s *BracketStore) replace(ctx context.Context, tournamentID string, build func() (*models.BracketState, error)) (*models.BracketState, error) {
	release, err := s.locks.acquire(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	defer release()

	version := 0
	existing, err := s.repo.Load(ctx, tournamentID)
	switch {
	case err == nil:
		version = existing.Version
	case !errors.Is(err, repositories.ErrBracketNotFound):
		return nil, translateError(err)
	}

	next, err := build()
	if err != nil {
		return nil, translateError(err)
	}
	next.Version = version
	if err := s.save(ctx, tournamentID, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *BracketStore) save(ctx context.Context, tournamentID string, st *models.BracketState) error {
	if err := s.repo.Save(ctx, tournamentID, st); err != nil {
		return translateError(err)
	}
	if err := s.archive.Archive(ctx, tournamentID, st); err != nil {
		s.logger.Warn("bracket snapshot not archived",
			slog.String("tournament_id", tournamentID),
			slog.Int("version", st.Version),
			slog.Any("error", err))
	}
	return nil
}

// translateError maps engine and repository errors onto the service error
// set while keeping the original in the chain.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrBracketNotFound):
		return fmt.Errorf("%w: %w", ErrBracketNotGenerated, ErrNotFound)
	case errors.Is(err, repositories.ErrVersionConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repositories.ErrCompetitorNotFound):
		return fmt.Errorf("%w: %w", ErrCompetitorNotFound, ErrNotFound)
	case errors.Is(err, repositories.ErrCompetitorConflict):
		return ErrCompetitorExists
	case errors.Is(err, brackets.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrMatchNotFound, ErrNotFound)
	case errors.Is(err, brackets.ErrInvalidResult), errors.Is(err, brackets.ErrInvalidCompetitors):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return err
}
