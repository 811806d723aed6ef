package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/bracket-tracker/brackets"
	"github.com/Dosada05/bracket-tracker/models"
)

// MatchService records results. Every result change is followed by an
// advance in the same locked cycle, so stored brackets are always settled.
type MatchService interface {
	SetScore(ctx context.Context, tournamentID, matchID string, scoreP1, scoreP2 int) (*models.BracketState, error)
	SetWinner(ctx context.Context, tournamentID, matchID, winnerID string) (*models.BracketState, error)
	StartMatch(ctx context.Context, tournamentID, matchID string) (*models.BracketState, error)
	ResetMatch(ctx context.Context, tournamentID, matchID string) (*models.BracketState, error)
	SetBestOf(ctx context.Context, tournamentID, matchID string, bestOf int) (*models.BracketState, error)
}

type matchService struct {
	store  *BracketStore
	engine *brackets.Engine
	logger *slog.Logger
}

func NewMatchService(store *BracketStore, engine *brackets.Engine, logger *slog.Logger) MatchService {
	return &matchService{
		store:  store,
		engine: engine,
		logger: logger,
	}
}

func (s *matchService) SetScore(ctx context.Context, tournamentID, matchID string, scoreP1, scoreP2 int) (*models.BracketState, error) {
	st, err := s.store.update(ctx, tournamentID, func(st *models.BracketState) (*models.BracketState, error) {
		if err := brackets.SetScore(st, matchID, scoreP1, scoreP2); err != nil {
			return nil, err
		}
		return s.engine.Advance(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("score recorded",
		slog.String("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.Int("score_p1", scoreP1),
		slog.Int("score_p2", scoreP2))
	return st, nil
}

func (s *matchService) SetWinner(ctx context.Context, tournamentID, matchID, winnerID string) (*models.BracketState, error) {
	st, err := s.store.update(ctx, tournamentID, func(st *models.BracketState) (*models.BracketState, error) {
		if err := brackets.SetWinner(st, matchID, winnerID); err != nil {
			return nil, err
		}
		return s.engine.Advance(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("winner recorded",
		slog.String("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.String("winner_id", winnerID))
	return st, nil
}

func (s *matchService) StartMatch(ctx context.Context, tournamentID, matchID string) (*models.BracketState, error) {
	return s.store.update(ctx, tournamentID, func(st *models.BracketState) (*models.BracketState, error) {
		return st, brackets.StartMatch(st, matchID)
	})
}

func (s *matchService) ResetMatch(ctx context.Context, tournamentID, matchID string) (*models.BracketState, error) {
	return s.store.update(ctx, tournamentID, func(st *models.BracketState) (*models.BracketState, error) {
		return st, brackets.ResetMatch(st, matchID)
	})
}

func (s *matchService) SetBestOf(ctx context.Context, tournamentID, matchID string, bestOf int) (*models.BracketState, error) {
	return s.store.update(ctx, tournamentID, func(st *models.BracketState) (*models.BracketState, error) {
		return st, brackets.SetBestOf(st, matchID, bestOf)
	})
}
