package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-tracker/models"
)

// The functions below edit a single match of the given state in place. They
// validate everything before touching the match, so a returned error means
// the state is unchanged. None of them advance the bracket.

// SetScore records a game score. A score reaching the win threshold completes
// the match with that player as winner, any other non-zero score marks it in
// progress. Scoring a completed match below the threshold reopens it and
// clears the winner; 0-0 puts it back to next up.
func SetScore(st *models.BracketState, matchID string, scoreP1, scoreP2 int) error {
	m, err := lookupEditable(st, matchID)
	if err != nil {
		return err
	}

	threshold := m.WinThreshold()
	if scoreP1 < 0 || scoreP2 < 0 || scoreP1 > threshold || scoreP2 > threshold {
		return fmt.Errorf("%w: %d-%d with threshold %d", ErrScoreOutOfRange, scoreP1, scoreP2, threshold)
	}
	if scoreP1 == threshold && scoreP2 == threshold {
		return ErrBothAtThreshold
	}

	next := m.Status
	var winner *string
	switch {
	case scoreP1 == threshold:
		next = models.MatchStatusCompleted
		winner = seatWinner(m.Player1)
	case scoreP2 == threshold:
		next = models.MatchStatusCompleted
		winner = seatWinner(m.Player2)
	case scoreP1 > 0 || scoreP2 > 0:
		next = models.MatchStatusInProgress
	case m.IsCompleted():
		next = models.MatchStatusNextUp
	}

	if !m.Status.CanTransitionTo(next) || (next == models.MatchStatusCompleted) != (winner != nil) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.Status, next)
	}

	m.ScoreP1 = scoreP1
	m.ScoreP2 = scoreP2
	m.Status = next
	m.WinnerID = winner
	return nil
}

// SetWinner declares the winner outright. Scores are set to the win threshold
// and zero.
func SetWinner(st *models.BracketState, matchID, winnerID string) error {
	m, err := lookupEditable(st, matchID)
	if err != nil {
		return err
	}
	if !m.HasCompetitor(winnerID) {
		return fmt.Errorf("%w: %q", ErrUnknownWinner, winnerID)
	}
	if !m.Status.CanTransitionTo(models.MatchStatusCompleted) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.Status, models.MatchStatusCompleted)
	}

	threshold := m.WinThreshold()
	if m.Player1.Holds(winnerID) {
		m.ScoreP1, m.ScoreP2 = threshold, 0
	} else {
		m.ScoreP1, m.ScoreP2 = 0, threshold
	}
	w := winnerID
	m.WinnerID = &w
	m.Status = models.MatchStatusCompleted
	return nil
}

// StartMatch marks a match as being played.
func StartMatch(st *models.BracketState, matchID string) error {
	m, err := lookupEditable(st, matchID)
	if err != nil {
		return err
	}
	// a decided match is reopened by scoring it, not by starting it again
	if m.IsCompleted() || !m.Status.CanTransitionTo(models.MatchStatusInProgress) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, m.Status, models.MatchStatusInProgress)
	}
	m.Status = models.MatchStatusInProgress
	return nil
}

// ResetMatch clears the score and winner and puts the match back to next up.
// Results that the bracket has already acted on cannot be reset.
func ResetMatch(st *models.BracketState, matchID string) error {
	m, err := lookupEditable(st, matchID)
	if err != nil {
		return err
	}
	m.ScoreP1, m.ScoreP2 = 0, 0
	m.WinnerID = nil
	m.Status = models.MatchStatusNextUp
	return nil
}

func SetBestOf(st *models.BracketState, matchID string, bestOf int) error {
	if bestOf <= 0 || bestOf%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBestOf, bestOf)
	}
	m, err := lookupEditable(st, matchID)
	if err != nil {
		return err
	}
	if m.Status != models.MatchStatusNextUp || m.ScoreP1 != 0 || m.ScoreP2 != 0 {
		return ErrMatchStarted
	}
	m.BestOf = bestOf
	return nil
}

// lookupEditable finds a match that may still have its result changed: it
// exists, is not a BYE pairing, and nobody has been moved on from it.
func lookupEditable(st *models.BracketState, matchID string) (*models.Match, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	m, ok := st.FindMatch(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.HasBye() {
		return nil, ErrByeMatch
	}
	if !m.IsCompleted() {
		return m, nil
	}

	idx, err := BuildLocationIndex(st)
	if err != nil {
		return nil, err
	}
	for _, s := range m.Seats() {
		if !idx.IsSeatedIn(s.CompetitorID, m.ID) {
			return nil, ErrResultLocked
		}
	}
	return m, nil
}

func seatWinner(s models.Seat) *string {
	if s.IsBye() || s.CompetitorID == "" {
		return nil
	}
	id := s.CompetitorID
	return &id
}
