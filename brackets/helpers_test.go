package brackets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/Dosada05/bracket-tracker/models"
	"github.com/stretchr/testify/require"
)

// newTestEngine returns an engine with best-of-3 matches and predictable
// match IDs (m1, m2, ...).
func newTestEngine() *Engine {
	n := 0
	return NewEngine(
		WithBestOf(3),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("m%d", n)
		}),
	)
}

// seededCompetitors returns c1..cn where c1 has the highest skill.
func seededCompetitors(n int) []models.Competitor {
	out := make([]models.Competitor, n)
	for i := range out {
		out[i] = models.Competitor{
			ID:    fmt.Sprintf("c%d", i+1),
			Name:  fmt.Sprintf("Competitor %d", i+1),
			Skill: float64(100 - i),
		}
	}
	return out
}

func generate(t *testing.T, e *Engine, n int) *models.BracketState {
	t.Helper()
	st, err := e.Generate(context.Background(), seededCompetitors(n))
	require.NoError(t, err)
	return st
}

func advance(t *testing.T, e *Engine, st *models.BracketState) *models.BracketState {
	t.Helper()
	next, err := e.Advance(context.Background(), st)
	require.NoError(t, err)
	assertNoStrandedCompetitors(t, next)
	return next
}

// matchBetween finds the match seating both competitors.
func matchBetween(t *testing.T, st *models.BracketState, a, b string) *models.Match {
	t.Helper()
	for _, m := range st.Matches() {
		if m.HasCompetitor(a) && m.HasCompetitor(b) {
			return m
		}
	}
	require.FailNowf(t, "match not found", "no match between %s and %s", a, b)
	return nil
}

func win(t *testing.T, st *models.BracketState, a, b, winner string) {
	t.Helper()
	m := matchBetween(t, st, a, b)
	require.NoError(t, SetWinner(st, m.ID, winner))
}

func seedNumber(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "c"))
	return n
}

func strongerWins(m *models.Match) string {
	a, b := m.Player1.CompetitorID, m.Player2.CompetitorID
	if seedNumber(a) < seedNumber(b) {
		return a
	}
	return b
}

func weakerWins(m *models.Match) string {
	if strongerWins(m) == m.Player1.CompetitorID {
		return m.Player2.CompetitorID
	}
	return m.Player1.CompetitorID
}

// playOut keeps deciding the current match and advancing until nothing is
// left to play.
func playOut(t *testing.T, e *Engine, st *models.BracketState, decide func(*models.Match) string) *models.BracketState {
	t.Helper()
	for i := 0; i < 500; i++ {
		m := CurrentMatch(st)
		if m == nil {
			return st
		}
		require.NoError(t, SetWinner(st, m.ID, decide(m)))
		st = advance(t, e, st)
	}
	require.FailNow(t, "tournament did not finish")
	return nil
}

// assertNoStrandedCompetitors checks the location invariant: the state
// indexes cleanly, every seeded competitor is somewhere, and nobody sits in a
// decided match they lost once the whole round is over.
func assertNoStrandedCompetitors(t *testing.T, st *models.BracketState) {
	t.Helper()
	idx, err := BuildLocationIndex(st)
	require.NoError(t, err)
	if !st.HasBracket() {
		return
	}
	for _, c := range st.Competitors {
		loc := idx.Locate(c.ID)
		require.NotEqual(t, LocationUnseated, loc.Kind, "competitor %s has no location", c.ID)
		if loc.Kind != LocationInMatch {
			continue
		}
		m, ok := st.FindMatch(loc.MatchID)
		require.True(t, ok)
		loser, lost := m.Loser()
		if lost && loser == c.ID {
			require.False(t, roundOf(st, m).IsCompleted(),
				"competitor %s left behind in lost match %s", c.ID, m.ID)
		}
	}
}

func roundOf(st *models.BracketState, m *models.Match) models.Round {
	switch m.Bracket {
	case models.BracketUpper:
		return st.Brackets.Upper[m.Round]
	case models.BracketLower:
		return st.Brackets.Lower[m.Round]
	}
	return models.Round{m}
}
