package brackets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Dosada05/bracket-tracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoundZeroShape(t *testing.T) {
	cases := []struct {
		competitors int
		matches     int
		byes        int
	}{
		{2, 1, 0},
		{3, 2, 1},
		{4, 2, 0},
		{5, 4, 3},
		{6, 4, 2},
		{7, 4, 1},
		{8, 4, 0},
		{9, 8, 7},
		{12, 8, 4},
		{16, 8, 0},
		{17, 16, 15},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d competitors", tc.competitors), func(t *testing.T) {
			st := generate(t, newTestEngine(), tc.competitors)
			require.Len(t, st.Brackets.Upper, 1)
			round := st.Brackets.Upper[0]
			assert.Len(t, round, tc.matches)

			byes := 0
			for _, m := range round {
				assert.False(t, m.Player1.IsBye() && m.Player2.IsBye(), "match %s has two byes", m.ID)
				if !m.HasBye() {
					assert.Equal(t, models.MatchStatusNextUp, m.Status)
					continue
				}
				byes++
				assert.Equal(t, models.MatchStatusCompleted, m.Status)
				w, ok := m.Winner()
				require.True(t, ok)
				assert.True(t, m.HasCompetitor(w))
				_, lost := m.Loser()
				assert.False(t, lost, "bye match must not have a loser")
			}
			assert.Equal(t, tc.byes, byes)
			assert.Empty(t, st.Brackets.Lower)
			assert.Empty(t, st.PendingLowerQueue)
			assert.Empty(t, st.Eliminated)
		})
	}
}

func TestGenerateSnakePairing(t *testing.T) {
	st := generate(t, newTestEngine(), 8)
	round := st.Brackets.Upper[0]

	want := [][2]string{{"c1", "c8"}, {"c2", "c7"}, {"c3", "c6"}, {"c4", "c5"}}
	for i, pair := range want {
		assert.Equal(t, pair[0], round[i].Player1.CompetitorID)
		assert.Equal(t, pair[1], round[i].Player2.CompetitorID)
		assert.Equal(t, i, round[i].Slot)
		assert.Equal(t, 3, round[i].BestOf)
	}
}

func TestGenerateSeedsByPlacementThenSkill(t *testing.T) {
	competitors := seededCompetitors(4)
	first, second := 1, 2
	competitors[3].Placement = &first // c4
	competitors[2].Placement = &second // c3

	st, err := newTestEngine().Generate(context.Background(), competitors)
	require.NoError(t, err)

	round := st.Brackets.Upper[0]
	assert.Equal(t, "c4", round[0].Player1.CompetitorID)
	assert.Equal(t, "c2", round[0].Player2.CompetitorID)
	assert.Equal(t, "c3", round[1].Player1.CompetitorID)
	assert.Equal(t, "c1", round[1].Player2.CompetitorID)
}

func TestGenerateSmallRosters(t *testing.T) {
	for _, n := range []int{0, 1} {
		st := generate(t, newTestEngine(), n)
		assert.False(t, st.HasBracket())
		assert.Len(t, st.Competitors, n)
		assert.Nil(t, CurrentMatch(st))
	}
}

func TestGenerateRejectsBadRosters(t *testing.T) {
	e := newTestEngine()

	dup := seededCompetitors(3)
	dup[2].ID = "c1"
	_, err := e.Generate(context.Background(), dup)
	assert.ErrorIs(t, err, ErrInvalidCompetitors)

	blank := seededCompetitors(3)
	blank[1].ID = ""
	_, err = e.Generate(context.Background(), blank)
	assert.ErrorIs(t, err, ErrInvalidCompetitors)
}

func TestGenerateClearsDropTags(t *testing.T) {
	competitors := seededCompetitors(4)
	r := 2
	competitors[0].DroppedFromRound = &r

	st, err := newTestEngine().Generate(context.Background(), competitors)
	require.NoError(t, err)
	for _, c := range st.Competitors {
		assert.Nil(t, c.DroppedFromRound)
	}
	assert.NotNil(t, competitors[0].DroppedFromRound, "input roster must not be modified")
}

func TestGenerateBestOfOverride(t *testing.T) {
	st, err := newTestEngine().GenerateBracket(context.Background(), GenerateBracketParams{
		Competitors: seededCompetitors(2),
		BestOf:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, st.Brackets.Upper[0][0].BestOf)
	assert.Equal(t, 3, st.Brackets.Upper[0][0].WinThreshold())
}

func TestAdvanceNotReadyIsNoop(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 8)

	next := advance(t, e, st)
	assert.Equal(t, st, next)

	// one finished match is not a finished round
	win(t, next, "c1", "c8", "c1")
	after := advance(t, e, next)
	assert.Len(t, after.Brackets.Upper, 1)
	assert.Empty(t, after.PendingLowerQueue)
	assert.Equal(t, LocationInMatch, mustIndex(t, after).Locate("c8").Kind)
}

func TestAdvanceDoesNotModifyInput(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 4)
	win(t, st, "c1", "c4", "c1")
	win(t, st, "c2", "c3", "c2")
	before := st.Clone()

	next := advance(t, e, st)
	assert.Equal(t, before, st)
	assert.Len(t, next.Brackets.Upper, 2)
}

func TestAdvanceIsIdempotent(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 8)
	for _, pair := range [][2]string{{"c1", "c8"}, {"c2", "c7"}, {"c3", "c6"}, {"c4", "c5"}} {
		win(t, st, pair[0], pair[1], pair[0])
	}

	once := advance(t, e, st)
	twice := advance(t, e, once)
	assert.Equal(t, once, twice)

	require.Len(t, once.Brackets.Upper, 2)
	require.Len(t, once.Brackets.Lower, 1)
	assert.Empty(t, once.PendingLowerQueue)
}

func TestUpperWinnersAreReseededBySkill(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 8)
	// upsets in every match: the weaker half goes through
	win(t, st, "c1", "c8", "c8")
	win(t, st, "c2", "c7", "c7")
	win(t, st, "c3", "c6", "c6")
	win(t, st, "c4", "c5", "c5")

	st = advance(t, e, st)
	next := st.Brackets.Upper[1]
	require.Len(t, next, 2)
	assert.Equal(t, "c5", next[0].Player1.CompetitorID)
	assert.Equal(t, "c8", next[0].Player2.CompetitorID)
	assert.Equal(t, "c6", next[1].Player1.CompetitorID)
	assert.Equal(t, "c7", next[1].Player2.CompetitorID)

	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		c, ok := st.Competitor(id)
		require.True(t, ok)
		require.NotNil(t, c.DroppedFromRound)
		assert.Equal(t, 0, *c.DroppedFromRound)
	}
}

func TestSixCompetitorsOrderIndependence(t *testing.T) {
	setup := func(t *testing.T) (*Engine, *models.BracketState) {
		e := newTestEngine()
		st := generate(t, e, 6)
		round := st.Brackets.Upper[0]
		require.Len(t, round, 4)
		assert.True(t, round[0].HasBye())
		assert.True(t, round[1].HasBye())

		win(t, st, "c3", "c6", "c3")
		win(t, st, "c4", "c5", "c4")
		st = advance(t, e, st)

		require.Len(t, st.Brackets.Lower, 1)
		lower := st.Brackets.Lower[0]
		require.Len(t, lower, 1)
		assert.Equal(t, "c5", lower[0].Player1.CompetitorID)
		assert.Equal(t, "c6", lower[0].Player2.CompetitorID)
		return e, st
	}

	finishUpper := func(t *testing.T, e *Engine, st *models.BracketState) *models.BracketState {
		win(t, st, "c1", "c4", "c1")
		win(t, st, "c2", "c3", "c2")
		return advance(t, e, st)
	}
	finishLower := func(t *testing.T, e *Engine, st *models.BracketState) *models.BracketState {
		win(t, st, "c5", "c6", "c5")
		return advance(t, e, st)
	}

	e, upperFirst := setup(t)
	upperFirst = finishUpper(t, e, upperFirst)
	assert.ElementsMatch(t, []string{"c4", "c3"}, upperFirst.PendingLowerQueue)
	upperFirst = finishLower(t, e, upperFirst)

	e2, lowerFirst := setup(t)
	lowerFirst = finishLower(t, e2, lowerFirst)
	assert.Equal(t, []string{"c5"}, lowerFirst.PendingLowerQueue, "singleton survivor waits in the queue")
	require.Len(t, lowerFirst.Brackets.Lower, 1)
	lowerFirst = finishUpper(t, e2, lowerFirst)

	runs := []struct {
		name   string
		engine *Engine
		st     *models.BracketState
	}{
		{"upper first", e, upperFirst},
		{"lower first", e2, lowerFirst},
	}
	for _, run := range runs {
		st := run.st
		t.Run(run.name, func(t *testing.T) {
			assert.Empty(t, st.PendingLowerQueue)
			require.Len(t, st.Brackets.Lower, 2)
			second := st.Brackets.Lower[1]
			require.Len(t, second, 2)
			assert.Equal(t, "c5", second[0].Player1.CompetitorID)
			assert.True(t, second[0].Player2.IsBye())
			assert.Equal(t, "c3", second[1].Player1.CompetitorID)
			assert.Equal(t, "c4", second[1].Player2.CompetitorID)

			idx := mustIndex(t, st)
			assert.True(t, idx.IsEliminated("c6"))
			for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
				assert.Equal(t, LocationInMatch, idx.Locate(id).Kind, id)
			}

			done := playOut(t, run.engine, st, strongerWins)
			champion, ok := Champion(done)
			require.True(t, ok)
			assert.Equal(t, "c1", champion)
			assert.Len(t, done.Eliminated, 5)
		})
	}
}

func TestTwoCompetitorsGoStraightToGrandFinals(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 2)
	win(t, st, "c1", "c2", "c1")

	st = advance(t, e, st)
	assert.Empty(t, st.Brackets.Lower)
	assert.Empty(t, st.PendingLowerQueue)
	require.NotNil(t, st.Brackets.GrandFinals)
	gf := st.Brackets.GrandFinals
	assert.Equal(t, models.BracketGrandFinals, gf.Bracket)
	assert.True(t, gf.Player1.Holds("c1"))
	assert.True(t, gf.Player2.Holds("c2"))
	assert.Equal(t, models.MatchStatusNextUp, gf.Status)
	assert.Equal(t, gf, CurrentMatch(st))
}

func TestSingletonLowerPoolIsNotGivenABye(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 4)
	win(t, st, "c1", "c4", "c1")
	win(t, st, "c2", "c3", "c2")
	st = advance(t, e, st)

	win(t, st, "c3", "c4", "c3")
	st = advance(t, e, st)

	require.Len(t, st.Brackets.Lower, 1)
	assert.Equal(t, []string{"c3"}, st.PendingLowerQueue)
	assert.True(t, mustIndex(t, st).IsPending("c3"))
	assert.Nil(t, st.Brackets.GrandFinals)

	// upper final loser gives the survivor an opponent
	win(t, st, "c1", "c2", "c1")
	st = advance(t, e, st)
	require.Len(t, st.Brackets.Lower, 2)
	final := st.Brackets.Lower[1]
	require.Len(t, final, 1)
	assert.Equal(t, "c3", final[0].Player1.CompetitorID)
	assert.Equal(t, "c2", final[0].Player2.CompetitorID)
	assert.Empty(t, st.PendingLowerQueue)
}

func TestGrandFinalsUpperFinalistWins(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 2)
	win(t, st, "c1", "c2", "c1")
	st = advance(t, e, st)

	require.NoError(t, SetWinner(st, st.Brackets.GrandFinals.ID, "c1"))
	st = advance(t, e, st)
	st = advance(t, e, st)

	assert.Nil(t, st.Brackets.GrandFinalsReset)
	require.Len(t, st.Eliminated, 1)
	runnerUp := st.Eliminated[0]
	assert.Equal(t, "c2", runnerUp.CompetitorID)
	assert.Equal(t, models.BracketGrandFinals, runnerUp.Bracket)
	require.NotNil(t, runnerUp.Placement)
	assert.Equal(t, RunnerUpPlacement, *runnerUp.Placement)
	assert.Nil(t, CurrentMatch(st))
}

func TestGrandFinalsReset(t *testing.T) {
	for _, resetWinner := range []string{"c1", "c2"} {
		t.Run(resetWinner+" wins the reset", func(t *testing.T) {
			e := newTestEngine()
			st := generate(t, e, 2)
			win(t, st, "c1", "c2", "c1")
			st = advance(t, e, st)

			require.NoError(t, SetWinner(st, st.Brackets.GrandFinals.ID, "c2"))
			st = advance(t, e, st)
			require.NotNil(t, st.Brackets.GrandFinalsReset)
			reset := st.Brackets.GrandFinalsReset
			assert.Equal(t, models.BracketGrandFinalsReset, reset.Bracket)
			assert.Equal(t, models.MatchStatusNextUp, reset.Status)
			assert.True(t, reset.Player1.Holds("c1"))
			assert.True(t, reset.Player2.Holds("c2"))
			assert.Empty(t, st.Eliminated)

			again := advance(t, e, st)
			assert.Equal(t, reset.ID, again.Brackets.GrandFinalsReset.ID, "reset must not be recreated")
			assert.Equal(t, st, again)

			require.NoError(t, SetWinner(again, reset.ID, resetWinner))
			done := advance(t, e, again)

			loser := "c1"
			if resetWinner == "c1" {
				loser = "c2"
			}
			require.Len(t, done.Eliminated, 1)
			assert.Equal(t, loser, done.Eliminated[0].CompetitorID)
			require.NotNil(t, done.Eliminated[0].Placement)
			assert.Equal(t, RunnerUpPlacement, *done.Eliminated[0].Placement)

			champion, ok := Champion(done)
			require.True(t, ok)
			assert.Equal(t, resetWinner, champion)
		})
	}
}

func TestFullTournaments(t *testing.T) {
	strategies := map[string]func(*models.Match) string{
		"favourites": strongerWins,
		"upsets":     weakerWins,
	}
	for n := 2; n <= 13; n++ {
		for name, decide := range strategies {
			t.Run(fmt.Sprintf("%d competitors %s", n, name), func(t *testing.T) {
				e := newTestEngine()
				st := playOut(t, e, generate(t, e, n), decide)

				champion, ok := Champion(st)
				require.True(t, ok)
				assert.Len(t, st.Eliminated, n-1)
				assert.Empty(t, st.PendingLowerQueue)

				seen := map[string]bool{champion: true}
				for _, el := range st.Eliminated {
					assert.False(t, seen[el.CompetitorID], "%s eliminated twice", el.CompetitorID)
					seen[el.CompetitorID] = true
				}
				assert.Len(t, seen, n)
			})
		}
	}
}

func TestEliminatedCountAroundGrandFinals(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 8)
	for i := 0; i < 500 && st.Brackets.GrandFinals == nil; i++ {
		m := CurrentMatch(st)
		require.NotNil(t, m)
		require.NoError(t, SetWinner(st, m.ID, strongerWins(m)))
		st = advance(t, e, st)
	}
	require.NotNil(t, st.Brackets.GrandFinals)
	assert.Len(t, st.Eliminated, 6)

	require.NoError(t, SetWinner(st, st.Brackets.GrandFinals.ID, "c1"))
	st = advance(t, e, st)
	assert.Len(t, st.Eliminated, 7)
}

func TestAdvanceRejectsInconsistentState(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 4)

	st.PendingLowerQueue = []string{"c4", "c4"}
	_, err := e.Advance(context.Background(), st)
	assert.True(t, errors.Is(err, ErrCorruptState))

	st.PendingLowerQueue = []string{"c4"}
	st.Eliminated = []models.Elimination{{CompetitorID: "c4", Bracket: models.BracketLower}}
	_, err = e.Advance(context.Background(), st)
	assert.ErrorIs(t, err, ErrCorruptState)

	st.PendingLowerQueue = []string{"ghost"}
	st.Eliminated = []models.Elimination{}
	_, err = e.Advance(context.Background(), st)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestAdvanceHonoursCancelledContext(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Advance(ctx, st)
	assert.ErrorIs(t, err, context.Canceled)
}

func mustIndex(t *testing.T, st *models.BracketState) *LocationIndex {
	t.Helper()
	idx, err := BuildLocationIndex(st)
	require.NoError(t, err)
	return idx
}
