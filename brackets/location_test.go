package brackets

import (
	"testing"

	"github.com/Dosada05/bracket-tracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLocationIndex(t *testing.T) {
	e := newTestEngine()
	st := generate(t, e, 4)
	win(t, st, "c1", "c4", "c1")
	win(t, st, "c2", "c3", "c2")
	st = advance(t, e, st)
	win(t, st, "c3", "c4", "c3")
	st = advance(t, e, st)

	idx := mustIndex(t, st)
	assert.True(t, idx.IsSeatedIn("c1", st.Brackets.Upper[1][0].ID))
	assert.True(t, idx.IsSeatedIn("c2", st.Brackets.Upper[1][0].ID))
	assert.True(t, idx.IsPending("c3"))
	assert.True(t, idx.IsEliminated("c4"))
	assert.Equal(t, 2, idx.Count(LocationInMatch))
	assert.Equal(t, 1, idx.Count(LocationPending))
	assert.Equal(t, 1, idx.Count(LocationEliminated))
	assert.Equal(t, LocationUnseated, idx.Locate("ghost").Kind)
}

func TestBuildLocationIndexRejectsDoubleSeat(t *testing.T) {
	st := generate(t, newTestEngine(), 4)
	st.Brackets.Upper[0][1].Player1 = models.CompetitorSeat("c1")

	_, err := BuildLocationIndex(st)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestBuildLocationIndexRejectsUnknownSeat(t *testing.T) {
	st := generate(t, newTestEngine(), 4)
	st.Brackets.Upper[0][1].Player2 = models.CompetitorSeat("ghost")

	_, err := BuildLocationIndex(st)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestPendingQueue(t *testing.T) {
	var ids []string
	q := newPendingQueue(&ids)
	require.NotNil(t, ids)

	assert.True(t, q.Push("a"))
	assert.True(t, q.Push("b"))
	assert.False(t, q.Push("a"), "queue never holds a competitor twice")
	assert.Equal(t, 2, q.Len())
	assert.True(t, q.Contains("b"))

	assert.True(t, q.Remove("a"))
	assert.False(t, q.Remove("a"))
	assert.Equal(t, []string{"b"}, ids)

	assert.Equal(t, []string{"b"}, q.Drain())
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestEliminationTracker(t *testing.T) {
	entries := []models.Elimination{{CompetitorID: "a", Bracket: models.BracketLower, Round: 0}}
	tracker, err := newEliminationTracker(&entries)
	require.NoError(t, err)

	assert.True(t, tracker.IsEliminated("a"))
	assert.False(t, tracker.IsEliminated("b"))

	assert.True(t, tracker.Record(models.Elimination{CompetitorID: "b", Bracket: models.BracketLower, Round: 2}))
	assert.False(t, tracker.Record(models.Elimination{CompetitorID: "a", Bracket: models.BracketGrandFinals}))

	got, ok := tracker.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.BracketLower, got.Bracket, "existing entry is never overwritten")
	assert.Equal(t, 2, tracker.Len())
	assert.Len(t, entries, 2)

	dup := []models.Elimination{{CompetitorID: "a"}, {CompetitorID: "a"}}
	_, err = newEliminationTracker(&dup)
	assert.ErrorIs(t, err, ErrCorruptState)
}
