package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-tracker/models"
)

const RunnerUpPlacement = 2

// EliminationTracker is the append-only record of knocked out competitors.
// Entries are never removed or overwritten.
type EliminationTracker struct {
	entries *[]models.Elimination
	byID    map[string]int
}

func newEliminationTracker(entries *[]models.Elimination) (*EliminationTracker, error) {
	if *entries == nil {
		*entries = []models.Elimination{}
	}
	t := &EliminationTracker{entries: entries, byID: make(map[string]int, len(*entries))}
	for i, e := range *entries {
		if _, dup := t.byID[e.CompetitorID]; dup {
			return nil, fmt.Errorf("%w: competitor %s eliminated twice", ErrCorruptState, e.CompetitorID)
		}
		t.byID[e.CompetitorID] = i
	}
	return t, nil
}

func (t *EliminationTracker) IsEliminated(id string) bool {
	_, ok := t.byID[id]
	return ok
}

func (t *EliminationTracker) Get(id string) (models.Elimination, bool) {
	i, ok := t.byID[id]
	if !ok {
		return models.Elimination{}, false
	}
	return (*t.entries)[i], true
}

// Record appends an elimination. It reports false and leaves the existing
// entry untouched when the competitor is already eliminated.
func (t *EliminationTracker) Record(e models.Elimination) bool {
	if t.IsEliminated(e.CompetitorID) {
		return false
	}
	t.byID[e.CompetitorID] = len(*t.entries)
	*t.entries = append(*t.entries, e)
	return true
}

func (t *EliminationTracker) Len() int {
	return len(*t.entries)
}
