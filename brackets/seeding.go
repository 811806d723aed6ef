package brackets

import (
	"sort"

	"github.com/Dosada05/bracket-tracker/models"
)

// seedOrder sorts competitors by explicit placement (unplaced last), then by
// skill descending. Ties keep their input order.
func seedOrder(competitors []models.Competitor) []models.Competitor {
	seeded := make([]models.Competitor, len(competitors))
	copy(seeded, competitors)
	sort.SliceStable(seeded, func(i, j int) bool {
		pi, pj := seeded[i].Placement, seeded[j].Placement
		switch {
		case pi != nil && pj != nil && *pi != *pj:
			return *pi < *pj
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return seeded[i].Skill > seeded[j].Skill
	})
	return seeded
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// snakePair pads the ordered competitor IDs with BYE seats up to the next
// power of two, then pairs the top half against the reversed bottom half:
// seed 1 meets seed N, seed 2 meets seed N-1, and so on. The top half never
// contains a BYE, so a pairing always holds at least one competitor.
func snakePair(ordered []string) [][2]models.Seat {
	size := nextPowerOfTwo(len(ordered))
	if size < 2 {
		size = 2
	}
	seats := make([]models.Seat, size)
	for i := range seats {
		if i < len(ordered) {
			seats[i] = models.CompetitorSeat(ordered[i])
		} else {
			seats[i] = models.ByeSeat()
		}
	}

	half := size / 2
	pairs := make([][2]models.Seat, half)
	for i := 0; i < half; i++ {
		pairs[i] = [2]models.Seat{seats[i], seats[size-1-i]}
	}
	return pairs
}

// sortBySkill orders competitor IDs by skill descending, keeping the current
// order on ties. Used to re-seed upper bracket winners.
func sortBySkill(ids []string, roster rosterLookup) {
	sort.SliceStable(ids, func(i, j int) bool {
		return roster.skill(ids[i]) > roster.skill(ids[j])
	})
}

// sortForLower orders a lower bracket pool by the upper round each competitor
// dropped from (earliest first), then by skill descending.
func sortForLower(ids []string, roster rosterLookup) {
	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := roster.droppedFrom(ids[i]), roster.droppedFrom(ids[j])
		if di != dj {
			return di < dj
		}
		return roster.skill(ids[i]) > roster.skill(ids[j])
	})
}

type rosterLookup map[string]*models.Competitor

func newRosterLookup(st *models.BracketState) rosterLookup {
	roster := make(rosterLookup, len(st.Competitors))
	for i := range st.Competitors {
		roster[st.Competitors[i].ID] = &st.Competitors[i]
	}
	return roster
}

func (r rosterLookup) skill(id string) float64 {
	if c, ok := r[id]; ok {
		return c.Skill
	}
	return 0
}

// droppedFrom returns the upper round a competitor dropped from. Competitors
// without a tag sort after every tagged one.
func (r rosterLookup) droppedFrom(id string) int {
	if c, ok := r[id]; ok && c.DroppedFromRound != nil {
		return *c.DroppedFromRound
	}
	return int(^uint(0) >> 1)
}
