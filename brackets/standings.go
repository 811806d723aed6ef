package brackets

import (
	"github.com/Dosada05/bracket-tracker/models"
)

// Champion returns the tournament winner once the grand finals are decided.
func Champion(st *models.BracketState) (string, bool) {
	gf := st.Brackets.GrandFinals
	if gf == nil || !gf.IsCompleted() {
		return "", false
	}
	w, ok := gf.Winner()
	if !ok {
		return "", false
	}
	if gf.Player1.Holds(w) {
		return w, true
	}
	reset := st.Brackets.GrandFinalsReset
	if reset == nil || !reset.IsCompleted() {
		return "", false
	}
	return reset.Winner()
}

// Standings lists the champion (if decided), then competitors still alive in
// seed order, then eliminated competitors from the most recently eliminated
// back. Competitors knocked out in the same bracket round share a placement.
func Standings(st *models.BracketState) []models.Standing {
	eliminated := make(map[string]struct{}, len(st.Eliminated))
	for _, e := range st.Eliminated {
		eliminated[e.CompetitorID] = struct{}{}
	}

	var out []models.Standing
	champion, decided := Champion(st)
	if decided {
		if c, ok := st.Competitor(champion); ok {
			first := 1
			out = append(out, models.Standing{
				Competitor: c.Clone(),
				Placement:  &first,
				Status:     models.StandingChampion,
			})
		}
	}

	for _, c := range seedOrder(st.Competitors) {
		if _, gone := eliminated[c.ID]; gone || (decided && c.ID == champion) {
			continue
		}
		out = append(out, models.Standing{Competitor: c.Clone(), Status: models.StandingAlive})
	}

	var prev *models.Elimination
	placement := 0
	for i := len(st.Eliminated) - 1; i >= 0; i-- {
		e := st.Eliminated[i]
		c, ok := st.Competitor(e.CompetitorID)
		if !ok {
			continue
		}
		switch {
		case e.Placement != nil:
			placement = *e.Placement
		case prev == nil || prev.Bracket != e.Bracket || prev.Round != e.Round:
			placement = len(out) + 1
		}
		p, round := placement, e.Round
		out = append(out, models.Standing{
			Competitor: c.Clone(),
			Placement:  &p,
			Status:     models.StandingEliminated,
			Bracket:    e.Bracket,
			Round:      &round,
		})
		prev = &st.Eliminated[i]
	}
	return out
}
