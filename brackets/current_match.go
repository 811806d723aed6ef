package brackets

import "github.com/Dosada05/bracket-tracker/models"

// CurrentMatch returns the match that should be on screen: any in progress
// match before any next up match. Within a status, grand finals and the reset
// come first, then upper rounds from the lowest, then lower rounds, each in
// slot order. It returns nil when nothing is left to play.
func CurrentMatch(st *models.BracketState) *models.Match {
	if st == nil {
		return nil
	}
	ordered := matchPriority(st)
	for _, status := range []models.MatchStatus{models.MatchStatusInProgress, models.MatchStatusNextUp} {
		for _, m := range ordered {
			if m.Status == status {
				return m
			}
		}
	}
	return nil
}

func matchPriority(st *models.BracketState) []*models.Match {
	var out []*models.Match
	if st.Brackets.GrandFinals != nil {
		out = append(out, st.Brackets.GrandFinals)
	}
	if st.Brackets.GrandFinalsReset != nil {
		out = append(out, st.Brackets.GrandFinalsReset)
	}
	for _, r := range st.Brackets.Upper {
		out = append(out, r...)
	}
	for _, r := range st.Brackets.Lower {
		out = append(out, r...)
	}
	return out
}
