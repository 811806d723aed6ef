package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-tracker/models"
)

type LocationKind string

const (
	LocationUnseated   LocationKind = "unseated"
	LocationInMatch    LocationKind = "in_match"
	LocationPending    LocationKind = "pending"
	LocationEliminated LocationKind = "eliminated"
)

// Location answers "where is this competitor right now". MatchID is only set
// for LocationInMatch.
type Location struct {
	Kind    LocationKind `json:"kind"`
	MatchID string       `json:"match_id,omitempty"`
}

// LocationIndex maps every competitor to exactly one Location. The engine
// consults it before moving anyone and updates it on every move, so a
// competitor can never be queued, seated or eliminated twice.
type LocationIndex struct {
	byID map[string]Location
}

// BuildLocationIndex derives the index from a persisted state. Matches are
// replayed in the order they were created, so the latest seat wins; the
// pending queue and then the eliminated list override seats.
//
// It returns ErrCorruptState when the state places a competitor in two
// incompatible places or references an unknown competitor.
func BuildLocationIndex(st *models.BracketState) (*LocationIndex, error) {
	idx := &LocationIndex{byID: make(map[string]Location, len(st.Competitors))}
	for _, c := range st.Competitors {
		idx.byID[c.ID] = Location{Kind: LocationUnseated}
	}

	seatRound := func(round models.Round, label string) error {
		seen := make(map[string]struct{}, len(round)*2)
		for _, m := range round {
			for _, s := range m.Seats() {
				if s.IsBye() {
					continue
				}
				if _, known := idx.byID[s.CompetitorID]; !known {
					return fmt.Errorf("%w: unknown competitor %q in %s", ErrCorruptState, s.CompetitorID, label)
				}
				if _, dup := seen[s.CompetitorID]; dup {
					return fmt.Errorf("%w: competitor %s seated twice in %s", ErrCorruptState, s.CompetitorID, label)
				}
				seen[s.CompetitorID] = struct{}{}
				idx.seat(s.CompetitorID, m.ID)
			}
		}
		return nil
	}

	for r, round := range st.Brackets.Upper {
		if err := seatRound(round, fmt.Sprintf("upper round %d", r)); err != nil {
			return nil, err
		}
	}
	for r, round := range st.Brackets.Lower {
		if err := seatRound(round, fmt.Sprintf("lower round %d", r)); err != nil {
			return nil, err
		}
	}
	if gf := st.Brackets.GrandFinals; gf != nil {
		if err := seatRound(models.Round{gf}, "grand finals"); err != nil {
			return nil, err
		}
	}
	if reset := st.Brackets.GrandFinalsReset; reset != nil {
		if err := seatRound(models.Round{reset}, "grand finals reset"); err != nil {
			return nil, err
		}
	}

	queued := make(map[string]struct{}, len(st.PendingLowerQueue))
	for _, id := range st.PendingLowerQueue {
		if _, known := idx.byID[id]; !known {
			return nil, fmt.Errorf("%w: unknown competitor %q in pending queue", ErrCorruptState, id)
		}
		if _, dup := queued[id]; dup {
			return nil, fmt.Errorf("%w: competitor %s queued twice", ErrCorruptState, id)
		}
		queued[id] = struct{}{}
		idx.pend(id)
	}

	eliminated := make(map[string]struct{}, len(st.Eliminated))
	for _, e := range st.Eliminated {
		if _, known := idx.byID[e.CompetitorID]; !known {
			return nil, fmt.Errorf("%w: unknown competitor %q in eliminated list", ErrCorruptState, e.CompetitorID)
		}
		if _, dup := eliminated[e.CompetitorID]; dup {
			return nil, fmt.Errorf("%w: competitor %s eliminated twice", ErrCorruptState, e.CompetitorID)
		}
		if _, inQueue := queued[e.CompetitorID]; inQueue {
			return nil, fmt.Errorf("%w: competitor %s is both queued and eliminated", ErrCorruptState, e.CompetitorID)
		}
		eliminated[e.CompetitorID] = struct{}{}
		idx.eliminate(e.CompetitorID)
	}

	return idx, nil
}

func (idx *LocationIndex) Locate(id string) Location {
	if loc, ok := idx.byID[id]; ok {
		return loc
	}
	return Location{Kind: LocationUnseated}
}

// IsSeatedIn reports whether the competitor currently sits in the match.
func (idx *LocationIndex) IsSeatedIn(id, matchID string) bool {
	loc := idx.Locate(id)
	return loc.Kind == LocationInMatch && loc.MatchID == matchID
}

func (idx *LocationIndex) IsPending(id string) bool {
	return idx.Locate(id).Kind == LocationPending
}

func (idx *LocationIndex) IsEliminated(id string) bool {
	return idx.Locate(id).Kind == LocationEliminated
}

// Count returns how many competitors are at the given kind of location.
func (idx *LocationIndex) Count(kind LocationKind) int {
	n := 0
	for _, loc := range idx.byID {
		if loc.Kind == kind {
			n++
		}
	}
	return n
}

func (idx *LocationIndex) seat(id, matchID string) {
	idx.byID[id] = Location{Kind: LocationInMatch, MatchID: matchID}
}

func (idx *LocationIndex) pend(id string) {
	idx.byID[id] = Location{Kind: LocationPending}
}

func (idx *LocationIndex) eliminate(id string) {
	idx.byID[id] = Location{Kind: LocationEliminated}
}
