package models

// Elimination records where a competitor was knocked out. Placement is only
// set for the grand-finals runner-up.
type Elimination struct {
	CompetitorID string  `json:"competitor_id"`
	Bracket      Bracket `json:"bracket"`
	Round        int     `json:"round"`
	Placement    *int    `json:"placement,omitempty"`
}

type Brackets struct {
	Upper            []Round `json:"upper"`
	Lower            []Round `json:"lower"`
	GrandFinals      *Match  `json:"grand_finals"`
	GrandFinalsReset *Match  `json:"grand_finals_reset"`
}

// BracketState is the whole persisted state of one tournament bracket.
type BracketState struct {
	Competitors       []Competitor  `json:"competitors"`
	Brackets          Brackets      `json:"brackets"`
	PendingLowerQueue []string      `json:"pending_lower_queue"`
	Eliminated        []Elimination `json:"eliminated"`

	// Version is maintained by the persistence layer for optimistic locking.
	Version int `json:"version"`
}

func NewBracketState(competitors []Competitor) *BracketState {
	st := &BracketState{
		Competitors:       make([]Competitor, 0, len(competitors)),
		PendingLowerQueue: []string{},
		Eliminated:        []Elimination{},
		Brackets: Brackets{
			Upper: []Round{},
			Lower: []Round{},
		},
	}
	for _, c := range competitors {
		st.Competitors = append(st.Competitors, c.Clone())
	}
	return st
}

func (s *BracketState) Competitor(id string) (*Competitor, bool) {
	for i := range s.Competitors {
		if s.Competitors[i].ID == id {
			return &s.Competitors[i], true
		}
	}
	return nil, false
}

// HasBracket reports whether a bracket has been generated.
func (s *BracketState) HasBracket() bool {
	return len(s.Brackets.Upper) > 0
}

// Matches returns every match in creation order: upper rounds, lower rounds,
// grand finals, reset.
func (s *BracketState) Matches() []*Match {
	var out []*Match
	for _, r := range s.Brackets.Upper {
		out = append(out, r...)
	}
	for _, r := range s.Brackets.Lower {
		out = append(out, r...)
	}
	if s.Brackets.GrandFinals != nil {
		out = append(out, s.Brackets.GrandFinals)
	}
	if s.Brackets.GrandFinalsReset != nil {
		out = append(out, s.Brackets.GrandFinalsReset)
	}
	return out
}

func (s *BracketState) FindMatch(id string) (*Match, bool) {
	for _, m := range s.Matches() {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

func (s *BracketState) Clone() *BracketState {
	if s == nil {
		return nil
	}
	c := &BracketState{
		Competitors:       make([]Competitor, len(s.Competitors)),
		PendingLowerQueue: append([]string{}, s.PendingLowerQueue...),
		Eliminated:        make([]Elimination, len(s.Eliminated)),
		Version:           s.Version,
		Brackets: Brackets{
			Upper:            cloneRounds(s.Brackets.Upper),
			Lower:            cloneRounds(s.Brackets.Lower),
			GrandFinals:      s.Brackets.GrandFinals.Clone(),
			GrandFinalsReset: s.Brackets.GrandFinalsReset.Clone(),
		},
	}
	for i, comp := range s.Competitors {
		c.Competitors[i] = comp.Clone()
	}
	for i, e := range s.Eliminated {
		c.Eliminated[i] = e
		if e.Placement != nil {
			p := *e.Placement
			c.Eliminated[i].Placement = &p
		}
	}
	return c
}

func cloneRounds(rounds []Round) []Round {
	out := make([]Round, len(rounds))
	for i, r := range rounds {
		out[i] = r.Clone()
	}
	return out
}
