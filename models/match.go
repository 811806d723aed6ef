package models

type MatchStatus string

const (
	MatchStatusNextUp     MatchStatus = "next_up"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// matchStatusTransitions lists the statuses a match may move to from each
// status. Staying in the same status is always allowed.
var matchStatusTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusNextUp:     {MatchStatusInProgress, MatchStatusCompleted},
	MatchStatusInProgress: {MatchStatusCompleted, MatchStatusNextUp},
	MatchStatusCompleted:  {MatchStatusInProgress, MatchStatusNextUp},
}

func (s MatchStatus) Valid() bool {
	_, ok := matchStatusTransitions[s]
	return ok
}

// CanTransitionTo reports whether a match in status s may be moved to next.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range matchStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Bracket string

const (
	BracketUpper            Bracket = "upper"
	BracketLower            Bracket = "lower"
	BracketGrandFinals      Bracket = "grand_finals"
	BracketGrandFinalsReset Bracket = "grand_finals_reset"
)

type SeatKind string

const (
	SeatCompetitor SeatKind = "competitor"
	SeatBye        SeatKind = "bye"
)

// Seat is one side of a match: either a competitor (by ID) or a BYE.
type Seat struct {
	Kind         SeatKind `json:"kind"`
	CompetitorID string   `json:"competitor_id,omitempty"`
}

func ByeSeat() Seat {
	return Seat{Kind: SeatBye}
}

func CompetitorSeat(competitorID string) Seat {
	return Seat{Kind: SeatCompetitor, CompetitorID: competitorID}
}

func (s Seat) IsBye() bool {
	return s.Kind == SeatBye
}

// Holds reports whether the seat is occupied by the given competitor.
func (s Seat) Holds(competitorID string) bool {
	return s.Kind == SeatCompetitor && competitorID != "" && s.CompetitorID == competitorID
}

type Match struct {
	ID       string      `json:"id"`
	Bracket  Bracket     `json:"bracket"`
	Round    int         `json:"round"`
	Slot     int         `json:"slot"`
	Player1  Seat        `json:"player1"`
	Player2  Seat        `json:"player2"`
	ScoreP1  int         `json:"score_p1"`
	ScoreP2  int         `json:"score_p2"`
	WinnerID *string     `json:"winner_id,omitempty"`
	Status   MatchStatus `json:"status"`
	BestOf   int         `json:"best_of"`
}

// WinThreshold is the number of game wins that decides the match.
func (m *Match) WinThreshold() int {
	return m.BestOf/2 + 1
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

func (m *Match) HasBye() bool {
	return m.Player1.IsBye() || m.Player2.IsBye()
}

func (m *Match) Seats() [2]Seat {
	return [2]Seat{m.Player1, m.Player2}
}

// HasCompetitor reports whether the competitor occupies either seat of the match.
func (m *Match) HasCompetitor(competitorID string) bool {
	return m.Player1.Holds(competitorID) || m.Player2.Holds(competitorID)
}

func (m *Match) Winner() (string, bool) {
	if m.WinnerID == nil || *m.WinnerID == "" {
		return "", false
	}
	return *m.WinnerID, true
}

// Loser returns the competitor who lost a completed match. Matches decided by
// a BYE have no loser.
func (m *Match) Loser() (string, bool) {
	winner, ok := m.Winner()
	if !ok || !m.IsCompleted() || m.HasBye() {
		return "", false
	}
	switch {
	case m.Player1.Holds(winner):
		return m.Player2.CompetitorID, true
	case m.Player2.Holds(winner):
		return m.Player1.CompetitorID, true
	}
	return "", false
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	if m.WinnerID != nil {
		w := *m.WinnerID
		c.WinnerID = &w
	}
	return &c
}

// Round is the ordered list of matches of one bracket round.
type Round []*Match

func (r Round) IsCompleted() bool {
	if len(r) == 0 {
		return false
	}
	for _, m := range r {
		if !m.IsCompleted() {
			return false
		}
	}
	return true
}

// Winners returns the winners of the round in slot order.
func (r Round) Winners() []string {
	winners := make([]string, 0, len(r))
	for _, m := range r {
		if w, ok := m.Winner(); ok {
			winners = append(winners, w)
		}
	}
	return winners
}

func (r Round) Clone() Round {
	if r == nil {
		return nil
	}
	c := make(Round, len(r))
	for i, m := range r {
		c[i] = m.Clone()
	}
	return c
}
