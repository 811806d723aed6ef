package models

// Competitor is a seeded entrant of the tournament.
type Competitor struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Skill     float64 `json:"skill"`
	Placement *int    `json:"placement,omitempty"` // explicit seed, lower is better

	// DroppedFromRound is set when the competitor is moved to the lower
	// bracket and records the upper round they lost in.
	DroppedFromRound *int `json:"dropped_from_round,omitempty"`
}

func (c Competitor) Clone() Competitor {
	out := c
	if c.Placement != nil {
		p := *c.Placement
		out.Placement = &p
	}
	if c.DroppedFromRound != nil {
		r := *c.DroppedFromRound
		out.DroppedFromRound = &r
	}
	return out
}
