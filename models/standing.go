package models

// Standing is one line of the final or provisional results table.
type Standing struct {
	Competitor Competitor `json:"competitor"`
	Placement  *int       `json:"placement,omitempty"`
	Status     string     `json:"status"` // "champion", "alive" or "eliminated"
	Bracket    Bracket    `json:"bracket,omitempty"`
	Round      *int       `json:"round,omitempty"`
}

const (
	StandingChampion   = "champion"
	StandingAlive      = "alive"
	StandingEliminated = "eliminated"
)
