package brackets

import (
	"context"

	"github.com/Dosada05/bracket-tracker/models"
)

type GenerateBracketParams struct {
	Competitors []models.Competitor
	// BestOf overrides the generator's default series length when positive.
	BestOf int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.BracketState, error)

	GetName() string
}

const DoubleEliminationFormat = "DoubleElimination"
