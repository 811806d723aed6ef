// bracket-tracker/brackets/double_elimination.go
package brackets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-tracker/models"
)

// GenerateBracket seeds the competitors into upper round 0. Fewer than two
// competitors produce a state with the roster and no matches. Any previous
// progress (lower rounds, finals, queue, eliminations, drop tags) is gone.
func (e *Engine) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.BracketState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCompetitors(params.Competitors); err != nil {
		return nil, err
	}

	st := models.NewBracketState(params.Competitors)
	for i := range st.Competitors {
		st.Competitors[i].DroppedFromRound = nil
	}

	n := len(st.Competitors)
	if n < 2 {
		e.logger.Debug("bracket left empty", slog.Int("competitors", n))
		return st, nil
	}

	bestOf := e.bestOf
	if params.BestOf > 0 && params.BestOf%2 == 1 {
		bestOf = params.BestOf
	}

	seeded := seedOrder(st.Competitors)
	ids := make([]string, len(seeded))
	for i, c := range seeded {
		ids[i] = c.ID
	}

	round := e.buildRound(models.BracketUpper, 0, ids, bestOf)
	st.Brackets.Upper = append(st.Brackets.Upper, round)

	e.logger.Debug("bracket generated",
		slog.Int("competitors", n),
		slog.Int("bracket_size", nextPowerOfTwo(n)),
		slog.Int("byes", nextPowerOfTwo(n)-n))
	return st, nil
}

// Generate is a shorthand for GenerateBracket with the engine's default
// series length.
func (e *Engine) Generate(ctx context.Context, competitors []models.Competitor) (*models.BracketState, error) {
	return e.GenerateBracket(ctx, GenerateBracketParams{Competitors: competitors})
}

func validateCompetitors(competitors []models.Competitor) error {
	seen := make(map[string]struct{}, len(competitors))
	for i, c := range competitors {
		if c.ID == "" {
			return fmt.Errorf("%w: competitor at position %d has no id", ErrInvalidCompetitors, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate competitor id %q", ErrInvalidCompetitors, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
