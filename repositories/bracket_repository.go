package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-tracker/models"
)

var (
	ErrBracketNotFound = errors.New("bracket not found")
	ErrVersionConflict = errors.New("bracket was modified concurrently")
)

// BracketRepository persists the whole bracket state of a tournament as one
// JSON document. Save uses the state's Version for optimistic locking and
// bumps it on success.
type BracketRepository interface {
	Load(ctx context.Context, tournamentID string) (*models.BracketState, error)
	Save(ctx context.Context, tournamentID string, state *models.BracketState) error
	Delete(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type sqlBracketRepository struct {
	db *sql.DB
}

func NewBracketRepository(db *sql.DB) BracketRepository {
	return &sqlBracketRepository{db: db}
}

func (r *sqlBracketRepository) Load(ctx context.Context, tournamentID string) (*models.BracketState, error) {
	query := `SELECT state, version FROM bracket_states WHERE tournament_id = $1`

	var (
		raw     []byte
		version int
	)
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&raw, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to load bracket for tournament %s: %w", tournamentID, err)
	}

	state := &models.BracketState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("failed to decode bracket for tournament %s: %w", tournamentID, err)
	}
	state.Version = version
	return state, nil
}

// Save inserts the state when its Version is 0 and otherwise updates the row
// only if the stored version still matches. ErrVersionConflict is returned
// when another writer got there first.
func (r *sqlBracketRepository) Save(ctx context.Context, tournamentID string, state *models.BracketState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode bracket for tournament %s: %w", tournamentID, err)
	}

	var result sql.Result
	if state.Version == 0 {
		query := `
			INSERT INTO bracket_states (tournament_id, state, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (tournament_id) DO NOTHING`
		result, err = r.db.ExecContext(ctx, query, tournamentID, string(raw))
	} else {
		query := `
			UPDATE bracket_states
			SET state = $1, version = version + 1, updated_at = CURRENT_TIMESTAMP
			WHERE tournament_id = $2 AND version = $3`
		result, err = r.db.ExecContext(ctx, query, string(raw), tournamentID, state.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to save bracket for tournament %s: %w", tournamentID, err)
	}
	if err := checkAffectedRows(result, ErrVersionConflict); err != nil {
		return err
	}

	state.Version++
	return nil
}

func (r *sqlBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlBracketRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	query := `DELETE FROM bracket_states WHERE tournament_id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete bracket for tournament %s: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}
