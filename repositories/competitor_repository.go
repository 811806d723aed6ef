package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-tracker/models"
)

var (
	ErrCompetitorNotFound = errors.New("competitor not found")
	ErrCompetitorConflict = errors.New("competitor already registered for this tournament")
)

type CompetitorRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournamentID string, c *models.Competitor) error
	ListByTournament(ctx context.Context, tournamentID string) ([]models.Competitor, error)
	FindByID(ctx context.Context, tournamentID, competitorID string) (*models.Competitor, error)
	UpdatePlacement(ctx context.Context, exec SQLExecutor, tournamentID, competitorID string, placement *int) error
	ClearPlacements(ctx context.Context, exec SQLExecutor, tournamentID string) error
	Delete(ctx context.Context, tournamentID, competitorID string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int64, error)
}

type sqlCompetitorRepository struct {
	db *sql.DB
}

func NewCompetitorRepository(db *sql.DB) CompetitorRepository {
	return &sqlCompetitorRepository{db: db}
}

func (r *sqlCompetitorRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlCompetitorRepository) Create(ctx context.Context, exec SQLExecutor, tournamentID string, c *models.Competitor) error {
	query := `
		INSERT INTO competitors (tournament_id, id, name, skill, placement)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, c.ID, c.Name, c.Skill, nullableInt(c.Placement))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCompetitorConflict
		}
		return fmt.Errorf("failed to create competitor: %w", err)
	}
	return nil
}

func (r *sqlCompetitorRepository) scanCompetitor(row rowScanner, c *models.Competitor) error {
	var placement sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &c.Skill, &placement); err != nil {
		return err
	}
	if placement.Valid {
		p := int(placement.Int64)
		c.Placement = &p
	}
	return nil
}

// ListByTournament returns the roster in registration order.
func (r *sqlCompetitorRepository) ListByTournament(ctx context.Context, tournamentID string) ([]models.Competitor, error) {
	query := `
		SELECT id, name, skill, placement
		FROM competitors
		WHERE tournament_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	defer rows.Close()

	competitors := make([]models.Competitor, 0)
	for rows.Next() {
		var c models.Competitor
		if err := r.scanCompetitor(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitors: %w", err)
	}
	return competitors, nil
}

func (r *sqlCompetitorRepository) FindByID(ctx context.Context, tournamentID, competitorID string) (*models.Competitor, error) {
	query := `SELECT id, name, skill, placement FROM competitors WHERE tournament_id = $1 AND id = $2`

	c := &models.Competitor{}
	err := r.scanCompetitor(r.db.QueryRowContext(ctx, query, tournamentID, competitorID), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, fmt.Errorf("failed to find competitor: %w", err)
	}
	return c, nil
}

func (r *sqlCompetitorRepository) UpdatePlacement(ctx context.Context, exec SQLExecutor, tournamentID, competitorID string, placement *int) error {
	query := `UPDATE competitors SET placement = $1 WHERE tournament_id = $2 AND id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, nullableInt(placement), tournamentID, competitorID)
	if err != nil {
		return fmt.Errorf("failed to update competitor placement: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

func (r *sqlCompetitorRepository) ClearPlacements(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	query := `UPDATE competitors SET placement = NULL WHERE tournament_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to clear competitor placements: %w", err)
	}
	return nil
}

func (r *sqlCompetitorRepository) Delete(ctx context.Context, tournamentID, competitorID string) error {
	query := `DELETE FROM competitors WHERE tournament_id = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, tournamentID, competitorID)
	if err != nil {
		return fmt.Errorf("failed to delete competitor: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitorNotFound)
}

// DeleteByTournament removes the whole roster and reports how many
// competitors were deleted.
func (r *sqlCompetitorRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int64, error) {
	query := `DELETE FROM competitors WHERE tournament_id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete competitors of tournament %s: %w", tournamentID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return deleted, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
