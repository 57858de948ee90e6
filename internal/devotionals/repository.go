// internal/devotionals/repository.go
package devotionals

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository is the store surface the devotionals service depends on.
type Repository interface {
	List(ctx context.Context, limit int) ([]Devotional, error)
	MostRecentOnOrBefore(ctx context.Context, day time.Time) (*Devotional, error)
	Create(ctx context.Context, devotional *Devotional) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a PostgreSQL-backed devotionals repository.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, limit int) ([]Devotional, error) {
	devotionals := []Devotional{}
	query := `
		SELECT id, verse, reference, reflection, date, created_at
		FROM devotionals
		ORDER BY date DESC
		LIMIT $1`

	if err := r.db.SelectContext(ctx, &devotionals, query, limit); err != nil {
		return nil, fmt.Errorf("query devotionals: %w", err)
	}
	return devotionals, nil
}

// MostRecentOnOrBefore returns the latest devotional dated no later than day.
// Days without their own entry fall back to the previous one.
func (r *postgresRepository) MostRecentOnOrBefore(ctx context.Context, day time.Time) (*Devotional, error) {
	var devotional Devotional
	query := `
		SELECT id, verse, reference, reflection, date, created_at
		FROM devotionals
		WHERE date <= $1
		ORDER BY date DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &devotional, query, day); err != nil {
		return nil, err
	}
	return &devotional, nil
}

func (r *postgresRepository) Create(ctx context.Context, devotional *Devotional) error {
	query := `
		INSERT INTO devotionals (id, verse, reference, reflection, date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		devotional.ID, devotional.Verse, devotional.Reference,
		devotional.Reflection, devotional.Date,
	).Scan(&devotional.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert devotional: %w", err)
	}
	return nil
}
