package roster

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed roster persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActive returns active people in roster order.
func (r *Repository) ListActive(ctx context.Context) ([]Person, error) {
	const q = `
		SELECT name, COALESCE(slack_user_id, ''), is_active
		FROM people
		WHERE is_active
		ORDER BY seq`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("roster: query active people: %w", err)
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.Name, &p.SlackUserID, &p.Active); err != nil {
			return nil, fmt.Errorf("roster: scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
