package vote

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunchvote/lunchvote/internal/platform/db"
)

// Repository persists the append-only vote and menu logs in PostgreSQL.
// Rows are read back in insertion order (seq), which the consolidation
// tie-break relies on.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AppendVote inserts one vote-log row.
func (r *Repository) AppendVote(ctx context.Context, ev VoteEvent) error {
	const q = `
		INSERT INTO vote_events (txn_id, person_name, restaurant_name, closed_flag, event_ts, note, event_date, action, cutoff_ts, source)
		VALUES ($1, $2, $3, 0, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, q, ev.ID, ev.Person, ev.Target, ev.At, ev.Note, ev.DayKey, string(ev.Action), ev.Cutoff, ev.Source)
	if err != nil {
		return fmt.Errorf("vote: insert vote event: %w", err)
	}
	return nil
}

// AppendMenu inserts one menu-log row.
func (r *Repository) AppendMenu(ctx context.Context, ev MenuEvent) error {
	const q = `
		INSERT INTO menu_events (txn_id, person_name, restaurant_name, menu_name, price_amount, closed_flag, event_ts, note, event_date, cutoff_ts, source)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, q, ev.ID, ev.Person, ev.Restaurants, ev.MenuName, priceParam(ev.Price), ev.At, ev.Note, ev.DayKey, ev.Cutoff, ev.Source)
	if err != nil {
		return fmt.Errorf("vote: insert menu event: %w", err)
	}
	return nil
}

// VoteEventsForDay loads the day's vote-log rows in insertion order.
func (r *Repository) VoteEventsForDay(ctx context.Context, dayKey string) ([]VoteEvent, error) {
	const q = `
		SELECT txn_id, person_name, restaurant_name, closed_flag, event_ts, note, event_date::text, action, cutoff_ts, source
		FROM vote_events
		WHERE event_date = $1
		ORDER BY seq`
	rows, err := r.pool.Query(ctx, q, dayKey)
	if err != nil {
		return nil, fmt.Errorf("vote: query vote events: %w", err)
	}
	defer rows.Close()

	var out []VoteEvent
	for rows.Next() {
		var ev VoteEvent
		var closed int16
		var action string
		if err := rows.Scan(&ev.ID, &ev.Person, &ev.Target, &closed, &ev.At, &ev.Note, &ev.DayKey, &action, &ev.Cutoff, &ev.Source); err != nil {
			return nil, fmt.Errorf("vote: scan vote event: %w", err)
		}
		ev.Closed = closed == 1
		ev.Action = Action(action)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// MenuEventsForDay loads the day's menu-log rows in insertion order.
func (r *Repository) MenuEventsForDay(ctx context.Context, dayKey string) ([]MenuEvent, error) {
	const q = `
		SELECT txn_id, person_name, restaurant_name, menu_name, price_amount, closed_flag, event_ts, note, event_date::text, cutoff_ts, source
		FROM menu_events
		WHERE event_date = $1
		ORDER BY seq`
	rows, err := r.pool.Query(ctx, q, dayKey)
	if err != nil {
		return nil, fmt.Errorf("vote: query menu events: %w", err)
	}
	defer rows.Close()

	var out []MenuEvent
	for rows.Next() {
		var ev MenuEvent
		var closed int16
		var price pgtype.Int8
		if err := rows.Scan(&ev.ID, &ev.Person, &ev.Restaurants, &ev.MenuName, &price, &closed, &ev.At, &ev.Note, &ev.DayKey, &ev.Cutoff, &ev.Source); err != nil {
			return nil, fmt.Errorf("vote: scan menu event: %w", err)
		}
		ev.Closed = closed == 1
		if price.Valid {
			v := price.Int64
			ev.Price = &v
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ApplyVoteMarks writes consolidation verdicts to the vote log in one
// transaction.
func (r *Repository) ApplyVoteMarks(ctx context.Context, marks []ClosedMark) error {
	return r.applyMarks(ctx, "vote_events", marks)
}

// ApplyMenuMarks writes consolidation verdicts to the menu log in one
// transaction.
func (r *Repository) ApplyMenuMarks(ctx context.Context, marks []ClosedMark) error {
	return r.applyMarks(ctx, "menu_events", marks)
}

func (r *Repository) applyMarks(ctx context.Context, table string, marks []ClosedMark) error {
	if len(marks) == 0 {
		return nil
	}
	q := fmt.Sprintf("UPDATE %s SET closed_flag = $1 WHERE txn_id = $2", table)
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range marks {
			flag := 0
			if m.Closed {
				flag = 1
			}
			batch.Queue(q, flag, m.ID)
		}
		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range marks {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("vote: apply closed mark: %w", err)
			}
		}
		return results.Close()
	})
}

func priceParam(price *int64) pgtype.Int8 {
	if price == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *price, Valid: true}
}
