package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/phishdrill/internal/difficulty"
)

// StateRepo implements difficulty.StateStore over SQLite.
type StateRepo struct {
	q querier
}

// Get returns the user's state, or nil if none exists.
func (r *StateRepo) Get(ctx context.Context, userID string) (*difficulty.State, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(stateColumns...).
		From(b.Table(tableStates)).
		Where(entsql.EQ("user_id", userID)).
		Limit(1).
		Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query state: %w", err)
		}
		return nil, nil
	}
	var st difficulty.State
	err = rows.Scan(
		&st.UserID, &st.Difficulty, &st.Streak,
		&st.CorrectCount, &st.TotalCount,
		&st.LastItemID, &st.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan state: %w", err)
	}
	return &st, nil
}

// Put inserts or replaces the user's state.
func (r *StateRepo) Put(ctx context.Context, st *difficulty.State) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableStates).
		Columns(stateColumns...).
		Values(
			st.UserID, st.Difficulty, st.Streak,
			st.CorrectCount, st.TotalCount,
			st.LastItemID, st.UpdatedAt.UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

// Delete removes the user's state. Deleting a missing state is not an error.
func (r *StateRepo) Delete(ctx context.Context, userID string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableStates).
		Where(entsql.EQ("user_id", userID)).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete state: %w", err)
	}
	return nil
}
