package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/phishdrill/internal/attempts"
)

// AttemptRepo implements attempts.Log over SQLite.
type AttemptRepo struct {
	q   querier
	seq *sequenceCounter
}

// Append stores rec, assigning rec.Sequence from the global counter.
func (r *AttemptRepo) Append(ctx context.Context, rec *attempts.Record) error {
	seq, err := r.seq.Next(ctx, r.q)
	if err != nil {
		return err
	}

	var rt any
	if rec.ResponseTimeMs != nil {
		rt = *rec.ResponseTimeMs
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAttempts).
		Columns(attemptColumns...).
		Values(
			rec.ID, seq, rec.UserID, rec.ItemID,
			rec.GuessedDeceptive, rec.WasCorrect,
			rec.TargetDifficultyAtRequest, rec.ItemDifficulty,
			rt, rec.Timestamp.UTC(),
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	rec.Sequence = seq
	return nil
}

// RecentItemIDs returns item ids of the user's last limit attempts, newest first.
func (r *AttemptRepo) RecentItemIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select("item_id").
		From(b.Table(tableAttempts)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent item ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item ids: %w", err)
	}
	return ids, nil
}

// Recent returns the user's last limit attempts, newest first.
func (r *AttemptRepo) Recent(ctx context.Context, userID string, limit int) ([]*attempts.Record, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(attemptColumns...).
		From(b.Table(tableAttempts)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	defer rows.Close()

	var out []*attempts.Record
	for rows.Next() {
		var (
			rec attempts.Record
			rt  sql.NullInt64
		)
		err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.UserID, &rec.ItemID,
			&rec.GuessedDeceptive, &rec.WasCorrect,
			&rec.TargetDifficultyAtRequest, &rec.ItemDifficulty,
			&rt, &rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if rt.Valid {
			v := int(rt.Int64)
			rec.ResponseTimeMs = &v
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// DeleteUser removes every attempt for userID.
func (r *AttemptRepo) DeleteUser(ctx context.Context, userID string) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableAttempts).
		Where(entsql.EQ("user_id", userID)).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete attempts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
