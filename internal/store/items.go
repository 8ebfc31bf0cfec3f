package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/phishdrill/internal/content"
)

// ItemRepo implements selection.ItemStore over SQLite.
type ItemRepo struct {
	q   querier
	now func() time.Time
}

// Put inserts or replaces an item. The item is validated first.
func (r *ItemRepo) Put(ctx context.Context, it *content.Item) error {
	if err := content.Validate(it); err != nil {
		return err
	}
	links, err := marshalList(it.Links)
	if err != nil {
		return fmt.Errorf("marshal links: %w", err)
	}
	atts, err := marshalList(it.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableItems).
		Columns(itemColumns...).
		Values(
			it.ID, it.IsDeceptive, it.Difficulty,
			it.Sender.Name, it.Sender.Address,
			it.Subject, it.Body,
			links, atts,
			it.Category, r.now().UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put item %s: %w", it.ID, err)
	}
	return nil
}

// GetByID returns the item, or nil if it doesn't exist.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*content.Item, error) {
	items, err := r.query(ctx, entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByDifficulty returns items at band, skipping ids in exclude.
func (r *ItemRepo) ByDifficulty(ctx context.Context, band int, exclude []string) ([]*content.Item, error) {
	return r.ByDifficulties(ctx, []int{band}, exclude)
}

// ByDifficulties returns items in any of bands, skipping ids in exclude.
func (r *ItemRepo) ByDifficulties(ctx context.Context, bands []int, exclude []string) ([]*content.Item, error) {
	if len(bands) == 0 {
		return nil, nil
	}
	bandArgs := make([]any, len(bands))
	for i, b := range bands {
		bandArgs[i] = b
	}
	preds := []*entsql.Predicate{entsql.In("difficulty", bandArgs...)}
	if len(exclude) > 0 {
		exArgs := make([]any, len(exclude))
		for i, id := range exclude {
			exArgs[i] = id
		}
		preds = append(preds, entsql.NotIn("id", exArgs...))
	}
	return r.query(ctx, entsql.And(preds...), 0)
}

// All returns every item ordered by id.
func (r *ItemRepo) All(ctx context.Context) ([]*content.Item, error) {
	return r.query(ctx, nil, 0)
}

// Count returns the number of items.
func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(entsql.Count("*")).From(b.Table(tableItems)).Query()
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) query(ctx context.Context, where *entsql.Predicate, limit int) ([]*content.Item, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(itemColumns...).From(b.Table(tableItems)).OrderBy("id")
	if where != nil {
		sel.Where(where)
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var out []*content.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func scanItem(rows *sql.Rows) (*content.Item, error) {
	var (
		it        content.Item
		links     []byte
		atts      []byte
		createdAt time.Time
	)
	err := rows.Scan(
		&it.ID, &it.IsDeceptive, &it.Difficulty,
		&it.Sender.Name, &it.Sender.Address,
		&it.Subject, &it.Body,
		&links, &atts,
		&it.Category, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	if it.Links, err = unmarshalList(links); err != nil {
		return nil, fmt.Errorf("item %s links: %w", it.ID, err)
	}
	if it.Attachments, err = unmarshalList(atts); err != nil {
		return nil, fmt.Errorf("item %s attachments: %w", it.ID, err)
	}
	return &it, nil
}

func marshalList(v []string) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalList(b []byte) ([]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v []string
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
