package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/oulpan/internal/item"
)

// ItemRepo is the item store: CRUD over the learnable items.
type ItemRepo interface {
	// ListAll returns every item, oldest first.
	ListAll(ctx context.Context) ([]item.Item, error)

	// Get returns one item or ErrNotFound.
	Get(ctx context.Context, id item.ID) (item.Item, error)

	// Create inserts it and returns it with ID and timestamps set.
	Create(ctx context.Context, it item.Item) (item.Item, error)

	// Update applies a partial update. Returns ErrNotFound if id is absent.
	Update(ctx context.Context, id item.ID, patch item.Patch) error

	// Delete removes one item. Returns ErrNotFound if id is absent.
	Delete(ctx context.Context, id item.ID) error

	// DeleteAll removes every item and returns how many were deleted.
	DeleteAll(ctx context.Context) (int, error)

	// ResetProgress clears mastery, review and answered state on every
	// item that has any, in one statement. Returns the rows touched.
	ResetProgress(ctx context.Context) (int, error)

	// FindByPrompt returns the item with exactly this prompt, or ErrNotFound.
	FindByPrompt(ctx context.Context, prompt string) (item.Item, error)

	// Search returns items whose prompt or answer contains q.
	Search(ctx context.Context, q string) ([]item.Item, error)
}

var itemColumns = []string{
	"id", "kind", "prompt", "answer", "choices", "explanation", "tags",
	"mastery_count", "needs_review", "error_count", "answered",
	"created_at", "updated_at",
}

type itemRepo struct {
	drv     *entsql.Driver
	dialect string
}

func (r *itemRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *itemRepo) selectItems() *entsql.Selector {
	b := r.builder()
	return b.Select(itemColumns...).From(b.Table(ItemsTable.Name))
}

func (r *itemRepo) ListAll(ctx context.Context) ([]item.Item, error) {
	items, err := r.query(ctx, r.selectItems().OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *itemRepo) Get(ctx context.Context, id item.ID) (item.Item, error) {
	return r.first(ctx, r.selectItems().Where(entsql.EQ("id", int64(id))))
}

func (r *itemRepo) FindByPrompt(ctx context.Context, prompt string) (item.Item, error) {
	return r.first(ctx, r.selectItems().Where(entsql.EQ("prompt", strings.TrimSpace(prompt))))
}

func (r *itemRepo) Search(ctx context.Context, q string) ([]item.Item, error) {
	q = strings.TrimSpace(q)
	sel := r.selectItems().OrderBy("id")
	if q != "" {
		sel = sel.Where(entsql.Or(
			entsql.ContainsFold("prompt", q),
			entsql.ContainsFold("answer", q),
		))
	}
	items, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

func (r *itemRepo) Create(ctx context.Context, it item.Item) (item.Item, error) {
	it.Normalize()
	if err := it.Validate(); err != nil {
		return item.Item{}, err
	}
	choices, tags, err := encodeJSONFields(it)
	if err != nil {
		return item.Item{}, err
	}

	now := time.Now().UTC()
	it.CreatedAt, it.UpdatedAt = now, now

	ins := r.builder().Insert(ItemsTable.Name).
		Columns(itemColumns[1:]...).
		Values(string(it.Kind), it.Prompt, it.Answer, choices, it.Explanation, tags,
			it.MasteryCount, it.NeedsReview, it.ErrorCount, it.Answered,
			it.CreatedAt, it.UpdatedAt)

	id, err := r.insert(ctx, ins)
	if err != nil {
		return item.Item{}, fmt.Errorf("create item: %w", err)
	}
	it.ID = item.ID(id)
	return it, nil
}

// insert runs ins and returns the new row id. Postgres has no
// LastInsertId, so it uses RETURNING instead.
func (r *itemRepo) insert(ctx context.Context, ins *entsql.InsertBuilder) (int64, error) {
	if r.dialect == dialect.Postgres {
		query, args := ins.Returning("id").Query()
		rows := &entsql.Rows{}
		if err := r.drv.Query(ctx, query, args, rows); err != nil {
			return 0, err
		}
		defer rows.Close()
		return entsql.ScanInt64(rows)
	}
	query, args := ins.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *itemRepo) Update(ctx context.Context, id item.ID, patch item.Patch) error {
	upd := r.builder().Update(ItemsTable.Name).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", int64(id)))
	if patch.Prompt != nil {
		upd.Set("prompt", strings.TrimSpace(*patch.Prompt))
	}
	if patch.Answer != nil {
		upd.Set("answer", strings.TrimSpace(*patch.Answer))
	}
	if patch.Tags != nil {
		b, err := json.Marshal(item.NewTags(*patch.Tags...))
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		upd.Set("tags", string(b))
	}
	if patch.MasteryCount != nil {
		upd.Set("mastery_count", *patch.MasteryCount)
	}
	if patch.NeedsReview != nil {
		upd.Set("needs_review", *patch.NeedsReview)
	}
	if patch.ErrorCount != nil {
		upd.Set("error_count", *patch.ErrorCount)
	}
	if patch.Answered != nil {
		upd.Set("answered", *patch.Answered)
	}

	n, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id item.ID) error {
	n, err := r.exec(ctx, r.builder().Delete(ItemsTable.Name).Where(entsql.EQ("id", int64(id))))
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *itemRepo) DeleteAll(ctx context.Context) (int, error) {
	n, err := r.exec(ctx, r.builder().Delete(ItemsTable.Name))
	if err != nil {
		return 0, fmt.Errorf("delete all items: %w", err)
	}
	return int(n), nil
}

func (r *itemRepo) ResetProgress(ctx context.Context) (int, error) {
	upd := r.builder().Update(ItemsTable.Name).
		Set("mastery_count", 0).
		Set("needs_review", false).
		Set("error_count", 0).
		Set("answered", false).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.Or(
			entsql.GT("mastery_count", 0),
			entsql.EQ("needs_review", true),
			entsql.GT("error_count", 0),
			entsql.EQ("answered", true),
		))
	n, err := r.exec(ctx, upd)
	if err != nil {
		return 0, fmt.Errorf("reset progress: %w", err)
	}
	return int(n), nil
}

func (r *itemRepo) exec(ctx context.Context, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *itemRepo) first(ctx context.Context, sel *entsql.Selector) (item.Item, error) {
	items, err := r.query(ctx, sel.Limit(1))
	if err != nil {
		return item.Item{}, fmt.Errorf("query item: %w", err)
	}
	if len(items) == 0 {
		return item.Item{}, ErrNotFound
	}
	return items[0], nil
}

func (r *itemRepo) query(ctx context.Context, sel *entsql.Selector) ([]item.Item, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanItem(rows *entsql.Rows) (item.Item, error) {
	var (
		it            item.Item
		id            int64
		kind          string
		choices, tags []byte
		created       time.Time
		updated       time.Time
	)
	err := rows.Scan(&id, &kind, &it.Prompt, &it.Answer, &choices, &it.Explanation, &tags,
		&it.MasteryCount, &it.NeedsReview, &it.ErrorCount, &it.Answered,
		&created, &updated)
	if err != nil {
		return item.Item{}, fmt.Errorf("scan item: %w", err)
	}
	it.ID = item.ID(id)
	it.Kind = item.Kind(kind)
	it.CreatedAt, it.UpdatedAt = created, updated
	if len(choices) > 0 {
		if err := json.Unmarshal(choices, &it.Choices); err != nil {
			return item.Item{}, fmt.Errorf("decode choices of item %d: %w", id, err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &it.Tags); err != nil {
			return item.Item{}, fmt.Errorf("decode tags of item %d: %w", id, err)
		}
	}
	return it, nil
}

// encodeJSONFields returns the JSON column values for it. Values are
// passed as strings so Postgres receives them as json text, not bytea.
func encodeJSONFields(it item.Item) (choices, tags any, err error) {
	if len(it.Choices) > 0 {
		b, err := json.Marshal(it.Choices)
		if err != nil {
			return nil, nil, fmt.Errorf("encode choices: %w", err)
		}
		choices = string(b)
	}
	t := it.Tags
	if t == nil {
		t = item.Tags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	return choices, string(b), nil
}
