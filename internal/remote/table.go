package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dukerupert/pawlog/internal/model"
)

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

type validator interface {
	Validate() error
}

// Table is generic CRUD over one remote table. M is the record type and R
// its snake_case row form.
type Table[M any, R any] struct {
	c          *Client
	name       string
	collection string
	order      string
	toRow      func(*M) R
	fromRow    func(R) M
}

// newTable binds a table named after its collection.
func newTable[M any, R any](c *Client, collection, order string, toRow func(*M) R, fromRow func(R) M) *Table[M, R] {
	return &Table[M, R]{c: c, name: collection, collection: collection, order: order, toRow: toRow, fromRow: fromRow}
}

// columns encodes a row as a column map without its identity fields.
func columns[R any](row R) (map[string]any, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var cols map[string]any
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, err
	}
	delete(cols, "id")
	delete(cols, "created_at")
	return cols, nil
}

func validate(rec any) error {
	if v, ok := rec.(validator); ok {
		return v.Validate()
	}
	return nil
}

func (t *Table[M, R]) Create(ctx context.Context, rec *M) (*M, error) {
	if err := validate(rec); err != nil {
		return nil, err
	}
	return t.insert(ctx, t.toRow(rec))
}

func (t *Table[M, R]) insert(ctx context.Context, row R) (*M, error) {
	cols, err := columns(row)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t.name, err)
	}
	cols["created_at"] = now()

	var out []R
	if err := t.c.do(ctx, http.MethodPost, t.name, nil, cols, &out); err != nil {
		return nil, writeErr(t.collection, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert %s: no row returned", t.name)
	}
	m := t.fromRow(out[0])
	return &m, nil
}

func (t *Table[M, R]) GetByID(ctx context.Context, id int64) (*M, error) {
	list, err := t.query(ctx, url.Values{"id": {eq(id)}})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (t *Table[M, R]) List(ctx context.Context) ([]M, error) {
	return t.query(ctx, url.Values{})
}

// query selects rows matching filters, in the table's default order.
func (t *Table[M, R]) query(ctx context.Context, filters url.Values) ([]M, error) {
	filters.Set("select", "*")
	if t.order != "" && filters.Get("order") == "" {
		filters.Set("order", t.order)
	}
	var rows []R
	if err := t.c.do(ctx, http.MethodGet, t.name, filters, nil, &rows); err != nil {
		return nil, err
	}
	list := make([]M, 0, len(rows))
	for _, r := range rows {
		list = append(list, t.fromRow(r))
	}
	return list, nil
}

func (t *Table[M, R]) Update(ctx context.Context, id int64, rec *M) (*M, error) {
	if err := validate(rec); err != nil {
		return nil, err
	}
	cols, err := columns(t.toRow(rec))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t.name, err)
	}
	return t.patch(ctx, id, url.Values{"id": {eq(id)}}, cols)
}

// patch writes cols to the rows matching filters. An empty result means
// nothing matched.
func (t *Table[M, R]) patch(ctx context.Context, id int64, filters url.Values, cols map[string]any) (*M, error) {
	var out []R
	if err := t.c.do(ctx, http.MethodPatch, t.name, filters, cols, &out); err != nil {
		return nil, writeErr(t.collection, err)
	}
	if len(out) == 0 {
		return nil, &model.NotFoundError{Collection: t.collection, ID: id}
	}
	m := t.fromRow(out[0])
	return &m, nil
}

func (t *Table[M, R]) Delete(ctx context.Context, id int64) error {
	if err := t.c.do(ctx, http.MethodDelete, t.name, url.Values{"id": {eq(id)}}, nil, nil); err != nil {
		return fmt.Errorf("delete %s %d: %w", t.name, id, err)
	}
	return nil
}

func (t *Table[M, R]) Count(ctx context.Context) (int, error) {
	return t.c.count(ctx, t.name, url.Values{"select": {"id"}})
}

// clear deletes every row. PostgREST refuses unfiltered deletes.
func (t *Table[M, R]) clear(ctx context.Context) error {
	if err := t.c.do(ctx, http.MethodDelete, t.name, url.Values{"id": {"gte.0"}}, nil, nil); err != nil {
		return fmt.Errorf("clear %s: %w", t.name, err)
	}
	return nil
}
