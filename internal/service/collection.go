package service

import (
	"context"

	"github.com/dukerupert/pawlog/internal/model"
)

// Collection is the service for a record family with no derived state.
// stamp, when set, fills request-scoped fields before every write.
type Collection[T any] struct {
	name  string
	repo  Repo[T]
	stamp func(ctx context.Context, rec *T)
}

func newCollection[T any](name string, repo Repo[T], stamp func(context.Context, *T)) *Collection[T] {
	return &Collection[T]{name: name, repo: repo, stamp: stamp}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) Add(ctx context.Context, rec *T) (*T, error) {
	if c.stamp != nil {
		c.stamp(ctx, rec)
	}
	return c.repo.Create(ctx, rec)
}

// Get returns a *model.NotFoundError for an absent id.
func (c *Collection[T]) Get(ctx context.Context, id int64) (*T, error) {
	rec, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &model.NotFoundError{Collection: c.name, ID: id}
	}
	return rec, nil
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return c.repo.List(ctx)
}

func (c *Collection[T]) Update(ctx context.Context, id int64, rec *T) (*T, error) {
	if c.stamp != nil {
		c.stamp(ctx, rec)
	}
	return c.repo.Update(ctx, id, rec)
}

// Patch merges a partial update into the stored record: apply overlays the
// fields the caller sent and everything else keeps its stored value.
func (c *Collection[T]) Patch(ctx context.Context, id int64, apply func(*T) error) (*T, error) {
	return patch(ctx, c.name, id, c.repo.GetByID, apply, c.Update)
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	return c.repo.Delete(ctx, id)
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}

// patch reads id through get, overlays apply and writes the merged record
// through update.
func patch[T any](
	ctx context.Context,
	collection string,
	id int64,
	get func(context.Context, int64) (*T, error),
	apply func(*T) error,
	update func(context.Context, int64, *T) (*T, error),
) (*T, error) {
	rec, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &model.NotFoundError{Collection: collection, ID: id}
	}
	if err := apply(rec); err != nil {
		return nil, err
	}
	return update(ctx, id, rec)
}
