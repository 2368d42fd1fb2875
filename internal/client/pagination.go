package client

import (
	"context"
	"iter"

	"payos/internal/pkg/errors"
	"payos/internal/platform/models"
)

// PageFetcher loads the page starting at offset.
type PageFetcher[T any] func(ctx context.Context, offset int) (*Page[T], error)

// Page is one offset-paginated slice of a list endpoint.
type Page[T any] struct {
	Data       []T
	Pagination models.Pagination
	fetch      PageFetcher[T]
}

func NewPage[T any](data []T, p models.Pagination, fetch PageFetcher[T]) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{Data: data, Pagination: p, fetch: fetch}
}

func (p *Page[T]) HasNextPage() bool {
	return p.Pagination.HasMore
}

func (p *Page[T]) HasPreviousPage() bool {
	return p.Pagination.Offset > 0
}

func (p *Page[T]) step() int {
	if p.Pagination.Limit > 0 {
		return p.Pagination.Limit
	}
	return len(p.Data)
}

func (p *Page[T]) NextPage(ctx context.Context) (*Page[T], error) {
	if !p.HasNextPage() || p.fetch == nil {
		return nil, errors.ErrNoMorePages
	}
	return p.fetch(ctx, p.Pagination.Offset+p.step())
}

func (p *Page[T]) PreviousPage(ctx context.Context) (*Page[T], error) {
	if !p.HasPreviousPage() || p.fetch == nil {
		return nil, errors.ErrNoPreviousPages
	}
	return p.fetch(ctx, max(p.Pagination.Offset-p.step(), 0))
}

// Iter yields every item from this page onward, fetching pages as needed.
// A fetch error is yielded once and ends the sequence.
func (p *Page[T]) Iter(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		page := p
		for {
			for _, item := range page.Data {
				if !yield(item, nil) {
					return
				}
			}
			if !page.HasNextPage() || page.fetch == nil {
				return
			}
			next, err := page.NextPage(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			page = next
		}
	}
}

// All collects every item from this page onward.
func (p *Page[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	for item, err := range p.Iter(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}
