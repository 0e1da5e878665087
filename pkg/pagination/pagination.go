package pagination

import (
	"context"
	"fmt"
)

// Range is an offset window over a result set.
type Range struct {
	Offset int
	Limit  int
}

// Last returns the inclusive index of the final row in the window,
// the form range-based table APIs expect.
func (r Range) Last() int {
	return r.Offset + r.Limit - 1
}

// Next returns the window immediately following r.
func (r Range) Next() Range {
	return Range{Offset: r.Offset + r.Limit, Limit: r.Limit}
}

// FetchFunc loads a single window of rows.
type FetchFunc[T any] func(ctx context.Context, r Range) ([]T, error)

// Collect walks windows of pageSize rows starting at offset zero and
// concatenates them until fetch returns fewer rows than requested.
// An empty result set yields an empty, non-nil slice.
func Collect[T any](ctx context.Context, pageSize int, fetch FetchFunc[T]) ([]T, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("invalid page size: %d", pageSize)
	}

	all := make([]T, 0)
	r := Range{Offset: 0, Limit: pageSize}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("fetch rows %d-%d: %w", r.Offset, r.Last(), err)
		}

		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}

		r = r.Next()
	}
}
