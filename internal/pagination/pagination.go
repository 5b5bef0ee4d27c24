// Package pagination splits ordered listings into numbered pages.
package pagination

import (
	"context"
	"strconv"
)

// Page is one window of a listing.
type Page[T any] struct {
	Items    []T
	Number   int
	PerPage  int
	NumPages int
	Count    int64
}

func (p *Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}
func (p *Page[T]) NextNumber() int     { return p.Number + 1 }
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// Numbers lists every page number, for rendering page links.
func (p *Page[T]) Numbers() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// NumPages is the page count for count items; an empty listing still has one page.
func NumPages(count int64, perPage int) int {
	if count <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// Number resolves the requested page: anything that is not an integer yields the first page,
// an integer out of range yields the last one.
func Number(raw string, numPages int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// Paginate counts the listing, resolves the requested page and fetches only its items.
func Paginate[T any](
	ctx context.Context,
	raw string,
	perPage int,
	count func(ctx context.Context) (int64, error),
	fetch func(ctx context.Context, offset, limit int) ([]T, error),
) (*Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	numPages := NumPages(total, perPage)
	number := Number(raw, numPages)

	page := &Page[T]{
		Number:   number,
		PerPage:  perPage,
		NumPages: numPages,
		Count:    total,
	}
	if total == 0 {
		return page, nil
	}
	page.Items, err = fetch(ctx, (number-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return page, nil
}
