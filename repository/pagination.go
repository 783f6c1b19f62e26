package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 50

// PageRequest selects one page of a listing. Explicit is false when the
// caller did not ask for a page and Number 1 was assumed.
type PageRequest struct {
	Number   int
	Size     int
	Explicit bool
}

// FirstPage is the implicit default page.
func FirstPage() PageRequest {
	return PageRequest{Number: 1}
}

// PageNumber is an explicitly requested page.
func PageNumber(n int) PageRequest {
	return PageRequest{Number: n, Explicit: true}
}

// Window is the slice of a listing selected by a PageRequest.
type Window struct {
	Number   int
	Size     int
	Offset   int
	MaxPage  int
	Previous *int
	Next     *int
}

// Resolve checks the request against the total candidate count and computes
// the slice bounds and neighbour pages.
func (p PageRequest) Resolve(total int64, defaultSize int) (Window, error) {
	size := p.Size
	if size <= 0 {
		size = defaultSize
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	number := p.Number
	if number == 0 && !p.Explicit {
		number = 1
	}

	maxPage := int((total + int64(size) - 1) / int64(size))
	if total == 0 && !p.Explicit && number == 1 {
		return Window{Number: 1, Size: size, MaxPage: 0}, nil
	}
	if number < 1 || number > maxPage {
		return Window{}, &apperr.InvalidPageError{Page: number, MaxPage: maxPage}
	}

	w := Window{
		Number:  number,
		Size:    size,
		Offset:  (number - 1) * size,
		MaxPage: maxPage,
	}
	if number > 1 {
		prev := number - 1
		w.Previous = &prev
	}
	if int64(w.Offset+size) < total {
		next := number + 1
		w.Next = &next
	}
	return w, nil
}

// Page is one page of a listing. Count is the size of the whole listing.
type Page[T any] struct {
	Items    []T
	Count    int64
	Number   int
	MaxPage  int
	Previous *int
	Next     *int
}

func newPage[T any](items []T, total int64, w Window) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:    items,
		Count:    total,
		Number:   w.Number,
		MaxPage:  w.MaxPage,
		Previous: w.Previous,
		Next:     w.Next,
	}
}

// paginate counts the rows matched by scope, validates the request against
// that count and then loads the requested slice in the given order.
func paginate[T any](ctx context.Context, r *Repository, req PageRequest, order string, scope func(db *gorm.DB) *gorm.DB) (*Page[T], error) {
	var (
		items []T
		total int64
		win   Window
	)
	err := r.run(ctx, func(db *gorm.DB) error {
		items = nil
		var row T
		if err := scope(db.Model(&row)).Count(&total).Error; err != nil {
			return err
		}
		w, err := req.Resolve(total, r.pageSize)
		if err != nil {
			return err
		}
		win = w
		if total == 0 {
			return nil
		}
		return scope(db.Model(&row)).Order(order).Offset(w.Offset).Limit(w.Size).Find(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return newPage(items, total, win), nil
}
