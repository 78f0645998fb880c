package filter

import "math"

// Pagination holds the configured page sizes.
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

type PageRequest struct {
	Page int
	Size int
}

// Normalize fills defaults and clamps the size to the configured maximum.
func (p Pagination) Normalize(req PageRequest) PageRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Size < 1 {
		req.Size = p.DefaultSize
	}
	if p.MaxSize > 0 && req.Size > p.MaxSize {
		req.Size = p.MaxSize
	}
	if req.Size < 1 {
		req.Size = 1
	}
	// Keeps Offset from overflowing; such a page is past the end of any collection.
	if last := math.MaxInt / req.Size; req.Page > last {
		req.Page = last
	}
	return req
}

// Offset is the index of the first item of a normalized request.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Size
}

// Page is one slice of a filtered, ordered collection.
type Page[T any] struct {
	Count       int `json:"count"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"-"`
	Results     []T `json:"results"`
}

func (p Page[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

func (p Page[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

// Paginate cuts the requested page out of items. A page past the end yields
// an empty result.
func Paginate[T any](items []T, req PageRequest, cfg Pagination) Page[T] {
	req = cfg.Normalize(req)
	total := len(items)
	page := Page[T]{
		Count:       total,
		TotalPages:  (total + req.Size - 1) / req.Size,
		CurrentPage: req.Page,
		PageSize:    req.Size,
		Results:     []T{},
	}
	start := req.Offset()
	if start >= total {
		return page
	}
	end := start + req.Size
	if end > total {
		end = total
	}
	page.Results = items[start:end]
	return page
}

// Map converts the results of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Count:       p.Count,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
		PageSize:    p.PageSize,
		Results:     make([]U, len(p.Results)),
	}
	for i, v := range p.Results {
		out.Results[i] = fn(v)
	}
	return out
}

// Window wraps one page already cut by the datastore, given the total count.
func Window[T any](results []T, total int64, req PageRequest) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{
		Count:       int(total),
		TotalPages:  int((total + int64(req.Size) - 1) / int64(req.Size)),
		CurrentPage: req.Page,
		PageSize:    req.Size,
		Results:     results,
	}
}
