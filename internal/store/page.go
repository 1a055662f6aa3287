package store

// DefaultPageLimit is applied when a caller does not specify a page size.
const DefaultPageLimit = 10

// MaxPageLimit caps the page size a caller may request.
const MaxPageLimit = 100

// PageRequest describes which slice of a result set to fetch.
// Page is zero-based.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps the request into valid bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	return p.Page * p.Limit
}

// Page is one slice of a larger result set together with the total number
// of matching rows, so callers can compute page counts.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	TotalCount int64
}

// TotalPages returns the number of pages needed to cover TotalCount items.
func (p Page[T]) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.Limit) - 1) / int64(p.Limit))
}
