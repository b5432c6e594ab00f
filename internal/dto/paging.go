package dto

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 50
)

type PageRequest struct {
	PageNumber int `query:"pageNumber"`
	PageSize   int `query:"pageSize"`
}

// Normalize clamps out-of-range values silently instead of rejecting them.
func (p PageRequest) Normalize() PageRequest {
	if p.PageNumber < 1 {
		p.PageNumber = DefaultPageNumber
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

type PagedResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPagedResponse[T any](items []T, total int64, page PageRequest) PagedResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if page.PageSize > 0 {
		pages = int((total + int64(page.PageSize) - 1) / int64(page.PageSize))
	}
	return PagedResponse[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalPages: pages,
	}
}
