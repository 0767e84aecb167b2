package response

// PageResponse is the standard wrapper for paginated list endpoints.
type PageResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, page, pageSize, total int) PageResponse[T] {
	return PageResponse[T]{
		Items:    nonNil(items),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
}

// ListResponse wraps list endpoints that return everything at once.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}

func NewListResponse[T any](items []T) ListResponse[T] {
	return ListResponse[T]{Items: nonNil(items)}
}

// nonNil keeps JSON output as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return make([]T, 0)
	}
	return items
}
