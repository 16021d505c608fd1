package pagination

// Page is the envelope returned by list endpoints.
type Page[T any] struct {
	Items      []T   `json:"docs"`
	Page       int   `json:"page"`
	TotalPages int   `json:"pages"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
}

// Paginate builds page metadata; TotalPages is ceil(totalCount/limit).
func Paginate[T any](page, limit int, totalCount int64, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Page:       page,
		TotalPages: TotalPages(totalCount, limit),
		Limit:      limit,
		Total:      totalCount,
	}
}

func TotalPages(totalCount int64, limit int) int {
	if limit <= 0 || totalCount <= 0 {
		return 0
	}
	return int((totalCount + int64(limit) - 1) / int64(limit))
}

// Normalize clamps page to >= 1 and limit to [1, maxLimit], substituting
// defaultLimit for non-positive limits.
func Normalize(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func Offset(page, limit int) int {
	if page < 1 || limit <= 0 {
		return 0
	}
	return (page - 1) * limit
}
