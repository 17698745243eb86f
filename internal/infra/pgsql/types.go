package pgsql

type PageResult[T any] struct {
	List      []T   `json:"list"`
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	PageCount int   `json:"page_count"`
}

func NewPageResult[T any](list []T, total int64, page, pageSize int) *PageResult[T] {
	return &PageResult[T]{
		List:      list,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		PageCount: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
