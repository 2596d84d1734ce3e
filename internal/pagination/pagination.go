package pagination

// Пакет pagination реализует арифметику постраничных списков:
// нормализацию входных параметров, вычисление диапазона строк и
// скользящее окно видимых номеров страниц.

const (
	// DefaultRowsPerPage используется, когда клиент не передал размер страницы.
	DefaultRowsPerPage = 10
	// MaxRowsPerPage ограничивает размер страницы сверху.
	MaxRowsPerPage = 100
	// MaxVisiblePages - максимум кнопок страниц в окне навигации.
	MaxVisiblePages = 5
	// FilterAll - сентинел «фильтр не применяется».
	FilterAll = "all"
)

// Request описывает входы списка: поиск, дискретные фильтры и страницу.
type Request struct {
	Search      string
	Filters     map[string]string
	Page        int
	RowsPerPage int
}

// Normalized приводит параметры к допустимым значениям: Page >= 1,
// 0 < RowsPerPage <= MaxRowsPerPage.
func (r Request) Normalized() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.RowsPerPage < 1 {
		r.RowsPerPage = DefaultRowsPerPage
	}
	if r.RowsPerPage > MaxRowsPerPage {
		r.RowsPerPage = MaxRowsPerPage
	}
	return r
}

// Offset возвращает начало полуоткрытого диапазона строк [(page-1)*rows, page*rows).
func (r Request) Offset() int {
	n := r.Normalized()
	return (n.Page - 1) * n.RowsPerPage
}

// ActiveFilters возвращает только применяемые фильтры: значения "all" и пустые
// строки означают отсутствие фильтра по полю.
func (r Request) ActiveFilters() map[string]string {
	active := make(map[string]string, len(r.Filters))
	for name, value := range r.Filters {
		if value == "" || value == FilterAll {
			continue
		}
		active[name] = value
	}
	return active
}

// Merge применяет новые параметры поверх предыдущих: смена поиска, любого
// фильтра или размера страницы сбрасывает страницу на 1.
func Merge(prev, next Request) Request {
	next = next.Normalized()
	prev = prev.Normalized()

	if next.Search != prev.Search || next.RowsPerPage != prev.RowsPerPage || filtersChanged(prev.Filters, next.Filters) {
		next.Page = 1
	}
	return next
}

func filtersChanged(prev, next map[string]string) bool {
	if len(prev) != len(next) {
		return true
	}
	for name, value := range next {
		if prev[name] != value {
			return true
		}
	}
	return false
}

// Meta содержит метаданные страницы для ответа списка.
type Meta struct {
	Page         int   `json:"page"`
	RowsPerPage  int   `json:"rows_per_page"`
	TotalCount   int   `json:"total_count"`
	TotalPages   int   `json:"total_pages"`
	VisiblePages []int `json:"visible_pages"`
	HasPrev      bool  `json:"has_prev"`
	HasNext      bool  `json:"has_next"`
}

// NewMeta вычисляет метаданные по общему числу строк.
// totalPages = ceil(totalCount / rowsPerPage); First/Prev недоступны на первой
// странице, Next/Last - на последней.
func NewMeta(r Request, totalCount int) Meta {
	n := r.Normalized()
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + n.RowsPerPage - 1) / n.RowsPerPage

	return Meta{
		Page:         n.Page,
		RowsPerPage:  n.RowsPerPage,
		TotalCount:   totalCount,
		TotalPages:   totalPages,
		VisiblePages: VisiblePages(n.Page, totalPages, MaxVisiblePages),
		HasPrev:      n.Page > 1,
		HasNext:      n.Page < totalPages,
	}
}

// VisiblePages возвращает центрированное окно номеров страниц, ограниченное
// диапазоном [1, totalPages].
func VisiblePages(page, totalPages, maxVisible int) []int {
	if totalPages < 1 || maxVisible < 1 {
		return []int{}
	}
	if totalPages <= maxVisible {
		return pageRange(1, totalPages)
	}

	half := maxVisible / 2
	start := page - half
	if start < 1 {
		start = 1
	}
	end := start + maxVisible - 1
	if end > totalPages {
		end = totalPages
	}
	if end-start+1 < maxVisible {
		start = end - maxVisible + 1
		if start < 1 {
			start = 1
		}
	}

	return pageRange(start, end)
}

func pageRange(from, to int) []int {
	pages := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		pages = append(pages, p)
	}
	return pages
}
