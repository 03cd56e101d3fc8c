package search

// Page is one slice of a filtered result together with the totals of the
// whole result.
type Page[T any] struct {
	Items         []T
	TotalElements int
	TotalPages    int
	CurrentPage   int
	PageSize      int
	First         bool
	Last          bool
}

// Paginate slices items into page number page of the given size. A page past
// the end is empty, not an error. size must be positive.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}

	// page is bounded by totalPages before multiplying so page*size cannot
	// overflow into a valid offset.
	start, end := total, total
	if page >= 0 && page < totalPages {
		start = page * size
		end = min(start+size, total)
	}

	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items:         out,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		PageSize:      size,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
