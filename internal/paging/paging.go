// Package paging implements "load more" reveal counts.
package paging

// Visible clamps a requested visible count to [min(pageSize,total), total].
// A zero or negative request means the first page.
func Visible(requested, pageSize, total int) int {
	if total <= 0 {
		return 0
	}
	if pageSize <= 0 {
		pageSize = total
	}
	first := min(pageSize, total)
	if requested <= 0 {
		return first
	}
	return max(first, min(requested, total))
}

// Next returns the count after one more page is revealed. It never exceeds total
// and never drops below the current count.
func Next(visible, pageSize, total int) int {
	cur := Visible(visible, pageSize, total)
	if pageSize <= 0 {
		return total
	}
	return min(cur+pageSize, total)
}

// HasMore reports whether a "load more" control should be shown.
func HasMore(visible, total int) bool {
	return visible < total
}
