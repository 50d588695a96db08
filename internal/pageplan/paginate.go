package pageplan

import "strconv"

// Chunk splits items into consecutive runs of size elements, preserving
// order. The last run may be shorter. Empty input returns nil.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, PageCount(len(items), size))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// PageCount is ceil(n/size).
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// PagePath returns the output path of archive page k (1-indexed) under base.
// Page 1 lives at base itself, later pages at "<base>page/<k>". The second
// result is false when k falls outside [1, total].
func PagePath(base string, k, total int) (string, bool) {
	if k < 1 || k > total {
		return "", false
	}
	if k == 1 {
		return base, true
	}
	return base + "page/" + strconv.Itoa(k), true
}

// neighbourPath is PagePath as a nullable value.
func neighbourPath(base string, k, total int) *string {
	p, ok := PagePath(base, k, total)
	if !ok {
		return nil
	}
	return &p
}
