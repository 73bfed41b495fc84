package blocks

// Flatten walks roots and everything reachable through children and returns
// each item exactly once, in breadth-first order from the roots. Items are
// identified by key, so shared and cyclic structures terminate.
//
// Callers that need draw order sort the result with [SortByZIndex].
func Flatten[T any, K comparable](roots []T, key func(T) K, children func(T) []T) []T {
	visited := make(map[K]bool)
	var out []T
	queue := make([]T, 0, len(roots))
	for _, r := range roots {
		if k := key(r); !visited[k] {
			visited[k] = true
			queue = append(queue, r)
		}
	}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		out = append(out, item)
		for _, c := range children(item) {
			if k := key(c); !visited[k] {
				visited[k] = true
				queue = append(queue, c)
			}
		}
	}
	return out
}
