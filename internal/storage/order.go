package storage

import "fmt"

// MergeOrder returns current reordered so that the ids in requested come
// first, in the requested order, followed by the remaining ids in their
// current order. Duplicates in requested are ignored after the first.
// An id in requested that is not in current yields ErrNotFound.
func MergeOrder(current, requested []string) ([]string, error) {
	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}

	order := make([]string, 0, len(current))
	placed := make(map[string]bool, len(current))
	for _, id := range requested {
		if !known[id] {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		if placed[id] {
			continue
		}
		placed[id] = true
		order = append(order, id)
	}
	for _, id := range current {
		if !placed[id] {
			order = append(order, id)
		}
	}
	return order, nil
}
