package dict

// Group partitions ts by key, preserving the order within each group.
func Group[K comparable, T any](ts []T, key func(T) K) map[K][]T {
	res := make(map[K][]T)
	for _, t := range ts {
		k := key(t)
		res[k] = append(res[k], t)
	}
	return res
}
