package tournament

import "sort"

// RankGroup holds every participant sharing one final rank.
type RankGroup[T any] struct {
	Rank    int
	Members []T
}

// Rank groups items by final rank in ascending order. Items without a rank are
// skipped and members keep their input order.
func Rank[T any](items []T, finalRank func(T) *int) []RankGroup[T] {
	byRank := make(map[int][]T)
	for _, item := range items {
		r := finalRank(item)
		if r == nil {
			continue
		}
		byRank[*r] = append(byRank[*r], item)
	}

	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	groups := make([]RankGroup[T], 0, len(ranks))
	for _, r := range ranks {
		groups = append(groups, RankGroup[T]{Rank: r, Members: byRank[r]})
	}
	return groups
}
