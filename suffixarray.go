package bwt

import "sort"

// buildSuffixArray returns the suffix array of text: a permutation of
// [0, len(text)) such that the suffixes text[sa[0]:], text[sa[1]:], ...
// are in increasing lexicographic order.
//
// Construction is by prefix doubling: ranks start as raw byte values and
// each round sorts suffixes by their (rank, rank-k-ahead) pair, doubling
// the compared prefix length until every rank is distinct. O(m log^2 m)
// overall, which is comfortable for references up to a few million
// symbols. Callers index terminator-augmented text, so ranks become
// distinct after at most log m rounds.
func buildSuffixArray(text []byte) []int {
	n := len(text)
	sa := make([]int, n)
	if n == 0 {
		return sa
	}
	rank := make([]int, n)
	for i := range text {
		sa[i] = i
		rank[i] = int(text[i])
	}
	if n == 1 {
		return sa
	}

	next := make([]int, n)
	for k := 1; ; k *= 2 {
		// Rank of the suffix starting k past i, or -1 when i+k runs
		// off the end (shorter suffixes sort first on ties).
		rankAt := func(i int) int {
			if i+k < n {
				return rank[i+k]
			}
			return -1
		}
		sort.Slice(sa, func(a, b int) bool {
			x, y := sa[a], sa[b]
			if rank[x] != rank[y] {
				return rank[x] < rank[y]
			}
			return rankAt(x) < rankAt(y)
		})

		next[sa[0]] = 0
		for i := 1; i < n; i++ {
			prev, cur := sa[i-1], sa[i]
			next[cur] = next[prev]
			if rank[prev] != rank[cur] || rankAt(prev) != rankAt(cur) {
				next[cur]++
			}
		}
		copy(rank, next)
		if rank[sa[n-1]] == n-1 {
			break
		}
	}
	return sa
}
