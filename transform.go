package bwt

// buildTransform derives the Burrows-Wheeler transform of text from its
// suffix array: entry i is the symbol cyclically preceding the i-th
// smallest suffix, i.e. the last column of the sorted rotation table.
func buildTransform(text []byte, sa []int) []byte {
	m := len(text)
	l := make([]byte, m)
	for i, s := range sa {
		l[i] = text[(s-1+m)%m]
	}
	return l
}

// occurrences holds, per tracked symbol, cumulative occurrence counts over
// prefixes of the transform string. Each row is padded so that rank lookups
// at one position past either edge need no bounds check: row[0] is zero,
// row[i+1] counts occurrences in transform[0..i], and row[m+1] repeats the
// final total.
type occurrences struct {
	rows [256][]int
}

// buildOccurrences scans the transform once, left to right, keeping one
// running counter per symbol in the terminator-augmented alphabet and
// appending every tracked counter at every position.
func buildOccurrences(transform []byte, symbols []byte) *occurrences {
	m := len(transform)
	occ := &occurrences{}
	for _, c := range symbols {
		occ.rows[c] = make([]int, m+2)
	}
	var counters [256]int
	for i, c := range transform {
		counters[c]++
		for _, s := range symbols {
			occ.rows[s][i+1] = counters[s]
		}
	}
	for _, s := range symbols {
		occ.rows[s][m+1] = counters[s]
	}
	return occ
}

// rank returns the number of occurrences of c in transform[0..i]. Valid for
// i in [-1, m]: -1 yields zero and m yields the symbol's total count.
func (o *occurrences) rank(c byte, i int) int {
	return o.rows[c][i+1]
}

// buildCounts returns, per symbol, the number of symbols in the raw
// (un-augmented) reference strictly smaller than it. The backward-search
// recurrence re-adds the terminator's contribution itself, so the
// terminator is deliberately left out of these sums.
func buildCounts(reference []byte) [256]int {
	var freq, counts [256]int
	for _, c := range reference {
		freq[c]++
	}
	sum := 0
	for c := 0; c < 256; c++ {
		counts[c] = sum
		sum += freq[c]
	}
	return counts
}
