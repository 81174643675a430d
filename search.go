package bwt

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// ErrEmptyPattern is returned when Locate or Count is called with an empty
// pattern.
var ErrEmptyPattern = errors.New("bwt: pattern must not be empty")

// ErrNegativeMismatches is returned when Locate is called with a negative
// mismatch budget.
var ErrNegativeMismatches = errors.New("bwt: mismatch budget must not be negative")

// ErrFrameLimit is returned when a mismatch search exceeds the frame ceiling
// configured with Builder.FrameLimit.
var ErrFrameLimit = errors.New("bwt: search frame limit exceeded")

// frame is one suspended state of the backtracking search: the first
// remaining characters of the pattern still to match, the suffix-array
// interval of everything matched so far, and the substitutions still
// allowed.
type frame struct {
	remaining  int
	begin, end int
	budget     int
}

// step narrows the closed suffix-array interval [begin, end] by one
// character, prepending c to the matched string.
func (x *Index) step(c byte, begin, end int) (int, int) {
	return x.counts[c] + x.occ.rank(c, begin-1) + 1,
		x.counts[c] + x.occ.rank(c, end)
}

// Locate returns the ascending start offsets of every substring of the
// reference whose Hamming distance to pattern is at most maxMismatches.
// Only substitutions are considered, never insertions or deletions.
//
// A pattern containing a symbol that never occurs in the reference cannot
// match anywhere regardless of budget (the foreign symbol would have to
// appear literally in the reference), so Locate returns an empty result
// without searching.
func (x *Index) Locate(pattern string, maxMismatches int) ([]int, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	if maxMismatches < 0 {
		return nil, errors.Wrapf(ErrNegativeMismatches, "got %d", maxMismatches)
	}
	p, err := applyTransforms([]byte(pattern), x.foldCase, x.normalize)
	if err != nil {
		return nil, err
	}
	for _, c := range p {
		if !x.inAlphabet[c] {
			return []int{}, nil
		}
	}

	var key string
	if x.cache != nil {
		key = strconv.Itoa(maxMismatches) + ":" + string(p)
		if hits, ok := x.cache.Get(key); ok {
			return append([]int(nil), hits...), nil
		}
	}

	hits, err := x.backtrack(p, maxMismatches)
	if err != nil {
		return nil, err
	}
	if x.cache != nil {
		x.cache.Set(key, hits, int64(len(hits)+1))
	}
	return append([]int(nil), hits...), nil
}

// backtrack runs the depth-first branch-and-bound search over suffix-array
// intervals. Pattern bytes are consumed right to left; a branch dies the
// moment its interval becomes empty.
func (x *Index) backtrack(p []byte, maxMismatches int) ([]int, error) {
	m := len(x.transform)
	stack := []frame{{remaining: len(p), begin: 0, end: m - 1, budget: maxMismatches}}
	seen := make(map[int]struct{})
	processed := 0

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		processed++
		if x.frameLimit > 0 && processed > x.frameLimit {
			return nil, errors.Wrapf(ErrFrameLimit, "limit %d", x.frameLimit)
		}

		want := p[f.remaining-1]
		candidates := x.alphabet
		if f.budget == 0 {
			// No budget left: only the literal character can extend.
			candidates = p[f.remaining-1 : f.remaining]
		}
		for _, c := range candidates {
			begin, end := x.step(c, f.begin, f.end)
			if begin > end {
				continue
			}
			budget := f.budget
			if c != want {
				budget--
			}
			if f.remaining == 1 {
				for i := begin; i <= end; i++ {
					seen[x.sa[i]] = struct{}{}
				}
				continue
			}
			stack = append(stack, frame{
				remaining: f.remaining - 1,
				begin:     begin,
				end:       end,
				budget:    budget,
			})
		}
	}

	out := make([]int, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Ints(out)
	return out, nil
}

// Count returns the number of exact occurrences of pattern in the reference
// without materializing their offsets: one backward pass narrowing a single
// interval, abandoned as soon as it empties.
func (x *Index) Count(pattern string) (int, error) {
	if pattern == "" {
		return 0, ErrEmptyPattern
	}
	p, err := applyTransforms([]byte(pattern), x.foldCase, x.normalize)
	if err != nil {
		return 0, err
	}
	begin, end := 0, len(x.transform)-1
	for i := len(p) - 1; i >= 0; i-- {
		if !x.inAlphabet[p[i]] {
			return 0, nil
		}
		begin, end = x.step(p[i], begin, end)
		if begin > end {
			return 0, nil
		}
	}
	return end - begin + 1, nil
}
