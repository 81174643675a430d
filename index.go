package bwt

import (
	"bytes"
	"unicode/utf8"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// ErrTerminator is returned by Build when the reference contains a byte that
// is not strictly greater than the chosen terminator. The terminator must be
// the unique smallest symbol or the suffix order (and everything derived
// from it) is wrong.
var ErrTerminator = errors.New("bwt: reference contains a byte not greater than the terminator")

// ErrInvalidUTF8 is returned when normalization is requested for input that
// is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("bwt: invalid UTF-8 encoding in input")

// DefaultTerminator is appended to the reference unless Terminator overrides
// it. NUL is below every printable byte, so it rarely needs overriding.
const DefaultTerminator byte = 0x00

// Builder configures and constructs an Index.
type Builder struct {
	reference  string
	terminator byte
	foldCase   bool
	normalize  bool
	frameLimit int
	cacheSize  int64
}

// NewBuilder returns a Builder for an index over reference.
func NewBuilder(reference string) *Builder {
	return &Builder{
		reference:  reference,
		terminator: DefaultTerminator,
	}
}

// Terminator overrides the reserved terminator symbol. Every byte of the
// reference must be strictly greater than b.
func (b *Builder) Terminator(t byte) *Builder {
	b.terminator = t
	return b
}

// FoldCase lowercases the reference and every query, making searches
// case-insensitive.
func (b *Builder) FoldCase() *Builder {
	b.foldCase = true
	return b
}

// Normalize applies NFC normalization to the reference and every query.
// Inputs must then be valid UTF-8. Reported offsets are positions in the
// normalized reference.
func (b *Builder) Normalize() *Builder {
	b.normalize = true
	return b
}

// FrameLimit caps the number of backtracking frames a single Locate call may
// process before it gives up with ErrFrameLimit. Zero means unbounded.
// Mismatch search fans out to the whole alphabet at every budgeted position,
// so large alphabet x long query x big budget combinations can blow up; the
// cap turns that into a fast, distinct failure.
func (b *Builder) FrameLimit(n int) *Builder {
	b.frameLimit = n
	return b
}

// WithCache adds a concurrency-safe result cache holding up to maxEntries
// recent query results, keyed by pattern and mismatch budget.
func (b *Builder) WithCache(maxEntries int64) *Builder {
	b.cacheSize = maxEntries
	return b
}

// Build validates the reference, constructs the suffix array, transform
// string, rank and count tables in that order, and returns the assembled
// index. The returned Index is immutable and safe for concurrent searches.
func (b *Builder) Build() (*Index, error) {
	ref, err := applyTransforms([]byte(b.reference), b.foldCase, b.normalize)
	if err != nil {
		return nil, err
	}
	for i, c := range ref {
		if c <= b.terminator {
			return nil, errors.Wrapf(ErrTerminator, "byte %#x at offset %d", c, i)
		}
	}

	augmented := make([]byte, 0, len(ref)+1)
	augmented = append(augmented, ref...)
	augmented = append(augmented, b.terminator)

	sa := buildSuffixArray(augmented)
	transform := buildTransform(augmented, sa)

	var seen [256]bool
	for _, c := range ref {
		seen[c] = true
	}
	alphabet := make([]byte, 0, 8)
	symbols := []byte{b.terminator}
	for c := 0; c < 256; c++ {
		if seen[c] {
			alphabet = append(alphabet, byte(c))
			symbols = append(symbols, byte(c))
		}
	}

	idx := &Index{
		terminator: b.terminator,
		foldCase:   b.foldCase,
		normalize:  b.normalize,
		frameLimit: b.frameLimit,
		alphabet:   alphabet,
		inAlphabet: seen,
		transform:  transform,
		sa:         sa,
		occ:        buildOccurrences(transform, symbols),
		counts:     buildCounts(ref),
	}
	if b.cacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, []int]{
			NumCounters: b.cacheSize * 10,
			MaxCost:     b.cacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, errors.Wrap(err, "bwt: building result cache")
		}
		idx.cache = cache
	}
	return idx, nil
}

// Index is an FM-index over a single reference string: the transform string,
// rank and count tables, and the suffix array, built once by a Builder.
// All fields are read-only after Build, so any number of goroutines may
// search the same Index without coordination.
type Index struct {
	terminator byte
	foldCase   bool
	normalize  bool
	frameLimit int

	alphabet   []byte // distinct reference symbols, ascending, no terminator
	inAlphabet [256]bool
	transform  []byte // last column of the sorted rotation table, length m
	sa         []int  // suffix array of the augmented reference, length m
	occ        *occurrences
	counts     [256]int

	cache *ristretto.Cache[string, []int]
}

// Len returns the length of the indexed reference, excluding the terminator.
func (x *Index) Len() int { return len(x.transform) - 1 }

// Terminator returns the reserved terminator symbol.
func (x *Index) Terminator() byte { return x.terminator }

// Alphabet returns the distinct symbols of the reference in ascending
// order, excluding the terminator.
func (x *Index) Alphabet() []byte {
	return append([]byte(nil), x.alphabet...)
}

// Size returns the approximate in-memory footprint of the index in bytes.
func (x *Index) Size() int {
	m := len(x.transform)
	const intSize = 8
	occBytes := (len(x.alphabet) + 1) * (m + 2) * intSize
	return occBytes + m*intSize + m + len(x.counts)*intSize
}

// applyTransforms folds and normalizes input the same way for the reference
// at build time and for every pattern at search time.
func applyTransforms(in []byte, foldCase, normalize bool) ([]byte, error) {
	if foldCase {
		in = bytes.ToLower(in)
	}
	if normalize {
		if !utf8.Valid(in) {
			return nil, ErrInvalidUTF8
		}
		in = norm.NFC.Bytes(in)
	}
	return in, nil
}
