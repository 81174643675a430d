package bwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRejectsTerminatorInReference(t *testing.T) {
	_, err := NewBuilder("abc\x00def").Build()
	require.ErrorIs(t, err, ErrTerminator)
}

func TestBuildRejectsBytesBelowTerminator(t *testing.T) {
	// 'a' < 'b': the terminator would no longer be the smallest symbol.
	_, err := NewBuilder("banana").Terminator('b').Build()
	require.ErrorIs(t, err, ErrTerminator)
}

func TestCustomTerminator(t *testing.T) {
	idx, err := NewBuilder("banana").Terminator('!').Build()
	require.NoError(t, err)
	require.Equal(t, byte('!'), idx.Terminator())

	offsets, err := idx.Locate("ana", 0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, offsets)
}

func TestIndexAccessors(t *testing.T) {
	idx, err := NewBuilder("banana").Build()
	require.NoError(t, err)
	require.Equal(t, 6, idx.Len())
	require.Equal(t, []byte("abn"), idx.Alphabet())
	require.Positive(t, idx.Size())
}

func TestEmptyReference(t *testing.T) {
	idx, err := NewBuilder("").Build()
	require.NoError(t, err)
	require.Zero(t, idx.Len())
	require.Empty(t, idx.Alphabet())

	offsets, err := idx.Locate("a", 2)
	require.NoError(t, err)
	require.Empty(t, offsets)
}

func TestFoldCase(t *testing.T) {
	idx, err := NewBuilder("AbCabc").FoldCase().Build()
	require.NoError(t, err)

	offsets, err := idx.Locate("ABC", 0)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3}, offsets)
}

func TestNormalize(t *testing.T) {
	// Combining acute accent in the reference, precomposed in the query.
	idx, err := NewBuilder("café noir").Normalize().Build()
	require.NoError(t, err)

	offsets, err := idx.Locate("café", 0)
	require.NoError(t, err)
	require.Equal(t, []int{0}, offsets)
}

func TestNormalizeRejectsInvalidUTF8(t *testing.T) {
	_, err := NewBuilder(string([]byte{0xff, 0xfe})).Normalize().Build()
	require.ErrorIs(t, err, ErrInvalidUTF8)

	idx, err := NewBuilder("abc").Normalize().Build()
	require.NoError(t, err)
	_, err = idx.Locate(string([]byte{0xff}), 0)
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestWithCache(t *testing.T) {
	idx, err := NewBuilder("abcabcabc").WithCache(64).Build()
	require.NoError(t, err)

	first, err := idx.Locate("abc", 1)
	require.NoError(t, err)
	idx.cache.Wait()

	second, err := idx.Locate("abc", 1)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Cached results must be copies: mutating one call's result must not
	// leak into the next.
	if len(second) > 0 {
		second[0] = -1
	}
	third, err := idx.Locate("abc", 1)
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestConcurrentSearches(t *testing.T) {
	idx, err := NewBuilder("abcabdabcabd").Build()
	require.NoError(t, err)

	want, err := idx.Locate("abc", 1)
	require.NoError(t, err)

	done := make(chan []int)
	for i := 0; i < 8; i++ {
		go func() {
			got, err := idx.Locate("abc", 1)
			if err != nil {
				done <- nil
				return
			}
			done <- got
		}()
	}
	for i := 0; i < 8; i++ {
		require.Equal(t, want, <-done)
	}
}
