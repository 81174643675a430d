// bench measures index construction and search cost over synthetic
// workloads: a random reference, and patterns sampled from it with a
// configurable number of planted substitutions.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kemaleren/bwt"
)

type memMonitor struct {
	maxAlloc uint64
	stop     chan struct{}
}

func newMemMonitor() *memMonitor {
	mm := &memMonitor{stop: make(chan struct{})}
	go func() {
		for {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			if m.Alloc > mm.maxAlloc {
				mm.maxAlloc = m.Alloc
			}
			select {
			case <-mm.stop:
				return
			default:
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
	return mm
}

func (mm *memMonitor) Stop() uint64 {
	close(mm.stop)
	return mm.maxAlloc
}

func randomReference(r *rand.Rand, n int, alphabet string) []byte {
	ref := make([]byte, n)
	for i := range ref {
		ref[i] = alphabet[r.Intn(len(alphabet))]
	}
	return ref
}

// samplePattern cuts a window out of the reference and plants up to
// mutations substitutions, so every query has at least one hit.
func samplePattern(r *rand.Rand, ref []byte, length, mutations int, alphabet string) string {
	start := r.Intn(len(ref) - length + 1)
	pat := append([]byte(nil), ref[start:start+length]...)
	for i := 0; i < mutations; i++ {
		pat[r.Intn(length)] = alphabet[r.Intn(len(alphabet))]
	}
	return string(pat)
}

func measureBuild(ref []byte) (time.Duration, uint64, *bwt.Index) {
	runtime.GC()
	mm := newMemMonitor()
	start := time.Now()
	idx, err := bwt.NewBuilder(string(ref)).Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}
	return time.Since(start), mm.Stop(), idx
}

func measureSearch(idx *bwt.Index, patterns []string, mismatches int) (time.Duration, int) {
	hits := 0
	start := time.Now()
	for _, p := range patterns {
		offsets, err := idx.Locate(p, mismatches)
		if err != nil {
			fmt.Fprintln(os.Stderr, "locate:", err)
			os.Exit(1)
		}
		hits += len(offsets)
	}
	return time.Since(start), hits
}

func main() {
	size := flag.Int("size", 1<<18, "Reference length")
	alphabet := flag.String("alphabet", "acgt", "Reference alphabet")
	queries := flag.Int("queries", 1000, "Number of search queries")
	patternLen := flag.Int("pattern-len", 20, "Pattern length")
	mismatches := flag.Int("mismatches", 1, "Mismatch budget per query")
	seed := flag.Int64("seed", 1, "Workload seed")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	if *size <= 0 || *queries <= 0 || *patternLen <= 0 || *patternLen > *size || *mismatches < 0 {
		flag.Usage()
		os.Exit(1)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	r := rand.New(rand.NewSource(*seed))
	ref := randomReference(r, *size, *alphabet)

	buildTime, buildPeak, idx := measureBuild(ref)
	fmt.Printf("build: %s symbols in %s, peak alloc %s, index %s\n",
		humanize.Comma(int64(idx.Len())), buildTime.Round(time.Millisecond),
		humanize.Bytes(buildPeak), humanize.Bytes(uint64(idx.Size())))

	patterns := make([]string, *queries)
	for i := range patterns {
		patterns[i] = samplePattern(r, ref, *patternLen, *mismatches, *alphabet)
	}

	searchTime, hits := measureSearch(idx, patterns, *mismatches)
	perQuery := searchTime / time.Duration(*queries)
	fmt.Printf("search: %s queries (len %d, <=%d mismatches) in %s, %s/query, %s hits\n",
		humanize.Comma(int64(*queries)), *patternLen, *mismatches,
		searchTime.Round(time.Millisecond), perQuery,
		humanize.Comma(int64(hits)))
}
