// bwtgrep builds an FM-index over a reference file and reports where each
// pattern occurs, exactly or within a bounded number of substitutions.
package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kemaleren/bwt"
)

var (
	mismatches int
	countOnly  bool
	foldCase   bool
	stats      bool
	frameLimit int
)

var rootCmd = &cobra.Command{
	Use:   "bwtgrep [flags] REFERENCE-FILE PATTERN [PATTERN...]",
	Short: "Locate patterns in a reference string with an FM-index",
	Long: `bwtgrep reads a reference string from a file, builds a
Burrows-Wheeler full-text index over it, and prints the start offset of
every occurrence of each pattern. With --mismatches N, occurrences may
differ from the pattern by up to N substitutions.`,
	Args:          cobra.MinimumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func run(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "reading reference")
	}
	// A trailing newline is file formatting, not reference content.
	raw = bytes.TrimRight(raw, "\r\n")

	builder := bwt.NewBuilder(string(raw)).FrameLimit(frameLimit)
	if foldCase {
		builder = builder.FoldCase()
	}
	start := time.Now()
	idx, err := builder.Build()
	if err != nil {
		return err
	}
	if stats {
		fmt.Fprintf(cmd.ErrOrStderr(), "indexed %s symbols in %s, %s resident\n",
			humanize.Comma(int64(idx.Len())),
			time.Since(start).Round(time.Microsecond),
			humanize.Bytes(uint64(idx.Size())))
	}

	for _, pattern := range args[1:] {
		if countOnly && mismatches == 0 {
			n, err := idx.Count(pattern)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", pattern, n)
			continue
		}
		offsets, err := idx.Locate(pattern, mismatches)
		if err != nil {
			return err
		}
		if countOnly {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", pattern, len(offsets))
			continue
		}
		for _, o := range offsets {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", pattern, o)
		}
	}
	return nil
}

func main() {
	rootCmd.Flags().IntVarP(&mismatches, "mismatches", "n", 0,
		"maximum substitutions allowed per occurrence")
	rootCmd.Flags().BoolVarP(&countOnly, "count", "c", false,
		"print occurrence counts instead of offsets")
	rootCmd.Flags().BoolVar(&foldCase, "fold-case", false,
		"match case-insensitively")
	rootCmd.Flags().BoolVar(&stats, "stats", false,
		"report build time and index size on stderr")
	rootCmd.Flags().IntVar(&frameLimit, "frame-limit", 0,
		"abort a search after this many backtracking frames (0 = unbounded)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bwtgrep:", err)
		os.Exit(1)
	}
}
