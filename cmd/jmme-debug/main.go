// Command jmme-debug is a cobra-based companion to jmme for poking at the
// execution-space exploration from the inside: counting synchronization
// orders, dumping a happens-before matrix, listing write-seen candidates,
// exporting outcomes as JSON, and checkpointing/resuming a long-running
// exploration. None of this is part of the normative jmme CLI contract
// (jmme itself stays flagless), but it is invaluable while developing or
// debugging a snippet set.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vfukala/JMM-Explorer/internal/lang"
	"github.com/vfukala/JMM-Explorer/pkg/analysis"
	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/hb"
	"github.com/vfukala/JMM-Explorer/pkg/result"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
	"github.com/vfukala/JMM-Explorer/pkg/soenum"
	"github.com/vfukala/JMM-Explorer/pkg/writeseen"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jmme-debug",
		Short: "Inspect a JMM-Explorer execution space from the inside",
	}

	rootCmd.AddCommand(soCountCmd(), hbDumpCmd(), candidatesCmd(), runCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadSnippets(paths []string) ([]*snippet.Snippet, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one source file is required")
	}
	snips := make([]*snippet.Snippet, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		snp := snippet.New(path)
		if err := lang.Parse(string(data), snp); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		snips = append(snips, snp)
	}
	return snips, nil
}

func soCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "so-count [files...]",
		Short: "Print the number of distinct synchronization orders (monitor legality not applied)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snips, err := loadSnippets(args)
			if err != nil {
				return err
			}
			for _, s := range snips {
				s.RunPreExecutionAnalysis()
			}
			counts := gindex.SyncCounts(snips)
			fmt.Println(soenum.Count(counts))
			return nil
		},
	}
}

func hbDumpCmd() *cobra.Command {
	var soIndex int
	cmd := &cobra.Command{
		Use:   "hb-dump [files...]",
		Short: "Build the happens-before matrix for the soIndex-th synchronization order and dump it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snips, err := loadSnippets(args)
			if err != nil {
				return err
			}
			for _, s := range snips {
				s.RunPreExecutionAnalysis()
			}
			idx := gindex.Build(snips)
			counts := gindex.SyncCounts(snips)

			var target []int
			i := 0
			soenum.Enumerate(counts, func(alloc []int) bool {
				if i == soIndex {
					target = append([]int(nil), alloc...)
					return false
				}
				i++
				return true
			})
			if target == nil {
				return fmt.Errorf("synchronization order index %d out of range", soIndex)
			}
			so := gindex.BuildSO(snips, idx, target)
			if !hb.IsLegalSO(snips, idx, so) {
				return fmt.Errorf("synchronization order %d is not monitor-legal", soIndex)
			}
			matrix := hb.Build(idx, snips, so)
			for i := 0; i < matrix.N(); i++ {
				for j := 0; j < matrix.N(); j++ {
					if matrix.Before(i, j) {
						fmt.Printf("%d happens-before %d\n", i, j)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&soIndex, "so-index", 0, "Which synchronization order (0-based) to build")
	return cmd
}

func candidatesCmd() *cobra.Command {
	var soIndex int
	cmd := &cobra.Command{
		Use:   "candidates [files...]",
		Short: "List write-seen candidates for every read in the soIndex-th synchronization order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snips, err := loadSnippets(args)
			if err != nil {
				return err
			}
			for _, s := range snips {
				s.RunPreExecutionAnalysis()
			}
			idx := gindex.Build(snips)
			counts := gindex.SyncCounts(snips)

			var target []int
			i := 0
			soenum.Enumerate(counts, func(alloc []int) bool {
				if i == soIndex {
					target = append([]int(nil), alloc...)
					return false
				}
				i++
				return true
			})
			if target == nil {
				return fmt.Errorf("synchronization order index %d out of range", soIndex)
			}
			so := gindex.BuildSO(snips, idx, target)
			if !hb.IsLegalSO(snips, idx, so) {
				return fmt.Errorf("synchronization order %d is not monitor-legal", soIndex)
			}
			matrix := hb.Build(idx, snips, so)
			cs := writeseen.Compute(snips, idx, matrix, so)
			for i, read := range cs.Reads {
				fmt.Printf("read %d: candidates %v\n", read, cs.Candidates[i])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&soIndex, "so-index", 0, "Which synchronization order (0-based) to build")
	return cmd
}

func runCmd() *cobra.Command {
	var workers int
	var stateBudget int
	var jsonOut string
	var checkpointPath string
	var checkpointInterval int
	var resumePath string
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run the full exploration, optionally in parallel, and optionally dump outcomes as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snips, err := loadSnippets(args)
			if err != nil {
				return err
			}
			outcomes, illFormed := analysis.Analyze(snips, analysis.Config{
				Workers:            workers,
				StateBudget:        stateBudget,
				CheckpointPath:     checkpointPath,
				CheckpointInterval: checkpointInterval,
				ResumePath:         resumePath,
			}, os.Stderr)
			if illFormed {
				return fmt.Errorf("snippets are ill-formed")
			}
			names := make([]string, len(snips))
			for i, s := range snips {
				names[i] = s.Name()
			}
			for _, o := range outcomes {
				fmt.Println(o.Format(func(i int) string { return names[i] }))
			}
			if jsonOut != "" {
				data, err := result.ToJSON(outcomes)
				if err != nil {
					return err
				}
				if err := os.WriteFile(jsonOut, data, 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "Number of parallel workers for the outer synchronization-order sweep")
	cmd.Flags().IntVar(&stateBudget, "state-budget", 0, "Stop after this many (SO, write-seen) pairs (0 = unbounded)")
	cmd.Flags().StringVar(&jsonOut, "json", "", "Write outcomes as JSON to this path")
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Periodically persist progress to this path so a long run can be resumed")
	cmd.Flags().IntVar(&checkpointInterval, "checkpoint-interval", 100, "Synchronization orders between checkpoint writes")
	cmd.Flags().StringVar(&resumePath, "resume", "", "Resume from a checkpoint previously written by --checkpoint")
	return cmd
}
