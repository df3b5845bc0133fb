// Package analysis wires together the global index, happens-before
// builder, write-seen enumerator, and execution driver into the
// execution-space exploration algorithm: given a set of already-parsed
// snippets, find every observably distinct outcome.
package analysis

import (
	"fmt"
	"io"

	"github.com/vfukala/JMM-Explorer/pkg/driver"
	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/hb"
	"github.com/vfukala/JMM-Explorer/pkg/result"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
	"github.com/vfukala/JMM-Explorer/pkg/soenum"
	"github.com/vfukala/JMM-Explorer/pkg/writeseen"
)

// Config tunes the exploration without changing what it means. Workers <=
// 1 runs the whole pipeline single-threaded in the exact order spec.md
// describes; Workers > 1 fans the outer synchronization-order loop out
// across a worker pool (pkg/analysis/parallel.go) purely as a speedup —
// the set of outcomes found is identical either way, just not necessarily
// discovered in the same order. StateBudget, if positive, stops
// exploration after that many (synchronization order, write-seen function)
// pairs have been examined, as an escape hatch against runaway state
// spaces (with Workers > 1, work already handed out still finishes, so the
// count can overshoot); zero means unbounded. CheckpointPath, if non-empty, periodically
// persists progress (every CheckpointInterval completed outer
// synchronization orders, or every 100 if CheckpointInterval <= 0) so a
// long-running exploration can be resumed; ResumePath, if non-empty, loads
// a checkpoint previously written to CheckpointPath and picks up where it
// left off instead of starting from the first synchronization order.
type Config struct {
	Workers            int
	StateBudget        int
	CheckpointPath     string
	CheckpointInterval int
	ResumePath         string
}

// Analyze checks every snippet for monitor well-formedness, and if all are
// well-formed, explores the full execution space and returns every
// distinct outcome. If any snippet is ill-formed, it writes diagnostics to
// errOut and returns (nil, true) without running any analysis.
func Analyze(snips []*snippet.Snippet, cfg Config, errOut io.Writer) (outcomes []result.Outcome, illFormed bool) {
	invalid := false
	for _, s := range snips {
		for _, merr := range s.CheckMonitorPairing() {
			fmt.Fprintf(errOut, "Error: Unlocking monitor %s in %s at %s\n", merr.Monitor, s.Name(), merr.Loc)
			invalid = true
		}
	}
	if invalid {
		fmt.Fprintln(errOut, "Terminating due to invalid monitor use.")
		return nil, true
	}

	for _, s := range snips {
		s.RunPreExecutionAnalysis()
	}
	idx := gindex.Build(snips)
	counts := gindex.SyncCounts(snips)
	set := result.NewSet()

	skipAllocs := 0
	if cfg.ResumePath != "" {
		loaded, err := result.LoadCheckpoint(cfg.ResumePath)
		if err != nil {
			fmt.Fprintf(errOut, "Warning: could not resume from checkpoint %q: %v\n", cfg.ResumePath, err)
		} else {
			for _, o := range loaded.Outcomes {
				set.Add(o)
			}
			skipAllocs = loaded.ExploredSOs
		}
	}

	ckpt := checkpointer{
		path:     cfg.CheckpointPath,
		interval: cfg.CheckpointInterval,
		total:    soenum.Count(counts),
		set:      set,
	}

	if cfg.Workers <= 1 {
		runSequential(snips, idx, counts, cfg.StateBudget, set, skipAllocs, ckpt)
	} else {
		runParallel(snips, idx, counts, cfg, set, skipAllocs, ckpt)
	}

	return set.Outcomes(), false
}

// checkpointer periodically persists exploration progress to path, if one
// is configured. It is safe to call from multiple goroutines: result.Set
// itself serializes concurrent Outcomes() calls, and SaveCheckpoint writes
// a fresh file each time.
type checkpointer struct {
	path     string
	interval int
	total    int
	set      *result.Set
}

func (c checkpointer) maybeSave(explored int) {
	if c.path == "" {
		return
	}
	interval := c.interval
	if interval <= 0 {
		interval = 100
	}
	if explored%interval != 0 {
		return
	}
	c.save(explored)
}

func (c checkpointer) save(explored int) {
	if c.path == "" {
		return
	}
	// A failed checkpoint write should never abort the analysis itself.
	_ = result.SaveCheckpoint(c.path, &result.Checkpoint{
		Outcomes:    c.set.Outcomes(),
		ExploredSOs: explored,
		TotalSOs:    c.total,
	})
}

func runSequential(snips []*snippet.Snippet, idx *gindex.Index, counts []int, budget int, set *result.Set, skipAllocs int, ckpt checkpointer) {
	explored := 0
	allocIndex := 0
	soenum.Enumerate(counts, func(alloc []int) bool {
		thisAlloc := allocIndex
		allocIndex++
		if thisAlloc < skipAllocs {
			return true
		}
		so := gindex.BuildSO(snips, idx, alloc)
		if hb.IsLegalSO(snips, idx, so) {
			matrix := hb.Build(idx, snips, so)
			cs := writeseen.Compute(snips, idx, matrix, so)
			enum := writeseen.NewEnumerator(cs)
			for {
				outcome := runOne(snips, idx, cs.Reads, enum.Current())
				if outcome != nil {
					set.Add(*outcome)
				}
				explored++
				if budget > 0 && explored >= budget {
					ckpt.maybeSave(thisAlloc + 1)
					return false
				}
				if !enum.Next() {
					break
				}
			}
		}
		ckpt.maybeSave(thisAlloc + 1)
		return true
	})
	ckpt.save(allocIndex)
}

func runOne(snips []*snippet.Snippet, idx *gindex.Index, reads []int, writeSeen []int32) *result.Outcome {
	return driver.Run(snips, idx, writeSeen, reads)
}
