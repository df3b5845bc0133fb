// Package driver runs one candidate execution: a synchronization order
// together with a chosen write-seen function for the reads it induces.
package driver

import (
	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/result"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

// Run prepares every snippet for a fresh execution and drives it to
// completion: reads is the list of read actions (global indices) the
// write-seen function assigns values to, in the same order as
// writeSeen's entries (-1 meaning the variable's default zero).
//
// It returns nil if the dependency graph between reads and the writes
// that feed them contains a cycle — such a combination can never actually
// execute and is silently discarded, matching every other impossible
// combination filtered out earlier in the pipeline.
func Run(snips []*snippet.Snippet, idx *gindex.Index, writeSeen []int32, reads []int) *result.Outcome {
	for _, s := range snips {
		s.PrepareExecution()
	}

	n := len(reads)
	readPos := make(map[int]int, n)
	for i, g := range reads {
		readPos[g] = i
	}

	outstanding := make([]int, n)
	usedBy := make([][]int, n)
	for i := range reads {
		w := writeSeen[i]
		if w == -1 {
			continue
		}
		wThread, wAction := idx.ThreadOf(int(w)), idx.ActionOf(int(w))
		deps := snips[wThread].GetWriteDependencies(wAction)
		outstanding[i] = len(deps)
		for _, depAction := range deps {
			depGlobal := idx.Global(wThread, depAction)
			dp, ok := readPos[depGlobal]
			if !ok {
				panic("driver: a write's dependency is not among the tracked reads")
			}
			usedBy[dp] = append(usedBy[dp], i)
		}
	}

	var ready []int
	for i := 0; i < n; i++ {
		if outstanding[i] == 0 {
			ready = append(ready, i)
		}
	}

	var exc *result.Exception
	readsDone := 0

	for len(ready) > 0 {
		cur := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		readsDone++

		readGlobal := reads[cur]
		readThread, readAction := idx.ThreadOf(readGlobal), idx.ActionOf(readGlobal)

		var val int32
		if w := writeSeen[cur]; w != -1 {
			wThread, wAction := idx.ThreadOf(int(w)), idx.ActionOf(int(w))
			val = snips[wThread].ReadWrite(wAction)
			if snips[wThread].IsExcepted() {
				exc = &result.Exception{Thread: wThread, Line: snips[wThread].ExceptionLine()}
				break
			}
		}
		snips[readThread].SupplyReadValue(readAction, val)

		for _, dep := range usedBy[cur] {
			outstanding[dep]--
			if outstanding[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if exc == nil && readsDone < n {
		return nil
	}

	if exc == nil {
		prints := make([][]int32, len(snips))
		for i, s := range snips {
			prints[i] = s.GetExecutionResults()
			if s.IsExcepted() {
				exc = &result.Exception{Thread: i, Line: s.ExceptionLine()}
				break
			}
		}
		if exc == nil {
			return &result.Outcome{Prints: prints}
		}
	}

	return &result.Outcome{Exception: exc}
}
