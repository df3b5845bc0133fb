package analysis

import (
	"sync"
	"sync/atomic"

	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/hb"
	"github.com/vfukala/JMM-Explorer/pkg/result"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
	"github.com/vfukala/JMM-Explorer/pkg/soenum"
	"github.com/vfukala/JMM-Explorer/pkg/writeseen"
)

// runParallel fans the outer synchronization-order loop out across
// cfg.Workers goroutines. Each worker clones the snippets (so its
// evaluator caches never collide with another worker's) and drains a
// shared task channel of synchronization-order allocations; outcomes from
// every worker land in the same result.Set, which is itself safe for
// concurrent use. An atomic counter tracks the state budget across all
// workers combined; once it is reached no further allocations are handed
// out, but allocations already queued or in progress still run to
// completion, so more pairs than the budget may be examined. skipAllocs lets a resumed run skip the leading
// allocations a prior checkpoint already finished; ckpt periodically
// persists progress as allocations complete. Because workers finish
// allocations out of submission order, a resumed run may re-explore a
// handful of allocations near the checkpoint boundary — harmless, since
// result.Set dedupes outcomes.
func runParallel(snips []*snippet.Snippet, idx *gindex.Index, counts []int, cfg Config, set *result.Set, skipAllocs int, ckpt checkpointer) {
	tasks := make(chan []int, cfg.Workers*2)
	var explored atomic.Int64
	var allocsDone atomic.Int64
	stop := make(chan struct{})
	var stopOnce sync.Once
	signalStop := func() { stopOnce.Do(func() { close(stop) }) }

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := cloneSnippets(snips)
			for alloc := range tasks {
				so := gindex.BuildSO(local, idx, alloc)
				if hb.IsLegalSO(local, idx, so) {
					matrix := hb.Build(idx, local, so)
					cs := writeseen.Compute(local, idx, matrix, so)
					enum := writeseen.NewEnumerator(cs)
					for {
						if outcome := runOne(local, idx, cs.Reads, enum.Current()); outcome != nil {
							set.Add(*outcome)
						}
						n := explored.Add(1)
						if cfg.StateBudget > 0 && n >= int64(cfg.StateBudget) {
							signalStop()
						}
						if !enum.Next() {
							break
						}
					}
				}
				done := allocsDone.Add(1)
				ckpt.maybeSave(int(done))
			}
		}()
	}

	allocIndex := 0
	soenum.Enumerate(counts, func(alloc []int) bool {
		thisAlloc := allocIndex
		allocIndex++
		if thisAlloc < skipAllocs {
			return true
		}
		select {
		case <-stop:
			return false
		default:
		}
		cp := make([]int, len(alloc))
		copy(cp, alloc)
		select {
		case tasks <- cp:
			return true
		case <-stop:
			return false
		}
	})
	close(tasks)

	wg.Wait()
	ckpt.save(int(allocsDone.Load()))
}

func cloneSnippets(snips []*snippet.Snippet) []*snippet.Snippet {
	out := make([]*snippet.Snippet, len(snips))
	for i, s := range snips {
		out[i] = s.Clone()
	}
	return out
}
