// Package writeseen computes, for every read action in a candidate
// synchronization order, the set of writes it could legally observe, and
// enumerates the Cartesian product of those choices (the write-seen
// functions) one at a time.
package writeseen

import (
	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/hb"
	"github.com/vfukala/JMM-Explorer/pkg/ir"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

// CandidateSets holds, for every read action (shared and volatile, in
// ascending global-index order), the writes it may observe. -1 means the
// variable's default zero value rather than any write.
type CandidateSets struct {
	Reads      []int
	Candidates [][]int32
}

// Compute builds the candidate sets for every read action given the
// happens-before relation m of a legal synchronization order so.
//
// A shared read may observe any happens-before-maximal write that
// happens-before it, any write racing with it (neither hb-ordered), or the
// default zero if no write happens-before it at all.
//
// A volatile read has exactly one candidate: the latest VolatileWrite to
// the same name preceding it in so, or the default zero if none precedes
// it — volatiles are not racy, so nothing else is possible.
func Compute(snips []*snippet.Snippet, idx *gindex.Index, m *hb.Matrix, so []int) *CandidateSets {
	soPos := make(map[int]int, len(so))
	for p, g := range so {
		soPos[g] = p
	}

	var reads []int
	var candidates [][]int32

	n := idx.Total()
	for g := 0; g < n; g++ {
		act := gindex.Action(snips, idx, g)
		switch act.Kind {
		case ir.KindSharedRead:
			reads = append(reads, g)
			candidates = append(candidates, sharedCandidates(snips, idx, m, g, act.Name))
		case ir.KindVolatileRead:
			reads = append(reads, g)
			candidates = append(candidates, []int32{volatileCandidate(snips, idx, so, soPos, g, act.Name)})
		}
	}

	return &CandidateSets{Reads: reads, Candidates: candidates}
}

func sharedCandidates(snips []*snippet.Snippet, idx *gindex.Index, m *hb.Matrix, read int, name string) []int32 {
	n := idx.Total()
	var preceding []int
	var race []int32
	for w := 0; w < n; w++ {
		wa := gindex.Action(snips, idx, w)
		if wa.Kind != ir.KindSharedWrite || wa.Name != name {
			continue
		}
		switch {
		case m.Before(w, read):
			preceding = append(preceding, w)
		case !m.Before(read, w):
			race = append(race, int32(w))
		}
	}

	var cand []int32
	for _, p0 := range preceding {
		maximal := true
		for _, p1 := range preceding {
			if p0 != p1 && m.Before(p0, p1) {
				maximal = false
				break
			}
		}
		if maximal {
			cand = append(cand, int32(p0))
		}
	}
	cand = append(cand, race...)
	if len(preceding) == 0 {
		cand = append(cand, -1)
	}
	return cand
}

func volatileCandidate(snips []*snippet.Snippet, idx *gindex.Index, so []int, soPos map[int]int, read int, name string) int32 {
	pos, ok := soPos[read]
	if !ok {
		panic("writeseen: volatile read is missing from the synchronization order")
	}
	latest := int32(-1)
	for q := 0; q < pos; q++ {
		wa := gindex.Action(snips, idx, so[q])
		if wa.Kind == ir.KindVolatileWrite && wa.Name == name {
			latest = int32(so[q])
		}
	}
	return latest
}

// Enumerator walks the Cartesian product of a CandidateSets's choices, one
// write-seen function at a time, as a mixed-radix counter (radix
// cs.Candidates[i] for position i).
type Enumerator struct {
	cs      *CandidateSets
	counter []int
	done    bool
}

// NewEnumerator starts an Enumerator at the first write-seen function.
// Current is valid immediately; call Next to advance.
func NewEnumerator(cs *CandidateSets) *Enumerator {
	return &Enumerator{cs: cs, counter: make([]int, len(cs.Reads))}
}

// Current returns the write-seen choice for every read in cs.Reads order:
// the global index of the write it observes, or -1 for the default zero.
func (e *Enumerator) Current() []int32 {
	out := make([]int32, len(e.counter))
	for i, c := range e.counter {
		out[i] = e.cs.Candidates[i][c]
	}
	return out
}

// Next advances to the next write-seen function. It returns false once
// every combination has been visited (including, when there are zero
// reads, after the single trivial combination).
func (e *Enumerator) Next() bool {
	if e.done {
		return false
	}
	for i := 0; i < len(e.counter); i++ {
		e.counter[i]++
		if e.counter[i] < len(e.cs.Candidates[i]) {
			return true
		}
		e.counter[i] = 0
	}
	e.done = true
	return false
}
