// Package gindex builds the bijection between a global action index and
// (thread, action-in-thread) pairs that every later stage of the analysis
// (happens-before, write-seen, the driver, the SO enumerator) addresses
// actions through.
package gindex

import (
	"github.com/vfukala/JMM-Explorer/pkg/ir"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

// Index is the global<->(thread,action) bijection for a fixed set of
// snippets. It never changes after Build, so it is safe to share across
// goroutines.
type Index struct {
	threadOf []int
	actionOf []int
	global   [][]int // [thread][actionInThread] -> global
}

// Build indexes every action of every snippet, threads in slice order and
// actions within a thread in program order.
func Build(snips []*snippet.Snippet) *Index {
	idx := &Index{global: make([][]int, len(snips))}
	g := 0
	for t, s := range snips {
		n := s.ActionCount()
		idx.global[t] = make([]int, n)
		for a := 0; a < n; a++ {
			idx.threadOf = append(idx.threadOf, t)
			idx.actionOf = append(idx.actionOf, a)
			idx.global[t][a] = g
			g++
		}
	}
	return idx
}

// Total returns the total number of actions across all threads.
func (idx *Index) Total() int { return len(idx.threadOf) }

// ThreadCount returns the number of threads (snippets).
func (idx *Index) ThreadCount() int { return len(idx.global) }

// ActionCount returns the number of actions belonging to thread t.
func (idx *Index) ActionCount(thread int) int { return len(idx.global[thread]) }

// Global maps (thread, action-in-thread) to a global action index.
func (idx *Index) Global(thread, action int) int { return idx.global[thread][action] }

// ThreadOf maps a global action index to its owning thread.
func (idx *Index) ThreadOf(global int) int { return idx.threadOf[global] }

// ActionOf maps a global action index to its action-in-thread position.
func (idx *Index) ActionOf(global int) int { return idx.actionOf[global] }

// Action resolves a global action index to the instruction it names.
func Action(snips []*snippet.Snippet, idx *Index, global int) ir.Instruction {
	return snips[idx.ThreadOf(global)].GetAction(idx.ActionOf(global))
}

// SyncCounts returns, per thread, the number of synchronization actions it
// contains — the shape the SO enumerator needs.
func SyncCounts(snips []*snippet.Snippet) []int {
	counts := make([]int, len(snips))
	for t, s := range snips {
		counts[t] = len(s.SynchronizationActions())
	}
	return counts
}

// BuildSO translates an soenum alloc (thread id per slot) into a
// synchronization order expressed as global action indices, using each
// thread's synchronization actions in program order.
func BuildSO(snips []*snippet.Snippet, idx *Index, alloc []int) []int {
	syncActions := make([][]int, len(snips))
	for t, s := range snips {
		syncActions[t] = s.SynchronizationActions()
	}
	next := make([]int, len(snips))
	so := make([]int, len(alloc))
	for p, t := range alloc {
		a := syncActions[t][next[t]]
		next[t]++
		so[p] = idx.Global(t, a)
	}
	return so
}
