// Package hb builds the happens-before relation for one candidate
// synchronization order, and filters out synchronization orders that are
// not monitor-legal in the first place.
package hb

import (
	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/ir"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

// Matrix is a dense happens-before relation over the global action index
// space: Before(i, j) reports whether action i happens-before action j.
type Matrix struct {
	n      int
	before []bool
}

func newMatrix(n int) *Matrix {
	return &Matrix{n: n, before: make([]bool, n*n)}
}

func (m *Matrix) at(i, j int) int { return i*m.n + j }

// Before reports whether i happens-before j.
func (m *Matrix) Before(i, j int) bool { return m.before[m.at(i, j)] }

func (m *Matrix) set(i, j int) { m.before[m.at(i, j)] = true }

// N returns the size of the action space this matrix covers.
func (m *Matrix) N() int { return m.n }

// IsLegalSO reports whether so is monitor-legal: scanning it in order, no
// thread ever locks a monitor already held by a different thread. Illegal
// synchronization orders are simply impossible executions and must be
// discarded rather than analyzed.
func IsLegalSO(snips []*snippet.Snippet, idx *gindex.Index, so []int) bool {
	holder := make(map[string]int)
	depth := make(map[string]int)
	for _, g := range so {
		act := gindex.Action(snips, idx, g)
		switch act.Kind {
		case ir.KindLock:
			if depth[act.Name] > 0 && holder[act.Name] != idx.ThreadOf(g) {
				return false
			}
			depth[act.Name]++
			holder[act.Name] = idx.ThreadOf(g)
		case ir.KindUnlock:
			if depth[act.Name] == 0 || holder[act.Name] != idx.ThreadOf(g) {
				panic("hb: unlock of a monitor not held by this thread in a supposedly legal SO")
			}
			depth[act.Name]--
		}
	}
	return true
}

// Build computes the happens-before relation for a legal synchronization
// order so: reflexivity, program order within each thread, and
// synchronizes-with edges (Unlock -> later same-monitor Lock, VolatileWrite
// -> later same-name VolatileRead), transitively closed. It panics if the
// result is not antisymmetric — a bug in so's construction or in this
// function, never something a caller can recover from.
func Build(idx *gindex.Index, snips []*snippet.Snippet, so []int) *Matrix {
	n := idx.Total()
	m := newMatrix(n)

	for i := 0; i < n; i++ {
		m.set(i, i)
	}

	for t := 0; t < idx.ThreadCount(); t++ {
		cnt := idx.ActionCount(t)
		for a := 0; a+1 < cnt; a++ {
			m.set(idx.Global(t, a), idx.Global(t, a+1))
		}
	}

	for p, g := range so {
		act := gindex.Action(snips, idx, g)
		switch act.Kind {
		case ir.KindUnlock:
			for q := p + 1; q < len(so); q++ {
				other := gindex.Action(snips, idx, so[q])
				if other.Kind == ir.KindLock && other.Name == act.Name {
					m.set(g, so[q])
				}
			}
		case ir.KindVolatileWrite:
			for q := p + 1; q < len(so); q++ {
				other := gindex.Action(snips, idx, so[q])
				if other.Kind == ir.KindVolatileRead && other.Name == act.Name {
					m.set(g, so[q])
				}
			}
		}
	}

	m.transitiveClosure()
	m.assertAntisymmetric()
	return m
}

func (m *Matrix) transitiveClosure() {
	n := m.n
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !m.Before(i, k) {
				continue
			}
			for j := 0; j < n; j++ {
				if m.Before(k, j) {
					m.set(i, j)
				}
			}
		}
	}
}

func (m *Matrix) assertAntisymmetric() {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.Before(i, j) && m.Before(j, i) {
				panic("hb: happens-before relation is not antisymmetric")
			}
		}
	}
}
