package writeseen

import (
	"testing"

	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/hb"
	"github.com/vfukala/JMM-Explorer/pkg/ir"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

func loc(n int) ir.Location { return ir.Location{Line: n} }

func buildSnips(snips []*snippet.Snippet) []*snippet.Snippet {
	for _, s := range snips {
		s.RunPreExecutionAnalysis()
	}
	return snips
}

func TestComputeRacingSharedWriteYieldsWriteAndDefaultZero(t *testing.T) {
	a := snippet.New("a")
	a.EmitWrite("sx", ir.Literal(5), loc(1))
	b := snippet.New("b")
	b.EmitRead("sx", loc(1))
	snips := buildSnips([]*snippet.Snippet{a, b})

	idx := gindex.Build(snips)
	so := []int{} // no synchronization actions at all
	m := hb.Build(idx, snips, so)

	cs := Compute(snips, idx, m, so)
	if len(cs.Reads) != 1 || cs.Reads[0] != 1 {
		t.Fatalf("Reads = %v, want [1]", cs.Reads)
	}
	cand := cs.Candidates[0]
	if len(cand) != 2 || cand[0] != 0 || cand[1] != -1 {
		t.Fatalf("Candidates[0] = %v, want [0 -1] (racing write and default zero)", cand)
	}
}

func TestComputeHBOrderedWriteExcludesDefaultZero(t *testing.T) {
	a := snippet.New("a")
	a.EmitMethodCall("m1", "lock", loc(1))
	a.EmitWrite("sx", ir.Literal(7), loc(2))
	a.EmitMethodCall("m1", "unlock", loc(3))
	b := snippet.New("b")
	b.EmitMethodCall("m1", "lock", loc(1))
	b.EmitRead("sx", loc(2))
	b.EmitMethodCall("m1", "unlock", loc(3))
	snips := buildSnips([]*snippet.Snippet{a, b})

	idx := gindex.Build(snips)
	// global: 0=a.lock 1=a.write 2=a.unlock 3=b.lock 4=b.read 5=b.unlock
	so := []int{0, 2, 3, 5}
	m := hb.Build(idx, snips, so)

	cs := Compute(snips, idx, m, so)
	if len(cs.Reads) != 1 || cs.Reads[0] != 4 {
		t.Fatalf("Reads = %v, want [4]", cs.Reads)
	}
	cand := cs.Candidates[0]
	if len(cand) != 1 || cand[0] != 1 {
		t.Fatalf("Candidates[0] = %v, want [1] (only the happens-before write)", cand)
	}
}

func TestComputeVolatileReadSeesLatestPriorWriteByName(t *testing.T) {
	a := snippet.New("a")
	a.EmitWrite("vx", ir.Literal(1), loc(1))
	a.EmitWrite("vy", ir.Literal(9), loc(2))
	a.EmitWrite("vx", ir.Literal(2), loc(3))
	b := snippet.New("b")
	b.EmitRead("vx", loc(1))
	snips := buildSnips([]*snippet.Snippet{a, b})

	idx := gindex.Build(snips)
	// global: 0=a.write(vx,1) 1=a.write(vy,9) 2=a.write(vx,2) 3=b.read(vx)
	so := []int{0, 1, 2, 3}
	m := hb.Build(idx, snips, so)

	cs := Compute(snips, idx, m, so)
	if len(cs.Reads) != 1 || cs.Reads[0] != 3 {
		t.Fatalf("Reads = %v, want [3]", cs.Reads)
	}
	cand := cs.Candidates[0]
	if len(cand) != 1 || cand[0] != 2 {
		t.Fatalf("Candidates[0] = %v, want [2] (the latest prior write to vx, not vy)", cand)
	}
}

func TestComputeVolatileReadBeforeAnyWriteDefaultsToZero(t *testing.T) {
	a := snippet.New("a")
	a.EmitRead("vx", loc(1))
	b := snippet.New("b")
	b.EmitWrite("vx", ir.Literal(3), loc(1))
	snips := buildSnips([]*snippet.Snippet{a, b})

	idx := gindex.Build(snips)
	so := []int{0, 1} // read happens first in SO, before any write
	m := hb.Build(idx, snips, so)

	cs := Compute(snips, idx, m, so)
	cand := cs.Candidates[0]
	if len(cand) != 1 || cand[0] != -1 {
		t.Fatalf("Candidates[0] = %v, want [-1]", cand)
	}
}

func TestEnumeratorWalksFullCartesianProduct(t *testing.T) {
	cs := &CandidateSets{
		Reads:      []int{0, 1},
		Candidates: [][]int32{{10, -1}, {20, 21, -1}},
	}
	e := NewEnumerator(cs)
	var got [][]int32
	got = append(got, append([]int32(nil), e.Current()...))
	for e.Next() {
		got = append(got, append([]int32(nil), e.Current()...))
	}
	if len(got) != 6 {
		t.Fatalf("got %d combinations, want 6", len(got))
	}
	if got[0][0] != 10 || got[0][1] != 20 {
		t.Fatalf("first combination = %v, want [10 20]", got[0])
	}
}

func TestEnumeratorWithNoReadsYieldsOneEmptyCombination(t *testing.T) {
	cs := &CandidateSets{}
	e := NewEnumerator(cs)
	if len(e.Current()) != 0 {
		t.Fatalf("Current() = %v, want empty", e.Current())
	}
	if e.Next() {
		t.Fatal("Next() should report no further combinations when there are zero reads")
	}
}
