package driver

import (
	"testing"

	"github.com/vfukala/JMM-Explorer/pkg/gindex"
	"github.com/vfukala/JMM-Explorer/pkg/ir"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

func loc(n int) ir.Location { return ir.Location{Line: n} }

func prep(snips []*snippet.Snippet) []*snippet.Snippet {
	for _, s := range snips {
		s.RunPreExecutionAnalysis()
	}
	return snips
}

func TestRunSimplePrintNoReads(t *testing.T) {
	a := snippet.New("a")
	a.EmitStaticCall("print", ir.Literal(42), loc(1))
	snips := prep([]*snippet.Snippet{a})
	idx := gindex.Build(snips)

	out := Run(snips, idx, nil, nil)
	if out == nil || out.Exception != nil {
		t.Fatalf("Run() = %+v, want a clean outcome", out)
	}
	if len(out.Prints) != 1 || len(out.Prints[0]) != 1 || out.Prints[0][0] != 42 {
		t.Fatalf("Prints = %v, want [[42]]", out.Prints)
	}
}

func TestRunSharedReadObservesChosenWrite(t *testing.T) {
	a := snippet.New("a")
	a.EmitWrite("sx", ir.Literal(7), loc(1))
	b := snippet.New("b")
	b.EmitStaticCall("print", b.EmitRead("sx", loc(1)), loc(1))
	snips := prep([]*snippet.Snippet{a, b})
	idx := gindex.Build(snips)

	// global: 0=a.write(sx) 1=b.read(sx)
	reads := []int{1}
	writeSeen := []int32{0}
	out := Run(snips, idx, writeSeen, reads)
	if out == nil || out.Exception != nil {
		t.Fatalf("Run() = %+v, want a clean outcome", out)
	}
	if out.Prints[1][0] != 7 {
		t.Fatalf("Prints[1] = %v, want [7]", out.Prints[1])
	}
}

func TestRunDefaultZeroWhenWriteSeenIsMinusOne(t *testing.T) {
	a := snippet.New("a")
	a.EmitStaticCall("print", a.EmitRead("sx", loc(1)), loc(1))
	snips := prep([]*snippet.Snippet{a})
	idx := gindex.Build(snips)

	reads := []int{0}
	writeSeen := []int32{-1}
	out := Run(snips, idx, writeSeen, reads)
	if out == nil || out.Exception != nil {
		t.Fatalf("Run() = %+v, want a clean outcome", out)
	}
	if out.Prints[0][0] != 0 {
		t.Fatalf("Prints[0] = %v, want [0]", out.Prints[0])
	}
}

func TestRunPropagatesExceptionFromAWrite(t *testing.T) {
	a := snippet.New("a")
	v := a.EmitArithmetic(ir.Literal(1), ir.OpDiv, ir.Literal(0), loc(3))
	a.EmitWrite("sx", v, loc(3))
	b := snippet.New("b")
	b.EmitStaticCall("print", b.EmitRead("sx", loc(1)), loc(1))
	snips := prep([]*snippet.Snippet{a, b})
	idx := gindex.Build(snips)

	reads := []int{1}
	writeSeen := []int32{0}
	out := Run(snips, idx, writeSeen, reads)
	if out == nil || out.Exception == nil {
		t.Fatalf("Run() = %+v, want an exception outcome", out)
	}
	if out.Exception.Thread != 0 || out.Exception.Line != 3 {
		t.Fatalf("Exception = %+v, want thread 0 at line 3", out.Exception)
	}
}

func TestRunDetectsCycleAndReturnsNil(t *testing.T) {
	a := snippet.New("a")
	ra := a.EmitRead("sy", loc(1))
	a.EmitWrite("sx", ra, loc(2))
	b := snippet.New("b")
	rb := b.EmitRead("sx", loc(1))
	b.EmitWrite("sy", rb, loc(2))
	snips := prep([]*snippet.Snippet{a, b})
	idx := gindex.Build(snips)

	// global: 0=a.read(sy) 1=a.write(sx) 2=b.read(sx) 3=b.write(sy)
	reads := []int{0, 2}
	// a's write(sx) feeds b's read(sx); b's write(sy) feeds a's read(sy):
	// a cyclic dependency between the two threads' single write each.
	writeSeen := []int32{3, 1}
	out := Run(snips, idx, writeSeen, reads)
	if out != nil {
		t.Fatalf("Run() = %+v, want nil for a cyclic write-seen function", out)
	}
}
