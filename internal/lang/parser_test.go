package lang

import (
	"testing"

	"github.com/vfukala/JMM-Explorer/pkg/ir"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

func mustParse(t *testing.T, src string) *snippet.Snippet {
	t.Helper()
	s := snippet.New("t")
	if err := Parse(src, s); err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	s.RunPreExecutionAnalysis()
	return s
}

func TestParsePrintLiteral(t *testing.T) {
	s := mustParse(t, "print(42);")
	s.PrepareExecution()
	out := s.GetExecutionResults()
	if len(out) != 1 || out[0] != 42 {
		t.Fatalf("GetExecutionResults() = %v, want [42]", out)
	}
}

func TestParseLocalIncrementAndAssignment(t *testing.T) {
	s := mustParse(t, "l1 = 41; l1++; print(l1);")
	s.PrepareExecution()
	out := s.GetExecutionResults()
	if len(out) != 1 || out[0] != 42 {
		t.Fatalf("GetExecutionResults() = %v, want [42]", out)
	}
}

func TestParseCompoundAssignmentLowersToOpWrite(t *testing.T) {
	s := mustParse(t, "l1 = 10; l1 *= 3; print(l1);")
	s.PrepareExecution()
	out := s.GetExecutionResults()
	if len(out) != 1 || out[0] != 30 {
		t.Fatalf("GetExecutionResults() = %v, want [30]", out)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 2 + 3 * 4 == 14, not (2+3)*4 == 20.
	s := mustParse(t, "print(2 + 3 * 4);")
	s.PrepareExecution()
	out := s.GetExecutionResults()
	if len(out) != 1 || out[0] != 14 {
		t.Fatalf("GetExecutionResults() = %v, want [14]", out)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	s := mustParse(t, "print((2 + 3) * 4);")
	s.PrepareExecution()
	out := s.GetExecutionResults()
	if len(out) != 1 || out[0] != 20 {
		t.Fatalf("GetExecutionResults() = %v, want [20]", out)
	}
}

func TestParseMonitorLockUnlockEmitsMethodCalls(t *testing.T) {
	s := mustParse(t, "m1.lock(); m1.unlock();")
	if s.ActionCount() != 2 {
		t.Fatalf("ActionCount() = %d, want 2", s.ActionCount())
	}
	if s.GetAction(0).Kind != ir.KindLock || s.GetAction(1).Kind != ir.KindUnlock {
		t.Fatalf("actions = %v %v, want Lock Unlock", s.GetAction(0).Kind, s.GetAction(1).Kind)
	}
}

func TestParseSharedAndVolatileReadWrite(t *testing.T) {
	s := mustParse(t, "sx = 1; print(sx); vx = 2; print(vx);")
	if s.ActionCount() != 4 {
		t.Fatalf("ActionCount() = %d, want 4", s.ActionCount())
	}
	kinds := []ir.Kind{
		s.GetAction(0).Kind, s.GetAction(1).Kind, s.GetAction(2).Kind, s.GetAction(3).Kind,
	}
	want := []ir.Kind{ir.KindSharedWrite, ir.KindSharedRead, ir.KindVolatileWrite, ir.KindVolatileRead}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("action %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseRejectsBadIdentifierPrefixForAssignment(t *testing.T) {
	s := snippet.New("t")
	err := Parse("xbad = 1;", s)
	if err == nil {
		t.Fatal("expected a parse error for an identifier with no recognized prefix")
	}
}

func TestParseRejectsNonMonitorMethodCall(t *testing.T) {
	s := snippet.New("t")
	err := Parse("s1.lock();", s)
	if err == nil {
		t.Fatal("expected a parse error for a method call on a non-monitor identifier")
	}
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	s := snippet.New("t")
	err := Parse("l1 = 1", s)
	if err == nil {
		t.Fatal("expected a parse error for a missing semicolon")
	}
}

func TestParseRejectsDivisionByZeroOnlyAtRuntime(t *testing.T) {
	// Parsing never evaluates; division by zero is a runtime exception.
	s := mustParse(t, "print(1 / 0);")
	s.PrepareExecution()
	s.GetExecutionResults()
	if !s.IsExcepted() {
		t.Fatal("expected a runtime exception for division by zero")
	}
}
