package result

import "testing"

func threadName(names []string) func(int) string {
	return func(i int) string { return names[i] }
}

func TestOutcomeEqualComparesPrintsElementwise(t *testing.T) {
	a := Outcome{Prints: [][]int32{{1, 2}, {3}}}
	b := Outcome{Prints: [][]int32{{1, 2}, {3}}}
	c := Outcome{Prints: [][]int32{{1, 2}, {4}}}
	if !a.Equal(b) {
		t.Fatal("identical prints should be equal")
	}
	if a.Equal(c) {
		t.Fatal("differing prints should not be equal")
	}
}

func TestOutcomeEqualDistinguishesExceptionFromPrints(t *testing.T) {
	printed := Outcome{Prints: [][]int32{{1}}}
	excepted := Outcome{Exception: &Exception{Thread: 0, Line: 1}}
	if printed.Equal(excepted) {
		t.Fatal("a print outcome must never equal an exception outcome")
	}
}

func TestOutcomeEqualComparesExceptionFields(t *testing.T) {
	a := Outcome{Exception: &Exception{Thread: 0, Line: 5}}
	b := Outcome{Exception: &Exception{Thread: 0, Line: 5}}
	c := Outcome{Exception: &Exception{Thread: 1, Line: 5}}
	if !a.Equal(b) {
		t.Fatal("equal exceptions should compare equal")
	}
	if a.Equal(c) {
		t.Fatal("different threads should not compare equal")
	}
}

func TestFormatRendersException(t *testing.T) {
	o := Outcome{Exception: &Exception{Thread: 1, Line: 3}}
	got := o.Format(threadName([]string{"t0", "t1"}))
	want := "division by zero exception in thread 1 (t1) at line 3"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestFormatRendersPrintsPerThread(t *testing.T) {
	o := Outcome{Prints: [][]int32{{1, 2}, {3}}}
	got := o.Format(threadName([]string{"t0", "t1"}))
	want := " 1 2 | 3 "
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}
