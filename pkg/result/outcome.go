// Package result holds the two kinds of execution outcome an analysis can
// produce, a deduplicating collector for them, and checkpoint/export
// persistence adapted from the teacher's rule table.
package result

import (
	"fmt"
	"strings"
)

// Exception records a division or remainder by zero: which thread raised
// it and at which source line.
type Exception struct {
	Thread int
	Line   int
}

// Outcome is one observably distinct result of running a set of snippets
// to completion: either a regular outcome (the sequence of values each
// thread printed) or an exception.
type Outcome struct {
	Prints    [][]int32
	Exception *Exception
}

// Equal reports whether two outcomes are the same observable result.
func (o Outcome) Equal(other Outcome) bool {
	if (o.Exception == nil) != (other.Exception == nil) {
		return false
	}
	if o.Exception != nil {
		return *o.Exception == *other.Exception
	}
	if len(o.Prints) != len(other.Prints) {
		return false
	}
	for i := range o.Prints {
		if len(o.Prints[i]) != len(other.Prints[i]) {
			return false
		}
		for j := range o.Prints[i] {
			if o.Prints[i][j] != other.Prints[i][j] {
				return false
			}
		}
	}
	return true
}

// Format renders the outcome the way cmd/jmme prints it to standard
// output: for an exception, "division by zero exception in thread <index>
// (<threadName>) at line <line>"; for a regular outcome, each thread's
// printed values prefixed with a space and each value suffixed with a
// space, threads separated by a bare '|' (e.g. " 1 2 | 3 ").
func (o Outcome) Format(threadName func(int) string) string {
	if o.Exception != nil {
		return fmt.Sprintf("division by zero exception in thread %d (%s) at line %d",
			o.Exception.Thread, threadName(o.Exception.Thread), o.Exception.Line)
	}
	var b strings.Builder
	for i, prints := range o.Prints {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteByte(' ')
		for _, v := range prints {
			fmt.Fprintf(&b, "%d ", v)
		}
	}
	return b.String()
}
