// Package soenum enumerates every distinct interleaving of a fixed number
// of per-thread synchronization actions: every way to merge N sequences
// (one per thread, lengths given by counts) while preserving each
// sequence's internal order.
package soenum

// free marks a slot as temporarily vacated during the advance step. It
// must compare greater than any real thread id.
const free = 1 << 30

// Enumerate calls yield once per distinct interleaving, starting from the
// lexicographically smallest (all of thread 0's actions, then thread 1's,
// ...) and ending at the lexicographically largest. The alloc slice passed
// to yield has length sum(counts); alloc[p] is the thread occupying slot p.
// The slice is reused between calls and must not be retained — copy it if
// you need to keep it. yield returning false stops enumeration early.
func Enumerate(counts []int, yield func(alloc []int) bool) {
	total := 0
	for _, c := range counts {
		total += c
	}
	alloc := make([]int, total)
	pos := 0
	for t, c := range counts {
		for k := 0; k < c; k++ {
			alloc[pos] = t
			pos++
		}
	}

	for {
		if !yield(alloc) {
			return
		}
		if !advance(alloc, counts) {
			return
		}
	}
}

// Count returns the number of distinct interleavings Enumerate would
// visit for the given per-thread counts — the multinomial coefficient
// total! / (counts[0]! * counts[1]! * ...).
func Count(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	n := factorial(total)
	for _, c := range counts {
		n /= factorial(c)
	}
	return n
}

func factorial(n int) int {
	r := 1
	for i := 2; i <= n; i++ {
		r *= i
	}
	return r
}

// advance mutates alloc in place into the next interleaving and reports
// whether one exists. The order is not lexicographic: thread 0's set of
// slots changes slowest, then thread 1's within the slots left over, and
// so on (for counts [1,1,1], [2 0 1] comes before [1 2 0]). Threads are
// tried from the second-highest id down to 0; for the first thread i that
// has a slot with a higher thread's slot to its right, the rightmost such
// slot moves into the nearest higher-thread slot to its right, thread i's
// slots further right are packed in just after it, and every slot held by
// a thread above i is refilled with those threads in their smallest
// arrangement.
func advance(alloc []int, counts []int) bool {
	for i := len(counts) - 2; i >= 0; i-- {
		nextFree := -1
		selfSeen := 0
		updated := false
		for j := len(alloc) - 1; j >= 0; j-- {
			switch {
			case alloc[j] > i:
				nextFree = j
			case alloc[j] == i:
				if nextFree != -1 {
					alloc[j] = free
					alloc[nextFree] = i
					for k := nextFree + 1; selfSeen > 0; k++ {
						if alloc[k] > i {
							alloc[k] = i
							selfSeen--
						}
					}
					updated = true
				} else {
					alloc[j] = free
					selfSeen++
				}
			}
			if updated {
				break
			}
		}
		if !updated {
			continue
		}
		next := 0
		for j := i + 1; j < len(counts); j++ {
			left := counts[j]
			for left > 0 {
				if alloc[next] > i {
					alloc[next] = j
					left--
				}
				next++
			}
		}
		return true
	}
	return false
}
