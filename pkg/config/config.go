// Package config reads the small set of environment-variable knobs that
// tune an analysis run without being part of its input language: cmd/jmme
// takes no flags, so JMME_WORKERS and JMME_STATE_BUDGET are the only way to
// tune it from outside.
package config

import (
	"os"
	"runtime"
	"strconv"
)

// FromEnv returns the worker count and state budget for an
// analysis.Config, read from JMME_WORKERS
// (default runtime.NumCPU(), if set to a positive integer) and
// JMME_STATE_BUDGET (default 0 = unbounded, if set to a positive integer).
func FromEnv() (workers, stateBudget int) {
	workers = runtime.NumCPU()
	if v, ok := os.LookupEnv("JMME_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}
	stateBudget = 0
	if v, ok := os.LookupEnv("JMME_STATE_BUDGET"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			stateBudget = n
		}
	}
	return workers, stateBudget
}
