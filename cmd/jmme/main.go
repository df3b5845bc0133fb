// Command jmme takes no flags: it reads one JMM-Explorer source file per
// argument, treats each as one thread, and prints every observably
// distinct outcome of running them concurrently.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/vfukala/JMM-Explorer/internal/lang"
	"github.com/vfukala/JMM-Explorer/pkg/analysis"
	"github.com/vfukala/JMM-Explorer/pkg/config"
	"github.com/vfukala/JMM-Explorer/pkg/snippet"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(paths []string, stdout, stderr io.Writer) int {
	var snips []*snippet.Snippet
	missing := false
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: source file %q doesn't exist.\n", path)
			missing = true
			continue
		}
		snp := snippet.New(path)
		if err := lang.Parse(string(data), snp); err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", path, err)
			return 0
		}
		snips = append(snips, snp)
	}
	if missing {
		return 0
	}

	workers, stateBudget := config.FromEnv()
	outcomes, illFormed := analysis.Analyze(snips, analysis.Config{Workers: workers, StateBudget: stateBudget}, stderr)
	if illFormed {
		return 0
	}

	names := make([]string, len(snips))
	for i, s := range snips {
		names[i] = s.Name()
	}
	for _, o := range outcomes {
		fmt.Fprintln(stdout, o.Format(func(i int) string { return names[i] }))
	}
	return 0
}
