// Command threadpooldemo drives a pool.Pool through a small synthetic
// workload and renders the outcome the way the teacher's own benchmark
// runners do: a colorized status line followed by a results table and,
// for the bulk-submit phase, a progress bar.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "threadpooldemo",
		Short: "Exercise a thread-pool executor with a synthetic workload",
	}
	root.AddCommand(newRunCmd())
	return root
}
