package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/structlink/internal/structure"
)

func newBuildCmd(opts *options) *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the structure tree and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			start := time.Now()
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			printForest(out, s.forest, maxDepth)
			fmt.Fprintf(out, "%d records, %d nodes, %d roots, %d diagnostics in %v.\n",
				s.forest.Records(), s.forest.Len(), len(s.forest.Roots), len(s.forest.Diagnostics),
				time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "depth", 0, "Maximum depth to print (0 = unlimited)")
	return cmd
}

func printForest(w io.Writer, f *structure.Forest, maxDepth int) {
	f.Walk(func(n *structure.LabelNode, depth int) bool {
		if maxDepth > 0 && depth >= maxDepth {
			return false
		}
		fmt.Fprintf(w, "%s%s", strings.Repeat("  ", depth), n)
		if n.Number != "" {
			fmt.Fprintf(w, " #%s", n.Number)
		}
		if n.UUID != "" {
			fmt.Fprintf(w, " -> %s", n.UUID)
		}
		fmt.Fprintln(w)
		return true
	})
}
