package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/structlink/internal/ingest"
)

func newFragmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fragments",
		Short: "Manage fragment datasets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <fragments.json> <fragments.db>",
		Short: "Load a JSON fragment dataset into a SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			records, err := ingest.LoadFragmentRecords(osfs.New("/"), src)
			if err != nil {
				return fmt.Errorf("load fragments: %w", err)
			}
			if err := ingest.WriteSQLiteFragments(args[1], records); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d fragment records into %s\n", len(records), args[1])
			return nil
		},
	})
	return cmd
}
