package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentic-research/structlink/api"
	"github.com/agentic-research/structlink/internal/mcpserver"
)

func newOwnerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "owner <uuid>",
		Short: "Find the structure node owning a renderable object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.linker.FindOwningNode(args[0])
			if err != nil {
				return err
			}
			if n == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "no owning node for %s\n", args[0])
				return nil
			}
			return writeJSON(cmd, mcpserver.ViewOf(n))
		},
	}
}

func newExpandCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <idx>",
		Short: "List the live objects representing the node at a record index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid record index %q: %w", args[0], err)
			}
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			n, ok := s.forest.ByIdx(idx)
			if !ok {
				return fmt.Errorf("no node at index %d", idx)
			}
			objs, err := s.linker.ExpandSelection(n)
			if err != nil {
				return err
			}
			if objs == nil {
				objs = []api.RendererObject{}
			}
			return writeJSON(cmd, objs)
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
