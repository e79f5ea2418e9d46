package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/agentic-research/structlink/internal/mcpserver"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve selection queries over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			// stdout carries the protocol; keep logs on stderr.
			log.Printf("serving %d records (%s context)", s.forest.Records(), s.linker.Context)
			return mcpserver.New(s.linker, s.holder, Version).ServeStdio()
		},
	}
}
