package main

import (
	"fmt"

	"github.com/panbanda/folio/internal/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for LLM tool integration",
		Long: `Starts an MCP server over stdio that exposes folio's tools to LLM clients.
The corpus given with --root is the default for calls that do not name one.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "folio": {
        "command": "folio",
        "args": ["mcp", "--root", "/path/to/notes"]
      }
    }
  }

Tool names use underscores (critical_path). Every tool also accepts root and
format (toon, json or markdown) arguments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := a.loadConfig()
			if err != nil {
				return err
			}
			server := mcpserver.NewServer(version, mcpserver.Options{
				Root:   a.root,
				Config: loaded.Config,
				Logger: a.logger,
			})
			a.logger.Debug("starting mcp server", "root", a.root)
			return server.Run(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "manifest",
		Short: "Print the MCP registry manifest (server.json)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := mcpserver.GenerateManifest(version)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, string(data))
			return err
		},
	})
	return cmd
}
