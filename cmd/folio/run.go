package main

import (
	"fmt"
	"strings"

	"github.com/panbanda/folio/internal/output"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run any tool with key=value parameters",
		Long: `Runs a registered tool by name. Parameters are given as key=value pairs and
converted according to the tool's declared types.

Examples:
  folio run search -p query="graph theory" -p limit=5
  folio run critical-path -p weight=edge -f json`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("run expects exactly one tool name, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.registry.Lookup(args[0])
			if err != nil {
				return err
			}
			values, err := t.ParseArgs(params)
			if err != nil {
				return err
			}
			inv, err := a.prepare(t.Name, values, cmd.Flags().Changed("format"))
			if err != nil {
				return err
			}
			return a.execute(cmd.Context(), inv)
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Tool parameter as key=value (repeatable)")
	return cmd
}

// toolInfo is one row of the tool listing.
type toolInfo struct {
	Name        string   `json:"name" toon:"name"`
	Summary     string   `json:"summary" toon:"summary"`
	Parameters  []string `json:"parameters" toon:"parameters"`
	Description string   `json:"description" toon:"description"`
}

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(a.format)
			if err != nil {
				return err
			}

			res := output.NewResult("Tools")
			res.Headers = []string{"Tool", "Parameters", "Summary"}
			infos := make([]toolInfo, 0, len(a.registry.Names()))
			for _, t := range a.registry.Tools() {
				var params []string
				for _, p := range t.Params {
					name := p.Name + ":" + string(p.Type)
					if p.Required {
						name += "!"
					}
					params = append(params, name)
				}
				infos = append(infos, toolInfo{
					Name:        t.Name,
					Summary:     t.Summary,
					Parameters:  params,
					Description: t.Description,
				})
				res.Rows = append(res.Rows, []string{t.Name, strings.Join(params, " "), t.Summary})
			}
			res.Items = infos
			res.AddStat("tools", len(infos))
			res.Metadata.Tool = "tools"
			res.Metadata.ToolVersion = version

			if format == output.FormatHTML {
				return &usageError{fmt.Errorf("the tool listing has no html form")}
			}
			data, err := a.render(res, format, nil)
			if err != nil {
				return err
			}
			return a.write(data)
		},
	}
}
