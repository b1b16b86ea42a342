package main

import (
	"fmt"
	"strings"

	"github.com/panbanda/folio/internal/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newToolCmd exposes a registry tool as a sub-command with one flag per
// parameter. Only flags set on the command line become parameters, so the
// tool's own defaults and the config file apply otherwise.
func newToolCmd(a *app, t *tools.Tool) *cobra.Command {
	positional := positionalParam(t)
	use := t.Name
	if positional != "" {
		use += " [" + positional + "...]"
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   t.Summary,
		Long:    t.Description,
		GroupID: "tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flagParams(cmd.Flags(), t)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if positional == "" {
					return &usageError{fmt.Errorf("%s accepts no arguments", t.Name)}
				}
				if _, set := params[positional]; set {
					return &usageError{fmt.Errorf("%s given both as --%s and as an argument", positional, flagName(positional))}
				}
				params[positional] = strings.Join(args, " ")
			}

			inv, err := a.prepare(t.Name, params, cmd.Flags().Changed("format"))
			if err != nil {
				return err
			}
			return a.execute(cmd.Context(), inv)
		},
	}
	for _, p := range t.Params {
		addParamFlag(cmd.Flags(), p)
	}
	return cmd
}

// positionalParam is the first required string parameter, which may also
// be given as arguments.
func positionalParam(t *tools.Tool) string {
	for _, p := range t.Params {
		if p.Required && p.Type == tools.TypeString {
			return p.Name
		}
	}
	return ""
}

func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}

func addParamFlag(fs *pflag.FlagSet, p tools.Param) {
	name := flagName(p.Name)
	usage := p.Description
	if len(p.Enum) > 0 {
		usage += " One of: " + strings.Join(p.Enum, ", ") + "."
	}
	switch p.Type {
	case tools.TypeInteger:
		def, _ := p.Default.(int)
		fs.Int64(name, int64(def), usage)
	case tools.TypeNumber:
		def, _ := p.Default.(float64)
		fs.Float64(name, def, usage)
	case tools.TypeBoolean:
		def, _ := p.Default.(bool)
		fs.Bool(name, def, usage)
	default:
		def, _ := p.Default.(string)
		fs.String(name, def, usage)
	}
}

// flagParams collects the parameters whose flags were set.
func flagParams(fs *pflag.FlagSet, t *tools.Tool) (map[string]any, error) {
	params := make(map[string]any)
	for _, p := range t.Params {
		name := flagName(p.Name)
		if !fs.Changed(name) {
			continue
		}
		var (
			v   any
			err error
		)
		switch p.Type {
		case tools.TypeInteger:
			v, err = fs.GetInt64(name)
		case tools.TypeNumber:
			v, err = fs.GetFloat64(name)
		case tools.TypeBoolean:
			v, err = fs.GetBool(name)
		default:
			v, err = fs.GetString(name)
		}
		if err != nil {
			return nil, &usageError{err}
		}
		params[p.Name] = v
	}
	return params, nil
}
