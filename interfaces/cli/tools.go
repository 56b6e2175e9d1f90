package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pulsemon/pulsemon-mcp/pack/analytics"
)

// toolsOptions holds options for the tools command.
type toolsOptions struct {
	jsonOutput bool
}

// newToolsCmd creates the tools command.
func (a *App) newToolsCmd() *cobra.Command {
	opts := &toolsOptions{}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listTools(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// listTools prints the tool surface without connecting to a portal.
func (a *App) listTools(opts *toolsOptions) error {
	p := analytics.New(analytics.PackConfig{})

	if opts.jsonOutput {
		type toolInfo struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Tags        []string `json:"tags,omitempty"`
		}
		infos := make([]toolInfo, 0, len(p.Tools))
		for _, t := range p.Tools {
			infos = append(infos, toolInfo{
				Name:        t.Name(),
				Description: t.Description(),
				Tags:        t.Annotations().Tags,
			})
		}
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(out))
		return nil
	}

	fmt.Fprintf(a.stdout, "%s %s: %d tools\n\n", p.Name, p.Version, len(p.Tools))
	for _, t := range p.Tools {
		fmt.Fprintf(a.stdout, "  %-24s %s\n", t.Name(), t.Description())
	}
	return nil
}
