package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage analysis prompts",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available prompts",
	Long:  "List built-in prompts and any overrides from ailink.prompts_dir.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		registry, err := buildPromptRegistry(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		prompts := registry.List()
		if len(prompts) == 0 {
			_, err := fmt.Fprintln(out, "No prompts found.")
			return err
		}

		writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(writer, "SLUG\tVERSION\tACTIVE\tDESCRIPTION") // nolint:errcheck // tabwriter buffers; errors surface at Flush
		for _, p := range prompts {
			if p == nil {
				continue
			}
			active := ""
			if p.Config.Slug == cfg.Analyzer.PromptSlug {
				active = "*"
			}
			_, _ = fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", p.Config.Slug, p.Config.Version, active, p.Config.Description) // nolint:errcheck // tabwriter buffers
		}
		return writer.Flush()
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsListCmd)
}
