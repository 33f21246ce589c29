package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate settings",
		Long:  "Check settings and name mappings without contacting AWS.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applySettingsOverrides(settings); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Settings are valid")
			_, _ = fmt.Fprintf(out, "  region: %s\n", settings.Region)
			_, _ = fmt.Fprintf(out, "  start url: %s\n", settings.StartURL)
			_, _ = fmt.Fprintf(out, "  output file: %s\n", settings.OutputFile)
			_, _ = fmt.Fprintf(out, "  session: %s\n", settings.SessionName)
			_, _ = fmt.Fprintf(out, "  mappings: %d\n", len(settings.Mappings))
			return nil
		},
	}

	addSettingsFlags(cmd)

	return cmd
}
