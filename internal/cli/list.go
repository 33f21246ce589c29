package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmreicha/ssoprofile/internal/awsconfig"
	"github.com/jmreicha/ssoprofile/internal/core"
)

func newListCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List existing profiles",
		Long:  "List the profile names already present in the AWS config file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = settings.OutputFile
			}
			normalized, err := core.NormalizePath(path)
			if err != nil {
				return err
			}

			scan, err := awsconfig.Load(normalized, awsconfig.ModeAppend)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(scan.Profiles) == 0 && !scan.HasDefault {
				_, _ = fmt.Fprintf(out, "No profiles in %s\n", normalized)
				return nil
			}

			_, _ = fmt.Fprintf(out, "Profiles in %s:\n", normalized)
			if scan.HasDefault {
				_, _ = fmt.Fprintln(out, "  - default")
			}
			for _, name := range scan.Profiles {
				_, _ = fmt.Fprintf(out, "  - %s\n", name)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "output-file", "", "AWS config file to read (default: $AWS_CONFIG_FILE or ~/.aws/config)")

	return cmd
}
