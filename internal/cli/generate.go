package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmreicha/ssoprofile/internal/awsconfig"
	"github.com/jmreicha/ssoprofile/internal/core"
	"github.com/jmreicha/ssoprofile/internal/generate"
	"github.com/jmreicha/ssoprofile/internal/naming"
	"github.com/jmreicha/ssoprofile/internal/sso"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Log in to AWS SSO and generate profiles",
		Long: `Log in to AWS SSO with the device authorization flow, list every
account and role you can access and append one profile per role to the
AWS config file.

Examples:
  ssoprofile generate --region us-east-1 --start-url https://example.awsapps.com/start
  ssoprofile generate --non-interactive --map Production:Prod --default ProdAdministratorAccess
  ssoprofile generate --prune
  ssoprofile generate --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout())
		},
	}

	addSettingsFlags(cmd)
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "back up the config file and replace it with the generated profiles")
	cmd.Flags().BoolVar(&prune, "prune", false, "back up the config file and replace earlier generated blocks")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the generated block instead of writing it")
	cmd.MarkFlagsMutuallyExclusive("overwrite", "prune")

	return cmd
}

func writeMode() awsconfig.Mode {
	switch {
	case overwrite:
		return awsconfig.ModeOverwrite
	case prune:
		return awsconfig.ModePrune
	default:
		return awsconfig.ModeAppend
	}
}

// runGenerate logs in, builds the profiles and writes them as one block.
// Nothing is written unless every earlier step succeeds.
func runGenerate(ctx context.Context, out io.Writer) error {
	if err := applySettingsOverrides(settings); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	mode := writeMode()
	engine := core.NewEngine(out, logger)
	prompter := newPrompter()
	target := awsconfig.Session{
		Name:     settings.SessionName,
		StartURL: settings.StartURL,
		Region:   settings.Region,
	}

	var (
		existing *awsconfig.Scan
		session  sso.Session
		result   *generate.Result
	)

	steps := []core.Step{
		{
			Name: "Read existing profiles",
			Run: func(_ context.Context) error {
				var err error
				existing, err = awsconfig.Load(settings.OutputFile, mode)
				if err != nil {
					return err
				}
				return existing.CheckSession(target)
			},
		},
		{
			Name: "SSO login",
			Run: func(ctx context.Context) error {
				client, err := oidcClientFactory(ctx, settings.Region)
				if err != nil {
					return err
				}
				flow := sso.NewFlow(client, sso.FlowOptions{
					StartURL:    settings.StartURL,
					OpenBrowser: settings.OpenBrowser,
					Out:         out,
					Logger:      logger,
				})
				session, err = flow.Login(ctx, prompter)
				return err
			},
		},
		{
			Name: "Generate profiles",
			Run: func(ctx context.Context) error {
				client, err := ssoClientFactory(ctx, settings.Region, session.AccessToken)
				if err != nil {
					return fmt.Errorf("create sso client: %w", err)
				}

				controller := generate.NewController(sso.NewEnumerator(client, session.AccessToken, logger), prompter, logger)
				controller.Notify = engine.Warn

				result, err = controller.Run(ctx, generate.Options{
					Interactive:   !settings.NonInteractive,
					SSORegion:     settings.Region,
					Mappings:      settings.Mappings,
					DefaultTarget: settings.DefaultProfile,
				}, naming.NewNameSet(existing.UsedNames()...))
				if err != nil {
					return err
				}

				for _, warning := range result.Warnings {
					engine.Warn(warning.Error())
				}
				return nil
			},
		},
		{
			Name: "Write config",
			Run: func(_ context.Context) error {
				block, warnings := awsconfig.Render(result, target, existing)
				for _, warning := range warnings {
					engine.Warn(warning.Error())
				}

				if dryRun {
					_, _ = fmt.Fprint(out, block)
					return nil
				}

				backup, err := awsconfig.Write(settings.OutputFile, mode, block)
				if err != nil {
					return err
				}
				if backup != "" {
					_, _ = fmt.Fprintf(out, "Backup: %s\n", backup)
				}
				return nil
			},
		},
	}

	if err := engine.Execute(ctx, steps); err != nil {
		return err
	}

	printGenerateResults(out, result)
	return nil
}

// printGenerateResults outputs the created profiles.
func printGenerateResults(out io.Writer, result *generate.Result) {
	if result == nil || len(result.Profiles) == 0 {
		_, _ = fmt.Fprintln(out, "No profiles created")
		return
	}

	verb := "Profiles created"
	if dryRun {
		verb = "Profiles that would be created"
	}

	_, _ = fmt.Fprintf(out, "\n%s (%s):\n", verb, settings.OutputFile)
	for _, entry := range result.Profiles {
		_, _ = fmt.Fprintf(out, "  - %s (%s %s)\n", entry.Name, entry.AccountID, entry.RoleName)
	}
	if result.Default != nil {
		_, _ = fmt.Fprintf(out, "  default: %s\n", result.Default.Name)
	}
}
