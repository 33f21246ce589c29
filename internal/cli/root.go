// Package cli provides the command-line interface for ssoprofile.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmreicha/ssoprofile/internal/core"
	"github.com/jmreicha/ssoprofile/internal/naming"
	"github.com/jmreicha/ssoprofile/internal/prompt"
	"github.com/jmreicha/ssoprofile/internal/sso"
)

var (
	// Global flags.
	cfgFile string
	debug   bool

	// Settings flags shared by generate and validate.
	ssoRegion      string
	ssoStartURL    string
	outputFile     string
	sessionName    string
	defaultProfile string
	nonInteractive bool
	noBrowser      bool
	mappingFlags   []string

	// Generate flags.
	overwrite bool
	prune     bool
	dryRun    bool

	// Shared components.
	settings *core.Settings
	logger   *slog.Logger

	// Overridden in tests.
	oidcClientFactory = sso.NewOIDCClientFactory()
	ssoClientFactory  = sso.NewSSOClientFactory()
	newPrompter       = func() prompt.Prompter { return prompt.New(os.Stdin, os.Stdout) }
)

// NewRootCmd creates the root command for ssoprofile.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ssoprofile",
		Short: "Generate AWS CLI profiles for every account and role behind AWS SSO",

		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initializeComponents()
		},
	}

	helpTemplate := strings.ReplaceAll(rootCmd.HelpTemplate(), "Available Commands:", "Commands:")
	usageTemplate := strings.ReplaceAll(rootCmd.UsageTemplate(), "Available Commands:", "Commands:")
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.SetUsageTemplate(usageTemplate)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search in standard locations)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd(version))

	return rootCmd
}

// initializeComponents sets up the logger and loads settings for all commands.
func initializeComponents() error {
	logLevel := slog.LevelError
	if debug {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	var err error
	settings, err = core.LoadSettings(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if settings == nil {
		settings = core.NewSettings()
	}

	logger.Debug("settings loaded", "config", cfgFile, "output_file", settings.OutputFile)
	return nil
}

// addSettingsFlags registers the flags that override settings.
func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ssoRegion, "region", "", "IAM Identity Center region")
	cmd.Flags().StringVar(&ssoStartURL, "start-url", "", "SSO portal start URL")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "AWS config file to update (default: $AWS_CONFIG_FILE or ~/.aws/config)")
	cmd.Flags().StringVar(&sessionName, "session-name", "", "name of the sso-session section (default: my-sso)")
	cmd.Flags().StringVar(&defaultProfile, "default", "", "profile name to mirror as [default]")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "accept every default without prompting")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the verification URL in a browser")
	cmd.Flags().StringArrayVar(&mappingFlags, "map", nil, "rename an account before deriving profile names, as from:to (repeatable)")
}

// applySettingsOverrides merges flag values over the loaded settings.
// Flag mappings are checked before mappings from the config file.
func applySettingsOverrides(cfg *core.Settings) error {
	if cfg == nil {
		return nil
	}

	if strings.TrimSpace(ssoRegion) != "" {
		cfg.Region = strings.TrimSpace(ssoRegion)
	}

	if strings.TrimSpace(ssoStartURL) != "" {
		cfg.StartURL = strings.TrimSpace(ssoStartURL)
	}

	if strings.TrimSpace(outputFile) != "" {
		cfg.OutputFile = strings.TrimSpace(outputFile)
	}

	if strings.TrimSpace(sessionName) != "" {
		cfg.SessionName = strings.TrimSpace(sessionName)
	}

	if strings.TrimSpace(defaultProfile) != "" {
		cfg.DefaultProfile = strings.TrimSpace(defaultProfile)
	}

	if nonInteractive {
		cfg.NonInteractive = true
	}

	if noBrowser {
		cfg.OpenBrowser = false
	}

	if len(mappingFlags) > 0 {
		mappings, err := naming.ParseMappings(mappingFlags)
		if err != nil {
			return err
		}
		cfg.Mappings = append(mappings, cfg.Mappings...)
	}

	return nil
}
