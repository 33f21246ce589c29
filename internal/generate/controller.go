// Package generate decides which profiles to create for the accounts and
// roles an SSO identity can reach.
package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmreicha/ssoprofile/internal/core"
	"github.com/jmreicha/ssoprofile/internal/naming"
	"github.com/jmreicha/ssoprofile/internal/prompt"
	"github.com/jmreicha/ssoprofile/internal/sso"
)

// Enumerator lists accounts and their roles.
type Enumerator interface {
	ListAccounts(ctx context.Context) ([]sso.Account, error)
	ListRoles(ctx context.Context, accountID string) ([]sso.Role, error)
}

// Options controls a generation run.
type Options struct {
	// Interactive asks the operator about every role.
	Interactive bool

	// SSORegion is the batch region and the first interactive default.
	SSORegion string

	// Mappings rename account display names before sanitizing.
	Mappings []core.Mapping

	// DefaultTarget is the profile name to mirror as [default]. Optional.
	DefaultTarget string
}

// ProfileEntry is one profile to write.
type ProfileEntry struct {
	Name        string
	AccountID   string
	AccountName string
	RoleName    string
	Region      string
	Output      string
}

// Result is the outcome of a run.
type Result struct {
	Profiles []ProfileEntry
	Default  *ProfileEntry
	Warnings []error
}

// Controller walks accounts and roles and builds a Result.
type Controller struct {
	enumerator Enumerator
	prompter   prompt.Prompter
	logger     *slog.Logger

	// Notify receives operator-facing messages such as rejected names.
	Notify func(msg string)
}

// NewController creates a controller. prompter may be nil for batch runs.
func NewController(enumerator Enumerator, prompter prompt.Prompter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		enumerator: enumerator,
		prompter:   prompter,
		logger:     logger,
	}
}

// Run enumerates every account and role and returns the profiles to create.
// used holds names already present in the target file and receives every
// created name. Any enumeration error aborts the run with no result.
func (c *Controller) Run(ctx context.Context, opts Options, used naming.NameSet) (*Result, error) {
	if opts.Interactive && c.prompter == nil {
		return nil, fmt.Errorf("interactive generation requires a prompter")
	}
	if used == nil {
		used = naming.NewNameSet()
	}

	accounts, err := c.enumerator.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("enumerated accounts", "count", len(accounts))

	resolver := &naming.Resolver{
		Interactive: opts.Interactive,
		Prompter:    c.prompter,
		Notify:      c.Notify,
	}

	region := opts.SSORegion
	output := core.DefaultOutputFormat
	result := &Result{}

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		roles, err := c.enumerator.ListRoles(ctx, account.ID)
		if err != nil {
			return nil, err
		}

		displayName := naming.Map(account.Name, opts.Mappings)
		safeName := naming.Sanitize(displayName)

		for _, role := range roles {
			candidate := naming.Candidate(safeName, role.Name)

			if opts.Interactive {
				create, err := c.prompter.Confirm(ctx, fmt.Sprintf("Create a profile for %s (%s) role %s?", displayName, account.ID, role.Name), true)
				if err != nil {
					return nil, err
				}
				if !create {
					c.logger.Debug("operator skipped role", "account", account.ID, "role", role.Name)
					continue
				}
			}

			name, ok, err := resolver.Resolve(ctx, candidate, used)
			if err != nil {
				return nil, err
			}
			if !ok {
				c.logger.Info("skipping profile", "candidate", candidate, "account", account.ID, "role", role.Name)
				continue
			}

			if opts.Interactive {
				if region, err = c.prompter.Ask(ctx, "Region", region); err != nil {
					return nil, err
				}
				if output, err = c.prompter.Ask(ctx, "Output format", output); err != nil {
					return nil, err
				}
			}

			result.Profiles = append(result.Profiles, ProfileEntry{
				Name:        name,
				AccountID:   account.ID,
				AccountName: displayName,
				RoleName:    role.Name,
				Region:      region,
				Output:      output,
			})

			if opts.DefaultTarget != "" && name == opts.DefaultTarget && result.Default == nil {
				entry := result.Profiles[len(result.Profiles)-1]
				result.Default = &entry
			}
		}
	}

	if opts.DefaultTarget != "" && result.Default == nil {
		warning := &core.NamingError{Target: opts.DefaultTarget, Reason: "matched no created profile"}
		c.logger.Warn("default profile not produced", "target", opts.DefaultTarget)
		result.Warnings = append(result.Warnings, warning)
	}

	return result, nil
}
