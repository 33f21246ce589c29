package sso

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sso"

	"github.com/jmreicha/ssoprofile/internal/core"
)

// Account is an account the identity can access.
type Account struct {
	ID   string
	Name string
}

// Role is a permission set the identity can assume in one account.
type Role struct {
	Name string
}

// Enumerator lists accounts and roles with a bearer token.
type Enumerator struct {
	client      SSOClient
	accessToken string
	logger      *slog.Logger
}

// NewEnumerator creates an enumerator for the given access token.
func NewEnumerator(client SSOClient, accessToken string, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enumerator{
		client:      client,
		accessToken: accessToken,
		logger:      logger,
	}
}

// ListAccounts returns every accessible account sorted by name. Ties keep
// retrieval order. Sorting happens only after the last page.
func (e *Enumerator) ListAccounts(ctx context.Context) ([]Account, error) {
	input := &sso.ListAccountsInput{AccessToken: aws.String(e.accessToken)}
	accounts := []Account{}

	for page := 1; ; page++ {
		output, err := e.client.ListAccounts(ctx, input)
		if err != nil {
			return nil, &core.EnumerationError{Kind: core.AccountListFailed, Err: err}
		}
		for _, info := range output.AccountList {
			accounts = append(accounts, Account{
				ID:   aws.ToString(info.AccountId),
				Name: aws.ToString(info.AccountName),
			})
		}
		e.logger.Debug("listed account page", "page", page, "accounts", len(output.AccountList))

		if aws.ToString(output.NextToken) == "" {
			break
		}
		input.NextToken = output.NextToken
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}

// ListRoles returns the roles for accountID in the order the service returns them.
func (e *Enumerator) ListRoles(ctx context.Context, accountID string) ([]Role, error) {
	input := &sso.ListAccountRolesInput{
		AccessToken: aws.String(e.accessToken),
		AccountId:   aws.String(accountID),
	}
	roles := []Role{}

	for {
		output, err := e.client.ListAccountRoles(ctx, input)
		if err != nil {
			return nil, &core.EnumerationError{Kind: core.RoleListFailed, AccountID: accountID, Err: err}
		}
		for _, info := range output.RoleList {
			name := strings.TrimSpace(aws.ToString(info.RoleName))
			if name == "" {
				e.logger.Debug("skipping role without a name", "account", accountID)
				continue
			}
			roles = append(roles, Role{Name: name})
		}

		if aws.ToString(output.NextToken) == "" {
			break
		}
		input.NextToken = output.NextToken
	}

	return roles, nil
}
