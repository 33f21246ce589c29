// Package sso talks to IAM Identity Center: the OIDC device authorization
// flow and the account/role directory.
package sso

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sso"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
)

// OIDCClient defines the identity service operations used by the device flow.
type OIDCClient interface {
	RegisterClient(ctx context.Context, params *ssooidc.RegisterClientInput, optFns ...func(*ssooidc.Options)) (*ssooidc.RegisterClientOutput, error)
	StartDeviceAuthorization(ctx context.Context, params *ssooidc.StartDeviceAuthorizationInput, optFns ...func(*ssooidc.Options)) (*ssooidc.StartDeviceAuthorizationOutput, error)
	CreateToken(ctx context.Context, params *ssooidc.CreateTokenInput, optFns ...func(*ssooidc.Options)) (*ssooidc.CreateTokenOutput, error)
}

// SSOClient defines the directory operations used for enumeration.
type SSOClient interface {
	ListAccounts(ctx context.Context, params *sso.ListAccountsInput, optFns ...func(*sso.Options)) (*sso.ListAccountsOutput, error)
	ListAccountRoles(ctx context.Context, params *sso.ListAccountRolesInput, optFns ...func(*sso.Options)) (*sso.ListAccountRolesOutput, error)
}

// OIDCClientFactory creates identity service clients for a region.
type OIDCClientFactory func(ctx context.Context, region string) (OIDCClient, error)

// SSOClientFactory creates directory clients bound to an access token.
type SSOClientFactory func(ctx context.Context, region, accessToken string) (SSOClient, error)

// NewOIDCClientFactory returns the default identity client factory.
func NewOIDCClientFactory() OIDCClientFactory {
	return func(ctx context.Context, region string) (OIDCClient, error) {
		cfg, err := loadConfig(ctx, region)
		if err != nil {
			return nil, err
		}

		return ssooidc.NewFromConfig(cfg), nil
	}
}

// NewSSOClientFactory returns the default directory client factory.
func NewSSOClientFactory() SSOClientFactory {
	return func(ctx context.Context, region, accessToken string) (SSOClient, error) {
		cfg, err := loadConfig(ctx, region)
		if err != nil {
			return nil, err
		}

		client := sso.NewFromConfig(cfg, func(opts *sso.Options) {
			opts.Credentials = credentials.NewStaticCredentialsProvider("", "", accessToken)
		})

		return client, nil
	}
}

// loadConfig builds the SDK config without reading the shared config and
// credentials files, since the config file is the one being generated. A
// profile named by AWS_PROFILE cannot resolve without those files, so that
// case falls back to a region-only config.
func loadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithSharedConfigFiles([]string{}),
		config.WithSharedCredentialsFiles([]string{}),
	)

	var notExist config.SharedConfigProfileNotExistError
	if errors.As(err, &notExist) {
		return aws.Config{Region: region}, nil
	}
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
