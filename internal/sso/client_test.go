package sso

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sso"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
)

func isolateSharedConfig(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("[profile broken\nregion = \"\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("AWS_CONFIG_FILE", path)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_PROFILE", "stale")
}

func TestOIDCClientFactoryIgnoresSharedConfig(t *testing.T) {
	isolateSharedConfig(t)

	client, err := NewOIDCClientFactory()(context.Background(), "eu-west-1")
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}

	oidc, ok := client.(*ssooidc.Client)
	if !ok {
		t.Fatalf("client type = %T", client)
	}
	if got := oidc.Options().Region; got != "eu-west-1" {
		t.Fatalf("region = %q", got)
	}
}

func TestSSOClientFactoryIgnoresSharedConfig(t *testing.T) {
	isolateSharedConfig(t)

	client, err := NewSSOClientFactory()(context.Background(), "us-west-2", "token")
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}

	directory, ok := client.(*sso.Client)
	if !ok {
		t.Fatalf("client type = %T", client)
	}
	if got := directory.Options().Region; got != "us-west-2" {
		t.Fatalf("region = %q", got)
	}
}
