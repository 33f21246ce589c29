package sso

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc"
	"github.com/aws/aws-sdk-go-v2/service/ssooidc/types"
	"github.com/pkg/browser"

	"github.com/jmreicha/ssoprofile/internal/core"
	"github.com/jmreicha/ssoprofile/internal/prompt"
)

const (
	// ClientName is the name registered with the identity service.
	ClientName = "ssoprofile"

	clientType      = "public"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// State is the position of a Flow in the device authorization sequence.
type State int

// Device authorization states, in order.
const (
	Unregistered State = iota
	ClientRegistered
	DeviceAuthorized
	AwaitingUserConfirmation
	TokenAcquired
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case ClientRegistered:
		return "client registered"
	case DeviceAuthorized:
		return "device authorized"
	case AwaitingUserConfirmation:
		return "awaiting user confirmation"
	case TokenAcquired:
		return "token acquired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Registration holds the OIDC client credentials issued for this run.
type Registration struct {
	ClientID     string
	ClientSecret string
}

// DeviceAuthorization is what the operator needs to approve the login.
type DeviceAuthorization struct {
	VerificationURL         string
	VerificationURLComplete string
	UserCode                string
	DeviceCode              string
	ExpiresIn               int32
}

// URL returns the complete verification URL when the service provided one.
func (d DeviceAuthorization) URL() string {
	if d.VerificationURLComplete != "" {
		return d.VerificationURLComplete
	}
	return d.VerificationURL
}

// Session is the result of a successful login. It lives for one run and is
// never persisted.
type Session struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
}

// FlowOptions configures a Flow.
type FlowOptions struct {
	StartURL    string
	OpenBrowser bool
	Out         io.Writer
	Logger      *slog.Logger
}

// Flow drives the OIDC device authorization grant. Each step must be called
// in order; there is no polling and no retry.
type Flow struct {
	client   OIDCClient
	startURL string
	out      io.Writer
	logger   *slog.Logger
	openURL  func(url string) error

	state        State
	registration Registration
	device       DeviceAuthorization
	accessToken  string
}

// NewFlow creates a flow in the Unregistered state.
func NewFlow(client OIDCClient, opts FlowOptions) *Flow {
	f := &Flow{
		client:   client,
		startURL: opts.StartURL,
		out:      opts.Out,
		logger:   opts.Logger,
	}
	if f.out == nil {
		f.out = os.Stdout
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if opts.OpenBrowser {
		f.openURL = browser.OpenURL
	}
	return f
}

// State returns the current flow state.
func (f *Flow) State() State {
	return f.state
}

// RegisterClient registers a public OIDC client.
func (f *Flow) RegisterClient(ctx context.Context) (Registration, error) {
	if err := f.expect(Unregistered); err != nil {
		return Registration{}, err
	}

	output, err := f.client.RegisterClient(ctx, &ssooidc.RegisterClientInput{
		ClientName: aws.String(ClientName),
		ClientType: aws.String(clientType),
	})
	if err != nil {
		return Registration{}, &core.AuthError{Kind: core.RegistrationFailed, Err: err}
	}

	reg := Registration{
		ClientID:     aws.ToString(output.ClientId),
		ClientSecret: aws.ToString(output.ClientSecret),
	}
	if reg.ClientID == "" || reg.ClientSecret == "" {
		return Registration{}, &core.AuthError{Kind: core.RegistrationFailed, Reason: "response is missing client credentials"}
	}

	f.logger.Debug("registered oidc client", "expires_at", output.ClientSecretExpiresAt)
	f.registration = reg
	f.state = ClientRegistered
	return reg, nil
}

// StartDeviceAuthorization requests a device code for startURL. An empty
// startURL uses the one from FlowOptions.
func (f *Flow) StartDeviceAuthorization(ctx context.Context, startURL string) (DeviceAuthorization, error) {
	if err := f.expect(ClientRegistered); err != nil {
		return DeviceAuthorization{}, err
	}
	if startURL == "" {
		startURL = f.startURL
	}

	output, err := f.client.StartDeviceAuthorization(ctx, &ssooidc.StartDeviceAuthorizationInput{
		ClientId:     aws.String(f.registration.ClientID),
		ClientSecret: aws.String(f.registration.ClientSecret),
		StartUrl:     aws.String(startURL),
	})
	if err != nil {
		return DeviceAuthorization{}, &core.AuthError{Kind: core.DeviceAuthorizationFailed, Err: err}
	}

	device := DeviceAuthorization{
		VerificationURL:         aws.ToString(output.VerificationUri),
		VerificationURLComplete: aws.ToString(output.VerificationUriComplete),
		UserCode:                aws.ToString(output.UserCode),
		DeviceCode:              aws.ToString(output.DeviceCode),
		ExpiresIn:               output.ExpiresIn,
	}
	if device.DeviceCode == "" || device.URL() == "" {
		return DeviceAuthorization{}, &core.AuthError{Kind: core.DeviceAuthorizationFailed, Reason: "response is missing the device code or verification url"}
	}

	f.device = device
	f.state = DeviceAuthorized
	return device, nil
}

// AwaitConfirmation shows the verification URL and user code, optionally
// opens the browser, and blocks until the operator acknowledges.
func (f *Flow) AwaitConfirmation(ctx context.Context, p prompt.Prompter) error {
	if err := f.expect(DeviceAuthorized); err != nil {
		return err
	}

	url := f.device.URL()
	_, _ = fmt.Fprintf(f.out, "Verification URL: %s\n", url)
	if f.device.UserCode != "" {
		_, _ = fmt.Fprintf(f.out, "User code: %s\n", f.device.UserCode)
	}

	if f.openURL != nil {
		if err := f.openURL(url); err != nil {
			f.logger.Warn("failed to open browser", "url", url, "error", err)
			_, _ = fmt.Fprintln(f.out, "Open the URL above in your browser.")
		}
	}

	f.state = AwaitingUserConfirmation
	return p.Acknowledge(ctx, "Approve the request in your browser, then continue.")
}

// CreateToken exchanges the approved device code for an access token.
func (f *Flow) CreateToken(ctx context.Context) (string, error) {
	if err := f.expect(AwaitingUserConfirmation); err != nil {
		return "", err
	}

	output, err := f.client.CreateToken(ctx, &ssooidc.CreateTokenInput{
		ClientId:     aws.String(f.registration.ClientID),
		ClientSecret: aws.String(f.registration.ClientSecret),
		DeviceCode:   aws.String(f.device.DeviceCode),
		GrantType:    aws.String(deviceGrantType),
	})
	if err != nil {
		return "", &core.AuthError{Kind: core.TokenExchangeFailed, Reason: tokenFailureReason(err), Err: err}
	}

	token := aws.ToString(output.AccessToken)
	if token == "" {
		return "", &core.AuthError{Kind: core.TokenExchangeFailed, Reason: "response is missing the access token"}
	}

	f.logger.Debug("acquired access token", "expires_in", output.ExpiresIn)
	f.accessToken = token
	f.state = TokenAcquired
	return token, nil
}

// Login runs every step of the flow and returns the session.
func (f *Flow) Login(ctx context.Context, p prompt.Prompter) (Session, error) {
	reg, err := f.RegisterClient(ctx)
	if err != nil {
		return Session{}, err
	}
	if _, err := f.StartDeviceAuthorization(ctx, f.startURL); err != nil {
		return Session{}, err
	}
	if err := f.AwaitConfirmation(ctx, p); err != nil {
		return Session{}, err
	}
	token, err := f.CreateToken(ctx)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ClientID:     reg.ClientID,
		ClientSecret: reg.ClientSecret,
		AccessToken:  token,
	}, nil
}

func (f *Flow) expect(want State) error {
	if f.state != want {
		return fmt.Errorf("device flow is %s, expected %s", f.state, want)
	}
	return nil
}

func tokenFailureReason(err error) string {
	var pending *types.AuthorizationPendingException
	var expired *types.ExpiredTokenException
	var denied *types.AccessDeniedException
	switch {
	case errors.As(err, &pending):
		return "authorization is still pending, approve the request before continuing"
	case errors.As(err, &expired):
		return "device code expired"
	case errors.As(err, &denied):
		return "authorization was denied"
	default:
		return ""
	}
}
