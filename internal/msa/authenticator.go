// Package msa acquires a Microsoft account access token for the
// XboxLive.signin scope, silently from the serialized token cache when
// possible, interactively via the device-code flow otherwise.
package msa

import (
	"context"
	"fmt"
	"time"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/public"
	"github.com/rs/zerolog/log"

	"github.com/PCL-Community/craftauth/internal/core"
)

const (
	// DefaultAuthority is the consumer-tenant endpoint; Minecraft
	// accounts are personal Microsoft accounts.
	DefaultAuthority = "https://login.microsoftonline.com/consumers"

	// ScopeXboxLive is the single scope the pipeline needs.
	ScopeXboxLive = "XboxLive.signin"
)

// DeviceCodePrompt carries everything the UI layer needs to show the
// user: the short code, where to enter it, and how long they have.
type DeviceCodePrompt struct {
	UserCode        string
	VerificationURL string
	Message         string
	ExpiresOn       time.Time
	Interval        time.Duration
}

// PromptFunc presents the device-code prompt to the user. It must not
// block; polling happens after it returns.
type PromptFunc func(DeviceCodePrompt)

var _ core.Authenticator = (*Authenticator)(nil)

// Authenticator wraps an MSAL public client. The credential cache is
// attached through MSAL's ExportReplace hooks, so this is the only
// stage that ever mutates it.
type Authenticator struct {
	client public.Client
	scopes []string
	prompt PromptFunc

	// forceInteractive skips the silent attempt, for `login --fresh`.
	forceInteractive bool
}

type Option func(*options)

type options struct {
	authority        string
	scopes           []string
	cache            cache.ExportReplace
	prompt           PromptFunc
	forceInteractive bool
}

func WithAuthority(authority string) Option {
	return func(o *options) {
		o.authority = authority
	}
}

func WithCache(c cache.ExportReplace) Option {
	return func(o *options) {
		o.cache = c
	}
}

func WithPrompt(p PromptFunc) Option {
	return func(o *options) {
		o.prompt = p
	}
}

func WithForceInteractive(force bool) Option {
	return func(o *options) {
		o.forceInteractive = force
	}
}

func New(clientID string, opts ...Option) (*Authenticator, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	o := &options{
		authority: DefaultAuthority,
		scopes:    []string{ScopeXboxLive},
		prompt:    func(DeviceCodePrompt) {},
	}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := []public.Option{public.WithAuthority(o.authority)}
	if o.cache != nil {
		clientOpts = append(clientOpts, public.WithCache(o.cache))
	}

	client, err := public.New(clientID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating public client: %w", err)
	}

	return &Authenticator{
		client:           client,
		scopes:           o.scopes,
		prompt:           o.prompt,
		forceInteractive: o.forceInteractive,
	}, nil
}

func (a *Authenticator) Acquire(ctx context.Context) (*core.IdentityToken, error) {
	if !a.forceInteractive {
		if token, ok := a.acquireSilent(ctx); ok {
			return token, nil
		}
	}
	return a.acquireInteractive(ctx)
}

// acquireSilent tries the cached account. Any failure here is
// non-fatal: the caller falls back to the interactive flow.
func (a *Authenticator) acquireSilent(ctx context.Context) (*core.IdentityToken, bool) {
	accounts, err := a.client.Accounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reading cached accounts failed, falling back to interactive login")
		return nil, false
	}
	if len(accounts) == 0 {
		return nil, false
	}

	result, err := a.client.AcquireTokenSilent(ctx, a.scopes, public.WithSilentAccount(accounts[0]))
	if err != nil {
		log.Debug().Err(err).Msg("silent token acquisition failed")
		return nil, false
	}

	log.Debug().Str("account", result.Account.PreferredUsername).Msg("reused cached session")
	return identityToken(result), true
}

func (a *Authenticator) acquireInteractive(ctx context.Context) (*core.IdentityToken, error) {
	flow, err := a.client.AcquireTokenByDeviceCode(ctx, a.scopes)
	if err != nil {
		return nil, core.NewPipelineError(core.StageIdentity, core.KindFlowInit,
			"could not start the device-code flow", err)
	}

	a.prompt(DeviceCodePrompt{
		UserCode:        flow.Result.UserCode,
		VerificationURL: flow.Result.VerificationURL,
		Message:         flow.Result.Message,
		ExpiresOn:       flow.Result.ExpiresOn,
		Interval:        time.Duration(flow.Result.Interval) * time.Second,
	})

	// The provider-declared expiry is a hard upper bound on the wait.
	pollCtx, cancel := context.WithDeadline(ctx, flow.Result.ExpiresOn)
	defer cancel()

	result, err := flow.AuthenticationResult(pollCtx)
	if err != nil {
		return nil, classifyInteractiveError(err)
	}
	return identityToken(result), nil
}

func identityToken(result public.AuthResult) *core.IdentityToken {
	return &core.IdentityToken{
		Value:     result.AccessToken,
		ExpiresOn: result.ExpiresOn,
		Scopes:    result.GrantedScopes,
		Account:   result.Account.PreferredUsername,
	}
}
