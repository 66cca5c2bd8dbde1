// Package minecraft talks to the Minecraft services API: exchanging an
// XSTS token for a game bearer token and resolving the player profile.
package minecraft

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PCL-Community/craftauth/internal/core"
	"github.com/PCL-Community/craftauth/internal/rest"
)

const (
	DefaultLoginURL   = "https://api.minecraftservices.com/authentication/login_with_xbox"
	DefaultProfileURL = "https://api.minecraftservices.com/minecraft/profile"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

var _ core.GameExchanger = (*LoginExchanger)(nil)

// LoginExchanger builds the composite XBL3.0 identity assertion from
// the user hash and XSTS token and posts it to the game login endpoint.
type LoginExchanger struct {
	loginURL   string
	httpClient *http.Client
	now        func() time.Time
}

type LoginOption func(*LoginExchanger)

func WithLoginURL(url string) LoginOption {
	return func(e *LoginExchanger) {
		e.loginURL = url
	}
}

func WithLoginHTTPClient(hc *http.Client) LoginOption {
	return func(e *LoginExchanger) {
		e.httpClient = hc
	}
}

func NewLoginExchanger(opts ...LoginOption) *LoginExchanger {
	e := &LoginExchanger{
		loginURL:   DefaultLoginURL,
		httpClient: rest.NewHTTPClient(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *LoginExchanger) Exchange(ctx context.Context, security *core.SecurityToken) (*core.GameToken, error) {
	payload := map[string]string{
		"identityToken": fmt.Sprintf("XBL3.0 x=%s;%s", security.UserHash, security.Value),
	}

	resp, err := rest.PostJSON(ctx, e.httpClient, e.loginURL, payload)
	if err != nil {
		return nil, core.NetworkError(core.StageGameLogin, err)
	}
	if !resp.OK() {
		return nil, core.ExchangeError(core.StageGameLogin,
			fmt.Sprintf("Minecraft login rejected (status %d)", resp.StatusCode), nil)
	}

	var lr loginResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, core.ExchangeError(core.StageGameLogin, "malformed Minecraft login response", err)
	}
	if lr.AccessToken == "" {
		return nil, core.ExchangeError(core.StageGameLogin, "Minecraft login response missing access_token", nil)
	}

	return &core.GameToken{
		Value:      lr.AccessToken,
		ExpiresIn:  lr.ExpiresIn,
		ObtainedAt: e.now(),
	}, nil
}
