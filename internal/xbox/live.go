// Package xbox implements the two Xbox-side token exchanges: Microsoft
// identity token to Xbox Live user token, and Xbox Live user token to
// an XSTS token scoped to the Minecraft services relying party.
package xbox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PCL-Community/craftauth/internal/core"
	"github.com/PCL-Community/craftauth/internal/rest"
)

const (
	DefaultLiveAuthURL = "https://user.auth.xboxlive.com/user/authenticate"

	liveRelyingParty = "http://auth.xboxlive.com"
	liveSiteName     = "user.auth.xboxlive.com"
)

// tokenResponse is the shape shared by the user-authenticate and XSTS
// endpoints: a token plus a claims block whose first xui entry carries
// the user hash.
type tokenResponse struct {
	Token         string `json:"Token"`
	DisplayClaims struct {
		XUI []struct {
			UHS string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

func (r *tokenResponse) userHash() (string, error) {
	if r.Token == "" {
		return "", fmt.Errorf("response missing Token")
	}
	if len(r.DisplayClaims.XUI) == 0 || r.DisplayClaims.XUI[0].UHS == "" {
		return "", fmt.Errorf("response missing DisplayClaims.xui[0].uhs")
	}
	return r.DisplayClaims.XUI[0].UHS, nil
}

var _ core.PlatformExchanger = (*LiveExchanger)(nil)

// LiveExchanger presents the Microsoft access token as an RPS ticket to
// the Xbox Live user-authenticate endpoint.
type LiveExchanger struct {
	authURL    string
	httpClient *http.Client
}

type LiveOption func(*LiveExchanger)

// WithLiveAuthURL overrides the endpoint, for tests and proxies.
func WithLiveAuthURL(url string) LiveOption {
	return func(e *LiveExchanger) {
		e.authURL = url
	}
}

func WithLiveHTTPClient(hc *http.Client) LiveOption {
	return func(e *LiveExchanger) {
		e.httpClient = hc
	}
}

func NewLiveExchanger(opts ...LiveOption) *LiveExchanger {
	e := &LiveExchanger{
		authURL:    DefaultLiveAuthURL,
		httpClient: rest.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *LiveExchanger) Exchange(ctx context.Context, identity *core.IdentityToken) (*core.PlatformToken, error) {
	payload := map[string]any{
		"Properties": map[string]any{
			"AuthMethod": "RPS",
			"SiteName":   liveSiteName,
			"RpsTicket":  "d=" + identity.Value,
		},
		"RelyingParty": liveRelyingParty,
		"TokenType":    "JWT",
	}

	resp, err := rest.PostJSON(ctx, e.httpClient, e.authURL, payload)
	if err != nil {
		return nil, core.NetworkError(core.StageXbox, err)
	}
	if !resp.OK() {
		return nil, core.ExchangeError(core.StageXbox,
			fmt.Sprintf("Xbox Live authentication rejected (status %d)", resp.StatusCode), nil)
	}

	var tr tokenResponse
	if err := resp.Decode(&tr); err != nil {
		return nil, core.ExchangeError(core.StageXbox, "malformed Xbox Live response", err)
	}
	uhs, err := tr.userHash()
	if err != nil {
		return nil, core.ExchangeError(core.StageXbox, "malformed Xbox Live claims", err)
	}

	return &core.PlatformToken{
		Value:    tr.Token,
		UserHash: uhs,
	}, nil
}
