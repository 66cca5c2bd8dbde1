package xbox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PCL-Community/craftauth/internal/core"
	"github.com/PCL-Community/craftauth/internal/rest"
)

const (
	DefaultXstsAuthURL = "https://xsts.auth.xboxlive.com/xsts/authorize"

	xstsRelyingParty = "rp://api.minecraftservices.com/"
	xstsSandboxID    = "RETAIL"
)

// Xbox Live numeric rejection codes returned in the body of an XSTS
// 401. Only these two carry user-actionable meaning; everything else
// stays a generic exchange failure.
const (
	xerrNoXboxAccount     = 2148916233 // Microsoft account with no Xbox account linked
	xerrRegionUnavailable = 2148916238 // account from a country without Xbox Live
)

// xstsErrorResponse is the 401 body. XErr is the provider-specific
// numeric code.
type xstsErrorResponse struct {
	XErr     int64  `json:"XErr"`
	Message  string `json:"Message"`
	Redirect string `json:"Redirect"`
}

var _ core.SecurityExchanger = (*XstsExchanger)(nil)

// XstsExchanger authorizes the Xbox Live user token against the
// Minecraft services relying party. This is the only stage that can
// tell the user *why* their account cannot proceed, so the 401
// classification here must stay exact.
type XstsExchanger struct {
	authURL    string
	httpClient *http.Client
}

type XstsOption func(*XstsExchanger)

func WithXstsAuthURL(url string) XstsOption {
	return func(e *XstsExchanger) {
		e.authURL = url
	}
}

func WithXstsHTTPClient(hc *http.Client) XstsOption {
	return func(e *XstsExchanger) {
		e.httpClient = hc
	}
}

func NewXstsExchanger(opts ...XstsOption) *XstsExchanger {
	e := &XstsExchanger{
		authURL:    DefaultXstsAuthURL,
		httpClient: rest.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *XstsExchanger) Exchange(ctx context.Context, platform *core.PlatformToken) (*core.SecurityToken, error) {
	payload := map[string]any{
		"Properties": map[string]any{
			"SandboxId":  xstsSandboxID,
			"UserTokens": []string{platform.Value},
		},
		"RelyingParty": xstsRelyingParty,
		"TokenType":    "JWT",
	}

	resp, err := rest.PostJSON(ctx, e.httpClient, e.authURL, payload)
	if err != nil {
		return nil, core.NetworkError(core.StageXsts, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, classifyUnauthorized(resp)
	}
	if !resp.OK() {
		return nil, core.ExchangeError(core.StageXsts,
			fmt.Sprintf("XSTS authorization rejected (status %d)", resp.StatusCode), nil)
	}

	var tr tokenResponse
	if err := resp.Decode(&tr); err != nil {
		return nil, core.ExchangeError(core.StageXsts, "malformed XSTS response", err)
	}
	uhs, err := tr.userHash()
	if err != nil {
		return nil, core.ExchangeError(core.StageXsts, "malformed XSTS claims", err)
	}

	return &core.SecurityToken{
		Value:    tr.Token,
		UserHash: uhs,
	}, nil
}

// classifyUnauthorized maps the XErr code of a 401 body to a semantic
// category. An unparsable body or unknown code degrades to a generic
// exchange failure.
func classifyUnauthorized(resp *rest.Response) *core.PipelineError {
	var body xstsErrorResponse
	if err := resp.Decode(&body); err == nil {
		switch body.XErr {
		case xerrNoXboxAccount:
			return core.NewPipelineError(core.StageXsts, core.KindNoLinkedAccount,
				"this Microsoft account has no Xbox account linked to it", nil)
		case xerrRegionUnavailable:
			return core.NewPipelineError(core.StageXsts, core.KindRegionUnsupported,
				"this account is from a country or region where Xbox Live is unavailable", nil)
		}
	}
	return core.ExchangeError(core.StageXsts, "XSTS authorization rejected (status 401)", nil)
}
