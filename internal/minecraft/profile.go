package minecraft

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PCL-Community/craftauth/internal/core"
	"github.com/PCL-Community/craftauth/internal/rest"
)

var _ core.ProfileResolver = (*Resolver)(nil)

// Resolver fetches the player's public profile. A 404 means the
// account holds no Minecraft license, which callers must present
// differently from a transport failure.
type Resolver struct {
	profileURL string
	httpClient *http.Client
}

type ResolverOption func(*Resolver)

func WithProfileURL(url string) ResolverOption {
	return func(r *Resolver) {
		r.profileURL = url
	}
}

func WithResolverHTTPClient(hc *http.Client) ResolverOption {
	return func(r *Resolver) {
		r.httpClient = hc
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		profileURL: DefaultProfileURL,
		httpClient: rest.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, token *core.GameToken) (*core.Profile, error) {
	resp, err := rest.Get(ctx, r.httpClient, r.profileURL, token.Value)
	if err != nil {
		return nil, core.NetworkError(core.StageProfile, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, core.NewPipelineError(core.StageProfile, core.KindNotEntitled,
			"this account does not own Minecraft", nil)
	}
	if !resp.OK() {
		return nil, core.ExchangeError(core.StageProfile,
			fmt.Sprintf("profile request rejected (status %d)", resp.StatusCode), nil)
	}

	var profile core.Profile
	if err := resp.Decode(&profile); err != nil {
		return nil, core.ExchangeError(core.StageProfile, "malformed profile response", err)
	}
	if profile.ID == "" || profile.Name == "" {
		return nil, core.ExchangeError(core.StageProfile, "profile response missing id or name", nil)
	}

	return &profile, nil
}
