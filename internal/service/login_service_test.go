package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/PCL-Community/craftauth/internal/core"
	"github.com/PCL-Community/craftauth/internal/minecraft"
	"github.com/PCL-Community/craftauth/internal/xbox"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeAuthenticator mirrors the silent-then-interactive behavior of the
// real authenticator: a cached token short-circuits the device flow.
type fakeAuthenticator struct {
	cached            *core.IdentityToken
	deviceFlow        func() (*core.IdentityToken, error)
	deviceFlowInvoked bool
}

func (f *fakeAuthenticator) Acquire(context.Context) (*core.IdentityToken, error) {
	if f.cached != nil {
		return f.cached, nil
	}
	f.deviceFlowInvoked = true
	return f.deviceFlow()
}

// countingHandler wraps a handler and counts invocations.
func countingHandler(hits *atomic.Int32, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}
}

func xblSuccess(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(`{"Token":"xbltok","DisplayClaims":{"xui":[{"uhs":"uhs1"}]}}`))
}

func xstsSuccess(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(`{"Token":"xststok","DisplayClaims":{"xui":[{"uhs":"uhs1"}]}}`))
}

func gameLoginSuccess(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(`{"access_token":"gametok","expires_in":86400,"token_type":"Bearer"}`))
}

func profileSuccess(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte(`{"id":"uuid-1","name":"Steve"}`))
}

// pipeline builds a LoginService whose four exchange stages point at
// the given handlers, tracking per-stage hit counts.
func pipeline(t *testing.T, auth core.Authenticator, xbl, xsts, login, profile http.HandlerFunc) (*LoginService, *[4]atomic.Int32) {
	t.Helper()

	var hits [4]atomic.Int32
	srvXbl := httptest.NewServer(countingHandler(&hits[0], xbl))
	srvXsts := httptest.NewServer(countingHandler(&hits[1], xsts))
	srvLogin := httptest.NewServer(countingHandler(&hits[2], login))
	srvProfile := httptest.NewServer(countingHandler(&hits[3], profile))
	t.Cleanup(func() {
		srvXbl.Close()
		srvXsts.Close()
		srvLogin.Close()
		srvProfile.Close()
	})

	svc := NewLoginService(
		auth,
		xbox.NewLiveExchanger(xbox.WithLiveAuthURL(srvXbl.URL)),
		xbox.NewXstsExchanger(xbox.WithXstsAuthURL(srvXsts.URL)),
		minecraft.NewLoginExchanger(minecraft.WithLoginURL(srvLogin.URL)),
		minecraft.NewResolver(minecraft.WithProfileURL(srvProfile.URL)),
		nopLogger{},
	)
	return svc, &hits
}

func TestLogin_EndToEndSuccess(t *testing.T) {
	auth := &fakeAuthenticator{cached: &core.IdentityToken{Value: "idtok", Account: "steve@example.com"}}
	svc, _ := pipeline(t, auth, xblSuccess, xstsSuccess, gameLoginSuccess, profileSuccess)

	result := svc.Login(context.Background())

	if !result.Success {
		t.Fatalf("login failed: stage=%s kind=%s detail=%s", result.Stage, result.Kind, result.Detail)
	}
	if result.CorrelationID == "" {
		t.Errorf("missing correlation ID")
	}

	wantToken := &core.GameToken{Value: "gametok", ExpiresIn: 86400}
	if diff := cmp.Diff(wantToken, result.Token, cmpopts.IgnoreFields(core.GameToken{}, "ObtainedAt")); diff != "" {
		t.Errorf("game token mismatch (-want +got):\n%s", diff)
	}

	wantProfile := &core.Profile{ID: "uuid-1", Name: "Steve"}
	if diff := cmp.Diff(wantProfile, result.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_CachedSessionSkipsDeviceFlow(t *testing.T) {
	auth := &fakeAuthenticator{
		cached: &core.IdentityToken{Value: "idtok"},
		deviceFlow: func() (*core.IdentityToken, error) {
			return nil, core.NewPipelineError(core.StageIdentity, core.KindFlowInit, "should not run", nil)
		},
	}
	svc, _ := pipeline(t, auth, xblSuccess, xstsSuccess, gameLoginSuccess, profileSuccess)

	result := svc.Login(context.Background())
	if !result.Success {
		t.Fatalf("login failed: %s/%s", result.Stage, result.Kind)
	}
	if auth.deviceFlowInvoked {
		t.Errorf("device-code flow ran despite a valid cached session")
	}
}

func TestLogin_FailFastOrdering(t *testing.T) {
	auth := &fakeAuthenticator{cached: &core.IdentityToken{Value: "idtok"}}
	reject := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	svc, hits := pipeline(t, auth, reject, xstsSuccess, gameLoginSuccess, profileSuccess)

	result := svc.Login(context.Background())

	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Stage != core.StageXbox {
		t.Errorf("stage = %s, want xbox", result.Stage)
	}
	if result.Kind != core.KindExchange {
		t.Errorf("kind = %s, want exchange", result.Kind)
	}
	if got := hits[0].Load(); got != 1 {
		t.Errorf("xbox endpoint hits = %d, want 1", got)
	}
	for i, name := range []string{"xsts", "game-login", "profile"} {
		if got := hits[i+1].Load(); got != 0 {
			t.Errorf("%s endpoint hit %d times after upstream failure", name, got)
		}
	}
}

func TestLogin_XstsClassificationSurvivesToResult(t *testing.T) {
	auth := &fakeAuthenticator{cached: &core.IdentityToken{Value: "idtok"}}
	noAccount := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"XErr":2148916233}`))
	}
	svc, _ := pipeline(t, auth, xblSuccess, noAccount, gameLoginSuccess, profileSuccess)

	result := svc.Login(context.Background())
	if result.Kind != core.KindNoLinkedAccount {
		t.Errorf("kind = %s, want no_linked_account", result.Kind)
	}
	if result.Stage != core.StageXsts {
		t.Errorf("stage = %s, want xsts", result.Stage)
	}
	if result.Detail == "" {
		t.Errorf("user-facing detail must not be empty")
	}
}

func TestLogin_NotEntitled(t *testing.T) {
	auth := &fakeAuthenticator{cached: &core.IdentityToken{Value: "idtok"}}
	noLicense := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	svc, _ := pipeline(t, auth, xblSuccess, xstsSuccess, gameLoginSuccess, noLicense)

	result := svc.Login(context.Background())
	if result.Kind != core.KindNotEntitled {
		t.Errorf("kind = %s, want not_entitled", result.Kind)
	}
	if result.Stage != core.StageProfile {
		t.Errorf("stage = %s, want profile", result.Stage)
	}
}

func TestLogin_InteractiveTimeout(t *testing.T) {
	auth := &fakeAuthenticator{
		deviceFlow: func() (*core.IdentityToken, error) {
			return nil, core.NewPipelineError(core.StageIdentity, core.KindInteractiveTimeout,
				"the device code expired before sign-in was completed", context.DeadlineExceeded)
		},
	}
	svc, hits := pipeline(t, auth, xblSuccess, xstsSuccess, gameLoginSuccess, profileSuccess)

	result := svc.Login(context.Background())

	if result.Success {
		t.Fatalf("expected failure")
	}
	if !auth.deviceFlowInvoked {
		t.Errorf("device flow should have been attempted")
	}
	if result.Kind != core.KindInteractiveTimeout {
		t.Errorf("kind = %s, want interactive_timeout", result.Kind)
	}
	// no exchange may run after the timeout
	for i, name := range []string{"xbox", "xsts", "game-login", "profile"} {
		if got := hits[i].Load(); got != 0 {
			t.Errorf("%s endpoint hit %d times after identity failure", name, got)
		}
	}
}
