package minecraft

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/PCL-Community/craftauth/internal/core"
)

func TestLoginExchanger_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if got, want := body["identityToken"], "XBL3.0 x=uhs1;xststok"; got != want {
			t.Errorf("identityToken = %q, want %q", got, want)
		}
		_, _ = w.Write([]byte(`{"access_token":"gametok","expires_in":86400,"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	e := NewLoginExchanger(WithLoginURL(srv.URL))
	e.now = func() time.Time { return fixed }

	got, err := e.Exchange(context.Background(), &core.SecurityToken{Value: "xststok", UserHash: "uhs1"})
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	want := &core.GameToken{Value: "gametok", ExpiresIn: 86400, ObtainedAt: fixed}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("game token mismatch (-want +got):\n%s", diff)
	}
}

func TestLoginExchanger_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"expires_in":86400}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			e := NewLoginExchanger(WithLoginURL(srv.URL))
			_, err := e.Exchange(context.Background(), &core.SecurityToken{Value: "xststok", UserHash: "uhs1"})

			var pe *core.PipelineError
			if !errors.As(err, &pe) {
				t.Fatalf("expected PipelineError, got %v", err)
			}
			if pe.Stage != core.StageGameLogin {
				t.Errorf("stage = %s, want game-login", pe.Stage)
			}
			if pe.Kind != core.KindExchange {
				t.Errorf("kind = %s, want exchange", pe.Kind)
			}
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer gametok" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"uuid-1","name":"Steve"}`))
	}))
	defer srv.Close()

	res := NewResolver(WithProfileURL(srv.URL))
	got, err := res.Resolve(context.Background(), &core.GameToken{Value: "gametok"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := &core.Profile{ID: "uuid-1", Name: "Steve"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_NotFoundMeansNotEntitled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewResolver(WithProfileURL(srv.URL))
	_, err := res.Resolve(context.Background(), &core.GameToken{Value: "gametok"})

	var pe *core.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Kind != core.KindNotEntitled {
		t.Errorf("kind = %s, want not_entitled", pe.Kind)
	}
	if pe.Stage != core.StageProfile {
		t.Errorf("stage = %s, want profile", pe.Stage)
	}
}

func TestResolver_TransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	res := NewResolver(WithProfileURL(srv.URL))
	_, err := res.Resolve(context.Background(), &core.GameToken{Value: "gametok"})

	var pe *core.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Kind != core.KindNetwork {
		t.Errorf("kind = %s, want network", pe.Kind)
	}
	if !pe.Transient() {
		t.Errorf("transport failure should be transient")
	}
}

func TestPeekClaims(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"xuid": "123456",
		"agg":  "Adult",
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	claims, err := PeekClaims(signed)
	if err != nil {
		t.Fatalf("PeekClaims: %v", err)
	}
	if claims["xuid"] != "123456" {
		t.Errorf("xuid claim = %v, want 123456", claims["xuid"])
	}

	if _, err := PeekClaims("not-a-jwt"); err == nil {
		t.Errorf("expected error for malformed token")
	}
}
