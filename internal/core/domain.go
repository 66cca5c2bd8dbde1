package core

import "time"

// IdentityToken is the Microsoft account access token produced by the
// identity authenticator. It is consumed exactly once, by the Xbox Live
// exchange, and is never persisted in cleartext outside the provider's
// own serialized cache blob.
type IdentityToken struct {
	// Value is the raw access token string.
	Value string

	// ExpiresOn indicates when this token becomes invalid.
	ExpiresOn time.Time

	// Scopes are the granted scopes (e.g. "XboxLive.signin").
	Scopes []string

	// Account is the provider-side account identifier the token was
	// issued for (used for logging, never for requests).
	Account string
}

// PlatformToken is the Xbox Live user token plus the opaque user hash
// returned alongside it. In-memory only.
type PlatformToken struct {
	Value    string
	UserHash string
}

// SecurityToken is the XSTS token scoped to the Minecraft services
// relying party. The user hash is re-derived from the XSTS response.
type SecurityToken struct {
	Value    string
	UserHash string
}

// GameToken is the Minecraft services bearer token. It is ephemeral and
// must never be written to disk.
type GameToken struct {
	Value string

	// ExpiresIn is the validity duration in seconds as reported by the
	// login endpoint.
	ExpiresIn int64

	// ObtainedAt is when the token was issued, so callers can decide
	// whether a fresh login is needed before launch.
	ObtainedAt time.Time
}

// Profile is the player's public Minecraft profile.
type Profile struct {
	// ID is the player UUID (without dashes, as the service returns it).
	ID string `json:"id"`

	// Name is the current display name.
	Name string `json:"name"`
}

// LoginResult is the uniform outcome envelope of one login attempt.
// Exactly one of the two branches is populated: on success Token and
// Profile, on failure Stage/Kind/Detail.
type LoginResult struct {
	Success bool

	// CorrelationID identifies the attempt across logs and output.
	CorrelationID string

	// Stage and Kind classify the failure; Detail is the human-readable
	// message to surface verbatim to the user.
	Stage  Stage
	Kind   Kind
	Detail string

	Token   *GameToken
	Profile *Profile

	// Account is the Microsoft account the session belongs to, for
	// display only.
	Account string
}
