package core

import "context"

// Authenticator obtains a Microsoft identity token, silently from the
// credential cache when possible, interactively via the device-code
// flow otherwise.
// Implementations: MSAL public-client authenticator, test fakes.
type Authenticator interface {
	// Acquire blocks until a token is available or the flow fails.
	// This is the only stage that may mutate the credential cache.
	Acquire(ctx context.Context) (*IdentityToken, error)
}

// PlatformExchanger trades an identity token for an Xbox Live user
// token plus user hash.
type PlatformExchanger interface {
	Exchange(ctx context.Context, identity *IdentityToken) (*PlatformToken, error)
}

// SecurityExchanger trades a platform token for an XSTS token scoped to
// the Minecraft services relying party, classifying 401 rejections.
type SecurityExchanger interface {
	Exchange(ctx context.Context, platform *PlatformToken) (*SecurityToken, error)
}

// GameExchanger trades the XSTS token + user hash for a Minecraft
// services bearer token.
type GameExchanger interface {
	Exchange(ctx context.Context, security *SecurityToken) (*GameToken, error)
}

// ProfileResolver fetches the player's public profile with the game
// bearer token. A 404 means the account does not own the game.
type ProfileResolver interface {
	Resolve(ctx context.Context, token *GameToken) (*Profile, error)
}
