package minecraft

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// PeekClaims extracts the claims of a Minecraft bearer token without
// verifying the signature. Diagnostic use only; nothing in the pipeline
// trusts these values.
func PeekClaims(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
