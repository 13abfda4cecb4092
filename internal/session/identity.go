package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoIdentity = errors.New("token carries no user identity")

// Identity is who the session acts as. The engine does not authenticate
// anyone; it derives the identity from the bearer token the host already
// obtained, and forwards the raw token to the broker on connect.
type Identity struct {
	UserID int64
	Name   string
	Token  string
}

// IdentityFromToken extracts user_id and a display name from the token's
// claims. The signature is deliberately not verified here: the token was
// issued and checked by the auth service, the client only needs the claims.
func IdentityFromToken(token string) (Identity, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrNoIdentity
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID == 0 {
		return Identity{}, ErrNoIdentity
	}

	name, _ := claims["name"].(string)
	if name == "" {
		// Older tokens only carry the email.
		name, _ = claims["email"].(string)
	}

	return Identity{
		UserID: int64(userID),
		Name:   name,
		Token:  token,
	}, nil
}
