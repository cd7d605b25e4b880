package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAuthentication covers every way an identity assertion can fail
// verification. Connections carrying a bad assertion are rejected before
// any state is created for them.
var ErrAuthentication = errors.New("authentication error")

// Verifier checks identity assertions minted by the external auth service.
// The core never issues tokens; it only consumes them at connection time.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses the signed assertion and returns the identity it asserts.
func (v *Verifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: no token provided", ErrAuthentication)
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrAuthentication)
	}

	username, ok := (*claims)["username"].(string)
	if !ok || username == "" {
		return "", fmt.Errorf("%w: no username in token", ErrAuthentication)
	}

	return username, nil
}
