// Package media mints access tokens for the managed video provider. This is
// the alternative deployment where a third-party SDK carries the media; the
// signaling relay never depends on it.
package media

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/telecare/signaling/internal/domain"
)

var ErrNotConfigured = errors.New("video provider not configured")

const tokenTTL = 24 * time.Hour

// Issuer signs provider user tokens with the account's API secret.
type Issuer struct {
	apiKey string
	secret []byte
}

func NewIssuer(apiKey, apiSecret string) *Issuer {
	return &Issuer{apiKey: apiKey, secret: []byte(apiSecret)}
}

func (i *Issuer) Configured() bool {
	return i.apiKey != "" && len(i.secret) > 0
}

// APIKey is handed to clients alongside the token so the SDK can be
// initialized; it is not a secret.
func (i *Issuer) APIKey() string { return i.apiKey }

// UserToken mints a token the given user presents to the media provider.
func (i *Issuer) UserToken(userID domain.UserID, name string, role domain.Role) (string, error) {
	if !i.Configured() {
		return "", ErrNotConfigured
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": string(userID),
		"name":    name,
		"role":    string(role),
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
