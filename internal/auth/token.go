// Package auth verifies the bearer tokens presented on the signaling
// handshake. Token issuance belongs to the account service; this side only
// decodes and rejects.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/telecare/signaling/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the user payload embedded in a token's subject claim.
type Identity struct {
	UserID domain.UserID
	Role   domain.Role
}

// Decoder verifies HS256 tokens and extracts the embedded identity. The
// subject claim carries {"id": ..., "role": ...}; some issuers embed it as an
// object, others as a string-encoded JSON document. Both are accepted.
type Decoder struct {
	secret []byte
}

func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

func (d *Decoder) Decode(token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return d.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return identityFromSubject(claims["sub"])
}

func identityFromSubject(sub any) (Identity, error) {
	var raw struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	switch v := sub.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &raw); err != nil {
			return Identity{}, ErrInvalidToken
		}
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return Identity{}, ErrInvalidToken
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return Identity{}, ErrInvalidToken
		}
	default:
		return Identity{}, ErrInvalidToken
	}

	if raw.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	role, err := domain.ParseRole(raw.Role)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: domain.UserID(raw.ID), Role: role}, nil
}
