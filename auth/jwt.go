// Package auth issues and verifies the HS256 bearer tokens that carry a
// caller's identity and role.
package auth

import (
	"encoding/json"
	"errors"
	"eventers-ticketing/clock"
	c "eventers-ticketing/context"
	"eventers-ticketing/failure"
	"eventers-ticketing/model"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	claimID   = "id"
	claimRole = "role"
	claimExp  = "exp"
)

var errMalformedClaims = errors.New("malformed claims")

type Tokens struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokens(secret string, ttl time.Duration, clk clock.Clock) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Issue signs a token for userID acting as role.
func (t *Tokens) Issue(userID int64, role string) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("issue: no signing secret configured")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claimID:   userID,
		claimRole: role,
		claimExp:  t.clock.Now().Add(t.ttl).Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("issue: unable to sign token for %d: %w", userID, err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the caller the token was
// issued to. Every rejection wraps failure.ErrUnauthorized.
func (t *Tokens) Verify(token string) (c.Caller, error) {
	if token == "" {
		return c.Caller{}, fmt.Errorf("verify: empty token: %w", failure.ErrUnauthorized)
	}

	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return c.Caller{}, fmt.Errorf("verify: %v: %w", err, failure.ErrUnauthorized)
	}
	if !parsed.Valid {
		return c.Caller{}, fmt.Errorf("verify: invalid token: %w", failure.ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return c.Caller{}, fmt.Errorf("verify: %v: %w", errMalformedClaims, failure.ErrUnauthorized)
	}
	if _, ok := claims[claimExp]; !ok {
		return c.Caller{}, fmt.Errorf("verify: token has no expiry: %w", failure.ErrUnauthorized)
	}

	id, ok := int64Claim(claims[claimID])
	role, _ := claims[claimRole].(string)
	if !ok || id <= 0 || !model.ValidRole(role) {
		return c.Caller{}, fmt.Errorf("verify: %v: %w", errMalformedClaims, failure.ErrUnauthorized)
	}
	return c.Caller{UserID: id, Role: role}, nil
}

func int64Claim(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), float64(int64(n)) == n
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}
