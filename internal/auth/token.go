package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims identify who may drive a session over the websocket.
type SessionClaims struct {
	SessionID  string
	PlayerName string
}

// IssueSessionToken signs an HS256 token bound to one session.
func IssueSessionToken(secret, sessionID, playerName string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret not configured")
	}
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{"session_id": sessionID, "player_name": playerName, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// ParseSessionToken verifies signature, algorithm and expiry and returns the claims.
func ParseSessionToken(secret, token string) (*SessionClaims, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["player_name"].(string)

	return &SessionClaims{SessionID: sessionID, PlayerName: name}, nil
}
