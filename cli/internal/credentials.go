package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devilmonastery/biniq/internal/localstore"
)

// TokenInfo is what the CLI can tell about a stored token without verifying it
type TokenInfo struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired checks if the token is expired. Tokens without an expiry never expire.
func (t *TokenInfo) IsExpired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// NewStateStore opens the local state file of a context
func NewStateStore(contextName string) (*localstore.FileStore, error) {
	path, err := StatePath(contextName)
	if err != nil {
		return nil, err
	}
	slog.Debug("using state file",
		slog.String("component", "cli-creds"),
		slog.String("context", contextName),
		slog.String("path", path))
	return localstore.NewFileStore(path), nil
}

// inspectToken reads the claims of a JWT without checking its signature.
// The BinIQ API treats the token as opaque; this is for display only.
func inspectToken(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if info.Subject == "" {
		// The API puts the user id in "id" or "userId"
		for _, key := range []string{"id", "userId", "_id"} {
			if v, ok := claims[key].(string); ok && v != "" {
				info.Subject = v
				break
			}
		}
	}
	if v, ok := claims["email"].(string); ok {
		info.Email = v
	}
	if v, ok := claims["role"]; ok && v != nil {
		info.Role = fmt.Sprint(v)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
