package localstore

import (
	"errors"
	"log/slog"

	"github.com/devilmonastery/biniq/internal/client"
)

// storeTokenManager keeps the auth token under KeyAuthToken
type storeTokenManager struct {
	store Store
}

// TokenManager returns a client.TokenManager backed by s
func TokenManager(s Store) client.TokenManager {
	return &storeTokenManager{store: s}
}

func (t *storeTokenManager) GetToken() (string, error) {
	token, err := t.store.GetItem(KeyAuthToken)
	if errors.Is(err, ErrNotFound) || (err == nil && token == "") {
		return "", client.ErrNoToken
	}
	if err != nil {
		slog.Debug("failed to load token",
			slog.String("component", "localstore-token"),
			slog.String("error", err.Error()))
		return "", err
	}
	return token, nil
}

func (t *storeTokenManager) SaveToken(token string) error {
	return t.store.SetItem(KeyAuthToken, token)
}

func (t *storeTokenManager) ClearToken() error {
	return t.store.RemoveItem(KeyAuthToken)
}
