package client

import (
	"errors"
	"sync"
)

// ErrNoToken is returned by a TokenManager when no token is stored
var ErrNoToken = errors.New("no auth token stored")

// TokenManager is an interface for managing the persisted auth token
// Different implementations can store the token in files, memory, a keychain, etc.
type TokenManager interface {
	// GetToken returns the current token, or ErrNoToken if none is stored
	GetToken() (token string, err error)

	// SaveToken stores the token, replacing any previous one
	SaveToken(token string) error

	// ClearToken removes the stored token
	ClearToken() error
}

// MemoryTokenManager keeps the token in process memory
type MemoryTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenManager creates an empty in-memory token manager
func NewMemoryTokenManager() *MemoryTokenManager {
	return &MemoryTokenManager{}
}

func (m *MemoryTokenManager) GetToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryTokenManager) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenManager) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
