package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultTokenStorageDir is the default directory for storing OAuth tokens,
// relative to the user's home directory. This follows XDG conventions.
const DefaultTokenStorageDir = ".config/authloop/tokens"

// TokenStore provides storage for obtained OAuth tokens, keyed by provider.
// It supports both file-based (XDG-compliant) and in-memory storage.
//
// SECURITY: This store handles sensitive credentials. Files are created with
// 0600 permissions, the storage directory with 0700, token values are never
// logged (only provider identifiers), and expired tokens are rejected on read.
type TokenStore struct {
	mu         sync.RWMutex
	storageDir string
	tokens     map[string]*StoredToken // In-memory cache
	fileMode   bool                    // Whether to persist to files
}

// StoredToken is a persisted OAuth token with metadata.
type StoredToken struct {
	// AccessToken is the OAuth access token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the OAuth refresh token (if available).
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`

	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`

	// Scope is the granted scope(s) as reported by the provider.
	Scope string `json:"scope,omitempty"`

	// Provider is the provider identifier this token belongs to,
	// normally the token endpoint URL.
	Provider string `json:"provider"`

	// CreatedAt is when the token was stored.
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the stored token is past its expiry, with a
// 60-second safety buffer. Tokens without an expiry never expire.
func (t *StoredToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(60 * time.Second).After(t.Expiry)
}

// TokenStoreConfig configures the token store.
type TokenStoreConfig struct {
	// StorageDir is the directory for storing token files.
	// Defaults to ~/.config/authloop/tokens
	StorageDir string

	// FileMode enables file-based persistence. If false, tokens are in-memory only.
	FileMode bool
}

// NewTokenStore creates a new token store with the specified configuration.
func NewTokenStore(cfg TokenStoreConfig) (*TokenStore, error) {
	storageDir := cfg.StorageDir
	if storageDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(homeDir, DefaultTokenStorageDir)
	}

	store := &TokenStore{
		storageDir: storageDir,
		tokens:     make(map[string]*StoredToken),
		fileMode:   cfg.FileMode,
	}

	if cfg.FileMode {
		if err := os.MkdirAll(storageDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create token storage directory: %w", err)
		}
		if err := store.loadTokenFiles(); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Store saves a token for a provider.
// Token values are never logged; only the provider identifier is.
func (s *TokenStore) Store(provider string, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &StoredToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.ExpiresAt,
		Scope:        token.Scope,
		Provider:     provider,
		CreatedAt:    time.Now(),
	}

	key := s.tokenKey(provider)
	s.tokens[key] = stored

	if s.fileMode {
		if err := s.writeTokenFile(key, stored); err != nil {
			slog.Warn("failed to persist token",
				"provider", provider,
				"error", err.Error(),
			)
			return fmt.Errorf("failed to persist token: %w", err)
		}
	}

	slog.Debug("token stored", "provider", provider)
	return nil
}

// Get returns the stored token for a provider, or nil if none exists or the
// stored token has expired.
func (s *TokenStore) Get(provider string) *StoredToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[s.tokenKey(provider)]
	if !ok {
		return nil
	}
	if token.IsExpired() {
		return nil
	}
	return token
}

// Delete removes the stored token for a provider. Deleting a token that does
// not exist is not an error.
func (s *TokenStore) Delete(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.tokenKey(provider)
	delete(s.tokens, key)

	if s.fileMode {
		path := s.tokenFilePath(key)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete token file: %w", err)
		}
	}

	slog.Debug("token deleted", "provider", provider)
	return nil
}

// List returns all stored tokens, including expired ones, sorted by provider.
// Intended for status display.
func (s *TokenStore) List() []*StoredToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make([]*StoredToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Provider < tokens[j].Provider
	})
	return tokens
}

// tokenKey derives a stable filesystem-safe key for a provider.
func (s *TokenStore) tokenKey(provider string) string {
	normalized := strings.TrimSuffix(provider, "/")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}

func (s *TokenStore) tokenFilePath(key string) string {
	return filepath.Join(s.storageDir, key+".json")
}

// writeTokenFile persists a token with owner-only permissions.
// Must be called with s.mu held.
func (s *TokenStore) writeTokenFile(key string, token *StoredToken) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return os.WriteFile(s.tokenFilePath(key), data, 0600)
}

// loadTokenFiles populates the in-memory cache from the storage directory.
// Unreadable or corrupt files are skipped, not fatal.
func (s *TokenStore) loadTokenFiles() error {
	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		return fmt.Errorf("failed to read token storage directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.storageDir, entry.Name()))
		if err != nil {
			slog.Warn("skipping unreadable token file", "file", entry.Name(), "error", err.Error())
			continue
		}
		var token StoredToken
		if err := json.Unmarshal(data, &token); err != nil {
			slog.Warn("skipping corrupt token file", "file", entry.Name(), "error", err.Error())
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		s.tokens[key] = &token
	}

	return nil
}
