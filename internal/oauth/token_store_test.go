package oauth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TokenStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewTokenStore(TokenStoreConfig{StorageDir: dir, FileMode: true})
	require.NoError(t, err)
	return store, dir
}

func TestTokenStore_StoreAndGet(t *testing.T) {
	store, _ := newTestStore(t)

	token := &Token{
		AccessToken: "tok_999",
		TokenType:   "Bearer",
		Scope:       "read write",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Store("https://provider.example.com/token", token))

	stored := store.Get("https://provider.example.com/token")
	require.NotNil(t, stored)
	assert.Equal(t, "tok_999", stored.AccessToken)
	assert.Equal(t, "Bearer", stored.TokenType)
	assert.Equal(t, "read write", stored.Scope)
	assert.Equal(t, "https://provider.example.com/token", stored.Provider)
}

func TestTokenStore_GetUnknownProvider(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Nil(t, store.Get("https://unknown.example.com/token"))
}

func TestTokenStore_ExpiredTokenRejected(t *testing.T) {
	store, _ := newTestStore(t)

	token := &Token{
		AccessToken: "tok_old",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Store("https://provider.example.com/token", token))

	assert.Nil(t, store.Get("https://provider.example.com/token"), "expired token must not be returned")

	// Expired tokens still show up in List for status display.
	tokens := store.List()
	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].IsExpired())
}

func TestTokenStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)

	token := &Token{AccessToken: "tok_999", TokenType: "Bearer"}
	require.NoError(t, store.Store("https://provider.example.com/token", token))

	require.NoError(t, store.Delete("https://provider.example.com/token"))
	assert.Nil(t, store.Get("https://provider.example.com/token"))

	// Deleting a token that does not exist is not an error.
	require.NoError(t, store.Delete("https://provider.example.com/token"))
}

func TestTokenStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions are not meaningful on Windows")
	}

	store, dir := newTestStore(t)
	token := &Token{AccessToken: "tok_secret", TokenType: "Bearer"}
	require.NoError(t, store.Store("https://provider.example.com/token", token))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestTokenStore_PersistsAcrossInstances(t *testing.T) {
	store, dir := newTestStore(t)
	token := &Token{
		AccessToken: "tok_999",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Store("https://provider.example.com/token", token))

	reopened, err := NewTokenStore(TokenStoreConfig{StorageDir: dir, FileMode: true})
	require.NoError(t, err)

	stored := reopened.Get("https://provider.example.com/token")
	require.NotNil(t, stored)
	assert.Equal(t, "tok_999", stored.AccessToken)
}

func TestTokenStore_InMemoryOnly(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTokenStore(TokenStoreConfig{StorageDir: dir, FileMode: false})
	require.NoError(t, err)

	token := &Token{AccessToken: "tok_999", TokenType: "Bearer"}
	require.NoError(t, store.Store("https://provider.example.com/token", token))
	require.NotNil(t, store.Get("https://provider.example.com/token"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "in-memory store must not write files")
}

func TestTokenStore_ListSorted(t *testing.T) {
	store, _ := newTestStore(t)

	for _, provider := range []string{"https://b.example.com", "https://a.example.com", "https://c.example.com"} {
		require.NoError(t, store.Store(provider, &Token{AccessToken: "t", TokenType: "Bearer"}))
	}

	tokens := store.List()
	require.Len(t, tokens, 3)
	assert.Equal(t, "https://a.example.com", tokens[0].Provider)
	assert.Equal(t, "https://b.example.com", tokens[1].Provider)
	assert.Equal(t, "https://c.example.com", tokens[2].Provider)
}
