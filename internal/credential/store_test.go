package credential

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	// Empty store returns empty token, no error
	token, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Set("tok-123"))

	token, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	require.NoError(t, store.Remove())

	token, err = store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileStoreSetReplaces(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Set("first"))
	require.NoError(t, store.Set("second"))

	token, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "second", token)
}

func TestFileStoreRemoveIdempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())

	// Removing a token that was never stored is fine
	require.NoError(t, store.Remove())
	require.NoError(t, store.Remove())
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, authFileName), []byte("not json"), 0o600))

	_, err := store.Get()
	assert.Error(t, err)
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, store.Set("secret"))

	info, err := os.Stat(filepath.Join(dir, authFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestInspect(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(expiry),
	})

	info, err := Inspect(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", info.Subject)
	assert.WithinDuration(t, expiry, info.ExpiresAt, time.Second)
	assert.False(t, info.Expired())
}

func TestInspectExpired(t *testing.T) {
	raw := signedToken(t, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	info, err := Inspect(raw)
	require.NoError(t, err)
	assert.True(t, info.Expired())
}

func TestInspectGarbage(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.Error(t, err)
}

func TestInspectNoExpiry(t *testing.T) {
	raw := signedToken(t, jwt.RegisteredClaims{Subject: "user-42"})

	info, err := Inspect(raw)
	require.NoError(t, err)
	assert.False(t, info.Expired())
}
