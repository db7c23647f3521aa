// Package credential persists the bearer token between console sessions.
//
// The session store is the only writer; everything else reads through it.
package credential

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opsdeck/opsdeck/internal/errors"
)

const authFileName = "auth.json"

// Store is the persisted key-value collaborator for the credential.
type Store interface {
	// Get returns the stored token, or an empty string if none exists.
	Get() (string, error)

	// Set persists the token, replacing any previous one.
	Set(token string) error

	// Remove deletes the stored token. Removing a missing token is not an error.
	Remove() error
}

// FileStore stores the credential as JSON under a dot directory
// (by default ~/.opsdeck/auth.json) with owner-only permissions.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
// If dir is empty, the user's home directory is used.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".opsdeck")
	}
	return &FileStore{dir: dir}
}

type authFile struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Get returns the stored token, or an empty string if none exists.
func (s *FileStore) Get() (string, error) {
	path := filepath.Join(s.dir, authFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewCredentialReadError(path, err)
	}

	var auth authFile
	if err := json.Unmarshal(data, &auth); err != nil {
		return "", errors.NewCredentialReadError(path, err)
	}

	return auth.Token, nil
}

// Set persists the token, replacing any previous one.
func (s *FileStore) Set(token string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeCredentialWrite, "failed to create credential directory", err)
	}

	data, err := json.MarshalIndent(authFile{Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeCredentialWrite, "failed to encode credentials", err)
	}

	path := filepath.Join(s.dir, authFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeCredentialWrite, "failed to write credentials", err)
	}

	return nil
}

// Remove deletes the stored token.
func (s *FileStore) Remove() error {
	path := filepath.Join(s.dir, authFileName)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeCredentialWrite, "failed to remove credentials", err)
	}

	return nil
}

// TokenInfo is the locally-readable portion of a bearer token.
// The signature is NOT verified; verification is the server's job.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an exp claim in the past.
// Tokens without an exp claim never report expired.
func (i TokenInfo) Expired() bool {
	return !i.ExpiresAt.IsZero() && time.Now().After(i.ExpiresAt)
}

// Inspect decodes the token claims without verifying the signature,
// for display purposes such as 'opsdeck auth status'.
func Inspect(token string) (TokenInfo, error) {
	var claims jwt.RegisteredClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, errors.Wrap(errors.ErrCodeTokenInvalid, "failed to decode token", err)
	}

	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}

	return info, nil
}
