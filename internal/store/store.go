// Package store persists the single credential record of this installation
// as a pretty-printed JSON file restricted to the owning user. Persistence
// failures are reported as boolean results plus a log diagnostic, never as
// panics: a storage hiccup must not crash an otherwise successful
// authorization.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/claude-relay/crs-cli/internal/proxy"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// AuthFileName is the credential file name under the data directory.
const AuthFileName = "auth.json"

// CredentialRecord is the persisted outcome of an authorization round-trip:
// tokens, the profile summary, the PKCE verifier retained for refresh, and
// the proxy the flow was routed through.
type CredentialRecord struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    int64       `json:"expiresAtEpochMillis"`
	Email        string      `json:"email"`
	CodeVerifier string      `json:"codeVerifier"`
	Proxy        *proxy.Spec `json:"proxy,omitempty"`
	Scopes       []string    `json:"scopes,omitempty"`
	AccountType  string      `json:"accountType,omitempty"`
}

// Store reads and writes the credential record under a data directory.
// Single-process, non-concurrent access is assumed; writes are atomic
// replace-on-write so a crash never leaves a truncated file.
type Store struct {
	dataDir string
}

// New creates a store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path returns the full path of the credential file.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, AuthFileName)
}

// Load reads the stored credential record. It returns nil when the file is
// absent, and nil with a log diagnostic when the content cannot be parsed.
func (s *Store) Load() *CredentialRecord {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("failed to read auth file: %v", err)
		}
		return nil
	}
	var record CredentialRecord
	if err = json.Unmarshal(data, &record); err != nil {
		log.Warnf("failed to parse auth file %s: %v", s.Path(), err)
		return nil
	}
	return &record
}

// Save writes the record as indented JSON, creating the data directory if
// needed and restricting the file to owner read/write. It reports false on
// any I/O failure instead of raising.
func (s *Store) Save(record *CredentialRecord) bool {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Errorf("failed to encode auth record: %v", err)
		return false
	}
	if err = s.writeAuthFile(data); err != nil {
		log.Errorf("failed to save auth file: %v", err)
		return false
	}
	return true
}

// Exists reports whether a record loads successfully and carries a
// non-empty access token.
func (s *Store) Exists() bool {
	record := s.Load()
	return record != nil && record.AccessToken != ""
}

// Clear deletes the credential file. An already absent file counts as
// success.
func (s *Store) Clear() bool {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		log.Errorf("failed to clear auth file: %v", err)
		return false
	}
	return true
}

// UpdateTokens overwrites only the three token fields of the stored record,
// leaving every other field untouched. The raw file bytes are patched in
// place so fields this version does not know about survive as well. Returns
// false when no record exists.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt int64) bool {
	if s.Load() == nil {
		log.Error("no stored credentials, cannot update tokens")
		return false
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		log.Errorf("failed to read auth file: %v", err)
		return false
	}
	for _, patch := range []struct {
		path  string
		value any
	}{
		{"accessToken", accessToken},
		{"refreshToken", refreshToken},
		{"expiresAtEpochMillis", expiresAt},
	} {
		if data, err = sjson.SetBytes(data, patch.path, patch.value); err != nil {
			log.Errorf("failed to update %s: %v", patch.path, err)
			return false
		}
	}
	if err = s.writeAuthFile(data); err != nil {
		log.Errorf("failed to save auth file: %v", err)
		return false
	}
	return true
}

// writeAuthFile writes data to a temp file in the data directory and
// renames it over the credential file, with owner-only permissions.
func (s *Store) writeAuthFile(data []byte) error {
	if err := os.MkdirAll(s.dataDir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dataDir, ".auth-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err = os.Rename(tmpPath, s.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
