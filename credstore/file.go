package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// FileStore persists credentials as one JSON file per user in a directory.
// Files are written with mode 0600 since they carry plaintext passwords.
type FileStore struct {
	dir         string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	return &FileStore{
		dir:         dir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", dir),
	}, nil
}

// Store implements interfaces.CredentialStore.
func (s *FileStore) Store(_ context.Context, cred interfaces.Credential) error {
	if cred.UserName == "" {
		return fmt.Errorf("credential has no user name")
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	path := s.pathFor(cred.UserName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	s.log.Debug("Stored credential", slog.String("user", cred.UserName), slog.String("path", path))
	return nil
}

// Fetch implements interfaces.CredentialStore.
func (s *FileStore) Fetch(_ context.Context, userName string) (*interfaces.Credential, error) {
	data, err := os.ReadFile(s.pathFor(userName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, interfaces.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var cred interfaces.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential for %s: %w", userName, err)
	}
	return &cred, nil
}

// LocationURI implements interfaces.CredentialStore.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}

func (s *FileStore) pathFor(userName string) string {
	return filepath.Join(s.dir, userName+".json")
}
