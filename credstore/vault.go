package credstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// VaultStore persists credentials in a HashiCorp Vault KV v2 secrets engine,
// one secret per user under <mount>/data/<path>/users/<name>.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a token-authenticated Vault credential store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault token with write access to the mount
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: path within the mount (e.g. "keymanager")
//   - log: structured logger
func NewVaultStore(address, token, mountPath, dataPath string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(token)

	mountPath = strings.Trim(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", config.Address, mountPath, dataPath),
	}, nil
}

// Store implements interfaces.CredentialStore.
func (s *VaultStore) Store(ctx context.Context, cred interfaces.Credential) error {
	if cred.UserName == "" {
		return fmt.Errorf("credential has no user name")
	}

	payload, err := credentialFields(cred)
	if err != nil {
		return err
	}

	path := s.secretPath(cred.UserName)
	_, err = s.client.Logical().WriteWithContext(ctx, path, map[string]interface{}{
		"data": payload,
	})
	if err != nil {
		return fmt.Errorf("failed to write credential to vault: %w", err)
	}

	s.log.Debug("Stored credential", slog.String("user", cred.UserName), slog.String("path", path))
	return nil
}

// Fetch implements interfaces.CredentialStore.
func (s *VaultStore) Fetch(ctx context.Context, userName string) (*interfaces.Credential, error) {
	path := s.secretPath(userName)
	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, interfaces.ErrCredentialNotFound
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, interfaces.ErrCredentialNotFound
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode vault secret: %w", err)
	}
	var cred interfaces.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential for %s: %w", userName, err)
	}
	return &cred, nil
}

// LocationURI implements interfaces.CredentialStore.
func (s *VaultStore) LocationURI() string {
	return s.locationURI
}

func (s *VaultStore) secretPath(userName string) string {
	// KV v2 read/write path structure.
	return fmt.Sprintf("%s/data/%s/users/%s", s.mountPath, s.dataPath, userName)
}

func credentialFields(cred interfaces.Credential) (map[string]interface{}, error) {
	raw, err := json.Marshal(cred)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}
	return fields, nil
}
