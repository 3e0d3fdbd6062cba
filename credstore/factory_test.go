package credstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

func TestFactoryFileStore(t *testing.T) {
	factory := NewFactory(testLogger())

	store, err := factory.StoreFor(fmt.Sprintf("file://%s", t.TempDir()))
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)
}

func TestFactoryVaultStore(t *testing.T) {
	factory := NewFactory(testLogger())

	store, err := factory.StoreFor("vault://s.token123@vault.internal:8200/secret/keymanager")
	require.NoError(t, err)
	require.IsType(t, &VaultStore{}, store)
	require.Contains(t, store.LocationURI(), "vault://https://vault.internal:8200")
}

func TestFactoryVaultStoreRequiresToken(t *testing.T) {
	factory := NewFactory(testLogger())

	_, err := factory.StoreFor("vault://vault.internal:8200/secret/keymanager")
	require.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}

func TestFactoryS3Store(t *testing.T) {
	factory := NewFactory(testLogger())

	store, err := factory.StoreFor("s3://AKID:SECRET@creds-bucket/keymanager?region=eu-west-1")
	require.NoError(t, err)
	require.IsType(t, &S3Store{}, store)
	require.Contains(t, store.LocationURI(), "s3://creds-bucket/keymanager")
	require.Contains(t, store.LocationURI(), "region=eu-west-1")
}

func TestFactoryUnsupportedScheme(t *testing.T) {
	factory := NewFactory(testLogger())

	_, err := factory.StoreFor("redis://localhost:6379")
	require.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}
