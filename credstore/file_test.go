package credstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCredential() interfaces.Credential {
	return interfaces.Credential{
		UserName:    "project_a_creator",
		UserID:      "user-0003",
		Password:    "s3cret",
		Email:       "project_a_creator@example.com",
		ProjectName: "project_a",
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	cred := testCredential()
	require.NoError(t, store.Store(context.Background(), cred))

	got, err := store.Fetch(context.Background(), cred.UserName)
	require.NoError(t, err)
	require.Equal(t, &cred, got)
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	require.NoError(t, err)

	cred := testCredential()
	require.NoError(t, store.Store(context.Background(), cred))

	info, err := os.Stat(filepath.Join(dir, cred.UserName+".json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreNotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), "nobody")
	require.ErrorIs(t, err, interfaces.ErrCredentialNotFound)
}

func TestFileStoreRejectsEmptyUserName(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	require.Error(t, store.Store(context.Background(), interfaces.Credential{}))
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "credentials")
	_, err := NewFileStore(dir, testLogger())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
