package credstore

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// Factory creates credential stores from location URI strings.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a factory instance that can create credential stores.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{log: log}
}

// StoreFor creates a credential store from a location URI.
// The URI format is [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem, one JSON file per user
//   - vault:// - HashiCorp Vault KV v2 secrets engine
//   - s3:// - Amazon S3 or compatible object storage
//
// Returns interfaces.ErrInvalidLocationURI when the URI cannot be parsed and
// an error for unsupported schemes.
func (f *Factory) StoreFor(locationURI string) (interfaces.CredentialStore, error) {
	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return f.createFileStore(u)
	case "vault":
		return f.createVaultStore(u)
	case "s3":
		return f.createS3Store(u)
	default:
		return nil, fmt.Errorf("%w: unsupported credential store scheme: %s", interfaces.ErrInvalidLocationURI, u.Scheme)
	}
}

// createFileStore creates a filesystem credential store.
// URI format: file:///var/lib/keymanager/credentials
func (f *Factory) createFileStore(u *url.URL) (interfaces.CredentialStore, error) {
	f.log.Debug("Creating file credential store", slog.String("uri", u.String()))

	dir := u.Path
	if u.Host != "" {
		// file://./relative/path keeps the host as the first path element.
		dir = u.Host + u.Path
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: file store requires a directory path", interfaces.ErrInvalidLocationURI)
	}

	return NewFileStore(dir, f.log)
}

// createVaultStore creates a Vault-backed credential store.
// URI format: vault://TOKEN@vault.example.com:8200/secret/keymanager?tls=disabled
// The first path element is the KV v2 mount, the rest is the data path.
func (f *Factory) createVaultStore(u *url.URL) (interfaces.CredentialStore, error) {
	f.log.Debug("Creating vault credential store", slog.String("host", u.Host))

	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("%w: vault store requires a token in the user part", interfaces.ErrInvalidLocationURI)
	}
	token := u.User.Username()

	scheme := "https"
	if u.Query().Get("tls") == "disabled" {
		scheme = "http"
	}
	address := fmt.Sprintf("%s://%s", scheme, u.Host)

	mountPath, dataPath, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if mountPath == "" {
		mountPath = "secret"
	}
	if dataPath == "" {
		dataPath = "keymanager"
	}

	return NewVaultStore(address, token, mountPath, dataPath, f.log)
}

// createS3Store creates an S3 credential store.
// URI format: s3://ACCESS_KEY:SECRET_KEY@bucket/prefix?region=us-west-2&endpoint=minio.local
func (f *Factory) createS3Store(u *url.URL) (interfaces.CredentialStore, error) {
	f.log.Debug("Creating s3 credential store", slog.String("bucket", u.Host))

	bucket := u.Host
	if bucket == "" {
		return nil, fmt.Errorf("%w: s3 store requires a bucket name", interfaces.ErrInvalidLocationURI)
	}
	prefix := strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := query.Get("endpoint")

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewS3Store(bucket, prefix, region, endpoint, accessKey, secretKey, f.log)
}
