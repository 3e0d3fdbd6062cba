package interfaces

import (
	"context"
	"errors"
)

// Credential store errors.
var (
	// ErrCredentialNotFound indicates the store holds no credential for the
	// requested user.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrInvalidLocationURI indicates a credential store location URI could
	// not be parsed or uses an unsupported scheme.
	ErrInvalidLocationURI = errors.New("invalid credential store location URI")
)

// Credential is the record persisted for a provisioned user so operators can
// retrieve generated passwords after a run.
type Credential struct {
	UserName    string `json:"user_name"`
	UserID      string `json:"user_id"`
	Password    string `json:"password"`
	Email       string `json:"email,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// CredentialStore persists credentials of provisioned users. Implementations
// are selected by location URI scheme (file://, vault://, s3://).
type CredentialStore interface {
	// Store persists a credential, overwriting any previous record for the
	// same user name.
	Store(ctx context.Context, cred Credential) error

	// Fetch retrieves a previously stored credential by user name. Returns
	// ErrCredentialNotFound when absent.
	Fetch(ctx context.Context, userName string) (*Credential, error)

	// LocationURI returns the canonical URI of this store for logging.
	LocationURI() string
}
