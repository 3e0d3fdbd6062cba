package interfaces

import (
	"context"
	"errors"
)

// Standard errors returned by IdentityClient implementations. Client errors
// are mapped onto these sentinels so callers can distinguish a lookup miss
// from a transport failure, and a name conflict from any other creation error.
var (
	// ErrNotFound indicates a by-name lookup found no resource.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates the backend rejected a creation because a
	// resource with the same name already exists.
	ErrAlreadyExists = errors.New("resource already exists")
)

// IdentityClient is the typed contract with the identity service. The exact
// wire format is the implementation's concern.
//
// Calls are synchronous; a timeout surfaces as an error on the call and is
// treated by callers as a step failure, never retried here. Implementations
// must be safe for use from a single goroutine at a time; provisioning runs
// against the same identity store must be serialized by the caller.
type IdentityClient interface {
	// GetProjectByName looks up a project by name. Returns ErrNotFound when
	// no project with that name exists.
	GetProjectByName(ctx context.Context, name string) (*Project, error)

	// CreateProject creates a project with the given name. Returns
	// ErrAlreadyExists on a name conflict raised by the backend.
	CreateProject(ctx context.Context, name string) (*Project, error)

	// GetRoleByName looks up a role by name. Returns ErrNotFound when no
	// role with that name exists.
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// CreateRole creates a role with the given name.
	CreateRole(ctx context.Context, name string) (*Role, error)

	// GetUserByName looks up a user by name. Returns ErrNotFound when no
	// user with that name exists. Used by the skip-existing conflict policy;
	// the default workflow never de-duplicates users.
	GetUserByName(ctx context.Context, name string) (*User, error)

	// CreateUser creates a user scoped to params.ProjectID. Returns
	// ErrAlreadyExists when the backend enforces unique user names and the
	// name is taken.
	CreateUser(ctx context.Context, params UserParams) (*User, error)

	// AddRoleAssignment grants roleID to userID within projectID. The
	// operation is idempotent on the identity service side; re-granting an
	// existing assignment returns ErrAlreadyExists or succeeds depending on
	// the backend.
	AddRoleAssignment(ctx context.Context, userID, roleID, projectID string) error

	// CreateService registers a service record in the catalog.
	CreateService(ctx context.Context, name, serviceType, description string) (*ServiceRecord, error)

	// CreateEndpoint registers an endpoint for an existing service record.
	CreateEndpoint(ctx context.Context, params EndpointParams) (*Endpoint, error)
}
