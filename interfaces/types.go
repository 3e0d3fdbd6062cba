package interfaces

import (
	"errors"
	"fmt"
	"regexp"
)

// resourceNameRegex matches identity-service resource names: non-empty,
// starting with a letter or digit, limited to a conservative character set
// accepted by every identity backend we target.
var resourceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._@-]{0,63}$`)

// ResourceName is the name of an identity-service resource (project, role,
// user or service). Names are the identity of projects and roles: lookups and
// create-or-reuse resolution key on them.
type ResourceName string

// NewResourceName validates and returns a resource name.
func NewResourceName(name string) (ResourceName, error) {
	if !resourceNameRegex.MatchString(name) {
		return "", fmt.Errorf("invalid resource name %q", name)
	}
	return ResourceName(name), nil
}

// String returns the name as a plain string.
func (n ResourceName) String() string {
	return string(n)
}

// Validate checks the name against the accepted format.
func (n ResourceName) Validate() error {
	_, err := NewResourceName(string(n))
	return err
}

// Project is an isolation boundary in the identity service under which users
// and resources are scoped. Identity = name; the id is assigned by the
// service on creation.
type Project struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Role is a named permission level assignable to a user within a project.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is an identity-service account scoped to a project.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ProjectID string `json:"project_id"`
}

// RoleAssignment is the grant binding a user to a role within a project.
// All three referenced resources must exist before the grant is issued.
type RoleAssignment struct {
	UserID    string `json:"user_id"`
	RoleID    string `json:"role_id"`
	ProjectID string `json:"project_id"`
}

// ServiceRecord registers a provisioned service in the identity service's
// catalog.
type ServiceRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Endpoint advertises where a catalogued service can be reached. It is bound
// 1:1 to a ServiceRecord.
type Endpoint struct {
	ID          string `json:"id"`
	Region      string `json:"region"`
	ServiceID   string `json:"service_id"`
	PublicURL   string `json:"public_url"`
	InternalURL string `json:"internal_url"`
}

// UserParams carries the attributes for user creation.
type UserParams struct {
	Name      string
	Password  string
	Email     string
	ProjectID string
}

// Validate checks that the mandatory user attributes are present.
func (p UserParams) Validate() error {
	if err := ResourceName(p.Name).Validate(); err != nil {
		return err
	}
	if p.Password == "" {
		return errors.New("user password is required")
	}
	if p.ProjectID == "" {
		return errors.New("user project id is required")
	}
	return nil
}

// EndpointParams carries the attributes for endpoint creation.
type EndpointParams struct {
	Region      string
	ServiceID   string
	PublicURL   string
	InternalURL string
}
