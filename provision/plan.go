package provision

import (
	"fmt"

	"github.com/openstackops/keymanager-provisioning-backend/cryptoutils"
)

// Role names the key-manager RBAC policy refers to. The admin role is owned
// by the identity service itself and is only ever looked up, never created.
const (
	RoleAdmin    = "admin"
	RoleCreator  = "creator"
	RoleObserver = "observer"
	RoleAudit    = "audit"
)

// Demo projects populated with one user per key-manager role.
const (
	ProjectA = "project_a"
	ProjectB = "project_b"
)

// RoleSpec names a role the plan needs. AssumeExisting marks roles that must
// already be present in the identity store.
type RoleSpec struct {
	Name           string `json:"name"`
	AssumeExisting bool   `json:"assume_existing,omitempty"`
}

// ProjectSpec names a project to create or reuse.
type ProjectSpec struct {
	Name string `json:"name"`
}

// UserSpec carries the identity attributes of a planned user.
type UserSpec struct {
	Name     string `json:"name"`
	Password string `json:"-"`
	Email    string `json:"email"`
}

// AccountSpec binds one user to one role on one project.
type AccountSpec struct {
	User    UserSpec `json:"user"`
	Role    string   `json:"role"`
	Project string   `json:"project"`
}

// ServiceSpec describes the catalog service record.
type ServiceSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// EndpointSpec describes the catalog endpoint record.
type EndpointSpec struct {
	Region      string `json:"region"`
	PublicURL   string `json:"public_url"`
	InternalURL string `json:"internal_url"`
}

// Plan is the declarative description of everything one provisioning run
// materializes. Building a plan performs no I/O; two runs over the same
// configuration produce identical plans.
type Plan struct {
	// AdminTenant must already exist; it is resolved as a prerequisite and
	// never created.
	AdminTenant string `json:"admin_tenant"`

	Roles    []RoleSpec    `json:"roles"`
	Projects []ProjectSpec `json:"projects"`

	// Accounts are ordered: the service account first, then project users
	// grouped by project in role order.
	Accounts []AccountSpec `json:"accounts"`

	Service ServiceSpec `json:"service"`

	// Endpoint is nil when the catalog backend does not persist endpoints.
	Endpoint *EndpointSpec `json:"endpoint,omitempty"`
}

// BuildPlan expands a configuration into a full provisioning plan.
func BuildPlan(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provisioning config: %w", err)
	}

	plan := &Plan{
		AdminTenant: cfg.AdminTenant,
		Roles: []RoleSpec{
			{Name: RoleAdmin, AssumeExisting: true},
			{Name: RoleCreator},
			{Name: RoleObserver},
			{Name: RoleAudit},
		},
		Projects: []ProjectSpec{
			{Name: ProjectA},
			{Name: ProjectB},
		},
		Service: ServiceSpec{
			Name:        cfg.ServiceName,
			Type:        ServiceType,
			Description: cfg.ServiceDescription,
		},
	}

	plan.Accounts = append(plan.Accounts, AccountSpec{
		User:    cfg.userSpec(cfg.ServiceUser),
		Role:    RoleAdmin,
		Project: cfg.AdminTenant,
	})
	projectRoles := []string{RoleAdmin, RoleCreator, RoleObserver, RoleAudit}
	for _, project := range []string{ProjectA, ProjectB} {
		for _, role := range projectRoles {
			name := fmt.Sprintf("%s_%s", project, role)
			plan.Accounts = append(plan.Accounts, AccountSpec{
				User:    cfg.userSpec(name),
				Role:    role,
				Project: project,
			})
		}
	}

	if cfg.CatalogBackend == "sql" {
		plan.Endpoint = &EndpointSpec{
			Region:      cfg.Region,
			PublicURL:   cfg.PublicURL(),
			InternalURL: cfg.InternalURL(),
		}
	}

	return plan, nil
}

func (c Config) userSpec(name string) UserSpec {
	password := c.Password
	if password == "" {
		password = cryptoutils.DeriveUserPassword(c.PasswordSeed, name)
	}
	return UserSpec{
		Name:     name,
		Password: password,
		Email:    fmt.Sprintf("%s@%s", name, c.EmailDomain),
	}
}
