package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// Stub implements interfaces.IdentityClient against in-process maps. It is
// used by tests and by the plan dry-run path; it behaves like a fresh
// identity store seeded with the pre-existing admin role.
//
// Failure injection: setting an error in FailProjectCreate, FailRoleCreate,
// FailUserCreate or FailAssignment makes the corresponding call for that
// resource name fail with the given error. LookupErr makes every by-name
// lookup fail, simulating a transport or auth failure on the listing call.
type Stub struct {
	mu sync.Mutex

	projects map[string]*interfaces.Project
	roles    map[string]*interfaces.Role
	users    map[string]*interfaces.User

	// Assignments holds every grant issued, in call order.
	Assignments []interfaces.RoleAssignment

	services  map[string]*interfaces.ServiceRecord
	endpoints []*interfaces.Endpoint

	nextID int

	FailProjectCreate map[string]error
	FailRoleCreate    map[string]error
	FailUserCreate    map[string]error
	FailAssignment    map[string]error // keyed by user name
	FailService       error
	FailEndpoint      error
	LookupErr         error

	createCalls map[string]int
}

// NewStub creates an empty in-memory identity store seeded with the admin
// role, which real deployments bootstrap before the key-manager is
// provisioned.
func NewStub() *Stub {
	s := &Stub{
		projects:          make(map[string]*interfaces.Project),
		roles:             make(map[string]*interfaces.Role),
		users:             make(map[string]*interfaces.User),
		services:          make(map[string]*interfaces.ServiceRecord),
		FailProjectCreate: make(map[string]error),
		FailRoleCreate:    make(map[string]error),
		FailUserCreate:    make(map[string]error),
		FailAssignment:    make(map[string]error),
		createCalls:       make(map[string]int),
	}
	s.roles["admin"] = &interfaces.Role{ID: s.newID("role"), Name: "admin"}
	return s
}

// DeleteRole removes a role, e.g. to simulate a store missing the admin role.
func (s *Stub) DeleteRole(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, name)
}

// CreateCalls reports how many create calls were issued for the given
// resource name across all kinds.
func (s *Stub) CreateCalls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls[name]
}

// Users returns a snapshot of all users by name.
func (s *Stub) Users() map[string]*interfaces.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*interfaces.User, len(s.users))
	for k, v := range s.users {
		u := *v
		out[k] = &u
	}
	return out
}

// Endpoints returns all registered endpoints.
func (s *Stub) Endpoints() []*interfaces.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*interfaces.Endpoint(nil), s.endpoints...)
}

// GetProjectByName implements interfaces.IdentityClient.
func (s *Stub) GetProjectByName(_ context.Context, name string) (*interfaces.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LookupErr != nil {
		return nil, s.LookupErr
	}
	project, ok := s.projects[name]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return project, nil
}

// CreateProject implements interfaces.IdentityClient.
func (s *Stub) CreateProject(_ context.Context, name string) (*interfaces.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls[name]++
	if err := s.FailProjectCreate[name]; err != nil {
		return nil, err
	}
	if _, ok := s.projects[name]; ok {
		return nil, interfaces.ErrAlreadyExists
	}
	project := &interfaces.Project{ID: s.newID("project"), Name: name, Enabled: true}
	s.projects[name] = project
	return project, nil
}

// GetRoleByName implements interfaces.IdentityClient.
func (s *Stub) GetRoleByName(_ context.Context, name string) (*interfaces.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LookupErr != nil {
		return nil, s.LookupErr
	}
	role, ok := s.roles[name]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return role, nil
}

// CreateRole implements interfaces.IdentityClient.
func (s *Stub) CreateRole(_ context.Context, name string) (*interfaces.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls[name]++
	if err := s.FailRoleCreate[name]; err != nil {
		return nil, err
	}
	if _, ok := s.roles[name]; ok {
		return nil, interfaces.ErrAlreadyExists
	}
	role := &interfaces.Role{ID: s.newID("role"), Name: name}
	s.roles[name] = role
	return role, nil
}

// GetUserByName implements interfaces.IdentityClient.
func (s *Stub) GetUserByName(_ context.Context, name string) (*interfaces.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LookupErr != nil {
		return nil, s.LookupErr
	}
	user, ok := s.users[name]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return user, nil
}

// CreateUser implements interfaces.IdentityClient.
func (s *Stub) CreateUser(_ context.Context, params interfaces.UserParams) (*interfaces.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls[params.Name]++
	if err := s.FailUserCreate[params.Name]; err != nil {
		return nil, err
	}
	if _, ok := s.users[params.Name]; ok {
		return nil, interfaces.ErrAlreadyExists
	}
	user := &interfaces.User{
		ID:        s.newID("user"),
		Name:      params.Name,
		Email:     params.Email,
		ProjectID: params.ProjectID,
	}
	s.users[params.Name] = user
	return user, nil
}

// AddRoleAssignment implements interfaces.IdentityClient.
func (s *Stub) AddRoleAssignment(_ context.Context, userID, roleID, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, user := range s.users {
		if user.ID == userID {
			if err := s.FailAssignment[name]; err != nil {
				return err
			}
		}
	}
	for _, a := range s.Assignments {
		if a.UserID == userID && a.RoleID == roleID && a.ProjectID == projectID {
			return interfaces.ErrAlreadyExists
		}
	}
	s.Assignments = append(s.Assignments, interfaces.RoleAssignment{
		UserID:    userID,
		RoleID:    roleID,
		ProjectID: projectID,
	})
	return nil
}

// CreateService implements interfaces.IdentityClient.
func (s *Stub) CreateService(_ context.Context, name, serviceType, description string) (*interfaces.ServiceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls[name]++
	if s.FailService != nil {
		return nil, s.FailService
	}
	if _, ok := s.services[name]; ok {
		return nil, interfaces.ErrAlreadyExists
	}
	service := &interfaces.ServiceRecord{
		ID:          s.newID("service"),
		Name:        name,
		Type:        serviceType,
		Description: description,
	}
	s.services[name] = service
	return service, nil
}

// CreateEndpoint implements interfaces.IdentityClient.
func (s *Stub) CreateEndpoint(_ context.Context, params interfaces.EndpointParams) (*interfaces.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailEndpoint != nil {
		return nil, s.FailEndpoint
	}
	endpoint := &interfaces.Endpoint{
		ID:          s.newID("endpoint"),
		Region:      params.Region,
		ServiceID:   params.ServiceID,
		PublicURL:   params.PublicURL,
		InternalURL: params.InternalURL,
	}
	s.endpoints = append(s.endpoints, endpoint)
	return endpoint, nil
}

func (s *Stub) newID(kind string) string {
	s.nextID++
	return fmt.Sprintf("%s-%04d", kind, s.nextID)
}
