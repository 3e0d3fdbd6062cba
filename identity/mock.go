package identity

import (
	"context"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockClient mocks the interfaces.IdentityClient interface.
type MockClient struct {
	mock.Mock
}

// GetProjectByName mocks the GetProjectByName method.
func (m *MockClient) GetProjectByName(ctx context.Context, name string) (*interfaces.Project, error) {
	args := m.Called(ctx, name)
	project, _ := args.Get(0).(*interfaces.Project)
	return project, args.Error(1)
}

// CreateProject mocks the CreateProject method.
func (m *MockClient) CreateProject(ctx context.Context, name string) (*interfaces.Project, error) {
	args := m.Called(ctx, name)
	project, _ := args.Get(0).(*interfaces.Project)
	return project, args.Error(1)
}

// GetRoleByName mocks the GetRoleByName method.
func (m *MockClient) GetRoleByName(ctx context.Context, name string) (*interfaces.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*interfaces.Role)
	return role, args.Error(1)
}

// CreateRole mocks the CreateRole method.
func (m *MockClient) CreateRole(ctx context.Context, name string) (*interfaces.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(*interfaces.Role)
	return role, args.Error(1)
}

// GetUserByName mocks the GetUserByName method.
func (m *MockClient) GetUserByName(ctx context.Context, name string) (*interfaces.User, error) {
	args := m.Called(ctx, name)
	user, _ := args.Get(0).(*interfaces.User)
	return user, args.Error(1)
}

// CreateUser mocks the CreateUser method.
func (m *MockClient) CreateUser(ctx context.Context, params interfaces.UserParams) (*interfaces.User, error) {
	args := m.Called(ctx, params)
	user, _ := args.Get(0).(*interfaces.User)
	return user, args.Error(1)
}

// AddRoleAssignment mocks the AddRoleAssignment method.
func (m *MockClient) AddRoleAssignment(ctx context.Context, userID, roleID, projectID string) error {
	args := m.Called(ctx, userID, roleID, projectID)
	return args.Error(0)
}

// CreateService mocks the CreateService method.
func (m *MockClient) CreateService(ctx context.Context, name, serviceType, description string) (*interfaces.ServiceRecord, error) {
	args := m.Called(ctx, name, serviceType, description)
	service, _ := args.Get(0).(*interfaces.ServiceRecord)
	return service, args.Error(1)
}

// CreateEndpoint mocks the CreateEndpoint method.
func (m *MockClient) CreateEndpoint(ctx context.Context, params interfaces.EndpointParams) (*interfaces.Endpoint, error) {
	args := m.Called(ctx, params)
	endpoint, _ := args.Get(0).(*interfaces.Endpoint)
	return endpoint, args.Error(1)
}
