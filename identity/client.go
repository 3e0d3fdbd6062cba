package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// Client implements interfaces.IdentityClient against the identity service's
// v2.0-era admin API. It handles token authentication, request encoding and
// response parsing; error responses are mapped to the shared sentinels
// (404 -> ErrNotFound, 409 -> ErrAlreadyExists).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the identity admin API.
//
// Parameters:
//   - baseURL: admin API base, e.g. "http://127.0.0.1:35357"
//   - token: admin service token sent as X-Auth-Token
//   - timeout: request timeout (optional, default 30 seconds)
func NewClient(baseURL, token string, timeout ...time.Duration) *Client {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// GetProjectByName looks up a project (tenant) by name.
func (c *Client) GetProjectByName(ctx context.Context, name string) (*interfaces.Project, error) {
	path := fmt.Sprintf("/v2.0/tenants?%s", url.Values{"name": {name}}.Encode())

	var result struct {
		Tenant tenantJSON `json:"tenant"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Tenant.toProject(), nil
}

// CreateProject creates a project (tenant) with the given name.
func (c *Client) CreateProject(ctx context.Context, name string) (*interfaces.Project, error) {
	reqBody := map[string]interface{}{
		"tenant": map[string]interface{}{
			"name":    name,
			"enabled": true,
		},
	}

	var result struct {
		Tenant tenantJSON `json:"tenant"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2.0/tenants", reqBody, &result); err != nil {
		return nil, err
	}
	return result.Tenant.toProject(), nil
}

// GetRoleByName looks up a role by name.
func (c *Client) GetRoleByName(ctx context.Context, name string) (*interfaces.Role, error) {
	path := fmt.Sprintf("/v2.0/OS-KSADM/roles?%s", url.Values{"name": {name}}.Encode())

	var result struct {
		Role interfaces.Role `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Role, nil
}

// CreateRole creates a role with the given name.
func (c *Client) CreateRole(ctx context.Context, name string) (*interfaces.Role, error) {
	reqBody := map[string]interface{}{
		"role": map[string]interface{}{"name": name},
	}

	var result struct {
		Role interfaces.Role `json:"role"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2.0/OS-KSADM/roles", reqBody, &result); err != nil {
		return nil, err
	}
	return &result.Role, nil
}

// GetUserByName looks up a user by name.
func (c *Client) GetUserByName(ctx context.Context, name string) (*interfaces.User, error) {
	path := fmt.Sprintf("/v2.0/users?%s", url.Values{"name": {name}}.Encode())

	var result struct {
		User userJSON `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.User.toUser(), nil
}

// CreateUser creates a user scoped to params.ProjectID.
func (c *Client) CreateUser(ctx context.Context, params interfaces.UserParams) (*interfaces.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"user": map[string]interface{}{
			"name":     params.Name,
			"password": params.Password,
			"email":    params.Email,
			"tenantId": params.ProjectID,
			"enabled":  true,
		},
	}

	var result struct {
		User userJSON `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2.0/users", reqBody, &result); err != nil {
		return nil, err
	}
	return result.User.toUser(), nil
}

// AddRoleAssignment grants roleID to userID within projectID.
func (c *Client) AddRoleAssignment(ctx context.Context, userID, roleID, projectID string) error {
	path := fmt.Sprintf("/v2.0/tenants/%s/users/%s/roles/OS-KSADM/%s",
		url.PathEscape(projectID), url.PathEscape(userID), url.PathEscape(roleID))
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

// CreateService registers a service record in the catalog.
func (c *Client) CreateService(ctx context.Context, name, serviceType, description string) (*interfaces.ServiceRecord, error) {
	reqBody := map[string]interface{}{
		"OS-KSADM:service": map[string]interface{}{
			"name":        name,
			"type":        serviceType,
			"description": description,
		},
	}

	var result struct {
		Service interfaces.ServiceRecord `json:"OS-KSADM:service"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2.0/OS-KSADM/services", reqBody, &result); err != nil {
		return nil, err
	}
	return &result.Service, nil
}

// CreateEndpoint registers an endpoint for an existing service record.
func (c *Client) CreateEndpoint(ctx context.Context, params interfaces.EndpointParams) (*interfaces.Endpoint, error) {
	reqBody := map[string]interface{}{
		"endpoint": map[string]interface{}{
			"region":      params.Region,
			"service_id":  params.ServiceID,
			"publicurl":   params.PublicURL,
			"internalurl": params.InternalURL,
		},
	}

	var result struct {
		Endpoint endpointJSON `json:"endpoint"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2.0/endpoints", reqBody, &result); err != nil {
		return nil, err
	}
	return result.Endpoint.toEndpoint(), nil
}

// do issues one API request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		reqJSON, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return interfaces.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return interfaces.ErrAlreadyExists
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("identity request %s %s failed with code %d: %s",
			method, path, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse identity response: %w", err)
	}
	return nil
}

// tenantJSON matches the wire representation of a tenant.
type tenantJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func (t tenantJSON) toProject() *interfaces.Project {
	return &interfaces.Project{ID: t.ID, Name: t.Name, Enabled: t.Enabled}
}

// userJSON matches the wire representation of a user.
type userJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TenantID string `json:"tenantId"`
}

func (u userJSON) toUser() *interfaces.User {
	return &interfaces.User{ID: u.ID, Name: u.Name, Email: u.Email, ProjectID: u.TenantID}
}

// endpointJSON matches the wire representation of an endpoint.
type endpointJSON struct {
	ID          string `json:"id"`
	Region      string `json:"region"`
	ServiceID   string `json:"service_id"`
	PublicURL   string `json:"publicurl"`
	InternalURL string `json:"internalurl"`
}

func (e endpointJSON) toEndpoint() *interfaces.Endpoint {
	return &interfaces.Endpoint{
		ID:          e.ID,
		Region:      e.Region,
		ServiceID:   e.ServiceID,
		PublicURL:   e.PublicURL,
		InternalURL: e.InternalURL,
	}
}
