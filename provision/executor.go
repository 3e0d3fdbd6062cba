package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// Executor walks a plan against an identity store, strictly sequentially,
// and records a per-resource outcome. A failed resource never aborts the run
// and nothing created earlier is rolled back; roles and projects are resolved
// create-or-reuse so a rerun never duplicates them.
type Executor struct {
	client   interfaces.IdentityClient
	log      *slog.Logger
	creds    interfaces.CredentialStore
	conflict ConflictPolicy
}

// ExecutorOption configures optional executor behavior.
type ExecutorOption func(*Executor)

// WithCredentialStore persists the credentials of every created user to the
// given store. Store failures are logged, not recorded in the report: the
// user exists in the identity store either way.
func WithCredentialStore(store interfaces.CredentialStore) ExecutorOption {
	return func(e *Executor) { e.creds = store }
}

// WithConflictPolicy overrides the default ConflictFail behavior on user
// name conflicts.
func WithConflictPolicy(policy ConflictPolicy) ExecutorOption {
	return func(e *Executor) { e.conflict = policy }
}

// NewExecutor builds an executor around an identity client.
func NewExecutor(client interfaces.IdentityClient, log *slog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:   client,
		log:      log,
		conflict: ConflictFail,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the plan. The returned report covers every planned resource,
// including the ones that failed.
func (e *Executor) Execute(ctx context.Context, plan *Plan) *Report {
	report := &Report{StartedAt: time.Now().UTC()}
	defer func() { report.FinishedAt = time.Now().UTC() }()

	resolver := NewResolver(e.client, e.log)

	// The admin tenant is a prerequisite of the service account, not a
	// planned resource: its resolution failure surfaces on the account
	// entries that depend on it, and the run continues.
	projectIDs := make(map[string]string)
	adminID, adminErr := resolver.LookupProject(ctx, plan.AdminTenant)
	if adminErr != nil {
		e.log.Error("admin tenant resolution failed", "tenant", plan.AdminTenant, "err", adminErr)
	} else {
		projectIDs[plan.AdminTenant] = adminID
	}

	roleIDs := make(map[string]string)
	for _, role := range plan.Roles {
		e.executeRole(ctx, resolver, role, roleIDs, report)
	}
	for _, project := range plan.Projects {
		e.executeProject(ctx, resolver, project, projectIDs, report)
	}

	for _, acct := range plan.Accounts {
		e.executeAccount(ctx, acct, roleIDs, projectIDs, report)
	}

	e.executeCatalog(ctx, plan, report)

	e.log.Info("provisioning run finished", "summary", report.Summary())
	return report
}

func (e *Executor) executeRole(ctx context.Context, resolver *Resolver, role RoleSpec, roleIDs map[string]string, report *Report) {
	if role.AssumeExisting {
		id, err := resolver.LookupRole(ctx, role.Name)
		if err != nil {
			report.failed(KindRole, role.Name, err)
			return
		}
		roleIDs[role.Name] = id
		report.reused(KindRole, role.Name, id)
		return
	}

	id, outcome, err := resolver.ResolveRole(ctx, role.Name)
	if err != nil {
		report.failed(KindRole, role.Name, err)
		return
	}
	roleIDs[role.Name] = id
	if outcome == OutcomeCreated {
		report.created(KindRole, role.Name, id)
	} else {
		report.reused(KindRole, role.Name, id)
	}
}

func (e *Executor) executeProject(ctx context.Context, resolver *Resolver, project ProjectSpec, projectIDs map[string]string, report *Report) {
	id, outcome, err := resolver.ResolveProject(ctx, project.Name)
	if err != nil {
		report.failed(KindProject, project.Name, err)
		return
	}
	projectIDs[project.Name] = id
	if outcome == OutcomeCreated {
		report.created(KindProject, project.Name, id)
	} else {
		report.reused(KindProject, project.Name, id)
	}
}

func (e *Executor) executeAccount(ctx context.Context, acct AccountSpec, roleIDs, projectIDs map[string]string, report *Report) {
	assignmentName := fmt.Sprintf("%s:%s@%s", acct.User.Name, acct.Role, acct.Project)

	projectID, projectOK := projectIDs[acct.Project]
	roleID, roleOK := roleIDs[acct.Role]

	if !projectOK {
		err := fmt.Errorf("project %q was not resolved", acct.Project)
		report.failed(KindUser, acct.User.Name, err)
		report.failed(KindAssignment, assignmentName, fmt.Errorf("%w: %w", ErrAssignmentFailed, err))
		return
	}

	userID, userStatus, err := e.ensureUser(ctx, acct, projectID)
	if err != nil {
		report.failed(KindUser, acct.User.Name, err)
		report.failed(KindAssignment, assignmentName, fmt.Errorf("%w: user %q was not resolved", ErrAssignmentFailed, acct.User.Name))
		return
	}
	report.add(Entry{Kind: KindUser, Name: acct.User.Name, Status: userStatus, ID: userID})

	if !roleOK {
		report.failed(KindAssignment, assignmentName, fmt.Errorf("%w: role %q was not resolved", ErrAssignmentFailed, acct.Role))
		return
	}

	err = e.client.AddRoleAssignment(ctx, userID, roleID, projectID)
	switch {
	case err == nil:
		report.created(KindAssignment, assignmentName, "")
	case errors.Is(err, interfaces.ErrAlreadyExists):
		report.reused(KindAssignment, assignmentName, "")
	default:
		report.failed(KindAssignment, assignmentName, fmt.Errorf("%w: %w", ErrAssignmentFailed, err))
	}
}

func (e *Executor) ensureUser(ctx context.Context, acct AccountSpec, projectID string) (string, EntryStatus, error) {
	spec := acct.User
	params := interfaces.UserParams{
		Name:      spec.Name,
		Password:  spec.Password,
		Email:     spec.Email,
		ProjectID: projectID,
	}
	user, err := e.client.CreateUser(ctx, params)
	if err == nil {
		e.log.Info("created user", "user", spec.Name, "id", user.ID)
		e.storeCredential(ctx, acct, user.ID)
		return user.ID, StatusCreated, nil
	}
	if !errors.Is(err, interfaces.ErrAlreadyExists) {
		return "", "", fmt.Errorf("%w: user %q: %w", ErrCreateFailed, spec.Name, err)
	}

	if e.conflict == ConflictFail {
		return "", "", fmt.Errorf("%w: user %q: %w", ErrCreateFailed, spec.Name, err)
	}

	existing, lookupErr := e.client.GetUserByName(ctx, spec.Name)
	if lookupErr != nil {
		return "", "", fmt.Errorf("%w: user %q: %w", ErrLookupFailed, spec.Name, lookupErr)
	}
	e.log.Info("reusing existing user", "user", spec.Name, "id", existing.ID)
	return existing.ID, StatusReused, nil
}

func (e *Executor) storeCredential(ctx context.Context, acct AccountSpec, userID string) {
	if e.creds == nil {
		return
	}
	cred := interfaces.Credential{
		UserName:    acct.User.Name,
		UserID:      userID,
		Password:    acct.User.Password,
		Email:       acct.User.Email,
		ProjectName: acct.Project,
	}
	if err := e.creds.Store(ctx, cred); err != nil {
		e.log.Error("failed to persist user credential", "user", acct.User.Name, "store", e.creds.LocationURI(), "err", err)
	}
}

func (e *Executor) executeCatalog(ctx context.Context, plan *Plan, report *Report) {
	svc, err := e.client.CreateService(ctx, plan.Service.Name, plan.Service.Type, plan.Service.Description)
	if err != nil {
		report.failed(KindService, plan.Service.Name, err)
		if plan.Endpoint != nil {
			report.failed(KindEndpoint, plan.Endpoint.PublicURL, fmt.Errorf("service %q was not registered", plan.Service.Name))
		}
		return
	}
	report.created(KindService, plan.Service.Name, svc.ID)

	if plan.Endpoint == nil {
		e.log.Debug("catalog backend does not persist endpoints, skipping endpoint registration")
		return
	}

	ep, err := e.client.CreateEndpoint(ctx, interfaces.EndpointParams{
		Region:      plan.Endpoint.Region,
		ServiceID:   svc.ID,
		PublicURL:   plan.Endpoint.PublicURL,
		InternalURL: plan.Endpoint.InternalURL,
	})
	if err != nil {
		report.failed(KindEndpoint, plan.Endpoint.PublicURL, err)
		return
	}
	report.created(KindEndpoint, plan.Endpoint.PublicURL, ep.ID)
}
