package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstackops/keymanager-provisioning-backend/identity"
	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// seededStub returns an identity store prepared the way a real deployment
// is: the admin role and the admin tenant already exist.
func seededStub(t *testing.T) *identity.Stub {
	t.Helper()
	stub := identity.NewStub()
	_, err := stub.CreateProject(context.Background(), "service")
	require.NoError(t, err)
	return stub
}

func runPlan(t *testing.T, stub *identity.Stub, cfg Config, opts ...ExecutorOption) *Report {
	t.Helper()
	report, err := Provision(context.Background(), cfg, stub, testLogger(), opts...)
	require.NoError(t, err)
	return report
}

func TestExecuteFreshDeployment(t *testing.T) {
	stub := seededStub(t)
	report := runPlan(t, stub, testConfig())

	require.True(t, report.Succeeded(), "failed entries: %v", report.Failed())
	require.Len(t, report.Entries, 26)

	require.Equal(t, 3, report.Count(KindRole, StatusCreated))
	require.Equal(t, 1, report.Count(KindRole, StatusReused), "admin role must be reused")
	require.Equal(t, 2, report.Count(KindProject, StatusCreated))
	require.Equal(t, 9, report.Count(KindUser, StatusCreated))
	require.Equal(t, 9, report.Count(KindAssignment, StatusCreated))
	require.Equal(t, 1, report.Count(KindService, StatusCreated))
	require.Equal(t, 1, report.Count(KindEndpoint, StatusCreated))

	require.Len(t, stub.Assignments, 9)
	endpoints := stub.Endpoints()
	require.Len(t, endpoints, 1)
	require.Equal(t, "http://127.0.0.1:9311", endpoints[0].PublicURL)
	require.Equal(t, "RegionOne", endpoints[0].Region)

	users := stub.Users()
	require.Contains(t, users, "barbican")
	require.Contains(t, users, "project_a_creator")
	require.Contains(t, users, "project_b_audit")
	require.Equal(t, "project_b_audit@example.com", users["project_b_audit"].Email)
}

func TestExecuteEntryOrdering(t *testing.T) {
	stub := seededStub(t)
	report := runPlan(t, stub, testConfig())

	rank := map[EntryKind]int{
		KindRole:       0,
		KindProject:    1,
		KindUser:       2,
		KindAssignment: 2, // interleaved with users per account
		KindService:    3,
		KindEndpoint:   4,
	}
	last := -1
	for _, e := range report.Entries {
		require.GreaterOrEqual(t, rank[e.Kind], last, "entry %s/%s out of order", e.Kind, e.Name)
		last = rank[e.Kind]
	}
	require.Equal(t, KindUser, report.Entries[6].Kind, "service account comes right after projects")
}

func TestExecuteUserFailureIsIsolated(t *testing.T) {
	stub := seededStub(t)
	stub.FailUserCreate["project_b_observer"] = errors.New("quota exceeded")

	report := runPlan(t, stub, testConfig())

	require.False(t, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 2)
	require.Equal(t, KindUser, failed[0].Kind)
	require.Equal(t, "project_b_observer", failed[0].Name)
	require.Equal(t, KindAssignment, failed[1].Kind)
	require.Contains(t, failed[1].Reason, "was not resolved")

	// Everything after the failure still ran.
	require.Equal(t, 8, report.Count(KindUser, StatusCreated))
	require.Equal(t, 8, report.Count(KindAssignment, StatusCreated))
	require.Equal(t, 1, report.Count(KindService, StatusCreated))
	require.Equal(t, 1, report.Count(KindEndpoint, StatusCreated))
}

func TestExecuteMissingAdminTenant(t *testing.T) {
	stub := identity.NewStub() // no "service" tenant
	report := runPlan(t, stub, testConfig())

	require.False(t, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 2)
	require.Equal(t, KindUser, failed[0].Kind)
	require.Equal(t, "barbican", failed[0].Name)
	require.Equal(t, KindAssignment, failed[1].Kind)

	// The demo projects and their users are unaffected.
	require.Equal(t, 2, report.Count(KindProject, StatusCreated))
	require.Equal(t, 8, report.Count(KindUser, StatusCreated))
	require.Equal(t, 8, report.Count(KindAssignment, StatusCreated))
}

func TestExecuteMissingAdminRole(t *testing.T) {
	stub := seededStub(t)
	stub.DeleteRole("admin")

	report := runPlan(t, stub, testConfig())

	require.False(t, report.Succeeded())
	require.Equal(t, 1, report.Count(KindRole, StatusFailed))

	// Users scoped to admin-role accounts are still created; only their
	// assignments fail.
	require.Equal(t, 9, report.Count(KindUser, StatusCreated))
	require.Equal(t, 3, report.Count(KindAssignment, StatusFailed))
	require.Equal(t, 6, report.Count(KindAssignment, StatusCreated))
}

func TestExecuteUserConflictFail(t *testing.T) {
	stub := seededStub(t)
	_, err := stub.CreateUser(context.Background(), interfaces.UserParams{
		Name: "project_a_admin", Password: "x", Email: "x@example.com", ProjectID: "p",
	})
	require.NoError(t, err)

	report := runPlan(t, stub, testConfig())

	require.False(t, report.Succeeded())
	require.Equal(t, 1, report.Count(KindUser, StatusFailed))
	require.Equal(t, 1, report.Count(KindAssignment, StatusFailed))
	require.Equal(t, 8, report.Count(KindUser, StatusCreated))
}

func TestExecuteUserConflictSkip(t *testing.T) {
	stub := seededStub(t)
	existing, err := stub.CreateUser(context.Background(), interfaces.UserParams{
		Name: "project_a_admin", Password: "x", Email: "x@example.com", ProjectID: "p",
	})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.OnUserConflict = string(ConflictSkip)
	report := runPlan(t, stub, cfg)

	require.True(t, report.Succeeded(), "failed entries: %v", report.Failed())
	require.Equal(t, 1, report.Count(KindUser, StatusReused))
	require.Equal(t, 8, report.Count(KindUser, StatusCreated))
	require.Equal(t, 9, report.Count(KindAssignment, StatusCreated))

	for _, e := range report.Entries {
		if e.Kind == KindUser && e.Name == "project_a_admin" {
			require.Equal(t, existing.ID, e.ID)
		}
	}
}

func TestExecuteNoEndpointForTemplatedCatalog(t *testing.T) {
	stub := seededStub(t)
	cfg := testConfig()
	cfg.CatalogBackend = "templated"

	report := runPlan(t, stub, cfg)

	require.True(t, report.Succeeded())
	require.Len(t, report.Entries, 25)
	require.Zero(t, report.Count(KindEndpoint, StatusCreated))
	require.Zero(t, report.Count(KindEndpoint, StatusFailed))
	require.Empty(t, stub.Endpoints())
}

func TestExecuteServiceFailureSkipsEndpoint(t *testing.T) {
	stub := seededStub(t)
	stub.FailService = errors.New("catalog unavailable")

	report := runPlan(t, stub, testConfig())

	require.False(t, report.Succeeded())
	require.Equal(t, 1, report.Count(KindService, StatusFailed))
	require.Equal(t, 1, report.Count(KindEndpoint, StatusFailed))
	require.Empty(t, stub.Endpoints())
}

func TestExecuteEndpointFailure(t *testing.T) {
	stub := seededStub(t)
	stub.FailEndpoint = errors.New("catalog write rejected")

	report := runPlan(t, stub, testConfig())

	require.False(t, report.Succeeded())
	require.Equal(t, 1, report.Count(KindService, StatusCreated))
	require.Equal(t, 1, report.Count(KindEndpoint, StatusFailed))
}

func TestExecuteRerunReusesAssignments(t *testing.T) {
	stub := seededStub(t)
	cfg := testConfig()
	cfg.OnUserConflict = string(ConflictSkip)

	first := runPlan(t, stub, cfg)
	require.True(t, first.Succeeded())

	second := runPlan(t, stub, cfg)

	require.Equal(t, 4, second.Count(KindRole, StatusReused))
	require.Equal(t, 2, second.Count(KindProject, StatusReused))
	require.Equal(t, 9, second.Count(KindUser, StatusReused))
	require.Equal(t, 9, second.Count(KindAssignment, StatusReused))
	require.Len(t, stub.Assignments, 9, "rerun must not duplicate grants")

	// Catalog records are create-only: a rerun against a populated catalog
	// reports the service conflict instead of silently reusing it.
	require.Equal(t, 1, second.Count(KindService, StatusFailed))
}

type failingStore struct {
	err error
}

func (f *failingStore) Store(context.Context, interfaces.Credential) error { return f.err }
func (f *failingStore) Fetch(context.Context, string) (*interfaces.Credential, error) {
	return nil, interfaces.ErrCredentialNotFound
}
func (f *failingStore) LocationURI() string { return "test://broken" }

func TestExecuteCredentialStoreFailureIsNotFatal(t *testing.T) {
	stub := seededStub(t)
	store := &failingStore{err: errors.New("disk full")}

	report := runPlan(t, stub, testConfig(), WithCredentialStore(store))

	require.True(t, report.Succeeded(), "credential store failures must not fail the run")
	require.Equal(t, 9, report.Count(KindUser, StatusCreated))
}
