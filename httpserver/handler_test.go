package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openstackops/keymanager-provisioning-backend/identity"
	"github.com/openstackops/keymanager-provisioning-backend/provision"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() provision.Config {
	cfg := provision.DefaultConfig()
	cfg.Password = "barbican"
	return cfg
}

func seededStub(t *testing.T) *identity.Stub {
	t.Helper()
	stub := identity.NewStub()
	_, err := stub.CreateProject(context.Background(), "service")
	require.NoError(t, err)
	return stub
}

func newTestServer(t *testing.T, stub *identity.Stub) *httptest.Server {
	t.Helper()
	handler := NewHandler(stub, testConfig(), nil, testLogger())
	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      testLogger(),
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.getRouter())
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleProvision(t *testing.T) {
	stub := seededStub(t)
	ts := newTestServer(t, stub)

	resp, err := http.Post(ts.URL+"/api/v1/provision", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report provision.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Entries, 26)
	require.True(t, report.Succeeded())
	require.Len(t, stub.Assignments, 9)
}

func TestHandleProvisionPartialFailure(t *testing.T) {
	stub := seededStub(t)
	stub.FailService = io.ErrUnexpectedEOF
	ts := newTestServer(t, stub)

	resp, err := http.Post(ts.URL+"/api/v1/provision", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The report is still returned so the caller can see what failed.
	var report provision.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.False(t, report.Succeeded())
	require.NotEmpty(t, report.Failed())
}

func TestHandleProvisionConfigOverlay(t *testing.T) {
	stub := seededStub(t)
	ts := newTestServer(t, stub)

	body, err := json.Marshal(map[string]string{"catalog_backend": "templated"})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/v1/provision", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report provision.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Entries, 25)
	require.Empty(t, stub.Endpoints())
}

func TestHandleProvisionInvalidBody(t *testing.T) {
	ts := newTestServer(t, seededStub(t))

	resp, err := http.Post(ts.URL+"/api/v1/provision", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleReport(t *testing.T) {
	ts := newTestServer(t, seededStub(t))

	// No run yet.
	resp, err := http.Get(ts.URL + "/api/v1/report")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/v1/provision", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report provision.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Entries, 26)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, seededStub(t))

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestDrainUndrain(t *testing.T) {
	stub := seededStub(t)
	handler := NewHandler(stub, testConfig(), nil, testLogger())
	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      testLogger(),
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.getRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/drain")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/undrain")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
