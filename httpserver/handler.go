package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
	"github.com/openstackops/keymanager-provisioning-backend/metrics"
	"github.com/openstackops/keymanager-provisioning-backend/provision"
)

// Handler serves the provisioning API. Runs are serialized: the identity
// client contract requires no concurrent writers, so a second request while
// a run is in flight is answered with 409.
type Handler struct {
	client interfaces.IdentityClient
	cfg    provision.Config
	creds  interfaces.CredentialStore
	log    *slog.Logger

	metrics *metrics.MetricsServer

	mu         sync.Mutex
	reportMu   sync.RWMutex
	lastReport *provision.Report
}

// NewHandler creates a provisioning API handler. The credential store may be
// nil.
func NewHandler(client interfaces.IdentityClient, cfg provision.Config, creds interfaces.CredentialStore, log *slog.Logger) *Handler {
	return &Handler{
		client: client,
		cfg:    cfg,
		creds:  creds,
		log:    log,
	}
}

// HandleProvision runs the provisioning workflow. An optional JSON request
// body overlays the configured defaults, so a caller can retarget a single
// run (e.g. a different catalog backend) without restarting the server.
//
// Responds 200 with the report when every entry succeeded, 500 with the
// report when any entry failed, 409 when a run is already in flight and 400
// on an unusable request body or configuration.
func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	if !h.mu.TryLock() {
		h.log.Warn("Provisioning request rejected, run already in flight")
		http.Error(w, "provisioning run already in flight", http.StatusConflict)
		return
	}
	defer h.mu.Unlock()

	cfg := h.cfg
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			h.log.Warn("Invalid provisioning request body", "err", err)
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	var opts []provision.ExecutorOption
	if h.creds != nil {
		opts = append(opts, provision.WithCredentialStore(h.creds))
	}

	report, err := provision.Provision(r.Context(), cfg, h.client, h.log, opts...)
	if err != nil {
		h.log.Error("Provisioning run rejected", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.reportMu.Lock()
	h.lastReport = report
	h.reportMu.Unlock()
	h.recordMetrics(report)

	status := http.StatusOK
	if !report.Succeeded() {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, report)
}

// HandleReport returns the report of the most recent run, or 404 when no run
// has completed yet.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	h.reportMu.RLock()
	report := h.lastReport
	h.reportMu.RUnlock()

	if report == nil {
		http.Error(w, "no provisioning run has completed", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) recordMetrics(report *provision.Report) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordRun(report.Succeeded(), report.FinishedAt.Sub(report.StartedAt))
	for _, e := range report.Entries {
		h.metrics.RecordEntry(string(e.Kind), string(e.Status))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure can't be reported.
	_ = json.NewEncoder(w).Encode(v)
}
