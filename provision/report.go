package provision

import (
	"fmt"
	"time"
)

// EntryKind classifies what a report entry is about.
type EntryKind string

const (
	KindRole       EntryKind = "role"
	KindProject    EntryKind = "project"
	KindUser       EntryKind = "user"
	KindAssignment EntryKind = "assignment"
	KindService    EntryKind = "service"
	KindEndpoint   EntryKind = "endpoint"
)

// EntryStatus is the per-resource outcome of a run.
type EntryStatus string

const (
	StatusCreated EntryStatus = "created"
	StatusReused  EntryStatus = "reused"
	StatusFailed  EntryStatus = "failed"
)

// Entry records the outcome for a single planned resource.
type Entry struct {
	Kind   EntryKind   `json:"kind"`
	Name   string      `json:"name"`
	Status EntryStatus `json:"status"`

	// ID is the identity store id of the resource, set when created or reused.
	ID string `json:"id,omitempty"`

	// Reason explains a failure. Empty otherwise.
	Reason string `json:"reason,omitempty"`
}

// Report is the full account of one provisioning run. Entries appear in
// execution order: roles, projects, accounts (user then assignment), service,
// endpoint.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entries    []Entry   `json:"entries"`
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}

func (r *Report) created(kind EntryKind, name, id string) {
	r.add(Entry{Kind: kind, Name: name, Status: StatusCreated, ID: id})
}

func (r *Report) reused(kind EntryKind, name, id string) {
	r.add(Entry{Kind: kind, Name: name, Status: StatusReused, ID: id})
}

func (r *Report) failed(kind EntryKind, name string, err error) {
	r.add(Entry{Kind: kind, Name: name, Status: StatusFailed, Reason: err.Error()})
}

// Succeeded reports whether every entry completed as created or reused.
func (r *Report) Succeeded() bool {
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Failed returns the failed entries, in execution order.
func (r *Report) Failed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries of the given kind finished with the given
// status.
func (r *Report) Count(kind EntryKind, status EntryStatus) int {
	n := 0
	for _, e := range r.Entries {
		if e.Kind == kind && e.Status == status {
			n++
		}
	}
	return n
}

// Summary renders a one-line account of the run, suitable for logs.
func (r *Report) Summary() string {
	var created, reused, failed int
	for _, e := range r.Entries {
		switch e.Status {
		case StatusCreated:
			created++
		case StatusReused:
			reused++
		case StatusFailed:
			failed++
		}
	}
	return fmt.Sprintf("%d created, %d reused, %d failed (took %s)",
		created, reused, failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
