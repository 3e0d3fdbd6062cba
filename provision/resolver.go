package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

var (
	// ErrMissingPrerequisite marks a resource the plan assumes to exist but
	// the identity store does not have.
	ErrMissingPrerequisite = errors.New("required resource does not exist")

	// ErrLookupFailed marks a resolution that could not even determine
	// whether the resource exists.
	ErrLookupFailed = errors.New("resource lookup failed")

	// ErrCreateFailed marks a resolution where the lookup missed and the
	// subsequent create was rejected.
	ErrCreateFailed = errors.New("resource creation failed")

	// ErrAssignmentFailed marks a role assignment that could not be made,
	// including assignments skipped because a dependency failed to resolve.
	ErrAssignmentFailed = errors.New("role assignment failed")
)

// Outcome tells whether a resolved resource was created by this run or found
// already present.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeReused  Outcome = "reused"
)

type resolved struct {
	id      string
	outcome Outcome
}

// Resolver implements create-or-reuse resolution of projects and roles by
// name, with a per-run cache so each name is looked up and created at most
// once regardless of how many accounts reference it.
//
// Resolver is not safe for concurrent use; the executor drives it from a
// single goroutine.
type Resolver struct {
	client interfaces.IdentityClient
	log    *slog.Logger

	projects map[string]resolved
	roles    map[string]resolved
}

// NewResolver returns a resolver with empty caches, scoped to one run.
func NewResolver(client interfaces.IdentityClient, log *slog.Logger) *Resolver {
	return &Resolver{
		client:   client,
		log:      log,
		projects: make(map[string]resolved),
		roles:    make(map[string]resolved),
	}
}

// ResolveProject returns the id of the named project, creating it on a
// lookup miss. Subsequent calls for the same name return the cached result.
func (r *Resolver) ResolveProject(ctx context.Context, name string) (string, Outcome, error) {
	if hit, ok := r.projects[name]; ok {
		return hit.id, hit.outcome, nil
	}
	res, err := r.resolve(ctx, "project", name,
		func() (string, error) {
			p, err := r.client.GetProjectByName(ctx, name)
			if err != nil {
				return "", err
			}
			return p.ID, nil
		},
		func() (string, error) {
			p, err := r.client.CreateProject(ctx, name)
			if err != nil {
				return "", err
			}
			return p.ID, nil
		})
	if err != nil {
		return "", "", err
	}
	r.projects[name] = res
	return res.id, res.outcome, nil
}

// ResolveRole returns the id of the named role, creating it on a lookup miss.
func (r *Resolver) ResolveRole(ctx context.Context, name string) (string, Outcome, error) {
	if hit, ok := r.roles[name]; ok {
		return hit.id, hit.outcome, nil
	}
	res, err := r.resolve(ctx, "role", name,
		func() (string, error) {
			role, err := r.client.GetRoleByName(ctx, name)
			if err != nil {
				return "", err
			}
			return role.ID, nil
		},
		func() (string, error) {
			role, err := r.client.CreateRole(ctx, name)
			if err != nil {
				return "", err
			}
			return role.ID, nil
		})
	if err != nil {
		return "", "", err
	}
	r.roles[name] = res
	return res.id, res.outcome, nil
}

// LookupRole resolves a role that must already exist. A lookup miss is
// reported as ErrMissingPrerequisite rather than triggering a create.
func (r *Resolver) LookupRole(ctx context.Context, name string) (string, error) {
	if hit, ok := r.roles[name]; ok {
		return hit.id, nil
	}
	role, err := r.client.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", fmt.Errorf("%w: role %q", ErrMissingPrerequisite, name)
		}
		return "", fmt.Errorf("%w: role %q: %w", ErrLookupFailed, name, err)
	}
	r.roles[name] = resolved{id: role.ID, outcome: OutcomeReused}
	return role.ID, nil
}

// LookupProject resolves a project that must already exist, such as the
// admin tenant.
func (r *Resolver) LookupProject(ctx context.Context, name string) (string, error) {
	if hit, ok := r.projects[name]; ok {
		return hit.id, nil
	}
	p, err := r.client.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", fmt.Errorf("%w: project %q", ErrMissingPrerequisite, name)
		}
		return "", fmt.Errorf("%w: project %q: %w", ErrLookupFailed, name, err)
	}
	r.projects[name] = resolved{id: p.ID, outcome: OutcomeReused}
	return p.ID, nil
}

func (r *Resolver) resolve(ctx context.Context, kind, name string, get, create func() (string, error)) (resolved, error) {
	id, err := get()
	if err == nil {
		r.log.Debug("reusing existing resource", "kind", kind, "name", name, "id", id)
		return resolved{id: id, outcome: OutcomeReused}, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return resolved{}, fmt.Errorf("%w: %s %q: %w", ErrLookupFailed, kind, name, err)
	}

	// A miss followed by create can race a concurrent run. The identity
	// store's conflict answer is surfaced, not retried.
	id, err = create()
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %s %q: %w", ErrCreateFailed, kind, name, err)
	}
	r.log.Info("created resource", "kind", kind, "name", name, "id", id)
	return resolved{id: id, outcome: OutcomeCreated}, nil
}
