package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openstackops/keymanager-provisioning-backend/interfaces"
)

// Provision builds a plan from the configuration and executes it against the
// identity store. The error is non-nil only when the configuration itself is
// unusable; per-resource failures are carried in the report instead.
func Provision(ctx context.Context, cfg Config, client interfaces.IdentityClient, log *slog.Logger, opts ...ExecutorOption) (*Report, error) {
	cfg.ApplyDefaults()

	plan, err := BuildPlan(cfg)
	if err != nil {
		return nil, err
	}

	policy, err := ParseConflictPolicy(cfg.OnUserConflict)
	if err != nil {
		return nil, fmt.Errorf("invalid provisioning config: %w", err)
	}
	opts = append(opts, WithConflictPolicy(policy))

	log.Info("starting provisioning run",
		"admin_tenant", cfg.AdminTenant,
		"service_user", cfg.ServiceUser,
		"catalog_backend", cfg.CatalogBackend,
	)
	return NewExecutor(client, log, opts...).Execute(ctx, plan), nil
}
