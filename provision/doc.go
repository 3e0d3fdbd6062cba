// Package provision implements the key-manager identity provisioning
// workflow: a declarative plan of roles, projects, user accounts, role
// assignments, and catalog records, a create-or-reuse resolver, and a
// sequential executor that records a per-resource outcome report.
//
// The workflow has no rollback and no delete operations: failures are
// recorded per resource and the run continues past them.
package provision
