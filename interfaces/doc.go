// Package interfaces defines the contracts between the provisioning workflow
// and its collaborators.
//
// The package contains no business logic. It holds:
//
//   - Entity types exchanged with the identity service (Project, Role, User,
//     RoleAssignment, ServiceRecord, Endpoint)
//   - The IdentityClient interface consumed by the provisioning executor
//   - The CredentialStore interface for persisting generated credentials
//   - Sentinel errors shared by all implementations
//
// Implementations live in the identity and credstore packages; the
// provisioning workflow in the provision package depends only on the
// interfaces defined here, which keeps the core testable against in-memory
// stubs without a live identity service.
package interfaces
