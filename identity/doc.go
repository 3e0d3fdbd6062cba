// Package identity provides implementations of the interfaces.IdentityClient
// contract.
//
// Client talks to the identity service's v2.0-era admin API over HTTP with
// token authentication. Stub is an in-memory implementation with failure
// injection for tests and dry runs. MockClient is a testify mock for
// handler-level tests.
//
// Error mapping is uniform across implementations: a by-name lookup miss is
// interfaces.ErrNotFound, a backend name conflict is
// interfaces.ErrAlreadyExists, and everything else carries the transport or
// backend error verbatim.
package identity
