// Package credstore persists the credentials of provisioned users so that
// operators and test harnesses can retrieve them after a run. Stores are
// created from location URIs (file://, vault://, s3://) via the Factory.
//
// The executor treats the store as best-effort: a store failure is logged
// and never fails a provisioning run.
package credstore
