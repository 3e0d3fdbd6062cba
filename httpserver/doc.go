// Package httpserver exposes the provisioning workflow over HTTP: a
// provisioning trigger, the last run's report, health and drain endpoints,
// and an optional Prometheus metrics listener.
package httpserver
