// Package endpointresolver discovers deployed key-manager instances through
// DNS SRV records. It backs the optional service-discovery mode of the
// provisioning tools, where the catalog endpoint address is looked up at run
// time instead of being configured statically.
package endpointresolver
