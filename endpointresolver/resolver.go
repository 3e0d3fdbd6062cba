package endpointresolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/miekg/dns"
)

// DefaultResolverAddr is the systemd-resolved stub listener, which is where
// deployment hosts point their DNS by default.
const DefaultResolverAddr = "127.0.0.53:53"

// ServiceEndpoint is one discovered key-manager instance.
type ServiceEndpoint struct {
	Host string
	Port uint16
}

// URL renders the endpoint as a plain HTTP URL.
func (e ServiceEndpoint) URL() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// Resolver discovers deployed key-manager instances via DNS SRV records, for
// deployments where the service host is not configured statically.
type Resolver struct {
	resolverAddr string
}

// NewResolver returns a resolver querying the given DNS server address, or
// DefaultResolverAddr when empty.
func NewResolver(resolverAddr string) *Resolver {
	if resolverAddr == "" {
		resolverAddr = DefaultResolverAddr
	}
	return &Resolver{resolverAddr: resolverAddr}
}

// Resolve queries the SRV records of the given service domain (e.g.
// _barbican._tcp.openstack.internal) and returns the discovered endpoints
// ordered by SRV priority.
func (r *Resolver) Resolve(domain string) ([]ServiceEndpoint, error) {
	m := new(dns.Msg)
	m.Id = dns.Id()
	m.RecursionDesired = true
	m.Question = []dns.Question{
		{Name: dns.Fqdn(domain), Qtype: dns.TypeSRV, Qclass: dns.ClassINET},
	}

	c := new(dns.Client)
	in, _, err := c.Exchange(m, r.resolverAddr)
	if err != nil {
		return nil, fmt.Errorf("SRV query for %s failed: %w", domain, err)
	}

	records := make([]*dns.SRV, 0, len(in.Answer))
	for _, answer := range in.Answer {
		if srv, ok := answer.(*dns.SRV); ok {
			records = append(records, srv)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no SRV records for %s", domain)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority < records[j].Priority
		}
		return records[i].Weight > records[j].Weight
	})

	endpoints := make([]ServiceEndpoint, 0, len(records))
	for _, srv := range records {
		endpoints = append(endpoints, ServiceEndpoint{
			Host: strings.TrimSuffix(srv.Target, "."),
			Port: srv.Port,
		})
	}
	return endpoints, nil
}

// ResolveFirst returns the highest-priority endpoint for the domain.
func (r *Resolver) ResolveFirst(domain string) (ServiceEndpoint, error) {
	endpoints, err := r.Resolve(domain)
	if err != nil {
		return ServiceEndpoint{}, err
	}
	return endpoints[0], nil
}
