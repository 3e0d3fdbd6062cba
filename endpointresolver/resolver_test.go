package endpointresolver

import (
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

func startDNSServer(t *testing.T, answers []string) string {
	t.Helper()

	records := make([]dns.RR, 0, len(answers))
	for _, a := range answers {
		rr, err := dns.NewRR(a)
		require.NoError(t, err)
		records = append(records, rr)
	}

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		m.Answer = records
		_ = w.WriteMsg(m)
	})

	srv := &dns.Server{PacketConn: pc, Handler: mux}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func TestResolveOrdersByPriority(t *testing.T) {
	addr := startDNSServer(t, []string{
		"_barbican._tcp.openstack.internal. 60 IN SRV 20 5 9311 km2.openstack.internal.",
		"_barbican._tcp.openstack.internal. 60 IN SRV 10 5 9311 km1.openstack.internal.",
	})

	r := NewResolver(addr)
	endpoints, err := r.Resolve("_barbican._tcp.openstack.internal")
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	require.Equal(t, "km1.openstack.internal", endpoints[0].Host)
	require.Equal(t, uint16(9311), endpoints[0].Port)
	require.Equal(t, "km2.openstack.internal", endpoints[1].Host)
	require.Equal(t, "http://km1.openstack.internal:9311", endpoints[0].URL())
}

func TestResolveFirst(t *testing.T) {
	addr := startDNSServer(t, []string{
		"_barbican._tcp.openstack.internal. 60 IN SRV 10 5 9311 km1.openstack.internal.",
	})

	r := NewResolver(addr)
	ep, err := r.ResolveFirst("_barbican._tcp.openstack.internal")
	require.NoError(t, err)
	require.Equal(t, "km1.openstack.internal", ep.Host)
}

func TestResolveNoRecords(t *testing.T) {
	addr := startDNSServer(t, nil)

	r := NewResolver(addr)
	_, err := r.Resolve("_barbican._tcp.openstack.internal")
	require.Error(t, err)
}

func TestNewResolverDefaultAddress(t *testing.T) {
	r := NewResolver("")
	require.Equal(t, DefaultResolverAddr, r.resolverAddr)
}
