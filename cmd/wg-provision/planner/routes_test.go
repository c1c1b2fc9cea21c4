package planner

import (
	"net/netip"
	"slices"
	"testing"
)

func TestClientRoutesDefault(t *testing.T) {
	got := asStrings(clientRoutes(false))
	want := []string{"0.0.0.0/0", "::/0"}
	if !slices.Equal(got, want) {
		t.Errorf("clientRoutes(false) = %v, want %v", got, want)
	}
}

func TestClientRoutesExcludePrivate(t *testing.T) {
	routes := clientRoutes(true)
	if got, want := len(routes), len(ipv4PublicNetworks)+1; got != want {
		t.Fatalf("route count = %d, want %d", got, want)
	}

	strs := asStrings(routes)
	if slices.Contains(strs, "0.0.0.0/0") {
		t.Error("IPv4 default route should have been substituted")
	}
	if !slices.Contains(strs, "::/0") {
		t.Error("IPv6 default route should survive the substitution")
	}

	covered := func(addr netip.Addr) bool {
		for _, route := range routes {
			if route.Prefix().Contains(addr) {
				return true
			}
		}
		return false
	}
	for _, private := range []string{"10.8.0.1", "172.16.30.2", "192.168.1.9"} {
		if covered(netip.MustParseAddr(private)) {
			t.Errorf("private address %s is routed through the tunnel", private)
		}
	}
	for _, public := range []string{"1.1.1.1", "8.8.8.8", "93.184.216.34"} {
		if !covered(netip.MustParseAddr(public)) {
			t.Errorf("public address %s is not routed through the tunnel", public)
		}
	}
}
