package planner

import "github.com/luvyouso/wireguard-android/config"

const ipv4DefaultRoute = "0.0.0.0/0"

// Full-tunnel routes pushed to every client.
var defaultRoutes = []string{ipv4DefaultRoute, "::/0"}

// The IPv4 unicast space minus the RFC1918 private networks, used in
// place of the default route when a tunnel should leave private space
// alone.
var ipv4PublicNetworks = []string{
	"0.0.0.0/5", "8.0.0.0/7", "11.0.0.0/8", "12.0.0.0/6", "16.0.0.0/4", "32.0.0.0/3",
	"64.0.0.0/2", "128.0.0.0/3", "160.0.0.0/5", "168.0.0.0/6", "172.0.0.0/12",
	"172.32.0.0/11", "172.64.0.0/10", "172.128.0.0/9", "173.0.0.0/8", "174.0.0.0/7",
	"176.0.0.0/4", "192.0.0.0/9", "192.128.0.0/11", "192.160.0.0/13", "192.169.0.0/16",
	"192.170.0.0/15", "192.172.0.0/14", "192.176.0.0/12", "192.192.0.0/10",
	"193.0.0.0/8", "194.0.0.0/7", "196.0.0.0/6", "200.0.0.0/5", "208.0.0.0/4",
}

// clientRoutes returns the AllowedIPs pushed to a client: the default
// routes, with the IPv4 one swapped for the public-internet networks when
// excludePrivate is set. Other routes stay in place, so the IPv6 default
// route survives the swap. The substitution only makes sense for a tunnel
// with a single peer, which is how Generate builds client documents.
func clientRoutes(excludePrivate bool) []config.InetNetwork {
	routes := make([]config.InetNetwork, 0, len(defaultRoutes))
	for _, route := range defaultRoutes {
		if excludePrivate && route == ipv4DefaultRoute {
			for _, pub := range ipv4PublicNetworks {
				routes = append(routes, config.MustParseInetNetwork(pub))
			}
			continue
		}
		routes = append(routes, config.MustParseInetNetwork(route))
	}
	return routes
}
