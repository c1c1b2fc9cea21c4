package planner

import (
	"errors"
	"net/netip"

	"github.com/luvyouso/wireguard-android/config"
)

const (
	maxHostIncrement = 254
	ipv4PeerBits     = 32
	ipv6PeerBits     = 128
)

// nextAddresses derives the increment'th client addresses from the server
// networks. The client keeps each network's prefix length for its own
// Address; the server side routes the single host. Allocation adds
// increment to the final address byte and refuses to let it wrap, so a
// server at .1 in a /24 serves at most 254 clients.
func nextAddresses(networks []config.InetNetwork, increment int) (clientAddrs, hostRoutes []config.InetNetwork, err error) {
	if increment > maxHostIncrement {
		return nil, nil, errors.New("max clients reached")
	}

	for _, network := range networks {
		raw := network.Address().AsSlice()
		last := int(raw[len(raw)-1]) + increment
		if last > 0xff {
			return nil, nil, errors.New("network filled, no more clients can be added")
		}
		raw[len(raw)-1] = byte(last)

		addr, ok := netip.AddrFromSlice(raw)
		if !ok || !network.Prefix().Contains(addr) {
			return nil, nil, errors.New("network filled, no more clients can be added")
		}

		var host netip.Prefix
		if addr.Is4() {
			host, err = addr.Prefix(ipv4PeerBits)
		} else {
			host, err = addr.Prefix(ipv6PeerBits)
		}
		if err != nil {
			return nil, nil, err
		}

		clientAddrs = append(clientAddrs, config.InetNetworkFrom(netip.PrefixFrom(addr, network.PrefixLength())))
		hostRoutes = append(hostRoutes, config.InetNetworkFrom(host))
	}
	return clientAddrs, hostRoutes, nil
}
