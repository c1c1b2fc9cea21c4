package config

import (
	"net/netip"
	"strings"
)

// InetNetwork is an IP address with a prefix length, the value form of the
// Address and AllowedIPs attributes. Host bits below the prefix length are
// preserved, so "10.11.12.13/24" keeps its full address.
type InetNetwork struct {
	prefix netip.Prefix
}

// ParseInetNetwork parses "address" or "address/prefix". A bare address gets
// the full prefix width of its family. Zoned addresses and prefix lengths
// outside the family's range are rejected.
func ParseInetNetwork(s string) (InetNetwork, error) {
	if strings.IndexByte(s, '/') >= 0 {
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return InetNetwork{}, newError(KindInvalidNetwork, "", "parsing %q: %v", s, err)
		}
		return InetNetwork{prefix: prefix}, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return InetNetwork{}, newError(KindInvalidNetwork, "", "parsing %q: %v", s, err)
	}
	if addr.Zone() != "" {
		return InetNetwork{}, newError(KindInvalidNetwork, "", "parsing %q: zoned addresses are not supported", s)
	}
	return InetNetwork{prefix: netip.PrefixFrom(addr, addr.BitLen())}, nil
}

// InetNetworkFrom wraps prefix as an InetNetwork, keeping the address
// exactly as given.
func InetNetworkFrom(prefix netip.Prefix) InetNetwork {
	return InetNetwork{prefix: prefix}
}

// MustParseInetNetwork is ParseInetNetwork for known-good input; it panics on
// error.
func MustParseInetNetwork(s string) InetNetwork {
	n, err := ParseInetNetwork(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Address returns the address part of the network.
func (n InetNetwork) Address() netip.Addr {
	return n.prefix.Addr()
}

// PrefixLength returns the prefix length in bits.
func (n InetNetwork) PrefixLength() int {
	return n.prefix.Bits()
}

// Prefix returns the underlying netip.Prefix.
func (n InetNetwork) Prefix() netip.Prefix {
	return n.prefix
}

// IsValid reports whether the network holds a parsed value; the zero
// InetNetwork is not valid.
func (n InetNetwork) IsValid() bool {
	return n.prefix.IsValid()
}

// String formats the network as "address/prefix", always including the
// prefix length.
func (n InetNetwork) String() string {
	return n.prefix.String()
}

// MarshalText implements encoding.TextMarshaler.
func (n InetNetwork) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *InetNetwork) UnmarshalText(text []byte) error {
	parsed, err := ParseInetNetwork(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
