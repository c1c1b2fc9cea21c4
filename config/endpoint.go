package config

import (
	"context"
	"net"
	"net/netip"
	"strconv"
)

// Endpoint is a peer's remote address: a hostname or IP literal together
// with a UDP port. The host is kept as written; name resolution is deferred
// to Resolve so that a peer with a currently unresolvable hostname still
// parses and serializes.
type Endpoint struct {
	host string
	port uint16
}

// ParseEndpoint parses "host:port". An IPv6 host must be enclosed in square
// brackets. The port must be a decimal number between 1 and 65535.
func ParseEndpoint(s string) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Endpoint{}, newError(KindInvalidEndpoint, "", "parsing %q: %v", s, err)
	}
	if host == "" {
		return Endpoint{}, newError(KindInvalidEndpoint, "", "parsing %q: missing host", s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return Endpoint{}, newError(KindInvalidEndpoint, "", "parsing %q: port must be a decimal number between 1 and 65535", s)
	}
	return Endpoint{host: host, port: uint16(port)}, nil
}

// Host returns the hostname or IP literal.
func (e Endpoint) Host() string {
	return e.host
}

// Port returns the UDP port.
func (e Endpoint) Port() uint16 {
	return e.port
}

// String formats the endpoint as "host:port", bracketing IPv6 hosts.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.host, strconv.Itoa(int(e.port)))
}

// MarshalText implements encoding.TextMarshaler.
func (e Endpoint) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Endpoint) UnmarshalText(text []byte) error {
	parsed, err := ParseEndpoint(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Resolve returns the endpoint as a numeric address and port. An IP-literal
// host is converted without I/O; a hostname is looked up with the system
// resolver. Failure to resolve reports ok as false, never an error: an
// unreachable resolver must not invalidate an otherwise good configuration.
func (e Endpoint) Resolve(ctx context.Context) (ap netip.AddrPort, ok bool) {
	if addr, err := netip.ParseAddr(e.host); err == nil {
		return netip.AddrPortFrom(addr.Unmap(), e.port), true
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", e.host)
	if err != nil || len(addrs) == 0 {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(addrs[0].Unmap(), e.port), true
}
