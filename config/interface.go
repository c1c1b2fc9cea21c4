package config

import (
	"fmt"
	"net/netip"
	"slices"
	"strconv"
	"strings"

	"github.com/luvyouso/wireguard-android/crypto"
)

const (
	minUDPPort = 1
	maxUDPPort = 65535
	minIPv6MTU = 1280
)

// Interface models an [Interface] section. Interfaces must have a private
// key, from which the key pair is derived, and may optionally carry
// addresses, DNS servers, excluded applications, a listen port, and an MTU.
//
// Instances are immutable; they are created through an InterfaceBuilder or
// by ParseInterface.
type Interface struct {
	addresses            []InetNetwork
	dnsServers           []netip.Addr
	excludedApplications []string
	keyPair              crypto.KeyPair
	listenPort           int
	hasListenPort        bool
	mtu                  int
	hasMTU               bool
}

// ParseInterface parses a series of "Key = Value" lines, as accumulated from
// the [Interface] blocks of a document, into an Interface.
func ParseInterface(lines []string) (*Interface, error) {
	b := &InterfaceBuilder{}
	for _, line := range lines {
		key, value, err := splitAttributeLine(line, sectionInterface)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(key) {
		case "address":
			err = b.ParseAddresses(value)
		case "dns":
			err = b.ParseDNSServers(value)
		case "excludedapplications":
			b.ParseExcludedApplications(value)
		case "listenport":
			err = b.ParseListenPort(value)
		case "mtu":
			err = b.ParseMTU(value)
		case "privatekey":
			err = b.ParsePrivateKey(value)
		default:
			return nil, newError(KindUnknownAttribute, sectionInterface, "unknown attribute: %s", key)
		}
		if err != nil {
			return nil, inSection(sectionInterface, err)
		}
	}
	iface, err := b.Build()
	if err != nil {
		return nil, inSection(sectionInterface, err)
	}
	return iface, nil
}

// Addresses returns the interface's addresses in insertion order.
func (i *Interface) Addresses() []InetNetwork {
	return slices.Clone(i.addresses)
}

// DNSServers returns the interface's DNS servers in insertion order.
func (i *Interface) DNSServers() []netip.Addr {
	return slices.Clone(i.dnsServers)
}

// ExcludedApplications returns the application identifiers excluded from the
// tunnel, in insertion order.
func (i *Interface) ExcludedApplications() []string {
	return slices.Clone(i.excludedApplications)
}

// KeyPair returns the interface's key pair.
func (i *Interface) KeyPair() crypto.KeyPair {
	return i.keyPair
}

// ListenPort returns the UDP listen port, if one is set.
func (i *Interface) ListenPort() (port int, ok bool) {
	return i.listenPort, i.hasListenPort
}

// MTU returns the tunnel MTU, if one is set.
func (i *Interface) MTU() (mtu int, ok bool) {
	return i.mtu, i.hasMTU
}

// String returns a concise single-line identifier for debugging: the public
// key and, if set, the listen port.
func (i *Interface) String() string {
	var sb strings.Builder
	sb.WriteString("(Interface ")
	sb.WriteString(i.keyPair.PublicKey().String())
	if i.hasListenPort {
		fmt.Fprintf(&sb, " @%d", i.listenPort)
	}
	sb.WriteByte(')')
	return sb.String()
}

// WgQuickString returns the section's attributes as "Key = Value" lines in
// canonical order. Absent optionals and empty sets are omitted.
func (i *Interface) WgQuickString() string {
	var sb strings.Builder
	if len(i.addresses) > 0 {
		fmt.Fprintf(&sb, "Address = %s\n", joinStringers(i.addresses))
	}
	if len(i.dnsServers) > 0 {
		fmt.Fprintf(&sb, "DNS = %s\n", joinStringers(i.dnsServers))
	}
	if len(i.excludedApplications) > 0 {
		fmt.Fprintf(&sb, "ExcludedApplications = %s\n", strings.Join(i.excludedApplications, ", "))
	}
	if i.hasListenPort {
		fmt.Fprintf(&sb, "ListenPort = %d\n", i.listenPort)
	}
	if i.hasMTU {
		fmt.Fprintf(&sb, "MTU = %d\n", i.mtu)
	}
	fmt.Fprintf(&sb, "PrivateKey = %s\n", i.keyPair.PrivateKey())
	return sb.String()
}

// InterfaceBuilder accumulates interface attributes. The zero value is ready
// to use. Build validates that a key pair was provided and copies the
// collections, so a builder may be reused without aliasing the built value.
type InterfaceBuilder struct {
	addresses            []InetNetwork
	dnsServers           []netip.Addr
	excludedApplications []string
	keyPair              *crypto.KeyPair
	listenPort           int
	hasListenPort        bool
	mtu                  int
	hasMTU               bool
}

// AddAddress adds an address, ignoring exact duplicates.
func (b *InterfaceBuilder) AddAddress(address InetNetwork) *InterfaceBuilder {
	if !slices.Contains(b.addresses, address) {
		b.addresses = append(b.addresses, address)
	}
	return b
}

// AddDNSServer adds a DNS server, ignoring exact duplicates.
func (b *InterfaceBuilder) AddDNSServer(server netip.Addr) *InterfaceBuilder {
	if !slices.Contains(b.dnsServers, server) {
		b.dnsServers = append(b.dnsServers, server)
	}
	return b
}

// AddExcludedApplication adds an application identifier, ignoring duplicates.
func (b *InterfaceBuilder) AddExcludedApplication(app string) *InterfaceBuilder {
	if !slices.Contains(b.excludedApplications, app) {
		b.excludedApplications = append(b.excludedApplications, app)
	}
	return b
}

// SetKeyPair sets the interface's key pair.
func (b *InterfaceBuilder) SetKeyPair(kp crypto.KeyPair) *InterfaceBuilder {
	b.keyPair = &kp
	return b
}

// SetListenPort sets the UDP listen port.
func (b *InterfaceBuilder) SetListenPort(port int) error {
	if port < minUDPPort || port > maxUDPPort {
		return newError(KindInvalidPort, "", "listen port must be a UDP port number between %d and %d, got %d", minUDPPort, maxUDPPort, port)
	}
	b.listenPort = port
	b.hasListenPort = true
	return nil
}

// SetMTU sets the tunnel MTU.
func (b *InterfaceBuilder) SetMTU(mtu int) error {
	if mtu < minIPv6MTU {
		return newError(KindInvalidMTU, "", "MTU must be at least %d, got %d", minIPv6MTU, mtu)
	}
	b.mtu = mtu
	b.hasMTU = true
	return nil
}

// ParseAddresses parses a comma-separated list of networks.
func (b *InterfaceBuilder) ParseAddresses(value string) error {
	for _, s := range splitList(value) {
		network, err := ParseInetNetwork(s)
		if err != nil {
			return err
		}
		b.AddAddress(network)
	}
	return nil
}

// ParseDNSServers parses a comma-separated list of DNS server addresses.
func (b *InterfaceBuilder) ParseDNSServers(value string) error {
	for _, s := range splitList(value) {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return newError(KindInvalidNetwork, "", "parsing DNS server %q: %v", s, err)
		}
		if addr.Zone() != "" {
			return newError(KindInvalidNetwork, "", "parsing DNS server %q: zoned addresses are not supported", s)
		}
		b.AddDNSServer(addr)
	}
	return nil
}

// ParseExcludedApplications parses a comma-separated list of application
// identifiers.
func (b *InterfaceBuilder) ParseExcludedApplications(value string) *InterfaceBuilder {
	for _, app := range splitList(value) {
		if app != "" {
			b.AddExcludedApplication(app)
		}
	}
	return b
}

// ParseListenPort parses a decimal listen port.
func (b *InterfaceBuilder) ParseListenPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return newError(KindInvalidPort, "", "parsing listen port %q: %v", value, err)
	}
	return b.SetListenPort(port)
}

// ParseMTU parses a decimal MTU.
func (b *InterfaceBuilder) ParseMTU(value string) error {
	mtu, err := strconv.Atoi(value)
	if err != nil {
		return newError(KindInvalidMTU, "", "parsing MTU %q: %v", value, err)
	}
	return b.SetMTU(mtu)
}

// ParsePrivateKey parses a base64 private key and derives the key pair.
func (b *InterfaceBuilder) ParsePrivateKey(value string) error {
	key, err := crypto.ParseKey(value)
	if err != nil {
		return &ParseError{Kind: KindInvalidKey, Err: err}
	}
	b.SetKeyPair(crypto.NewKeyPair(key))
	return nil
}

// Build freezes the accumulated attributes into an Interface.
func (b *InterfaceBuilder) Build() (*Interface, error) {
	if b.keyPair == nil {
		return nil, newError(KindMissingField, "", "interfaces must have a private key")
	}
	return &Interface{
		addresses:            slices.Clone(b.addresses),
		dnsServers:           slices.Clone(b.dnsServers),
		excludedApplications: slices.Clone(b.excludedApplications),
		keyPair:              *b.keyPair,
		listenPort:           b.listenPort,
		hasListenPort:        b.hasListenPort,
		mtu:                  b.mtu,
		hasMTU:               b.hasMTU,
	}, nil
}
