package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/luvyouso/wireguard-android/crypto"
)

// Peer models a [Peer] section. Peers must have a public key and may
// optionally carry allowed IPs, an endpoint, a persistent keepalive interval,
// and a preshared key.
//
// Instances are immutable; they are created through a PeerBuilder or by
// ParsePeer.
type Peer struct {
	allowedIPs          []InetNetwork
	endpoint            Endpoint
	hasEndpoint         bool
	persistentKeepalive int
	hasKeepalive        bool
	preSharedKey        crypto.Key
	hasPreSharedKey     bool
	publicKey           crypto.Key
}

// ParsePeer parses a series of "Key = Value" lines, as accumulated from one
// [Peer] block, into a Peer.
func ParsePeer(lines []string) (*Peer, error) {
	b := &PeerBuilder{}
	for _, line := range lines {
		key, value, err := splitAttributeLine(line, sectionPeer)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(key) {
		case "allowedips":
			err = b.ParseAllowedIPs(value)
		case "endpoint":
			err = b.ParseEndpoint(value)
		case "persistentkeepalive":
			err = b.ParsePersistentKeepalive(value)
		case "presharedkey":
			err = b.ParsePreSharedKey(value)
		case "publickey":
			err = b.ParsePublicKey(value)
		default:
			return nil, newError(KindUnknownAttribute, sectionPeer, "unknown attribute: %s", key)
		}
		if err != nil {
			return nil, inSection(sectionPeer, err)
		}
	}
	peer, err := b.Build()
	if err != nil {
		return nil, inSection(sectionPeer, err)
	}
	return peer, nil
}

// AllowedIPs returns the peer's allowed IP networks in insertion order.
func (p *Peer) AllowedIPs() []InetNetwork {
	return slices.Clone(p.allowedIPs)
}

// Endpoint returns the peer's endpoint, if one is set.
func (p *Peer) Endpoint() (ep Endpoint, ok bool) {
	return p.endpoint, p.hasEndpoint
}

// PersistentKeepalive returns the keepalive interval in seconds, if one is
// set.
func (p *Peer) PersistentKeepalive() (seconds int, ok bool) {
	return p.persistentKeepalive, p.hasKeepalive
}

// PreSharedKey returns the preshared key, if one is set.
func (p *Peer) PreSharedKey() (key crypto.Key, ok bool) {
	return p.preSharedKey, p.hasPreSharedKey
}

// PublicKey returns the peer's public key.
func (p *Peer) PublicKey() crypto.Key {
	return p.publicKey
}

// String returns a concise single-line identifier for debugging: the public
// key and, if set, the endpoint.
func (p *Peer) String() string {
	var sb strings.Builder
	sb.WriteString("(Peer ")
	sb.WriteString(p.publicKey.String())
	if p.hasEndpoint {
		fmt.Fprintf(&sb, " @%s", p.endpoint)
	}
	sb.WriteByte(')')
	return sb.String()
}

// WgQuickString returns the section's attributes as "Key = Value" lines in
// canonical order. Absent optionals and empty sets are omitted.
func (p *Peer) WgQuickString() string {
	var sb strings.Builder
	if len(p.allowedIPs) > 0 {
		fmt.Fprintf(&sb, "AllowedIPs = %s\n", joinStringers(p.allowedIPs))
	}
	if p.hasEndpoint {
		fmt.Fprintf(&sb, "Endpoint = %s\n", p.endpoint)
	}
	if p.hasKeepalive {
		fmt.Fprintf(&sb, "PersistentKeepalive = %d\n", p.persistentKeepalive)
	}
	if p.hasPreSharedKey {
		fmt.Fprintf(&sb, "PreSharedKey = %s\n", p.preSharedKey)
	}
	fmt.Fprintf(&sb, "PublicKey = %s\n", p.publicKey)
	return sb.String()
}

// PeerBuilder accumulates peer attributes. The zero value is ready to use.
// Build validates that a public key was provided and copies the collections,
// so a builder may be reused without aliasing the built value.
type PeerBuilder struct {
	allowedIPs          []InetNetwork
	endpoint            Endpoint
	hasEndpoint         bool
	persistentKeepalive int
	hasKeepalive        bool
	preSharedKey        crypto.Key
	hasPreSharedKey     bool
	publicKey           *crypto.Key
}

// AddAllowedIP adds an allowed network, ignoring exact duplicates.
func (b *PeerBuilder) AddAllowedIP(network InetNetwork) *PeerBuilder {
	if !slices.Contains(b.allowedIPs, network) {
		b.allowedIPs = append(b.allowedIPs, network)
	}
	return b
}

// SetEndpoint sets the peer's endpoint.
func (b *PeerBuilder) SetEndpoint(endpoint Endpoint) *PeerBuilder {
	b.endpoint = endpoint
	b.hasEndpoint = true
	return b
}

// SetPersistentKeepalive sets the keepalive interval in seconds.
func (b *PeerBuilder) SetPersistentKeepalive(seconds int) error {
	if seconds < 1 {
		return newError(KindInvalidKeepalive, "", "persistent keepalive must be positive, got %d", seconds)
	}
	b.persistentKeepalive = seconds
	b.hasKeepalive = true
	return nil
}

// SetPreSharedKey sets the preshared key.
func (b *PeerBuilder) SetPreSharedKey(key crypto.Key) *PeerBuilder {
	b.preSharedKey = key
	b.hasPreSharedKey = true
	return b
}

// SetPublicKey sets the peer's public key.
func (b *PeerBuilder) SetPublicKey(key crypto.Key) *PeerBuilder {
	b.publicKey = &key
	return b
}

// ParseAllowedIPs parses a comma-separated list of networks.
func (b *PeerBuilder) ParseAllowedIPs(value string) error {
	for _, s := range splitList(value) {
		network, err := ParseInetNetwork(s)
		if err != nil {
			return err
		}
		b.AddAllowedIP(network)
	}
	return nil
}

// ParseEndpoint parses a "host:port" endpoint.
func (b *PeerBuilder) ParseEndpoint(value string) error {
	endpoint, err := ParseEndpoint(value)
	if err != nil {
		return err
	}
	b.SetEndpoint(endpoint)
	return nil
}

// ParsePersistentKeepalive parses a decimal keepalive interval. Zero is the
// conventional "disabled" spelling and leaves the field absent.
func (b *PeerBuilder) ParsePersistentKeepalive(value string) error {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return newError(KindInvalidKeepalive, "", "parsing persistent keepalive %q: %v", value, err)
	}
	if seconds == 0 {
		b.persistentKeepalive = 0
		b.hasKeepalive = false
		return nil
	}
	return b.SetPersistentKeepalive(seconds)
}

// ParsePreSharedKey parses a base64 preshared key.
func (b *PeerBuilder) ParsePreSharedKey(value string) error {
	key, err := crypto.ParseKey(value)
	if err != nil {
		return &ParseError{Kind: KindInvalidKey, Err: err}
	}
	b.SetPreSharedKey(key)
	return nil
}

// ParsePublicKey parses a base64 public key.
func (b *PeerBuilder) ParsePublicKey(value string) error {
	key, err := crypto.ParseKey(value)
	if err != nil {
		return &ParseError{Kind: KindInvalidKey, Err: err}
	}
	b.SetPublicKey(key)
	return nil
}

// Build freezes the accumulated attributes into a Peer.
func (b *PeerBuilder) Build() (*Peer, error) {
	if b.publicKey == nil {
		return nil, newError(KindMissingField, "", "peers must have a public key")
	}
	return &Peer{
		allowedIPs:          slices.Clone(b.allowedIPs),
		endpoint:            b.endpoint,
		hasEndpoint:         b.hasEndpoint,
		persistentKeepalive: b.persistentKeepalive,
		hasKeepalive:        b.hasKeepalive,
		preSharedKey:        b.preSharedKey,
		hasPreSharedKey:     b.hasPreSharedKey,
		publicKey:           *b.publicKey,
	}, nil
}
