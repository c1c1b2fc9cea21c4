// Package config models the contents of wg-quick configuration files: one
// [Interface] section and zero or more [Peer] sections, together with the
// value types used by their attributes.
//
// Parsing is tolerant of layout (comments, blank lines, attribute order,
// repeated list attributes, multiple [Interface] blocks) but strict about
// content: unknown attributes, malformed values, and out-of-range numbers
// fail with a *ParseError describing the failure. Serialization is
// canonical: for a given document the output is byte-for-byte deterministic,
// and parsing that output yields an equal document.
package config

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

const (
	sectionInterface = "[Interface]"
	sectionPeer      = "[Peer]"

	// maxLineLength lifts bufio.Scanner's 64KiB token cap; long
	// ExcludedApplications and AllowedIPs lists can exceed it.
	maxLineLength = 1 << 20
)

var (
	lineParser    = regexp.MustCompile(`^(\w+)\s*=\s*([^\s#][^#]*)$`)
	listSeparator = regexp.MustCompile(`\s*,\s*`)
)

// splitAttributeLine splits one section line into its key and value. The
// line has already been stripped of comments and surrounding whitespace.
func splitAttributeLine(line, section string) (key, value string, err error) {
	m := lineParser.FindStringSubmatch(line)
	if m == nil {
		return "", "", newError(KindMalformedLine, section, "bad configuration format: %q", line)
	}
	return m[1], m[2], nil
}

// splitList splits a comma-separated attribute value. Trailing empty
// elements, as produced by a trailing comma, are dropped.
func splitList(value string) []string {
	parts := listSeparator.Split(value, -1)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func joinStringers[T fmt.Stringer](items []T) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, ", ")
}

// Config is a parsed wg-quick document: exactly one logical interface and
// zero or more peers in document order.
//
// Instances are immutable; they are created through a ConfigBuilder or by
// Parse.
type Config struct {
	iface *Interface
	peers []*Peer
}

// Parse reads a wg-quick document from r. Comments start at '#' and run to
// end of line; lines are trimmed of surrounding whitespace; section headers
// are case-insensitive. A [Peer] block is parsed when the next header or the
// end of the stream is reached. All [Interface] blocks in the document are
// merged and parsed together once the stream is exhausted.
//
// Configuration failures are reported as *ParseError; errors from r are
// returned as-is.
func Parse(r io.Reader) (*Config, error) {
	b := &ConfigBuilder{}
	var interfaceLines []string
	var peerLines []string
	inInterfaceSection := false
	inPeerSection := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.EqualFold(line, sectionInterface):
			if inPeerSection {
				if err := b.ParsePeer(peerLines); err != nil {
					return nil, err
				}
				peerLines = peerLines[:0]
			}
			inInterfaceSection = true
			inPeerSection = false
		case strings.EqualFold(line, sectionPeer):
			if inPeerSection {
				if err := b.ParsePeer(peerLines); err != nil {
					return nil, err
				}
				peerLines = peerLines[:0]
			}
			inInterfaceSection = false
			inPeerSection = true
		case inInterfaceSection:
			interfaceLines = append(interfaceLines, line)
		case inPeerSection:
			peerLines = append(peerLines, line)
		default:
			return nil, newError(KindUnexpectedLine, "", "unexpected configuration line: %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if !inInterfaceSection && !inPeerSection {
		return nil, newError(KindEmptyDocument, "", "configuration contains no sections")
	}
	if inPeerSection {
		if err := b.ParsePeer(peerLines); err != nil {
			return nil, err
		}
	}
	if err := b.ParseInterface(interfaceLines); err != nil {
		return nil, err
	}
	return b.Build()
}

// Interface returns the document's interface.
func (c *Config) Interface() *Interface {
	return c.iface
}

// Peers returns the document's peers in document order.
func (c *Config) Peers() []*Peer {
	return slices.Clone(c.peers)
}

// String returns a concise single-line identifier for debugging: the
// interface identifier and the peer count.
func (c *Config) String() string {
	return fmt.Sprintf("(Config %s (%d peers))", c.iface, len(c.peers))
}

// WgQuickString renders the document as a wg-quick configuration file: the
// [Interface] section followed by one [Peer] section per peer, separated by
// blank lines.
func (c *Config) WgQuickString() string {
	var sb strings.Builder
	sb.WriteString(sectionInterface)
	sb.WriteByte('\n')
	sb.WriteString(c.iface.WgQuickString())
	for _, peer := range c.peers {
		sb.WriteByte('\n')
		sb.WriteString(sectionPeer)
		sb.WriteByte('\n')
		sb.WriteString(peer.WgQuickString())
	}
	return sb.String()
}

// ConfigBuilder accumulates an interface and peers. The zero value is ready
// to use. Build validates that an interface was provided and copies the peer
// list, so a builder may be reused without aliasing the built value.
type ConfigBuilder struct {
	iface *Interface
	peers []*Peer
}

// AddPeer appends a peer.
func (b *ConfigBuilder) AddPeer(peer *Peer) *ConfigBuilder {
	b.peers = append(b.peers, peer)
	return b
}

// SetInterface sets the document's interface, replacing any previous one.
func (b *ConfigBuilder) SetInterface(iface *Interface) *ConfigBuilder {
	b.iface = iface
	return b
}

// ParseInterface parses interface section lines and sets the result as the
// document's interface.
func (b *ConfigBuilder) ParseInterface(lines []string) error {
	iface, err := ParseInterface(lines)
	if err != nil {
		return err
	}
	b.SetInterface(iface)
	return nil
}

// ParsePeer parses peer section lines and appends the result.
func (b *ConfigBuilder) ParsePeer(lines []string) error {
	peer, err := ParsePeer(lines)
	if err != nil {
		return err
	}
	b.AddPeer(peer)
	return nil
}

// Build freezes the accumulated sections into a Config.
func (b *ConfigBuilder) Build() (*Config, error) {
	if b.iface == nil {
		return nil, newError(KindMissingField, "", "an [Interface] section is required")
	}
	return &Config{iface: b.iface, peers: slices.Clone(b.peers)}, nil
}
