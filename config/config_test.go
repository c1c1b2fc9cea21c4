package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/luvyouso/wireguard-android/crypto"
)

const (
	testPrivateKey   = "sDy6PGozYyAzXlAZEyWyPtpibexfi08uvPg9pQBknn0="
	testPublicKey    = "14nWLDf+tZ6CXwC6WNEq/VWsbOoSr/yggbyRX17goEM="
	testZeroKey      = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
	testPresharedKey = "//////////////////////////////////////////8="
)

const testTunnelInput = "# Demo tunnel with a gateway and a second device.\n" +
	"\n" +
	"[Interface]\n" +
	"Address = 10.100.0.2/32\n" +
	"DNS = 10.100.0.1   # resolver behind the tunnel\n" +
	"PrivateKey = " + testPrivateKey + "\n" +
	"\n" +
	"[peer]\n" +
	"PublicKey = " + testPublicKey + "\n" +
	"AllowedIPs = 0.0.0.0/0,::/0\n" +
	"Endpoint = demo.wireguard.com:12912\n" +
	"PersistentKeepalive = 25\n" +
	"\n" +
	"[Peer]\n" +
	"PublicKey = " + testZeroKey + "\n" +
	"AllowedIPs = 10.100.0.3/32\n"

const testTunnelCanonical = "[Interface]\n" +
	"Address = 10.100.0.2/32\n" +
	"DNS = 10.100.0.1\n" +
	"PrivateKey = " + testPrivateKey + "\n" +
	"\n" +
	"[Peer]\n" +
	"AllowedIPs = 0.0.0.0/0, ::/0\n" +
	"Endpoint = demo.wireguard.com:12912\n" +
	"PersistentKeepalive = 25\n" +
	"PublicKey = " + testPublicKey + "\n" +
	"\n" +
	"[Peer]\n" +
	"AllowedIPs = 10.100.0.3/32\n" +
	"PublicKey = " + testZeroKey + "\n"

func TestParseDocument(t *testing.T) {
	c, err := Parse(strings.NewReader(testTunnelInput))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	peers := c.Peers()
	if len(peers) != 2 {
		t.Fatalf("got %d peers, want 2", len(peers))
	}
	if got := peers[0].PublicKey().String(); got != testPublicKey {
		t.Fatalf("first peer key = %q", got)
	}
	if got := peers[1].PublicKey().String(); got != testZeroKey {
		t.Fatalf("second peer key = %q", got)
	}
	if got := c.WgQuickString(); got != testTunnelCanonical {
		t.Fatalf("WgQuickString() = %q, want %q", got, testTunnelCanonical)
	}
}

func TestParseSerializeStable(t *testing.T) {
	c, err := Parse(strings.NewReader(testTunnelCanonical))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c.WgQuickString(); got != testTunnelCanonical {
		t.Fatalf("canonical form is not a fixed point:\n%q\nwant\n%q", got, testTunnelCanonical)
	}
}

func TestParseMergesInterfaceSections(t *testing.T) {
	input := "[Interface]\n" +
		"Address = 10.0.0.2/32\n" +
		"\n" +
		"[Peer]\n" +
		"PublicKey = " + testPublicKey + "\n" +
		"\n" +
		"[Interface]\n" +
		"ListenPort = 51820\n" +
		"PrivateKey = " + testPrivateKey + "\n"
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	iface := c.Interface()
	if got := joinStringers(iface.Addresses()); got != "10.0.0.2/32" {
		t.Fatalf("Addresses = %q", got)
	}
	if port, ok := iface.ListenPort(); !ok || port != 51820 {
		t.Fatalf("ListenPort = %d, %t", port, ok)
	}
	if len(c.Peers()) != 1 {
		t.Fatalf("got %d peers, want 1", len(c.Peers()))
	}
}

func TestParseKeepsPeerOrderAndDuplicates(t *testing.T) {
	input := "[Interface]\n" +
		"PrivateKey = " + testPrivateKey + "\n" +
		"[Peer]\n" +
		"PublicKey = " + testPublicKey + "\n" +
		"[Peer]\n" +
		"PublicKey = " + testZeroKey + "\n" +
		"[Peer]\n" +
		"PublicKey = " + testPublicKey + "\n"
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	peers := c.Peers()
	if len(peers) != 3 {
		t.Fatalf("got %d peers, want 3", len(peers))
	}
	want := []string{testPublicKey, testZeroKey, testPublicKey}
	for i, peer := range peers {
		if got := peer.PublicKey().String(); got != want[i] {
			t.Fatalf("peer %d key = %q, want %q", i, got, want[i])
		}
	}
}

func TestParseTrailingPeerFlushed(t *testing.T) {
	input := "[Interface]\n" +
		"PrivateKey = " + testPrivateKey + "\n" +
		"[Peer]\n" +
		"PublicKey = " + testPublicKey // no trailing newline
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	peers := c.Peers()
	if len(peers) != 1 {
		t.Fatalf("got %d peers, want 1", len(peers))
	}
	if got := peers[0].PublicKey().String(); got != testPublicKey {
		t.Fatalf("peer key = %q", got)
	}
}

func TestParseLongLines(t *testing.T) {
	// Both oversized lines are far past bufio.Scanner's default 64KiB
	// token limit.
	var apps strings.Builder
	for i := 0; i < 4000; i++ {
		if i > 0 {
			apps.WriteString(", ")
		}
		fmt.Fprintf(&apps, "com.example.app%05d", i)
	}
	input := "# " + strings.Repeat("x", 100000) + "\n" +
		"[Interface]\n" +
		"PrivateKey = " + testPrivateKey + "\n" +
		"ExcludedApplications = " + apps.String() + "\n"
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(c.Interface().ExcludedApplications()); got != 4000 {
		t.Fatalf("got %d excluded applications, want 4000", got)
	}
}

func TestParseHeaderTolerance(t *testing.T) {
	input := "  [INTERFACE]  # header comment\n" +
		"PrivateKey = " + testPrivateKey + "\n"
	c, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := c.WgQuickString(), "[Interface]\nPrivateKey = "+testPrivateKey+"\n"; got != want {
		t.Fatalf("WgQuickString() = %q, want %q", got, want)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    Kind
		section string
	}{
		{"empty input", "", KindEmptyDocument, ""},
		{"only comments", "# one\n\n   # two\n", KindEmptyDocument, ""},
		{"line before any section", "Address = 10.0.0.1/32\n[Interface]\nPrivateKey = " + testPrivateKey + "\n", KindUnexpectedLine, ""},
		{"peer without interface", "[Peer]\nPublicKey = " + testPublicKey + "\n", KindMissingField, sectionInterface},
		{"interface without key", "[Interface]\nAddress = 10.0.0.2/32\n", KindMissingField, sectionInterface},
		{"bad peer line", "[Interface]\nPrivateKey = " + testPrivateKey + "\n[Peer]\nPublicKey ~ x\n", KindMalformedLine, sectionPeer},
		{"unknown peer attribute", "[Interface]\nPrivateKey = " + testPrivateKey + "\n[Peer]\nPublicKey = " + testPublicKey + "\nDNS = 10.0.0.1\n", KindUnknownAttribute, sectionPeer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("Parse succeeded")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if pe.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", pe.Kind, tt.kind)
			}
			if pe.Section != tt.section {
				t.Fatalf("section = %q, want %q", pe.Section, tt.section)
			}
		})
	}
}

func TestParseReaderError(t *testing.T) {
	readErr := errors.New("disk unplugged")
	_, err := Parse(iotest.ErrReader(readErr))
	if !errors.Is(err, readErr) {
		t.Fatalf("Parse error = %v, want wrapped %v", err, readErr)
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		t.Fatalf("reader error surfaced as *ParseError: %v", err)
	}
}

func TestConfigString(t *testing.T) {
	c, err := Parse(strings.NewReader(testTunnelInput))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := c.String(), "(Config (Interface "+testPublicKey+") (2 peers))"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestConfigBuilder(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	peerKey, err := crypto.ParseKey(testPublicKey)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	iface, err := (&InterfaceBuilder{}).
		SetKeyPair(kp).
		AddAddress(MustParseInetNetwork("10.200.0.1/24")).
		Build()
	if err != nil {
		t.Fatalf("building interface: %v", err)
	}
	peer, err := (&PeerBuilder{}).
		SetPublicKey(peerKey).
		AddAllowedIP(MustParseInetNetwork("10.200.0.2/32")).
		Build()
	if err != nil {
		t.Fatalf("building peer: %v", err)
	}
	c, err := (&ConfigBuilder{}).SetInterface(iface).AddPeer(peer).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	back, err := Parse(strings.NewReader(c.WgQuickString()))
	if err != nil {
		t.Fatalf("reparsing rendered config: %v", err)
	}
	if back.WgQuickString() != c.WgQuickString() {
		t.Fatalf("rendered config did not round trip")
	}
}

func TestConfigBuilderRequiresInterface(t *testing.T) {
	_, err := (&ConfigBuilder{}).Build()
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Kind != KindMissingField {
		t.Fatalf("Build error = %v, want kind %q", err, KindMissingField)
	}
}
