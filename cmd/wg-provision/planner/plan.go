package planner

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/luvyouso/wireguard-android/config"
	"github.com/luvyouso/wireguard-android/crypto"
)

// Plan is the TOML network description consumed by wg-provision: one
// server interface and the clients to be keyed and addressed for it.
type Plan struct {
	Server   Server   `toml:"Server"`
	Defaults Defaults `toml:"Defaults"`
	Clients  []Client `toml:"Clients"`
}

type Server struct {
	InterfaceName string               `toml:"InterfaceName"`
	Endpoint      config.Endpoint      `toml:"Endpoint"`
	Networks      []config.InetNetwork `toml:"Network"`
	DNS           []netip.Addr         `toml:"DNS"`
	ListenPort    int                  `toml:"ListenPort"`
	MTU           int                  `toml:"MTU"`
	// PrivateKey is optional; a key pair is generated when it is absent.
	PrivateKey crypto.Key `toml:"PrivateKey"`
}

type Defaults struct {
	PersistentKeepalive int  `toml:"PersistentKeepalive"`
	WithPresharedKeys   bool `toml:"WithPresharedKeys"`
	ExcludePrivateIPs   bool `toml:"ExcludePrivateIPs"`
}

type Client struct {
	Name       string `toml:"Name"`
	GenerateQR bool   `toml:"GenerateQR"`
}

func (p *Plan) Validate() error {
	if p.Server.InterfaceName == "" {
		return errors.New("plan has no interface name")
	}
	if p.Server.Endpoint.Port() == 0 {
		return errors.New("plan has no endpoint")
	}
	if len(p.Server.Networks) == 0 {
		return errors.New("plan has no server networks")
	}
	if p.Defaults.PersistentKeepalive < 0 {
		return errors.New("persistent keepalive must not be negative")
	}
	if len(p.Clients) == 0 {
		return errors.New("plan has no clients")
	}
	seen := make(map[string]bool, len(p.Clients))
	for _, c := range p.Clients {
		if c.Name == "" {
			return errors.New("client with empty name")
		}
		if strings.ContainsAny(c.Name, `/\`) {
			return fmt.Errorf("client name %q is not a usable file name", c.Name)
		}
		if c.Name == p.Server.InterfaceName {
			return fmt.Errorf("client name %q collides with the interface name", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate client name %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
