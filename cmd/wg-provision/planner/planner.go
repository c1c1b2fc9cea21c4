// Package planner turns a TOML network plan into wg-quick documents: one
// for the server interface and one per client, generating key material and
// allocating addresses along the way.
package planner

import (
	"fmt"

	"github.com/luvyouso/wireguard-android/config"
	"github.com/luvyouso/wireguard-android/crypto"
)

// ClientConfig pairs a client's name with its generated document.
type ClientConfig struct {
	Name       string
	GenerateQR bool
	Config     *config.Config
}

// Result holds every document generated from one plan.
type Result struct {
	InterfaceName string
	Server        *config.Config
	Clients       []ClientConfig
}

// Generate keys and addresses every client in the plan and assembles the
// server document plus one client document each. The first client sits one
// above the server address in each network, the second two above, and so
// on.
func Generate(plan *Plan) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	serverPair, err := serverKeyPair(plan.Server.PrivateKey)
	if err != nil {
		return nil, err
	}

	listenPort := plan.Server.ListenPort
	if listenPort == 0 {
		listenPort = int(plan.Server.Endpoint.Port())
	}

	ifaceBuilder := &config.InterfaceBuilder{}
	ifaceBuilder.SetKeyPair(serverPair)
	if err := ifaceBuilder.SetListenPort(listenPort); err != nil {
		return nil, err
	}
	for _, network := range plan.Server.Networks {
		ifaceBuilder.AddAddress(network)
	}
	serverIface, err := ifaceBuilder.Build()
	if err != nil {
		return nil, err
	}

	serverDoc := (&config.ConfigBuilder{}).SetInterface(serverIface)
	routes := clientRoutes(plan.Defaults.ExcludePrivateIPs)

	result := &Result{InterfaceName: plan.Server.InterfaceName}
	for i, client := range plan.Clients {
		doc, serverSide, err := buildClient(plan, serverPair, routes, i+1)
		if err != nil {
			return nil, fmt.Errorf("client %q: %w", client.Name, err)
		}
		serverDoc.AddPeer(serverSide)
		result.Clients = append(result.Clients, ClientConfig{
			Name:       client.Name,
			GenerateQR: client.GenerateQR,
			Config:     doc,
		})
	}

	server, err := serverDoc.Build()
	if err != nil {
		return nil, err
	}
	result.Server = server
	return result, nil
}

// buildClient assembles one client's document and the peer entry that
// represents the client in the server document. The two share the client
// key pair and, when enabled, a preshared key.
func buildClient(plan *Plan, serverPair crypto.KeyPair, routes []config.InetNetwork, increment int) (doc *config.Config, serverSide *config.Peer, err error) {
	clientAddrs, hostRoutes, err := nextAddresses(plan.Server.Networks, increment)
	if err != nil {
		return nil, nil, err
	}

	clientPair, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}

	var psk crypto.Key
	hasPsk := plan.Defaults.WithPresharedKeys
	if hasPsk {
		if psk, err = crypto.GeneratePresharedKey(); err != nil {
			return nil, nil, err
		}
	}

	ifaceBuilder := &config.InterfaceBuilder{}
	ifaceBuilder.SetKeyPair(clientPair)
	for _, addr := range clientAddrs {
		ifaceBuilder.AddAddress(addr)
	}
	for _, dns := range plan.Server.DNS {
		ifaceBuilder.AddDNSServer(dns)
	}
	if plan.Server.MTU != 0 {
		if err := ifaceBuilder.SetMTU(plan.Server.MTU); err != nil {
			return nil, nil, err
		}
	}
	clientIface, err := ifaceBuilder.Build()
	if err != nil {
		return nil, nil, err
	}

	serverPeer := (&config.PeerBuilder{}).
		SetPublicKey(serverPair.PublicKey()).
		SetEndpoint(plan.Server.Endpoint)
	for _, route := range routes {
		serverPeer.AddAllowedIP(route)
	}
	if plan.Defaults.PersistentKeepalive > 0 {
		if err := serverPeer.SetPersistentKeepalive(plan.Defaults.PersistentKeepalive); err != nil {
			return nil, nil, err
		}
	}
	if hasPsk {
		serverPeer.SetPreSharedKey(psk)
	}
	asPeer, err := serverPeer.Build()
	if err != nil {
		return nil, nil, err
	}

	doc, err = (&config.ConfigBuilder{}).SetInterface(clientIface).AddPeer(asPeer).Build()
	if err != nil {
		return nil, nil, err
	}

	clientPeer := (&config.PeerBuilder{}).SetPublicKey(clientPair.PublicKey())
	for _, route := range hostRoutes {
		clientPeer.AddAllowedIP(route)
	}
	if hasPsk {
		clientPeer.SetPreSharedKey(psk)
	}
	serverSide, err = clientPeer.Build()
	if err != nil {
		return nil, nil, err
	}
	return doc, serverSide, nil
}

func serverKeyPair(private crypto.Key) (crypto.KeyPair, error) {
	if private.IsZero() {
		return crypto.GenerateKeyPair()
	}
	return crypto.NewKeyPair(private), nil
}
