// Package backend renders parsed tunnel documents into the representation
// consumed by wgctrl device clients, bridging the configuration model to
// kernel and userspace WireGuard implementations.
package backend

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/luvyouso/wireguard-android/config"
)

// DeviceConfig converts cfg for application to a WireGuard device. The whole
// device state is replaced: existing peers and allowed IPs not present in cfg
// are removed by the apply.
//
// Peer endpoints with hostnames are resolved here. A peer whose endpoint
// cannot currently be resolved is configured without one, mirroring the
// parser's tolerance of unresolvable names; such a peer completes its
// handshake once the remote initiates.
func DeviceConfig(ctx context.Context, cfg *config.Config) (wgtypes.Config, error) {
	iface := cfg.Interface()
	private, err := wgtypes.NewKey(iface.KeyPair().PrivateKey().Bytes())
	if err != nil {
		return wgtypes.Config{}, fmt.Errorf("converting private key: %w", err)
	}
	device := wgtypes.Config{
		PrivateKey:   &private,
		ReplacePeers: true,
	}
	if port, ok := iface.ListenPort(); ok {
		device.ListenPort = &port
	}
	for _, peer := range cfg.Peers() {
		public, err := wgtypes.NewKey(peer.PublicKey().Bytes())
		if err != nil {
			return wgtypes.Config{}, fmt.Errorf("converting public key: %w", err)
		}
		pc := wgtypes.PeerConfig{
			PublicKey:         public,
			ReplaceAllowedIPs: true,
		}
		if psk, ok := peer.PreSharedKey(); ok {
			key, err := wgtypes.NewKey(psk.Bytes())
			if err != nil {
				return wgtypes.Config{}, fmt.Errorf("converting preshared key: %w", err)
			}
			pc.PresharedKey = &key
		}
		if ep, ok := peer.Endpoint(); ok {
			if ap, resolved := ep.Resolve(ctx); resolved {
				pc.Endpoint = &net.UDPAddr{
					IP:   ap.Addr().AsSlice(),
					Port: int(ap.Port()),
					Zone: ap.Addr().Zone(),
				}
			}
		}
		if seconds, ok := peer.PersistentKeepalive(); ok {
			interval := time.Duration(seconds) * time.Second
			pc.PersistentKeepaliveInterval = &interval
		}
		for _, network := range peer.AllowedIPs() {
			pc.AllowedIPs = append(pc.AllowedIPs, net.IPNet{
				IP:   network.Address().AsSlice(),
				Mask: net.CIDRMask(network.PrefixLength(), network.Address().BitLen()),
			})
		}
		device.Peers = append(device.Peers, pc)
	}
	return device, nil
}
