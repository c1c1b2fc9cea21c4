// Package systemd drives wg-quick systemd units over the D-Bus API. With
// management disabled every call is simulated and logged, so the tool can
// run on hosts without systemd or as a non-root user.
package systemd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/luvyouso/wireguard-android/cmd"
)

const (
	serviceFormat = "wg-quick@%s.service"
	modeReplace   = "replace"

	// systemd needs a moment to act on a dispatched job.
	// TODO: wait for the systemd1 JobRemoved signal instead.
	settleTime = 2 * time.Second
)

// refer: https://www.freedesktop.org/software/systemd/man/latest/org.freedesktop.systemd1.html

/**
EnableUnitFiles(in  as files,
                in  b runtime,
                in  b force,
                out b carries_install_info,
                out a(sss) changes);
*/

/**
RestartUnit(in  s name,
            in  s mode,
            out o job);
*/

type Changes struct {
	TypeOfChange string
	FileName     string
	Destination  string
}

type CarriesInstallInfo bool

type Manager struct {
	m       sync.Mutex
	conn    *dbus.Conn
	obj     dbus.BusObject
	enabled bool
}

// NewManager returns a manager for the system bus. With enabled false the
// systemd calls are simulated.
func NewManager(enabled bool) *Manager {
	return &Manager{enabled: enabled}
}

func (d *Manager) connect() (err error) {
	d.conn, err = dbus.ConnectSystemBus()
	if err != nil {
		return err
	}
	d.obj = d.conn.Object("org.freedesktop.systemd1", "/org/freedesktop/systemd1")
	return nil
}

func (d *Manager) disconnect() error {
	return d.conn.Close()
}

// Enable enables wg-quick@<iface>.service so the tunnel comes up on boot.
func (d *Manager) Enable(ctx context.Context, iface string) error {
	d.m.Lock()
	defer d.m.Unlock()

	service := fmt.Sprintf(serviceFormat, iface)

	if !d.enabled {
		cmd.Log.Infoln("simulating enable service:", service)
		return nil
	}

	if err := d.connect(); err != nil {
		return err
	}
	defer d.disconnect()

	var carriesInstallInfo CarriesInstallInfo
	var changes []Changes

	call := d.obj.CallWithContext(ctx, "org.freedesktop.systemd1.Manager.EnableUnitFiles", 0, []string{service}, false, false)
	if call.Err != nil {
		return call.Err
	}
	if err := call.Store(&carriesInstallInfo, &changes); err != nil {
		return err
	}

	if len(changes) == 0 {
		cmd.Log.Infoln("service is already previously enabled:", service)
	} else {
		cmd.Log.Infoln("service enabled - file:", changes[0].FileName, ", dest:", changes[0].Destination)
	}
	return d.settle(ctx)
}

// Restart restarts wg-quick@<iface>.service, starting it when it is not
// yet running.
func (d *Manager) Restart(ctx context.Context, iface string) error {
	d.m.Lock()
	defer d.m.Unlock()

	service := fmt.Sprintf(serviceFormat, iface)

	if !d.enabled {
		cmd.Log.Infoln("simulating restart service:", service)
		return nil
	}

	if err := d.connect(); err != nil {
		return err
	}
	defer d.disconnect()

	call := d.obj.CallWithContext(ctx, "org.freedesktop.systemd1.Manager.RestartUnit", 0, service, modeReplace)
	if call.Err != nil {
		return call.Err
	}
	cmd.Log.Infoln("successfully dispatched restart job")
	return d.settle(ctx)
}

func (d *Manager) settle(ctx context.Context) error {
	select {
	case <-time.After(settleTime):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
