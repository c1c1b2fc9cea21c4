package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"

	"github.com/luvyouso/wireguard-android/cmd"
	"github.com/luvyouso/wireguard-android/cmd/wg-provision/planner"
	"github.com/luvyouso/wireguard-android/cmd/wg-provision/systemd"
	"github.com/luvyouso/wireguard-android/config"
)

const (
	confFormat = "%s.conf"
	pngFormat  = "%s.png"
	lockFormat = ".wg-provision-%s"
)

func main() {
	confFile := flag.String("conf", cmd.DefaultPlanTomlName, "network plan toml file")
	outDir := flag.String("out", cmd.DefaultOutputDir, "directory for the generated conf files")
	enableDbus := flag.Bool("dbus", false, "enable dbus systemd management")
	version := flag.Bool("version", false, "version")
	flag.Parse()

	if *version {
		fmt.Fprint(os.Stderr, cmd.BuildVersionOutput("Wg-Provision"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var plan planner.Plan
	if _, err := toml.DecodeFile(*confFile, &plan); err != nil {
		cmd.Log.Fatalln("invalid toml plan file:", err)
	}

	result, err := planner.Generate(&plan)
	if err != nil {
		cmd.Log.Fatalln("planning failure:", err)
	}

	if err := writeResult(*outDir, result); err != nil {
		cmd.Log.Fatalln(err)
	}

	manager := systemd.NewManager(*enableDbus)
	if err := manager.Enable(ctx, result.InterfaceName); err != nil {
		cmd.Log.Fatalln("failure enabling service:", err)
	}
	if err := manager.Restart(ctx, result.InterfaceName); err != nil {
		cmd.Log.Fatalln("failure restarting service:", err)
	}
}

func writeResult(dir string, result *planner.Result) error {
	fLock := flock.New(path.Join(os.TempDir(), fmt.Sprintf(lockFormat, result.InterfaceName)))
	if ok, err := fLock.TryLock(); err != nil {
		return err
	} else if !ok {
		return errors.New("another instance is currently running")
	}
	defer fLock.Unlock()

	if err := os.MkdirAll(dir, 0o740); err != nil {
		return err
	}

	if err := writeConf(path.Join(dir, fmt.Sprintf(confFormat, result.InterfaceName)), result.Server); err != nil {
		return err
	}
	cmd.Log.Infoln("wrote server conf -", result.InterfaceName)

	for _, client := range result.Clients {
		if err := writeConf(path.Join(dir, fmt.Sprintf(confFormat, client.Name)), client.Config); err != nil {
			return err
		}
		if client.GenerateQR {
			qrPath := path.Join(dir, fmt.Sprintf(pngFormat, client.Name))
			if err := cmd.WriteQRPNG(qrPath, client.Config.WgQuickString()); err != nil {
				return err
			}
		}
		cmd.Log.Infoln("successfully created client -", client.Name)
	}
	return nil
}

// Conf files carry private keys, so they are not group readable.
func writeConf(fPath string, conf *config.Config) error {
	f, err := os.OpenFile(fPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := fmt.Fprint(f, conf.WgQuickString()); err != nil {
		return err
	}
	return nil
}
