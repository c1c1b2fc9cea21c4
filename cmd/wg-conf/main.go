package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luvyouso/wireguard-android/cmd"
	"github.com/luvyouso/wireguard-android/config"
	"github.com/luvyouso/wireguard-android/crypto"
)

func main() {
	genKey := flag.Bool("genkey", false, "generate a private key and print it")
	pubKey := flag.Bool("pubkey", false, "read a private key on stdin and print its public key")
	genPsk := flag.Bool("genpsk", false, "generate a pre-shared key and print it")
	confFile := flag.String("conf", "", "wg-quick conf file to load")
	canon := flag.Bool("canon", false, "print the loaded conf file in canonical form")
	qrFile := flag.String("qr", "", "write the loaded conf file as a QR code png")
	version := flag.Bool("version", false, "version")
	flag.Parse()

	if *version {
		fmt.Fprint(os.Stderr, cmd.BuildVersionOutput("Wg-Conf"))
		return
	}

	var err error
	switch {
	case *genKey:
		err = printPrivateKey()
	case *pubKey:
		err = printDerivedPublicKey(os.Stdin)
	case *genPsk:
		err = printPresharedKey()
	case *confFile != "":
		err = runConf(*confFile, *canon, *qrFile)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		cmd.Log.Fatalln(err)
	}
}

func printPrivateKey() error {
	pair, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	fmt.Println(pair.PrivateKey().String())
	return nil
}

func printDerivedPublicKey(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	private, err := crypto.ParseKey(strings.TrimSpace(string(raw)))
	if err != nil {
		return err
	}
	fmt.Println(crypto.NewKeyPair(private).PublicKey().String())
	return nil
}

func printPresharedKey() error {
	psk, err := crypto.GeneratePresharedKey()
	if err != nil {
		return err
	}
	fmt.Println(psk.String())
	return nil
}

func runConf(path string, canon bool, qrPath string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, err := config.Parse(f)
	if err != nil {
		return err
	}

	if canon {
		fmt.Print(cfg.WgQuickString())
	}
	if qrPath != "" {
		if err := cmd.WriteQRPNG(qrPath, cfg.WgQuickString()); err != nil {
			return err
		}
		cmd.Log.Infoln("qr code written to", qrPath)
	}
	if !canon && qrPath == "" {
		fmt.Println(cfg.String())
		for _, peer := range cfg.Peers() {
			fmt.Println(" ", peer.String())
		}
	}
	return nil
}
