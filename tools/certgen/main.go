// Package main generates a development CA with a server and a client
// certificate for running the account server over TLS:
//
//	certs/ca.crt, certs/ca.key
//	certs/server.crt, certs/server.key
//	certs/client.crt, certs/client.key
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/profilepanel/internal/certgen"
)

const (
	caValidity   = 10 * 365 * 24 * time.Hour
	leafValidity = 365 * 24 * time.Hour
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma separated server host names and IPs")
	client := flag.String("client", "profile-panel", "client certificate common name")
	flag.Parse()

	if err := generate(*dir, strings.Split(*hosts, ","), *client); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
}

// generate writes the CA, server and client pairs into dir.
func generate(dir string, hosts []string, clientCN string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	ca, err := certgen.NewCA("Profile Panel Dev CA", caValidity)
	if err != nil {
		return fmt.Errorf("ca: %w", err)
	}
	if err := ca.Write(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")); err != nil {
		return err
	}

	server, err := certgen.Issue(ca, hosts[0], hosts, leafValidity)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := server.Write(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key")); err != nil {
		return err
	}

	client, err := certgen.Issue(ca, clientCN, nil, leafValidity)
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return client.Write(filepath.Join(dir, "client.crt"), filepath.Join(dir, "client.key"))
}
