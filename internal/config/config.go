// Package config provides functionality for managing configuration options
// for the account server using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// LogLevel is the zap level name, e.g. "info" or "debug".
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// ClientCA verifies client certificates when they are presented.
	ClientCA string `json:"client_ca"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses the process arguments and environment. It exits on error.
func Parse() *Options {
	opts, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

// Load parses args, the JSON config file and environment variables, in that
// order, into Options.
func Load(args []string) (*Options, error) {
	options := &Options{}

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fset.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fset.StringVar(&options.LogLevel, "l", "info", "log level")
	fset.StringVar(&options.TLSCert, "tls-cert", "", "path to server TLS certificate")
	fset.StringVar(&options.TLSKey, "tls-key", "", "path to server TLS key")
	fset.StringVar(&options.ClientCA, "client-ca", "", "path to CA verifying client certificates")
	fset.StringVar(&options.Config, "config", "config.json", "path to config file")
	fset.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	if v := os.Getenv("TLS_CERT"); v != "" {
		options.TLSCert = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		options.TLSKey = v
	}
	if v := os.Getenv("CLIENT_CA"); v != "" {
		options.ClientCA = v
	}

	if (options.TLSCert == "") != (options.TLSKey == "") {
		return nil, errors.New("tls cert and key must be set together")
	}

	return options, nil
}
