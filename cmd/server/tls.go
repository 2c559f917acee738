package main

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/atinyakov/profilepanel/internal/config"
)

// newTLSConfig returns nil when TLS is not configured. With a client CA set,
// client certificates are verified if given but not required.
func newTLSConfig(options *config.Options) (*tls.Config, error) {
	if options.TLSCert == "" {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load server TLS cert/key: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if options.ClientCA != "" {
		caCert, err := os.ReadFile(options.ClientCA)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
			return nil, errors.New("failed to append CA cert to pool")
		}
		tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
		tlsConfig.ClientCAs = caCertPool
	}

	return tlsConfig, nil
}
