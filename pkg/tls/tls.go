// SPDX-License-Identifier: Apache-2.0

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Config of the TLS connection to the search target. Certificates and keys
// accept either PEM content or the path to a PEM file.
type Config struct {
	Enabled bool
	// CACert used to verify the server. The system pool is used when empty.
	CACert     string
	ClientCert string
	ClientKey  string
	// InsecureSkipVerify disables the server certificate verification.
	InsecureSkipVerify bool
}

const pemPrefix = "-----BEGIN"

var (
	errInvalidCACert      = errors.New("no valid certificates found in CA PEM")
	errIncompleteKeyPair  = errors.New("client certificate and key must be provided together")
	errUnexpectedPEMInput = errors.New("empty PEM input")
)

// NewConfig returns the TLS configuration on input, or nil when TLS is not
// enabled.
func NewConfig(cfg *Config) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	rootCAs, err := cfg.certPool()
	if err != nil {
		return nil, err
	}

	certificates, err := cfg.certificates()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		Certificates:       certificates,
		RootCAs:            rootCAs,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}, nil
}

func (c *Config) certPool() (*x509.CertPool, error) {
	if c.CACert == "" {
		return x509.SystemCertPool()
	}

	pemBytes, err := readPEM(c.CACert)
	if err != nil {
		return nil, fmt.Errorf("reading CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, errInvalidCACert
	}
	return pool, nil
}

func (c *Config) certificates() ([]tls.Certificate, error) {
	switch {
	case c.ClientCert == "" && c.ClientKey == "":
		return []tls.Certificate{}, nil
	case c.ClientCert == "" || c.ClientKey == "":
		return nil, errIncompleteKeyPair
	}

	certBytes, err := readPEM(c.ClientCert)
	if err != nil {
		return nil, fmt.Errorf("reading client certificate: %w", err)
	}
	keyBytes, err := readPEM(c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("reading client key: %w", err)
	}

	cert, err := tls.X509KeyPair(certBytes, keyBytes)
	if err != nil {
		return nil, err
	}
	return []tls.Certificate{cert}, nil
}

// readPEM returns the PEM bytes of the input, reading them from file unless
// the input is PEM content already.
func readPEM(input string) ([]byte, error) {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return nil, errUnexpectedPEMInput
	case strings.HasPrefix(trimmed, pemPrefix):
		return []byte(input), nil
	default:
		return os.ReadFile(input)
	}
}
