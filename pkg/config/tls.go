package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

type TLSConfig struct {
	Enabled             bool     `mapstructure:"enabled"`
	CertFile            string   `mapstructure:"cert_file"`
	KeyFile             string   `mapstructure:"key_file"`
	CACert              string   `mapstructure:"ca_cert"`
	EnableMTLS          bool     `mapstructure:"enable_mtls"`
	DisableSystemCAPool bool     `mapstructure:"disable_system_ca_pool"`
	MaxVersion          string   `mapstructure:"max_version"`
	CipherSuites        []uint16 `mapstructure:"cipher_suites"`
	CurvePreferences    []uint16 `mapstructure:"curve_preferences"`
}

// BuildTLSConfig returns nil when TLS is not enabled.
func BuildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(resolvePath(cfg.CertFile), resolvePath(cfg.KeyFile))
	if err != nil {
		return nil, fmt.Errorf("load X509 key pair: %w", err)
	}

	var clientCAs *x509.CertPool
	if cfg.DisableSystemCAPool {
		clientCAs = x509.NewCertPool()
	} else {
		clientCAs, err = x509.SystemCertPool()
		if err != nil {
			return nil, err
		}
	}

	if cfg.CACert != "" {
		caBytes, err := os.ReadFile(resolvePath(cfg.CACert)) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		if ok := clientCAs.AppendCertsFromPEM(caBytes); !ok {
			return nil, fmt.Errorf("failed to append CA certificate from %s", cfg.CACert)
		}
	}

	var curvePrefs []tls.CurveID
	for _, c := range cfg.CurvePreferences {
		curvePrefs = append(curvePrefs, tls.CurveID(c))
	}

	config := &tls.Config{
		Certificates:     []tls.Certificate{cert},
		MinVersion:       tls.VersionTLS12,
		MaxVersion:       tlsVersion(cfg.MaxVersion),
		CurvePreferences: curvePrefs,
		CipherSuites:     cfg.CipherSuites,
		ClientCAs:        clientCAs,
	}
	if cfg.EnableMTLS {
		config.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return config, nil
}

func resolvePath(path string) string {
	return filepath.Clean(path)
}

func tlsVersion(version string) uint16 {
	switch version {
	case "TLS12":
		return tls.VersionTLS12
	default:
		return tls.VersionTLS13
	}
}
