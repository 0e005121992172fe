// Package store persists one configuration artifact per tunnel on local
// disk, in the layout cloudflared reads back at run time.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
)

// Store reads and writes per-tunnel config artifacts under a fixed directory.
type Store struct {
	dir            string
	credentialsDir string
}

func New(dir, credentialsDir string) *Store {
	return &Store{dir: dir, credentialsDir: credentialsDir}
}

// Path derives the artifact path deterministically from the tunnel name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".yml")
}

// Exists reports whether an artifact already exists for the name.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Build assembles the config artifact for a tunnel: identity, credential
// file reference, and the ingress rules (hostname to local service, then
// the terminal catch-all).
func (s *Store) Build(t domain.Tunnel) domain.TunnelConfig {
	return domain.TunnelConfig{
		TunnelID:        t.RemoteID,
		CredentialsFile: filepath.Join(s.credentialsDir, t.RemoteID+".json"),
		Ingress: []domain.IngressRule{
			{Hostname: t.Hostname, Service: fmt.Sprintf("http://localhost:%d", t.Port)},
			{Service: "http_status:404"},
		},
	}
}

// Write serializes the artifact and verifies it exists on disk afterwards.
// The write is not considered durable until that verification passes.
func (s *Store) Write(name string, cfg domain.TunnelConfig) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal tunnel config: %w", err)
	}

	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tunnel config %s: %w", path, err)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("verify tunnel config %s: %w", path, err)
	}
	return nil
}

// Read loads the artifact for the named tunnel.
func (s *Store) Read(name string) (*domain.TunnelConfig, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domerr.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read tunnel config: %w", err)
	}

	var cfg domain.TunnelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tunnel config: %w", err)
	}
	return &cfg, nil
}

// ExtractSubdomain recovers the subdomain component from the artifact's
// first ingress hostname, for DNS cleanup at delete time.
func (s *Store) ExtractSubdomain(cfg *domain.TunnelConfig) (string, error) {
	for _, rule := range cfg.Ingress {
		if rule.Hostname == "" {
			continue
		}
		sub, _, found := strings.Cut(rule.Hostname, ".")
		if !found || sub == "" {
			return "", fmt.Errorf("ingress hostname %q has no subdomain component", rule.Hostname)
		}
		return sub, nil
	}
	return "", errors.New("config has no ingress rule with a hostname")
}

// Hostname returns the artifact's first ingress hostname.
func (s *Store) Hostname(cfg *domain.TunnelConfig) (string, error) {
	for _, rule := range cfg.Ingress {
		if rule.Hostname != "" {
			return rule.Hostname, nil
		}
	}
	return "", errors.New("config has no ingress rule with a hostname")
}

// Remove deletes the artifact. A missing artifact is already-clean.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove tunnel config: %w", err)
	}
	return nil
}
