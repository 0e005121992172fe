// Package lifecycle orchestrates the create and delete sequences that keep
// local configuration, provider-side tunnel identity, DNS records and
// optional systemd units consistent with each other.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
	"tunnelctl/internal/validate"
)

// Provider is the control surface of the external tunneling daemon.
type Provider interface {
	Create(ctx context.Context, name string) (remoteID, rawOutput string, err error)
	RouteDNS(ctx context.Context, name, hostname string) error
	Cleanup(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

// RecordManager resolves and deletes DNS records in the configured zone.
type RecordManager interface {
	FindRecordID(ctx context.Context, hostname string) (string, error)
	DeleteRecord(ctx context.Context, recordID string) error
}

// ConfigStore persists the per-tunnel configuration artifact.
type ConfigStore interface {
	Path(name string) string
	Exists(name string) bool
	Build(t domain.Tunnel) domain.TunnelConfig
	Write(name string, cfg domain.TunnelConfig) error
	Read(name string) (*domain.TunnelConfig, error)
	Hostname(cfg *domain.TunnelConfig) (string, error)
	Remove(name string) error
}

// Registrar manages the optional background-service descriptor.
type Registrar interface {
	Installed(name string) bool
	Install(ctx context.Context, name, configPath string) error
	Remove(ctx context.Context, name string) error
}

// Coordinator runs single-tunnel lifecycle operations, sequential and
// synchronous. Concurrent invocations against the same name are not guarded.
type Coordinator struct {
	provider Provider
	dns      RecordManager
	store    ConfigStore
	services Registrar
	domain   string
	logger   *slog.Logger
}

func NewCoordinator(provider Provider, dns RecordManager, store ConfigStore, services Registrar, baseDomain string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		provider: provider,
		dns:      dns,
		store:    store,
		services: services,
		domain:   baseDomain,
		logger:   logger,
	}
}

// CreateInput carries the raw operator-supplied arguments for create.
// Port arrives unparsed so that non-numeric input surfaces as InvalidPort.
type CreateInput struct {
	Name           string
	Port           string
	Subdomain      string
	InstallService bool
}

// CreateResult reports what the create sequence reached. ManualStart is set
// when service installation was requested but failed; the tunnel itself is
// still fully created.
type CreateResult struct {
	Tunnel      domain.Tunnel
	ManualStart bool
	ServiceErr  error
}

// Create runs: Validated -> ProviderRegistered -> ConfigWritten ->
// DnsRouted -> (ServiceInstalled | ManualStartPending). Each step requires
// the previous one; a failure aborts with no rollback of earlier steps, and
// the operator runs delete to recover.
func (c *Coordinator) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	if err := validate.Name(in.Name); err != nil {
		return nil, err
	}
	port, err := validate.Port(in.Port)
	if err != nil {
		return nil, err
	}
	if err := validate.Subdomain(in.Subdomain); err != nil {
		return nil, err
	}
	if c.store.Exists(in.Name) {
		return nil, fmt.Errorf("tunnel %q already has a local config at %s; delete it first", in.Name, c.store.Path(in.Name))
	}

	remoteID, _, err := c.provider.Create(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	tunnel := domain.Tunnel{
		Name:       in.Name,
		RemoteID:   remoteID,
		Port:       port,
		Subdomain:  in.Subdomain,
		Hostname:   in.Subdomain + "." + c.domain,
		ConfigPath: c.store.Path(in.Name),
	}

	if err := c.store.Write(in.Name, c.store.Build(tunnel)); err != nil {
		return nil, fmt.Errorf("tunnel %q is registered but its config could not be written (run delete to clean up): %w", in.Name, err)
	}

	if err := c.provider.RouteDNS(ctx, in.Name, tunnel.Hostname); err != nil {
		return nil, err
	}

	result := &CreateResult{Tunnel: tunnel}
	if !in.InstallService {
		result.ManualStart = true
		return result, nil
	}

	// A failed install does not roll back the created tunnel; the operator
	// is told to start it manually instead.
	if err := c.services.Install(ctx, in.Name, tunnel.ConfigPath); err != nil {
		c.logger.Warn("service install failed, tunnel must be started manually",
			"name", in.Name, "err", err)
		result.ManualStart = true
		result.ServiceErr = err
		return result, nil
	}

	tunnel.ServiceInstalled = true
	result.Tunnel = tunnel
	return result, nil
}

// Delete runs: ServiceStopped (hard, if installed) -> ConnectionsCleaned
// (best-effort) -> ProviderDeleted (hard) -> DNS record resolved and deleted
// (best-effort) -> LocalConfigRemoved. Everything after provider deletion is
// hygiene and logs a warning instead of aborting.
func (c *Coordinator) Delete(ctx context.Context, name string) error {
	if err := validate.Name(name); err != nil {
		return err
	}

	// Stopping a privileged service that points at a soon-to-be-deleted
	// tunnel must succeed before anything else is touched.
	if c.services.Installed(name) {
		if err := c.services.Remove(ctx, name); err != nil {
			return err
		}
	}

	if err := c.provider.Cleanup(ctx, name); err != nil {
		c.logger.Warn("connection cleanup failed", "name", name, "err", err)
	}

	if err := c.provider.Delete(ctx, name); err != nil {
		return err
	}

	c.cleanupDNS(ctx, name)

	if err := c.store.Remove(name); err != nil {
		return err
	}

	c.logger.Info("tunnel deleted", "name", name)
	return nil
}

// cleanupDNS re-derives the hostname from the stored artifact and removes
// its DNS record. Every failure here is a warning: DNS cleanup is hygiene,
// not correctness-critical to the provider's view of tunnel existence.
func (c *Coordinator) cleanupDNS(ctx context.Context, name string) {
	cfg, err := c.store.Read(name)
	if err != nil {
		if errors.Is(err, domerr.ErrConfigNotFound) {
			c.logger.Warn("no local config, skipping dns cleanup", "name", name)
		} else {
			c.logger.Warn("could not read local config for dns cleanup", "name", name, "err", err)
		}
		return
	}

	hostname, err := c.store.Hostname(cfg)
	if err != nil {
		c.logger.Warn("could not derive hostname for dns cleanup", "name", name, "err", err)
		return
	}

	recordID, err := c.dns.FindRecordID(ctx, hostname)
	if errors.Is(err, domerr.ErrRecordNotFound) {
		c.logger.Info("no dns record to clean up", "hostname", hostname)
		return
	}
	if err != nil {
		c.logger.Warn("dns record lookup failed", "hostname", hostname, "err", err)
		return
	}

	if err := c.dns.DeleteRecord(ctx, recordID); err != nil {
		c.logger.Warn("dns record delete failed", "hostname", hostname, "record_id", recordID, "err", err)
		return
	}
	c.logger.Info("dns record removed", "hostname", hostname, "record_id", recordID)
}
