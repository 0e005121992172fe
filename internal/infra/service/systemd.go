// Package service installs and removes the optional systemd unit that keeps
// a tunnel running in the background. Requires elevated privilege.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	domerr "tunnelctl/internal/domain/errors"
)

// unitTemplate is the systemd unit generated per tunnel.
var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=cloudflared tunnel for {{ .Name }}
After=network-online.target
Wants=network-online.target

[Service]
ExecStart={{ .Binary }} tunnel --config {{ .ConfigPath }} run {{ .Name }}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`))

type unitParams struct {
	Name       string
	Binary     string
	ConfigPath string
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Registrar manages per-tunnel systemd units.
type Registrar struct {
	logger  *slog.Logger
	unitDir string
	binary  string
	run     runFunc
}

func NewRegistrar(unitDir, cloudflaredBinary string, logger *slog.Logger) *Registrar {
	return &Registrar{
		logger:  logger,
		unitDir: unitDir,
		binary:  cloudflaredBinary,
		run:     runCombined,
	}
}

// UnitName derives the unit name deterministically from the tunnel name.
func UnitName(name string) string {
	return "cloudflared-" + name + ".service"
}

func (r *Registrar) unitPath(name string) string {
	return filepath.Join(r.unitDir, UnitName(name))
}

// Installed reports whether a unit descriptor exists for the tunnel.
func (r *Registrar) Installed(name string) bool {
	_, err := os.Stat(r.unitPath(name))
	return err == nil
}

// Install writes the unit descriptor, reloads systemd, enables the unit for
// persistence across restarts and starts it immediately.
func (r *Registrar) Install(ctx context.Context, name, configPath string) error {
	var buf bytes.Buffer
	params := unitParams{Name: name, Binary: r.binary, ConfigPath: configPath}
	if err := unitTemplate.Execute(&buf, params); err != nil {
		return domerr.ServiceError{Op: "render unit", Err: err}
	}

	path := r.unitPath(name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return domerr.ServiceError{Op: "write unit", Err: err}
	}

	unit := UnitName(name)
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", unit},
		{"start", unit},
	} {
		if out, err := r.run(ctx, "systemctl", args...); err != nil {
			return domerr.ServiceError{
				Op:  "systemctl " + strings.Join(args, " "),
				Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))),
			}
		}
	}

	r.logger.Info("service installed", "unit", unit)
	return nil
}

// Remove stops and disables the unit and deletes its descriptor. A missing
// descriptor is a no-op, so calling Remove twice is safe. A failed stop
// aborts: leaving a running unit pointing at a deleted tunnel is worse than
// stopping early.
func (r *Registrar) Remove(ctx context.Context, name string) error {
	path := r.unitPath(name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	unit := UnitName(name)
	if out, err := r.run(ctx, "systemctl", "stop", unit); err != nil {
		return domerr.ServiceError{
			Op:  "systemctl stop " + unit,
			Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out))),
		}
	}

	if out, err := r.run(ctx, "systemctl", "disable", unit); err != nil {
		r.logger.Warn("systemctl disable failed", "unit", unit, "err", err, "output", strings.TrimSpace(string(out)))
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domerr.ServiceError{Op: "remove unit", Err: err}
	}

	if out, err := r.run(ctx, "systemctl", "daemon-reload"); err != nil {
		r.logger.Warn("systemctl daemon-reload failed", "err", err, "output", strings.TrimSpace(string(out)))
	}

	r.logger.Info("service removed", "unit", unit)
	return nil
}
