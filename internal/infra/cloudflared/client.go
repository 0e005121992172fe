// Package cloudflared shells out to the cloudflared binary and translates
// its output into structured results. It owns no tunnel state itself;
// cloudflared is the source of truth for tunnel identity.
package cloudflared

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"

	"github.com/google/uuid"

	"tunnelctl/internal/domain"
	domerr "tunnelctl/internal/domain/errors"
)

// tunnelIDRe matches a UUID-shaped token anywhere in cloudflared's output.
var tunnelIDRe = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// runFunc executes a command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Client invokes the cloudflared control surface.
type Client struct {
	logger *slog.Logger
	binary string
	run    runFunc
}

func NewClient(binary string, logger *slog.Logger) *Client {
	return &Client{
		logger: logger,
		binary: binary,
		run:    runCombined,
	}
}

// Create registers a named tunnel and returns the provider-assigned
// identifier extracted from the output, plus the raw output. Output without
// a parseable UUID is never treated as success, regardless of exit code.
func (c *Client) Create(ctx context.Context, name string) (string, string, error) {
	out, err := c.run(ctx, c.binary, "tunnel", "create", name)
	raw := string(out)
	if err != nil {
		return "", raw, domerr.ProviderError{Op: "tunnel create", Output: raw, Err: err}
	}

	match := tunnelIDRe.FindString(raw)
	if match == "" {
		return "", raw, domerr.NoIdentifierError{Output: raw}
	}
	// Validate only; the identifier is returned exactly as printed.
	if _, err := uuid.Parse(match); err != nil {
		return "", raw, domerr.NoIdentifierError{Output: raw}
	}

	c.logger.Info("tunnel registered", "name", name, "id", match)
	return match, raw, nil
}

// RouteDNS points <hostname> at the named tunnel via cloudflared's own
// DNS routing command.
func (c *Client) RouteDNS(ctx context.Context, name, hostname string) error {
	out, err := c.run(ctx, c.binary, "tunnel", "route", "dns", name, hostname)
	if err != nil {
		return domerr.ProviderError{Op: "tunnel route dns", Output: string(out), Err: err}
	}
	c.logger.Info("dns route registered", "name", name, "hostname", hostname)
	return nil
}

// Cleanup drops stale connection state for the named tunnel. Callers treat
// its failure as best-effort.
func (c *Client) Cleanup(ctx context.Context, name string) error {
	out, err := c.run(ctx, c.binary, "tunnel", "cleanup", name)
	if err != nil {
		return domerr.ProviderError{Op: "tunnel cleanup", Output: string(out), Err: err}
	}
	return nil
}

// Delete removes the named tunnel on the provider side.
func (c *Client) Delete(ctx context.Context, name string) error {
	out, err := c.run(ctx, c.binary, "tunnel", "delete", name)
	if err != nil {
		return domerr.ProviderError{Op: "tunnel delete", Output: string(out), Err: err}
	}
	c.logger.Info("tunnel deleted", "name", name)
	return nil
}

// List returns cloudflared's tunnel listing verbatim.
func (c *Client) List(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.binary, "tunnel", "list")
	if err != nil {
		return "", domerr.ProviderError{Op: "tunnel list", Output: string(out), Err: err}
	}
	return string(out), nil
}

// ListJSON returns the tunnel listing as structured records.
func (c *Client) ListJSON(ctx context.Context) ([]domain.RemoteTunnel, error) {
	out, err := c.run(ctx, c.binary, "tunnel", "list", "--output", "json")
	if err != nil {
		return nil, domerr.ProviderError{Op: "tunnel list", Output: string(out), Err: err}
	}
	var tunnels []domain.RemoteTunnel
	if err := json.Unmarshal(out, &tunnels); err != nil {
		return nil, domerr.ProviderError{Op: "tunnel list", Output: string(out), Err: fmt.Errorf("parse listing: %w", err)}
	}
	return tunnels, nil
}

// Info returns cloudflared's detail view of the named tunnel verbatim.
func (c *Client) Info(ctx context.Context, name string) (string, error) {
	out, err := c.run(ctx, c.binary, "tunnel", "info", name)
	if err != nil {
		return "", domerr.ProviderError{Op: "tunnel info", Output: string(out), Err: err}
	}
	return string(out), nil
}

// Run starts the tunnel in the foreground using the stored config and
// blocks until it exits or ctx is cancelled.
func (c *Client) Run(ctx context.Context, configPath, name string, out io.Writer) error {
	return c.stream(ctx, "tunnel run", out, "tunnel", "--config", configPath, "run", name)
}

// Tail streams the tunnel's logs until ctx is cancelled.
func (c *Client) Tail(ctx context.Context, name string, out io.Writer) error {
	return c.stream(ctx, "tail", out, "tail", name)
}

// Update delegates to cloudflared's self-update.
func (c *Client) Update(ctx context.Context, out io.Writer) error {
	return c.stream(ctx, "update", out, "update")
}

func (c *Client) stream(ctx context.Context, op string, out io.Writer, args ...string) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	// Cancellation kills the child; that is a clean shutdown, not a failure.
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return domerr.ProviderError{Op: op, Err: err}
	}
	return nil
}
