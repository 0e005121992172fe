package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Build-time variables injected via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Config holds all tunnelctl configuration loaded from environment variables.
// It is threaded explicitly through every component instead of being read
// from the environment at arbitrary points.
type Config struct {
	// ZoneID is the Cloudflare DNS zone the tunnels' hostnames live in.
	ZoneID string

	// APIEmail and APIKey authenticate DNS API calls.
	APIEmail string
	APIKey   string

	// Domain is the base domain; hostnames are <subdomain>.<Domain>.
	Domain string

	// APIBaseURL is the Cloudflare v4 API endpoint.
	APIBaseURL string

	// CloudflaredBinary is the path to the cloudflared executable.
	CloudflaredBinary string

	// ConfigDir is where per-tunnel config artifacts are written.
	ConfigDir string

	// CredentialsDir is where cloudflared writes tunnel credential files.
	CredentialsDir string

	// UnitDir is the systemd unit directory.
	UnitDir string

	// LogDir is the directory for log files.
	LogDir string

	// StatusPort is the local status API port for `tunnelctl serve`.
	StatusPort int

	// Debug enables verbose logging.
	Debug bool
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	cloudflaredDir := "/etc/cloudflared"
	credentialsDir := "/root/.cloudflared"
	if home != "" {
		credentialsDir = filepath.Join(home, ".cloudflared")
	}

	return &Config{
		APIBaseURL:        "https://api.cloudflare.com/client/v4",
		CloudflaredBinary: "cloudflared",
		ConfigDir:         cloudflaredDir,
		CredentialsDir:    credentialsDir,
		UnitDir:           "/etc/systemd/system",
		LogDir:            "/var/log/tunnelctl",
		StatusPort:        8642,
	}
}

// Load reads configuration from environment variables, applying defaults
// for anything not explicitly set. Returns an error if required values
// are missing or malformed.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	cfg.ZoneID = strings.TrimSpace(os.Getenv("TUNNELCTL_ZONE_ID"))
	if cfg.ZoneID == "" {
		return nil, fmt.Errorf("TUNNELCTL_ZONE_ID is required")
	}

	cfg.APIEmail = strings.TrimSpace(os.Getenv("TUNNELCTL_API_EMAIL"))
	if cfg.APIEmail == "" {
		return nil, fmt.Errorf("TUNNELCTL_API_EMAIL is required")
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("TUNNELCTL_API_KEY"))
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("TUNNELCTL_API_KEY is required")
	}

	cfg.Domain = strings.TrimSpace(os.Getenv("TUNNELCTL_DOMAIN"))
	if cfg.Domain == "" {
		return nil, fmt.Errorf("TUNNELCTL_DOMAIN is required")
	}

	if v := os.Getenv("TUNNELCTL_API_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("TUNNELCTL_CLOUDFLARED"); v != "" {
		cfg.CloudflaredBinary = v
	}

	if v := os.Getenv("TUNNELCTL_CONFIG_DIR"); v != "" {
		cfg.ConfigDir = v
	}

	if v := os.Getenv("TUNNELCTL_CREDENTIALS_DIR"); v != "" {
		cfg.CredentialsDir = v
	}

	if v := os.Getenv("TUNNELCTL_UNIT_DIR"); v != "" {
		cfg.UnitDir = v
	}

	if v := os.Getenv("TUNNELCTL_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	if v := os.Getenv("TUNNELCTL_STATUS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("TUNNELCTL_STATUS_PORT must be a port number, got %q", v)
		}
		cfg.StatusPort = port
	}

	cfg.Debug = os.Getenv("TUNNELCTL_DEBUG") == "true"

	return cfg, nil
}

// NewLogger creates a structured logger that writes to stderr and, when the
// log directory is writable, to a log file as well.
func NewLogger(cfg *Config, name string) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	out := io.Writer(os.Stderr)
	if err := os.MkdirAll(cfg.LogDir, 0o755); err == nil {
		logPath := filepath.Join(cfg.LogDir, name+".log")
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = io.MultiWriter(os.Stderr, file)
		}
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
