// Package cli wires the cobra command tree to the lifecycle coordinator and
// the pass-through cloudflared operations.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tunnelctl/internal/config"
	"tunnelctl/internal/infra/cloudflared"
	"tunnelctl/internal/infra/dns"
	"tunnelctl/internal/infra/service"
	"tunnelctl/internal/infra/store"
	"tunnelctl/internal/usecase/lifecycle"
)

var rootCmd = &cobra.Command{
	Use:   "tunnelctl",
	Short: "Manage named cloudflared tunnels and their DNS records",
	Long: `tunnelctl wraps the cloudflared daemon and the Cloudflare DNS API to
create, start, list, inspect and delete named tunnels, optionally
registering them as systemd services.

Configuration comes from TUNNELCTL_* environment variables; run any
command to see which ones are missing.`,
	// Errors are reported by us with full diagnostics; printing usage on
	// top of them only buries the message.
	SilenceUsage: true,
}

// app bundles the configured collaborators a command needs.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	provider    *cloudflared.Client
	store       *store.Store
	coordinator *lifecycle.Coordinator
}

// newApp loads configuration and builds the component graph. Called from
// RunE, not init, so that --help works without any environment set.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := config.NewLogger(cfg, "tunnelctl")
	provider := cloudflared.NewClient(cfg.CloudflaredBinary, logger)
	records := dns.NewClient(cfg.APIBaseURL, cfg.ZoneID, cfg.APIEmail, cfg.APIKey)
	configs := store.New(cfg.ConfigDir, cfg.CredentialsDir)
	services := service.NewRegistrar(cfg.UnitDir, cfg.CloudflaredBinary, logger)

	return &app{
		cfg:         cfg,
		logger:      logger,
		provider:    provider,
		store:       configs,
		coordinator: lifecycle.NewCoordinator(provider, records, configs, services, cfg.Domain, logger),
	}, nil
}

// Execute runs the root command under ctx, so SIGINT/SIGTERM cancel
// long-running commands like start and tail. Called once from main.
func Execute(ctx context.Context) {
	rootCmd.Version = config.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("tunnelctl version {{.Version}} (built %s)\n", config.BuildTime))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newTailCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}
