// Package commands builds the quegate command tree. One-shot commands
// assemble the gateway stack lazily through a RuntimeFactory, so help output
// and flag errors never touch a broker.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quegate/quegate/config"
	"github.com/quegate/quegate/internal/alert"
	"github.com/quegate/quegate/internal/core/conn"
	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/store"
	"github.com/quegate/quegate/pkg/logger"
	"github.com/quegate/quegate/pkg/metrics"
)

// Runtime is the assembled gateway stack behind a one-shot command.
type Runtime struct {
	Cfg     *config.Config
	Gateway gateway.GatewayService

	manager *conn.Manager
	store   *store.Store
}

// Close releases the backend connection and the cache store.
func (r *Runtime) Close() {
	if r.manager != nil {
		_ = r.manager.Disconnect()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}

// RuntimeFactory creates a Runtime when a command actually runs.
type RuntimeFactory func() (*Runtime, error)

// newRuntime loads the configuration and wires the one-shot stack: store,
// alerts, connection manager, gateway. Metrics stay disabled; a single CLI
// invocation has nothing to scrape.
func newRuntime(version string) (*Runtime, error) {
	cfg, err := config.LoadConfig(version)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)

	mcfg := metrics.DefaultConfig()
	mcfg.Enabled = false
	collector := metrics.NewCollector(mcfg)

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
	}

	var notifiers []alert.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookTimeout()))
	}
	alerts := alert.NewService(st, cfg.AlertDedupWindow(), notifiers...)

	manager := conn.New(cfg, collector)
	return &Runtime{
		Cfg:     cfg,
		Gateway: gateway.NewService(cfg, manager, nil, collector, st, alerts),
		manager: manager,
		store:   st,
	}, nil
}

// NewRootCommand assembles the quegate command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quegate",
		Short:         "Message queue gateway",
		Long:          "Gateway for MSMQ-style message brokers: a long-running HTTP API daemon and one-shot queue operations.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	factory := RuntimeFactory(func() (*Runtime, error) {
		return newRuntime(version)
	})

	rootCmd.AddCommand(NewServeCommand(version))
	rootCmd.AddCommand(NewSendCommand(factory))
	rootCmd.AddCommand(NewReceiveCommand(factory))
	rootCmd.AddCommand(NewPeekCommand(factory))
	rootCmd.AddCommand(NewQueueCommand(factory))
	rootCmd.AddCommand(NewStatusCommand(factory))
	rootCmd.AddCommand(NewVersionCommand(version))

	return rootCmd
}

// NewVersionCommand creates the version subcommand.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "" {
				version = "dev"
			}
			fmt.Println(version)
		},
	}
}
