package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"groww-sentinel/internal/alerts"
	"groww-sentinel/internal/broker"
	"groww-sentinel/internal/config"
	"groww-sentinel/internal/logging"
	"groww-sentinel/internal/notify"
	"groww-sentinel/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Broker  broker.Broker
	Store   store.AlertStore
	Orders  *broker.OrderGateway
	Service *alerts.Service
	Monitor *alerts.Monitor
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Credentials.Groww.APIKey != "" {
		groww := broker.NewGrowwBroker(broker.GrowwConfig{
			AccessToken: cfg.Credentials.Groww.APIKey,
			Logger:      logger,
		})
		app.Broker = broker.NewCircuitBroker(groww, logger)
		logger.Debug().Msg("Groww broker initialized")
	}

	alertStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, alerts will not persist")
	} else {
		app.Store = alertStore
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	if app.Broker != nil {
		var notifier notify.Notifier
		if mn := notify.NewMultiNotifier(&cfg.Notifications); mn != nil {
			notifier = mn
		}
		gateway := notify.NewGateway(notifier, logger)

		app.Orders = broker.NewOrderGateway(app.Broker, logger)
		app.Service = alerts.NewService(app.Store, app.Broker, gateway, logger)
		app.Monitor = alerts.NewMonitor(app.Service, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Groww Sentinel - stock price alert agent for the Indian market",
		Long: `Groww Sentinel watches NSE stock prices through the Groww API and
fires alerts when price or volume conditions are met.

Alerts survive restarts, polling adapts to market hours, and triggered
alerts can notify over webhook, Telegram, and email.

Use 'sentinel help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/groww-sentinel)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAlertCommands(rootCmd, app)
	addMonitorCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)
	addOrderCommands(rootCmd, app)

	return rootCmd
}

// requireBroker guards commands that need API credentials.
func requireBroker(app *App) error {
	if app.Broker == nil {
		return errNoBroker
	}
	return nil
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Groww Sentinel v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Store")
	output.Printf("  Path:     %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:  %v\n", cfg.Notifications.Enabled)
	output.Printf("  Webhook:  %v\n", cfg.Notifications.Webhook.Enabled)
	output.Printf("  Telegram: %v\n", cfg.Notifications.Telegram.Enabled)
	output.Printf("  Email:    %v\n", cfg.Notifications.Email.Enabled)
	output.Println()

	output.Bold("Credentials")
	if cfg.Credentials.Groww.APIKey != "" {
		output.Printf("  Groww:    configured\n")
	} else {
		output.Printf("  Groww:    not configured\n")
	}
}
