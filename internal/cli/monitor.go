package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"groww-sentinel/internal/models"
	"groww-sentinel/pkg/market"
)

// addMonitorCommands adds the monitoring command group.
func addMonitorCommands(rootCmd *cobra.Command, app *App) {
	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Background price monitoring",
	}

	monitorCmd.AddCommand(newMonitorRunCmd(app))
	monitorCmd.AddCommand(newMonitorStatusCmd(app))

	rootCmd.AddCommand(monitorCmd)
}

func newMonitorRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring loop in the foreground",
		Long: `Start the polling loop and keep it running until interrupted.

The poll interval adapts to the market session: 3 minutes during
regular hours, 5 minutes in pre-market, 1 hour when closed. Alerts are
evaluated only while the market-hours gate is open.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			if err := app.Monitor.Start(cmd.Context()); err != nil {
				return err
			}

			status := app.Monitor.Status()
			output.Info("Monitoring started (%s, interval %s)", status.MarketStatus, status.Interval)
			output.Dim("Press Ctrl+C to stop.")

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			output.Println()
			if err := app.Monitor.Stop(); err != nil {
				return err
			}
			output.Info("Monitoring stopped.")
			return nil
		},
	}
}

func newMonitorStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show monitoring and alert status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Service == nil {
				return errNoBroker
			}
			output := NewOutput(cmd)

			status := app.Monitor.Status()
			if output.IsJSON() {
				return output.JSON(status)
			}

			output.Bold("Market")
			output.Printf("  Status:       %s\n", output.MarketStatus(status.MarketStatus))
			output.Printf("  IST time:     %s\n", status.MarketTime.Format("Mon 02 Jan 15:04:05"))
			if !status.ShouldPoll {
				output.Printf("  Next open:    %s\n", status.NextOpen.In(market.Location).Format("Mon 02 Jan 15:04"))
			}
			output.Println()

			output.Bold("Monitoring")
			if status.Active {
				output.Printf("  Loop:         %s\n", output.Green("running"))
			} else {
				output.Printf("  Loop:         %s\n", output.DimText("stopped"))
			}
			output.Printf("  Interval:     %s\n", status.Interval)
			output.Println()

			output.Bold("Alerts")
			output.Printf("  Active:       %d\n", status.Counts[models.AlertActive])
			output.Printf("  Triggered:    %d\n", status.Counts[models.AlertTriggered])
			output.Printf("  Cancelled:    %d\n", status.Counts[models.AlertCancelled])
			output.Printf("  Expired:      %d\n", status.Counts[models.AlertExpired])
			return nil
		},
	}
}
