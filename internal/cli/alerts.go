package cli

import (
	goerrors "errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"groww-sentinel/internal/alerts"
	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/models"
	"groww-sentinel/pkg/utils"
)

var errNoBroker = goerrors.New("groww credentials not configured, run 'sentinel config path' and add credentials.toml")

// addAlertCommands adds the alert management command group.
func addAlertCommands(rootCmd *cobra.Command, app *App) {
	alertCmd := &cobra.Command{
		Use:   "alert",
		Short: "Manage price and volume alerts",
		Long: `Create, list, cancel, and remove stock alerts.

Alert kinds:
  percentage_increase  price rises N% above the base price
  percentage_decrease  price falls N% below the base price
  price_above          price reaches or exceeds a level
  price_below          price reaches or falls below a level
  volume_above         traded volume reaches a level`,
	}

	alertCmd.AddCommand(newAlertCreateCmd(app))
	alertCmd.AddCommand(newAlertListCmd(app))
	alertCmd.AddCommand(newAlertCancelCmd(app))
	alertCmd.AddCommand(newAlertRemoveCmd(app))
	alertCmd.AddCommand(newAlertCheckCmd(app))

	rootCmd.AddCommand(alertCmd)
}

func newAlertCreateCmd(app *App) *cobra.Command {
	var (
		kind      string
		threshold float64
		basePrice float64
		note      string
	)

	cmd := &cobra.Command{
		Use:   "create SYMBOL",
		Short: "Create a new alert",
		Example: `  sentinel alert create RELIANCE --kind price_above --threshold 2500
  sentinel alert create TCS --kind percentage_decrease --threshold 5
  sentinel alert create INFY --kind volume_above --threshold 1000000 --note "earnings day"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			req := alerts.CreateRequest{
				Symbol:    args[0],
				Kind:      models.AlertKind(kind),
				Threshold: threshold,
				Note:      note,
			}
			if cmd.Flags().Changed("base-price") {
				req.BasePrice = &basePrice
			}

			alert, err := app.Service.Create(cmd.Context(), req)
			if err != nil {
				var verr *errors.ValidationError
				if goerrors.As(err, &verr) && verr.Suggestion != "" && !output.IsJSON() {
					output.Error("%v", verr)
					output.Dim("Hint: %s", verr.Suggestion)
					return fmt.Errorf("alert not created")
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(alert)
			}

			output.Success("✓ Alert created: %s", alert.ID)
			output.Printf("  %s %s %.2f\n", alert.Symbol, alert.Kind, alert.Threshold)
			if alert.BasePrice != nil {
				output.Dim("  Base price: %s", utils.FormatIndianCurrency(*alert.BasePrice))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "alert kind (required)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "trigger threshold (required)")
	cmd.Flags().Float64Var(&basePrice, "base-price", 0, "base price for percentage alerts (default: current price)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note attached to the alert")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("threshold")

	return cmd
}

func newAlertListCmd(app *App) *cobra.Command {
	var (
		symbol string
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Service == nil {
				return errNoBroker
			}
			output := NewOutput(cmd)

			list := app.Service.List(symbol, models.AlertStatus(status))
			if output.IsJSON() {
				if list == nil {
					list = []models.Alert{}
				}
				return output.JSON(list)
			}

			if len(list) == 0 {
				output.Dim("No alerts found.")
				return nil
			}

			table := NewTable(output, "ID", "SYMBOL", "KIND", "THRESHOLD", "LAST PRICE", "STATUS", "CREATED")
			for _, a := range list {
				lastPrice := "-"
				if a.LastPrice != nil {
					lastPrice = utils.FormatIndianCurrency(*a.LastPrice)
				}
				table.AddRow(
					a.ID[:8],
					a.Symbol,
					string(a.Kind),
					fmt.Sprintf("%.2f", a.Threshold),
					lastPrice,
					output.AlertStatus(a.Status),
					a.CreatedAt.Format("02 Jan 15:04"),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active, triggered, cancelled, expired)")

	return cmd
}

func newAlertCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ALERT_ID",
		Short: "Cancel an active alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Service == nil {
				return errNoBroker
			}
			output := NewOutput(cmd)

			if err := app.Service.Cancel(cmd.Context(), args[0]); err != nil {
				if goerrors.Is(err, errors.ErrAlertNotFound) {
					output.Error("Alert not found: %s", args[0])
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"id": args[0], "status": "cancelled"})
			}
			output.Success("✓ Alert cancelled: %s", args[0])
			return nil
		},
	}
}

func newAlertRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ALERT_ID",
		Short: "Remove an alert by id or unique id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Service == nil {
				return errNoBroker
			}
			output := NewOutput(cmd)

			err := app.Service.Remove(cmd.Context(), args[0])
			switch {
			case goerrors.Is(err, errors.ErrAlertNotFound):
				output.Error("No alert matches %q", args[0])
				return err
			case goerrors.Is(err, errors.ErrAmbiguousAlertID):
				output.Error("Multiple alerts match %q, use a longer prefix", args[0])
				return err
			case err != nil:
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"id": args[0], "removed": "true"})
			}
			output.Success("✓ Alert removed: %s", args[0])
			return nil
		},
	}
}

func newAlertCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one evaluation sweep now",
		Long: `Evaluate all active alerts against current prices immediately.
The sweep is subject to the market-hours gate: outside regular and
pre-market hours nothing is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			start := time.Now()
			triggered := app.Service.CheckAll(cmd.Context())

			if output.IsJSON() {
				if triggered == nil {
					triggered = []string{}
				}
				return output.JSON(map[string]interface{}{
					"triggered":   triggered,
					"duration_ms": time.Since(start).Milliseconds(),
				})
			}

			if len(triggered) == 0 {
				output.Dim("No alerts triggered.")
				return nil
			}
			for _, msg := range triggered {
				output.Warning("%s", msg)
			}
			return nil
		},
	}
}
