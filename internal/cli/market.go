package cli

import (
	"time"

	"github.com/spf13/cobra"

	"groww-sentinel/pkg/market"
	"groww-sentinel/pkg/utils"
)

// addMarketCommands adds market data commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newMarketCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newSearchCmd(app))
}

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show market session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			now := time.Now()
			status := market.Status(now)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"status":      status,
					"should_poll": market.ShouldPoll(now),
					"interval":    market.PollInterval(now).String(),
					"market_time": now.In(market.Location),
					"next_open":   market.NextOpen(now),
				})
			}

			output.Printf("Market:    %s\n", output.MarketStatus(status))
			output.Printf("IST time:  %s\n", now.In(market.Location).Format("Mon 02 Jan 15:04:05"))
			output.Printf("Interval:  %s\n", market.PollInterval(now))
			if !market.ShouldPoll(now) {
				output.Dim("Next open: %s", market.NextOpen(now).In(market.Location).Format("Mon 02 Jan 15:04"))
			}
			return nil
		},
	}
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Get the current price for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			price, err := app.Broker.GetPrice(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(price)
			}

			output.Bold("%s", price.Symbol)
			output.Printf("  Price:   %s\n", utils.FormatIndianCurrency(price.LTP))
			output.Printf("  Volume:  %s\n", utils.FormatQuantity(price.Volume))
			output.Dim("  As of:   %s", price.Timestamp.In(market.Location).Format("15:04:05"))
			return nil
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Search for stock symbols",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			candidates, err := app.Broker.SearchSymbol(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(candidates)
			}

			if len(candidates) == 0 {
				output.Dim("No matches for %q.", args[0])
				return nil
			}

			table := NewTable(output, "SYMBOL", "NAME")
			for _, c := range candidates {
				table.AddRow(c.Symbol, c.DisplayName)
			}
			table.Render()
			return nil
		},
	}
}
