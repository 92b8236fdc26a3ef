package cli

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/models"
	"groww-sentinel/pkg/utils"
)

// addOrderCommands adds order placement and portfolio commands.
func addOrderCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newOrderCmd(app))
	rootCmd.AddCommand(newHoldingsCmd(app))
}

func newOrderCmd(app *App) *cobra.Command {
	var (
		quantity  int
		side      string
		orderType string
		price     float64
	)

	cmd := &cobra.Command{
		Use:   "order SYMBOL",
		Short: "Place an order",
		Example: `  sentinel order RELIANCE --quantity 10 --side BUY
  sentinel order TCS --quantity 5 --side SELL --type LIMIT --price 3450.50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			req := models.OrderRequest{
				Symbol:   strings.ToUpper(strings.TrimSpace(args[0])),
				Quantity: quantity,
				Side:     models.OrderSide(strings.ToUpper(side)),
				Type:     models.OrderType(strings.ToUpper(orderType)),
				Price:    price,
			}
			if req.Quantity <= 0 {
				return fmt.Errorf("quantity must be positive")
			}
			if req.Side != models.OrderBuy && req.Side != models.OrderSell {
				return fmt.Errorf("side must be BUY or SELL")
			}
			if req.Type == models.OrderLimit && req.Price <= 0 {
				return fmt.Errorf("limit orders require --price")
			}

			result, err := app.Orders.PlaceOrder(cmd.Context(), &req)
			if err != nil {
				if goerrors.Is(err, errors.ErrDuplicateOrder) {
					output.Warning("Duplicate order blocked: an identical order was placed within the last minute.")
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Success("✓ Order placed: %s", result.OrderID)
			output.Printf("  %s %d x %s (%s)\n", req.Side, req.Quantity, req.Symbol, req.Type)
			if req.Type == models.OrderLimit {
				output.Printf("  Limit: %s\n", utils.FormatIndianCurrency(req.Price))
			}
			output.Dim("  Status: %s", result.Status)
			return nil
		},
	}

	cmd.Flags().IntVar(&quantity, "quantity", 0, "number of shares (required)")
	cmd.Flags().StringVar(&side, "side", "", "BUY or SELL (required)")
	cmd.Flags().StringVar(&orderType, "type", "MARKET", "MARKET or LIMIT")
	cmd.Flags().Float64Var(&price, "price", 0, "limit price")
	cmd.MarkFlagRequired("quantity")
	cmd.MarkFlagRequired("side")

	return cmd
}

func newHoldingsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "holdings",
		Short: "Show portfolio holdings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireBroker(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			holdings, err := app.Broker.GetHoldings(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				if holdings == nil {
					holdings = []models.Holding{}
				}
				return output.JSON(holdings)
			}

			if len(holdings) == 0 {
				output.Dim("No holdings.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "QTY", "AVG PRICE", "LAST PRICE", "P&L")
			var totalPnL float64
			for _, h := range holdings {
				pnl := (h.LastPrice - h.AveragePrice) * float64(h.Quantity)
				totalPnL += pnl
				table.AddRow(
					h.Symbol,
					utils.FormatQuantity(int64(h.Quantity)),
					utils.FormatIndianCurrency(h.AveragePrice),
					utils.FormatIndianCurrency(h.LastPrice),
					utils.FormatPnL(pnl),
				)
			}
			table.Render()
			output.Println()
			output.Printf("Total P&L: %s\n", utils.FormatPnL(totalPnL))
			return nil
		},
	}
}
