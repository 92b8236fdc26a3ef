package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/logging"
	"groww-sentinel/internal/models"
)

const (
	defaultBaseURL = "https://api.groww.in/v1"
	defaultTimeout = 10 * time.Second
)

// GrowwBroker implements the Broker interface against the Groww REST API.
type GrowwBroker struct {
	baseURL     string
	accessToken string
	client      *http.Client
	logger      zerolog.Logger
}

// GrowwConfig holds configuration for the Groww broker.
type GrowwConfig struct {
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// NewGrowwBroker creates a new Groww broker instance.
func NewGrowwBroker(cfg GrowwConfig) *GrowwBroker {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &GrowwBroker{
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: cfg.Logger,
	}
}

type quoteResponse struct {
	LastPrice float64 `json:"last_price"`
	Volume    int64   `json:"volume"`
}

// GetPrice returns the latest quote for a symbol on NSE cash segment.
func (g *GrowwBroker) GetPrice(ctx context.Context, symbol string) (*models.PricePoint, error) {
	q := url.Values{}
	q.Set("exchange", "NSE")
	q.Set("segment", "CASH")
	q.Set("trading_symbol", symbol)

	var resp quoteResponse
	if err := g.get(ctx, "/live-data/quote", q, &resp); err != nil {
		return nil, g.classify(err, "get_price", symbol)
	}

	if resp.LastPrice == 0 {
		return nil, errors.NewBrokerError(errors.BrokerNotFound, "get_price", symbol,
			"no price data available", nil)
	}

	return &models.PricePoint{
		Symbol:    symbol,
		LTP:       resp.LastPrice,
		Volume:    resp.Volume,
		Timestamp: time.Now(),
	}, nil
}

type instrumentResponse struct {
	Instruments []struct {
		TradingSymbol string `json:"trading_symbol"`
		Name          string `json:"name"`
	} `json:"instruments"`
}

// SearchSymbol searches instruments by name or symbol.
func (g *GrowwBroker) SearchSymbol(ctx context.Context, query string) ([]models.CandidateSymbol, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("size", "10")

	var resp instrumentResponse
	if err := g.get(ctx, "/instruments/search", q, &resp); err != nil {
		return nil, g.classify(err, "search_symbol", query)
	}

	results := make([]models.CandidateSymbol, 0, len(resp.Instruments))
	for _, inst := range resp.Instruments {
		name := inst.Name
		if name == "" {
			name = inst.TradingSymbol
		}
		results = append(results, models.CandidateSymbol{
			Symbol:      inst.TradingSymbol,
			DisplayName: name,
		})
	}

	return results, nil
}

type orderResponse struct {
	OrderID string `json:"groww_order_id"`
	Status  string `json:"order_status"`
	Remark  string `json:"remark"`
}

// PlaceOrder submits an order to Groww.
func (g *GrowwBroker) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*OrderResult, error) {
	payload := map[string]interface{}{
		"trading_symbol":   req.Symbol,
		"quantity":         req.Quantity,
		"transaction_type": string(req.Side),
		"order_type":       string(req.Type),
		"exchange":         "NSE",
		"segment":          "CASH",
		"product":          "CNC",
		"validity":         "DAY",
	}
	if req.Type == models.OrderLimit {
		payload["price"] = req.Price
	}

	var resp orderResponse
	if err := g.post(ctx, "/order/create", payload, &resp); err != nil {
		return nil, g.classify(err, "place_order", req.Symbol)
	}

	if resp.Status == "REJECTED" {
		return nil, errors.NewBrokerError(errors.BrokerRejected, "place_order", req.Symbol, resp.Remark, nil)
	}

	return &OrderResult{
		OrderID: resp.OrderID,
		Status:  resp.Status,
		Message: resp.Remark,
	}, nil
}

type holdingsResponse struct {
	Holdings []struct {
		TradingSymbol string  `json:"trading_symbol"`
		Quantity      int     `json:"quantity"`
		AveragePrice  float64 `json:"average_price"`
		LastPrice     float64 `json:"last_price"`
	} `json:"holdings"`
}

// GetHoldings returns the current account holdings.
func (g *GrowwBroker) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	var resp holdingsResponse
	if err := g.get(ctx, "/holdings/user", nil, &resp); err != nil {
		return nil, g.classify(err, "get_holdings", "")
	}

	holdings := make([]models.Holding, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		holdings = append(holdings, models.Holding{
			Symbol:       h.TradingSymbol,
			Quantity:     h.Quantity,
			AveragePrice: h.AveragePrice,
			LastPrice:    h.LastPrice,
		})
	}

	return holdings, nil
}

// httpError carries the status code of a non-2xx response.
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func (g *GrowwBroker) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	return g.do(req, out)
}

func (g *GrowwBroker) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, out)
}

func (g *GrowwBroker) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	logging.LogAPICall(g.logger, req.Method, req.URL.Path, time.Since(start), err)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// classify maps transport and HTTP failures onto broker error kinds.
// Network errors and 5xx responses are transient; 404 is not-found.
func (g *GrowwBroker) classify(err error, op, symbol string) error {
	var he *httpError
	if errors.As(err, &he) {
		switch {
		case he.StatusCode == http.StatusNotFound:
			return errors.NewBrokerError(errors.BrokerNotFound, op, symbol, "not found", err)
		case he.StatusCode >= 500 || he.StatusCode == http.StatusTooManyRequests:
			return errors.NewBrokerError(errors.BrokerTransient, op, symbol, "service unavailable", err)
		default:
			return errors.NewBrokerError(errors.BrokerRejected, op, symbol, "request rejected", err)
		}
	}
	// Timeouts and connection failures
	return errors.NewBrokerError(errors.BrokerTransient, op, symbol, "request failed", err)
}
