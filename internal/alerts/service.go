// Package alerts implements the alert lifecycle engine: creation,
// evaluation sweeps, state transitions, and notification dispatch.
package alerts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"groww-sentinel/internal/broker"
	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/logging"
	"groww-sentinel/internal/models"
	"groww-sentinel/internal/notify"
	"groww-sentinel/internal/store"
	"groww-sentinel/pkg/market"
	"groww-sentinel/pkg/utils"
)

// fetchTimeout bounds a single broker call during a sweep or create.
const fetchTimeout = 10 * time.Second

// CreateRequest is a structured alert-creation request, typically
// produced by an upstream command-parsing adapter.
type CreateRequest struct {
	Symbol    string
	Kind      models.AlertKind
	Threshold float64
	BasePrice *float64
	Note      string
}

// Service owns the in-memory alert collection and its persistence.
// The collection is mutated by foreground operations and by the
// background monitor; a single mutex serializes all access.
type Service struct {
	mu     sync.Mutex
	alerts []*models.Alert

	store   store.AlertStore
	broker  broker.Broker
	gateway *notify.Gateway
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a service and loads the persisted collection.
// A load failure is logged and the service starts empty; the next
// successful save reconciles the persisted copy.
func NewService(st store.AlertStore, b broker.Broker, gw *notify.Gateway, logger zerolog.Logger) *Service {
	s := &Service{
		store:   st,
		broker:  b,
		gateway: gw,
		logger:  logger,
		now:     time.Now,
	}

	if st != nil {
		loaded, err := st.Load(context.Background())
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load alerts, starting empty")
		} else {
			for i := range loaded {
				a := loaded[i]
				s.alerts = append(s.alerts, &a)
			}
			logger.Info().Int("count", len(s.alerts)).Msg("Loaded alerts")
		}
	}

	return s
}

// Create validates the request, resolves the symbol against the broker,
// and adds a new active alert. For percentage kinds a missing base
// price is populated from the current price.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Alert, error) {
	if !req.Kind.Valid() {
		return nil, errors.NewValidationError("kind", req.Kind, "unknown alert kind",
			"supported kinds: percentage_increase, percentage_decrease, price_above, price_below, volume_above")
	}
	if req.Threshold <= 0 {
		return nil, errors.NewValidationError("threshold", req.Threshold, "threshold must be positive",
			"specify a numeric threshold, e.g. 5 for 5% or 2500 for a price level")
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, errors.NewValidationError("symbol", req.Symbol, "symbol is required",
			"provide the stock symbol, e.g. RELIANCE")
	}

	symbol, price, err := s.resolveSymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	basePrice := req.BasePrice
	if req.Kind.RequiresBasePrice() && basePrice == nil {
		v := price.LTP
		basePrice = &v
	}

	alert := &models.Alert{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Kind:      req.Kind,
		Threshold: req.Threshold,
		BasePrice: basePrice,
		Status:    models.AlertActive,
		CreatedAt: s.now(),
		Note:      req.Note,
	}

	s.mu.Lock()
	s.alerts = append(s.alerts, alert)
	s.persistLocked(ctx)
	out := *alert
	s.mu.Unlock()

	s.logger.Info().
		Str("alert_id", alert.ID).
		Str("symbol", symbol).
		Str("kind", string(req.Kind)).
		Float64("threshold", req.Threshold).
		Msg("Created alert")

	return &out, nil
}

// resolveSymbol validates a symbol with a direct price lookup, falling
// back to search when the direct lookup fails. Transient broker errors
// are retried here; sweeps never retry and wait for the next tick.
func (s *Service) resolveSymbol(ctx context.Context, symbol string) (string, *models.PricePoint, error) {
	price, err := s.fetchPriceWithRetry(ctx, symbol)
	if err == nil {
		return symbol, price, nil
	}

	s.logger.Debug().Str("symbol", symbol).Msg("Direct lookup failed, searching")

	sctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	candidates, serr := s.broker.SearchSymbol(sctx, symbol)
	cancel()
	if serr != nil || len(candidates) == 0 {
		return "", nil, errors.NewValidationError("symbol", symbol,
			"could not find or validate stock symbol",
			"check the symbol and try again, or search for the stock first")
	}

	resolved := candidates[0].Symbol
	price, err = s.fetchPriceWithRetry(ctx, resolved)
	if err != nil {
		return "", nil, errors.NewValidationError("symbol", symbol,
			"could not get a price for the resolved symbol "+resolved,
			"try again or use the exact stock symbol")
	}

	s.logger.Info().Str("query", symbol).Str("symbol", resolved).Msg("Resolved symbol through search")
	return resolved, price, nil
}

// fetchPriceWithRetry fetches a price with backoff on transient broker
// failures.
func (s *Service) fetchPriceWithRetry(ctx context.Context, symbol string) (*models.PricePoint, error) {
	cfg := utils.DefaultRetryConfig()
	cfg.ShouldRetry = errors.IsTransient

	return utils.RetryWithResult(ctx, cfg, func() (*models.PricePoint, error) {
		fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		return s.broker.GetPrice(fctx, symbol)
	})
}

// List returns alerts filtered by symbol and/or status. Empty filter
// values match everything.
func (s *Service) List(symbol string, status models.AlertStatus) []models.Alert {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Alert
	for _, a := range s.alerts {
		if symbol != "" && a.Symbol != symbol {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, *a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Get returns a copy of the alert with the given id.
func (s *Service) Get(id string) (*models.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID == id {
			out := *a
			return &out, true
		}
	}
	return nil, false
}

// Cancel transitions an active alert to cancelled. Cancelling an alert
// already in a terminal state is a no-op, not an error.
func (s *Service) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.alerts {
		if a.ID != id {
			continue
		}
		if a.Status != models.AlertActive {
			s.logger.Debug().Str("alert_id", id).Str("status", string(a.Status)).
				Msg("Cancel is a no-op for non-active alert")
			return nil
		}
		a.Status = models.AlertCancelled
		s.persistLocked(ctx)
		s.logger.Info().Str("alert_id", id).Str("symbol", a.Symbol).Msg("Cancelled alert")
		return nil
	}

	return errors.ErrAlertNotFound
}

// Remove deletes an alert by full id or unique id prefix. Zero matches
// and multiple matches are distinct errors so callers can disambiguate.
func (s *Service) Remove(ctx context.Context, idOrPrefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Exact match first
	for i, a := range s.alerts {
		if a.ID == idOrPrefix {
			s.removeAtLocked(ctx, i)
			return nil
		}
	}

	var matches []int
	for i, a := range s.alerts {
		if strings.HasPrefix(a.ID, idOrPrefix) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 1:
		s.removeAtLocked(ctx, matches[0])
		return nil
	case 0:
		return errors.ErrAlertNotFound
	default:
		s.logger.Warn().Str("prefix", idOrPrefix).Int("matches", len(matches)).
			Msg("Ambiguous alert id prefix")
		return errors.ErrAmbiguousAlertID
	}
}

// removeAtLocked removes the alert at index i. Caller holds the lock.
func (s *Service) removeAtLocked(ctx context.Context, i int) {
	removed := s.alerts[i]
	s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
	s.persistLocked(ctx)
	s.logger.Info().Str("alert_id", removed.ID).Str("symbol", removed.Symbol).Msg("Removed alert")
}

// Counts returns the number of alerts per status.
func (s *Service) Counts() map[models.AlertStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[models.AlertStatus]int)
	for _, a := range s.alerts {
		counts[a.Status]++
	}
	return counts
}

// CheckAll runs one evaluation sweep over all active alerts, subject to
// the market-hours gate, and returns the trigger descriptions.
func (s *Service) CheckAll(ctx context.Context) []string {
	now := s.now()
	if !market.ShouldPoll(now) {
		s.logger.Info().
			Str("market_status", string(market.Status(now))).
			Time("next_open", market.NextOpen(now)).
			Msg("Skipping alert check, market closed")
		return nil
	}
	return s.sweep(ctx)
}

// sweep evaluates every active alert once. A failure on one alert is
// logged and does not abort the sweep for the rest. The collection is
// persisted once at the end regardless of outcome.
func (s *Service) sweep(ctx context.Context) []string {
	s.mu.Lock()
	var active []*models.Alert
	for _, a := range s.alerts {
		if a.Status == models.AlertActive {
			active = append(active, a)
		}
	}
	s.mu.Unlock()

	var (
		messages []string
		events   []notify.TriggerEvent
		failed   int
	)

	for _, a := range active {
		event, err := s.checkOne(ctx, a)
		if err != nil {
			failed++
			s.logger.Error().Err(err).
				Str("alert_id", a.ID).
				Str("symbol", a.Symbol).
				Msg("Error checking alert")
			continue
		}
		if event != nil {
			events = append(events, *event)
			messages = append(messages, event.Message)
		}
		if ctx.Err() != nil {
			break
		}
	}

	// Notification is best-effort: a failure never reverts the trigger.
	if s.gateway != nil {
		for _, event := range events {
			s.gateway.Notify(ctx, event)
		}
	}

	s.mu.Lock()
	s.persistLocked(ctx)
	s.mu.Unlock()

	logging.LogSweep(s.logger, len(active), len(events), failed, market.PollInterval(s.now()))

	return messages
}

// checkOne fetches a price for one alert and applies the evaluation
// outcome. The state transition and trigger description are produced
// together under the lock, never partially.
func (s *Service) checkOne(ctx context.Context, a *models.Alert) (*notify.TriggerEvent, error) {
	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	price, err := s.broker.GetPrice(fctx, a.Symbol)
	cancel()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Status != models.AlertActive {
		return nil, nil
	}

	v := price.LTP
	a.LastPrice = &v

	if !a.Evaluate(*price) {
		return nil, nil
	}

	now := s.now()
	a.Status = models.AlertTriggered
	a.TriggeredAt = &now
	message := a.TriggerMessage(*price)

	logging.LogAlertTriggered(s.logger, a.ID, a.Symbol, string(a.Kind), price.LTP)

	return &notify.TriggerEvent{Alert: *a, Price: *price, Message: message}, nil
}

// persistLocked writes the full collection through to the store. A
// failed save is logged, never fatal: in-memory state stays
// authoritative. Caller holds the lock.
func (s *Service) persistLocked(ctx context.Context) {
	if s.store == nil {
		return
	}

	snapshot := make([]models.Alert, len(s.alerts))
	for i, a := range s.alerts {
		snapshot[i] = *a
	}

	if err := s.store.SaveAll(ctx, snapshot); err != nil {
		perr := errors.NewPersistenceError("save_alerts", err)
		s.logger.Error().Err(perr).Int("count", len(snapshot)).Msg("Failed to persist alerts")
	}
}
