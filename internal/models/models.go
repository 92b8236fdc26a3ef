// Package models defines the core data types shared across the application.
package models

import (
	"fmt"
	"time"
)

// AlertKind represents the type of alert condition.
type AlertKind string

const (
	// AlertPercentIncrease triggers when price rises by a percentage from the base price.
	AlertPercentIncrease AlertKind = "percentage_increase"
	// AlertPercentDecrease triggers when price falls by a percentage from the base price.
	AlertPercentDecrease AlertKind = "percentage_decrease"
	// AlertPriceAbove triggers when price reaches or exceeds the threshold.
	AlertPriceAbove AlertKind = "price_above"
	// AlertPriceBelow triggers when price reaches or falls below the threshold.
	AlertPriceBelow AlertKind = "price_below"
	// AlertVolumeAbove triggers when traded volume reaches or exceeds the threshold.
	AlertVolumeAbove AlertKind = "volume_above"
)

// Valid reports whether the kind is a known alert kind.
func (k AlertKind) Valid() bool {
	switch k {
	case AlertPercentIncrease, AlertPercentDecrease, AlertPriceAbove, AlertPriceBelow, AlertVolumeAbove:
		return true
	}
	return false
}

// RequiresBasePrice reports whether alerts of this kind need a reference price.
func (k AlertKind) RequiresBasePrice() bool {
	return k == AlertPercentIncrease || k == AlertPercentDecrease
}

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	AlertActive    AlertStatus = "active"
	AlertTriggered AlertStatus = "triggered"
	AlertCancelled AlertStatus = "cancelled"
	AlertExpired   AlertStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s AlertStatus) Terminal() bool {
	return s != AlertActive
}

// Alert is a user-defined condition on a symbol's price or volume.
// Once the condition is met the alert transitions to triggered and
// is never evaluated again.
type Alert struct {
	ID          string
	Symbol      string
	Kind        AlertKind
	Threshold   float64
	BasePrice   *float64 // set for percentage kinds
	LastPrice   *float64 // updated on every evaluation sweep
	Status      AlertStatus
	CreatedAt   time.Time
	TriggeredAt *time.Time
	Note        string
}

// Evaluate reports whether the alert condition is met by the observation.
// Alerts in any status other than active never evaluate to true.
func (a *Alert) Evaluate(p PricePoint) bool {
	if a.Status != AlertActive {
		return false
	}

	switch a.Kind {
	case AlertPercentIncrease:
		if a.BasePrice == nil || *a.BasePrice == 0 {
			return false
		}
		change := (p.LTP - *a.BasePrice) / *a.BasePrice * 100
		return change >= a.Threshold

	case AlertPercentDecrease:
		if a.BasePrice == nil || *a.BasePrice == 0 {
			return false
		}
		change := (*a.BasePrice - p.LTP) / *a.BasePrice * 100
		return change >= a.Threshold

	case AlertPriceAbove:
		return p.LTP >= a.Threshold

	case AlertPriceBelow:
		return p.LTP <= a.Threshold

	case AlertVolumeAbove:
		return p.Volume > 0 && float64(p.Volume) >= a.Threshold
	}

	return false
}

// TriggerMessage formats a human-readable description of the trigger.
func (a *Alert) TriggerMessage(p PricePoint) string {
	switch a.Kind {
	case AlertPercentIncrease:
		change := (p.LTP - *a.BasePrice) / *a.BasePrice * 100
		return fmt.Sprintf("%s is up %.2f%% (₹%.2f → ₹%.2f)", a.Symbol, change, *a.BasePrice, p.LTP)

	case AlertPercentDecrease:
		change := (*a.BasePrice - p.LTP) / *a.BasePrice * 100
		return fmt.Sprintf("%s is down %.2f%% (₹%.2f → ₹%.2f)", a.Symbol, change, *a.BasePrice, p.LTP)

	case AlertPriceAbove:
		return fmt.Sprintf("%s price is above ₹%.2f (current: ₹%.2f)", a.Symbol, a.Threshold, p.LTP)

	case AlertPriceBelow:
		return fmt.Sprintf("%s price is below ₹%.2f (current: ₹%.2f)", a.Symbol, a.Threshold, p.LTP)

	case AlertVolumeAbove:
		return fmt.Sprintf("%s volume is above %.0f (current: %d)", a.Symbol, a.Threshold, p.Volume)
	}

	return fmt.Sprintf("Alert triggered for %s", a.Symbol)
}

// PricePoint is a single price observation received from the broker.
// It is transient input to evaluation and is never persisted.
type PricePoint struct {
	Symbol    string
	LTP       float64
	Volume    int64
	Timestamp time.Time
}

// CandidateSymbol is one result of a symbol search, ordered by relevance.
type CandidateSymbol struct {
	Symbol      string
	DisplayName string
}

// OrderSide represents the direction of an order.
type OrderSide string

const (
	OrderBuy  OrderSide = "BUY"
	OrderSell OrderSide = "SELL"
)

// OrderType represents the execution type of an order.
type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

// OrderRequest is a request to place an order with the broker.
type OrderRequest struct {
	Symbol   string
	Quantity int
	Side     OrderSide
	Type     OrderType
	Price    float64 // limit price, zero for market orders
}

// Holding is a single position in the account, received from the broker.
type Holding struct {
	Symbol       string
	Quantity     int
	AveragePrice float64
	LastPrice    float64
}

// MarketStatus represents the current state of the trading venue.
type MarketStatus string

const (
	MarketOpen      MarketStatus = "OPEN"
	MarketPreOpen   MarketStatus = "PRE_OPEN"
	MarketPostClose MarketStatus = "POST_MARKET"
	MarketClosed    MarketStatus = "CLOSED"
)
