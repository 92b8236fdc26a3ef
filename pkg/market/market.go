// Package market answers questions about Indian market trading hours.
// All functions are pure over an explicit timestamp, evaluated in IST
// regardless of host locale.
package market

import (
	"time"

	"groww-sentinel/internal/models"
)

// Location is the timezone for Indian markets.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		Location = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Session boundaries in minutes from midnight IST.
const (
	preOpenMinute   = 9 * 60     // 09:00
	openMinute      = 9*60 + 15  // 09:15
	closeMinute     = 15*60 + 30 // 15:30
	postCloseMinute = 16 * 60    // 16:00
)

// Poll intervals by session.
const (
	RegularInterval   = 180 * time.Second
	PreMarketInterval = 300 * time.Second
	ClosedInterval    = 3600 * time.Second
)

func minuteOfDay(t time.Time) int {
	t = t.In(Location)
	return t.Hour()*60 + t.Minute()
}

// IsTradingDay reports whether t falls on a weekday. Exchange holidays
// are not modelled.
func IsTradingDay(t time.Time) bool {
	wd := t.In(Location).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsRegularHours reports whether t is within regular trading hours,
// 09:15 to 15:30 IST inclusive of both boundaries.
func IsRegularHours(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	m := minuteOfDay(t)
	return m >= openMinute && m <= closeMinute
}

// IsPreMarket reports whether t is within the pre-open session,
// 09:00 up to but not including 09:15 IST.
func IsPreMarket(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	m := minuteOfDay(t)
	return m >= preOpenMinute && m < openMinute
}

// IsPostMarket reports whether t is within the post-close session,
// after 15:30 up to and including 16:00 IST.
func IsPostMarket(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	m := minuteOfDay(t)
	return m > closeMinute && m <= postCloseMinute
}

// ShouldPoll reports whether alert sweeps should run at t. Alerts are
// monitored during regular hours and pre-market only.
func ShouldPoll(t time.Time) bool {
	return IsRegularHours(t) || IsPreMarket(t)
}

// PollInterval returns the sweep interval appropriate for t.
func PollInterval(t time.Time) time.Duration {
	switch {
	case IsRegularHours(t):
		return RegularInterval
	case IsPreMarket(t):
		return PreMarketInterval
	default:
		return ClosedInterval
	}
}

// Status returns the venue status at t.
func Status(t time.Time) models.MarketStatus {
	switch {
	case IsRegularHours(t):
		return models.MarketOpen
	case IsPreMarket(t):
		return models.MarketPreOpen
	case IsPostMarket(t):
		return models.MarketPostClose
	default:
		return models.MarketClosed
	}
}

// NextOpen returns the next market opening time strictly after t.
func NextOpen(t time.Time) time.Time {
	t = t.In(Location)
	next := time.Date(t.Year(), t.Month(), t.Day(), 9, 15, 0, 0, Location)
	if !t.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Close returns the close time of t's trading day.
func Close(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 15, 30, 0, 0, Location)
}
