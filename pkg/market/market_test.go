package market

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// istTime builds a time in the market timezone.
func istTime(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, Location)
}

func TestSessionBoundaries(t *testing.T) {
	// Monday 2025-06-02 is a trading day.
	cases := []struct {
		name   string
		t      time.Time
		status string
		poll   bool
	}{
		{"before pre-market", istTime(2025, 6, 2, 8, 59, 59), "CLOSED", false},
		{"pre-market open", istTime(2025, 6, 2, 9, 0, 0), "PRE_OPEN", true},
		{"last pre-market second", istTime(2025, 6, 2, 9, 14, 59), "PRE_OPEN", true},
		{"regular open", istTime(2025, 6, 2, 9, 15, 0), "OPEN", true},
		{"midday", istTime(2025, 6, 2, 12, 30, 0), "OPEN", true},
		{"regular close inclusive", istTime(2025, 6, 2, 15, 30, 0), "OPEN", true},
		{"post-market", istTime(2025, 6, 2, 15, 31, 0), "POST_MARKET", false},
		{"post-market end", istTime(2025, 6, 2, 16, 0, 0), "POST_MARKET", false},
		{"evening", istTime(2025, 6, 2, 16, 1, 0), "CLOSED", false},
		{"saturday midday", istTime(2025, 6, 7, 12, 0, 0), "CLOSED", false},
		{"sunday midday", istTime(2025, 6, 8, 12, 0, 0), "CLOSED", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(Status(tc.t)); got != tc.status {
				t.Errorf("Status(%v) = %s, want %s", tc.t, got, tc.status)
			}
			if got := ShouldPoll(tc.t); got != tc.poll {
				t.Errorf("ShouldPoll(%v) = %v, want %v", tc.t, got, tc.poll)
			}
		})
	}
}

func TestPollInterval(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want time.Duration
	}{
		{"regular hours", istTime(2025, 6, 2, 11, 0, 0), RegularInterval},
		{"pre-market", istTime(2025, 6, 2, 9, 5, 0), PreMarketInterval},
		{"post-market", istTime(2025, 6, 2, 15, 45, 0), ClosedInterval},
		{"overnight", istTime(2025, 6, 2, 22, 0, 0), ClosedInterval},
		{"weekend", istTime(2025, 6, 7, 11, 0, 0), ClosedInterval},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PollInterval(tc.t); got != tc.want {
				t.Errorf("PollInterval(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestNextOpen(t *testing.T) {
	// Friday evening rolls over the weekend to Monday 09:00.
	fridayEvening := istTime(2025, 6, 6, 18, 0, 0)
	next := NextOpen(fridayEvening)
	want := istTime(2025, 6, 9, 9, 15, 0)
	if !next.Equal(want) {
		t.Errorf("NextOpen(friday evening) = %v, want %v", next, want)
	}

	// Early on a trading day, the next open is the same day.
	mondayMorning := istTime(2025, 6, 2, 7, 0, 0)
	next = NextOpen(mondayMorning)
	want = istTime(2025, 6, 2, 9, 15, 0)
	if !next.Equal(want) {
		t.Errorf("NextOpen(monday morning) = %v, want %v", next, want)
	}
}

// Property: the market-hours gate and the poll interval always agree.
// Whenever the gate is open the interval is the regular or pre-market
// one, and whenever it is shut the interval is the closed one.
func TestPropertyGateAndIntervalAgree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genTime := gen.Int64Range(0, 7*24*3600-1).Map(func(offset int64) time.Time {
		// One full week starting Monday 2025-06-02 00:00 IST.
		return istTime(2025, 6, 2, 0, 0, 0).Add(time.Duration(offset) * time.Second)
	})

	properties.Property("gate open implies trading interval", prop.ForAll(
		func(now time.Time) bool {
			interval := PollInterval(now)
			if ShouldPoll(now) {
				if interval != RegularInterval && interval != PreMarketInterval {
					t.Logf("gate open at %v but interval %v", now, interval)
					return false
				}
				return true
			}
			if interval != ClosedInterval {
				t.Logf("gate shut at %v but interval %v", now, interval)
				return false
			}
			return true
		},
		genTime,
	))

	properties.Property("weekends never poll", prop.ForAll(
		func(now time.Time) bool {
			wd := now.In(Location).Weekday()
			if wd != time.Saturday && wd != time.Sunday {
				return true
			}
			if ShouldPoll(now) {
				t.Logf("ShouldPoll true on weekend %v", now)
				return false
			}
			return true
		},
		genTime,
	))

	properties.Property("regular hours on a weekday always poll", prop.ForAll(
		func(now time.Time) bool {
			if !IsTradingDay(now) || !IsRegularHours(now) {
				return true
			}
			if !ShouldPoll(now) {
				t.Logf("ShouldPoll false during regular hours %v", now)
				return false
			}
			return true
		},
		genTime,
	))

	properties.TestingRun(t)
}
