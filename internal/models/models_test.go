package models

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func ptr(v float64) *float64 { return &v }

func point(ltp float64, volume int64) PricePoint {
	return PricePoint{Symbol: "TEST", LTP: ltp, Volume: volume, Timestamp: time.Now()}
}

func TestEvaluateThresholdBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		alert Alert
		price PricePoint
		want  bool
	}{
		{
			"price above at exact threshold",
			Alert{Kind: AlertPriceAbove, Threshold: 100, Status: AlertActive},
			point(100.00, 0), true,
		},
		{
			"price above just under threshold",
			Alert{Kind: AlertPriceAbove, Threshold: 100, Status: AlertActive},
			point(99.99, 0), false,
		},
		{
			"price below at exact threshold",
			Alert{Kind: AlertPriceBelow, Threshold: 50, Status: AlertActive},
			point(50.00, 0), true,
		},
		{
			"price below just over threshold",
			Alert{Kind: AlertPriceBelow, Threshold: 50, Status: AlertActive},
			point(50.01, 0), false,
		},
		{
			"percent increase at exact threshold",
			Alert{Kind: AlertPercentIncrease, Threshold: 5, BasePrice: ptr(100), Status: AlertActive},
			point(105.00, 0), true,
		},
		{
			"percent increase just under threshold",
			Alert{Kind: AlertPercentIncrease, Threshold: 5, BasePrice: ptr(100), Status: AlertActive},
			point(104.99, 0), false,
		},
		{
			"percent decrease at exact threshold",
			Alert{Kind: AlertPercentDecrease, Threshold: 5, BasePrice: ptr(100), Status: AlertActive},
			point(95.00, 0), true,
		},
		{
			"percent decrease just under threshold",
			Alert{Kind: AlertPercentDecrease, Threshold: 5, BasePrice: ptr(100), Status: AlertActive},
			point(95.01, 0), false,
		},
		{
			"volume above at exact threshold",
			Alert{Kind: AlertVolumeAbove, Threshold: 1000000, Status: AlertActive},
			point(1, 1000000), true,
		},
		{
			"volume above with zero volume",
			Alert{Kind: AlertVolumeAbove, Threshold: 1, Status: AlertActive},
			point(1, 0), false,
		},
		{
			"percent increase without base price",
			Alert{Kind: AlertPercentIncrease, Threshold: 5, Status: AlertActive},
			point(200, 0), false,
		},
		{
			"percent increase with zero base price",
			Alert{Kind: AlertPercentIncrease, Threshold: 5, BasePrice: ptr(0), Status: AlertActive},
			point(200, 0), false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.alert.Evaluate(tc.price); got != tc.want {
				t.Errorf("Evaluate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateNonActiveNeverTriggers(t *testing.T) {
	for _, status := range []AlertStatus{AlertTriggered, AlertCancelled, AlertExpired} {
		a := Alert{Kind: AlertPriceAbove, Threshold: 1, Status: status}
		if a.Evaluate(point(1000, 0)) {
			t.Errorf("alert with status %s evaluated to true", status)
		}
	}
}

func TestTriggerMessage(t *testing.T) {
	a := Alert{Symbol: "RELIANCE", Kind: AlertPriceAbove, Threshold: 2500, Status: AlertActive}
	msg := a.TriggerMessage(point(2510.50, 0))
	if !strings.Contains(msg, "RELIANCE") || !strings.Contains(msg, "₹2500.00") || !strings.Contains(msg, "₹2510.50") {
		t.Errorf("unexpected trigger message: %s", msg)
	}

	b := Alert{Symbol: "TCS", Kind: AlertPercentDecrease, Threshold: 5, BasePrice: ptr(100), Status: AlertActive}
	msg = b.TriggerMessage(point(90, 0))
	if !strings.Contains(msg, "down 10.00%") {
		t.Errorf("unexpected trigger message: %s", msg)
	}
}

// Property: percent-increase and percent-decrease are symmetric. A
// price move that fires the increase alert never fires the decrease
// alert for the same positive threshold, and vice versa.
func TestPropertyPercentKindsAreExclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("increase and decrease never both fire", prop.ForAll(
		func(base, current, threshold float64) bool {
			inc := Alert{Kind: AlertPercentIncrease, Threshold: threshold, BasePrice: ptr(base), Status: AlertActive}
			dec := Alert{Kind: AlertPercentDecrease, Threshold: threshold, BasePrice: ptr(base), Status: AlertActive}
			p := point(current, 0)
			if inc.Evaluate(p) && dec.Evaluate(p) {
				t.Logf("both fired: base=%f current=%f threshold=%f", base, current, threshold)
				return false
			}
			return true
		},
		gen.Float64Range(1, 1e6),
		gen.Float64Range(0, 2e6),
		gen.Float64Range(0.01, 100),
	))

	properties.Property("evaluation is pure", prop.ForAll(
		func(base, current, threshold float64) bool {
			a := Alert{Kind: AlertPercentIncrease, Threshold: threshold, BasePrice: ptr(base), Status: AlertActive}
			p := point(current, 0)
			first := a.Evaluate(p)
			for i := 0; i < 3; i++ {
				if a.Evaluate(p) != first {
					return false
				}
			}
			return true
		},
		gen.Float64Range(1, 1e6),
		gen.Float64Range(0, 2e6),
		gen.Float64Range(0.01, 100),
	))

	properties.TestingRun(t)
}
