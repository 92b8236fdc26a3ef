package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatIndianCurrencyExamples(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{999, "₹999.00"},
		{1000, "₹1,000.00"},
		{100000, "₹1,00,000.00"},
		{1234567.89, "₹12,34,567.89"},
		{10000000, "₹1,00,00,000.00"},
		{-2500.50, "-₹2,500.50"},
	}

	for _, tc := range cases {
		if got := FormatIndianCurrency(tc.amount); got != tc.want {
			t.Errorf("FormatIndianCurrency(%f) = %s, want %s", tc.amount, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(5.2); got != "+5.20%" {
		t.Errorf("FormatPercent(5.2) = %s", got)
	}
	if got := FormatPercent(-3.75); got != "-3.75%" {
		t.Errorf("FormatPercent(-3.75) = %s", got)
	}
	if got := FormatPercent(0); got != "0.00%" {
		t.Errorf("FormatPercent(0) = %s", got)
	}
}

// For any amount, FormatIndianCurrency uses Indian digit grouping and
// the value survives a round-trip through the formatted string.
func TestPropertyIndianCurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	indianPattern := regexp.MustCompile(`^(\d{1,2},)*\d{1,3}$`)

	properties.Property("valid Indian grouping", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}

			formatted := FormatIndianCurrency(amount)

			numPart := strings.TrimPrefix(formatted, "-")
			numPart = strings.TrimPrefix(numPart, "₹")
			parts := strings.Split(numPart, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}
			if !indianPattern.MatchString(parts[0]) {
				t.Logf("invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("round-trip preserves value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatIndianCurrency(amount)

			numPart := strings.TrimPrefix(formatted, "-")
			numPart = strings.TrimPrefix(numPart, "₹")
			numPart = strings.ReplaceAll(numPart, ",", "")
			parsed, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				t.Logf("unparseable output for %f: %s", amount, formatted)
				return false
			}
			if strings.HasPrefix(formatted, "-") {
				parsed = -parsed
			}

			want, _ := strconv.ParseFloat(strconv.FormatFloat(amount, 'f', 2, 64), 64)
			if parsed != want {
				t.Logf("round-trip mismatch: %f -> %s -> %f", amount, formatted, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}
