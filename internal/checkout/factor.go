// Package checkout turns a checkout timestamp into the datetime factor fed to
// the circuit.
package checkout

import (
	"fmt"
	"math"
	"strings"
	"time"

	"mood-canvas/internal/logger"
)

// Layout is the accepted input format, interpreted in local time.
const Layout = "2006-01-02 15:04"

// DefaultFactor is used when the checkout time cannot be parsed.
const DefaultFactor = 1.0

const window = 24 * time.Hour

// Parse reads a checkout time in Layout.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkout time %q: %w", s, err)
	}
	return t, nil
}

// Factor is max(0, 1 - (checkout - now) / 24h). Overdue checkouts exceed 1.
func Factor(s string, now time.Time) (float64, error) {
	t, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return FactorAt(t, now), nil
}

func FactorAt(checkout, now time.Time) float64 {
	diff := checkout.Sub(now).Seconds()
	return math.Max(0, 1-diff/window.Seconds())
}

// FactorOrDefault logs parse failures and falls back to DefaultFactor.
func FactorOrDefault(s string, now time.Time, log logger.Logger) float64 {
	f, err := Factor(s, now)
	if err != nil {
		log.Error("Checkout", err, map[string]interface{}{
			"input": s,
		})
		return DefaultFactor
	}
	return f
}
