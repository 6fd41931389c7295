package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mood-canvas/internal/logger"
)

func TestFactor(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)

	cases := []struct {
		name     string
		checkout string
		want     float64
	}{
		{"now", "2024-06-10 12:00", 1},
		{"twelve hours ahead", "2024-06-11 00:00", 0.5},
		{"exactly a day ahead", "2024-06-11 12:00", 0},
		{"two days ahead clamps to zero", "2024-06-12 12:00", 0},
		{"six hours overdue", "2024-06-10 06:00", 1.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Factor(tc.checkout, now)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestFactorRejectsBadInput(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"", "tomorrow", "2024-06-10", "10/03/2024 12:00", "2024-13-01 10:00"} {
		_, err := Factor(in, now)
		assert.Error(t, err, in)
	}
}

func TestFactorTrimsWhitespace(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	got, err := Factor("  2024-06-10 18:00 ", now)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-9)
}

func TestFactorOrDefault(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	assert.Equal(t, DefaultFactor, FactorOrDefault("garbage", now, logger.NoOp{}))
	assert.InDelta(t, 0.5, FactorOrDefault("2024-06-11 00:00", now, logger.NoOp{}), 1e-9)
}
