package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartRecordsElapsed(t *testing.T) {
	tt := NewTracker()
	clock := time.Unix(0, 0)
	tt.now = func() time.Time { return clock }

	stop := tt.Start("circuit")
	clock = clock.Add(30 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, stop())

	assert.Equal(t, []time.Duration{30 * time.Millisecond}, tt.Timings("circuit"))
}

func TestAverageAndSnapshot(t *testing.T) {
	tt := NewTracker()
	tt.Record("image", time.Second)
	tt.Record("image", 3*time.Second)
	tt.Record("mood", 500*time.Millisecond)

	assert.Equal(t, 2*time.Second, tt.Average("image"))
	assert.Zero(t, tt.Average("missing"))
	assert.Equal(t, map[string]time.Duration{
		"image": 2 * time.Second,
		"mood":  500 * time.Millisecond,
	}, tt.Snapshot())
}

func TestTimingsReturnsCopy(t *testing.T) {
	tt := NewTracker()
	tt.Record("mood", time.Second)

	got := tt.Timings("mood")
	got[0] = 0
	assert.Equal(t, time.Second, tt.Timings("mood")[0])
	assert.Nil(t, tt.Timings("none"))
}

func TestReset(t *testing.T) {
	tt := NewTracker()
	tt.Record("a", time.Second)
	tt.Record("b", time.Second)

	tt.Reset("a")
	assert.Nil(t, tt.Timings("a"))
	assert.NotNil(t, tt.Timings("b"))

	tt.Reset("")
	assert.Empty(t, tt.Snapshot())
}
