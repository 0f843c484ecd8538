package gpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

// scheduledPin is high before lowAt, low until highAt, then high.
type scheduledPin struct {
	start  time.Time
	lowAt  time.Duration
	highAt time.Duration
}

func (p *scheduledPin) Read() gpio.Level {
	t := time.Since(p.start)
	return gpio.Level(t < p.lowAt || t >= p.highAt)
}

func TestSourceMeasurePulse(t *testing.T) {
	pin := &scheduledPin{start: time.Now(), lowAt: 5 * time.Millisecond, highAt: 25 * time.Millisecond}
	src := New(pin)
	d, err := src.MeasurePulse(ht12e.Low, time.Second)
	require.NoError(t, err)
	require.InDelta(t, float64(20*time.Millisecond), float64(d), float64(5*time.Millisecond))
}

func TestSourceTimeout(t *testing.T) {
	pin := &scheduledPin{start: time.Now(), lowAt: time.Hour, highAt: time.Hour}
	src := &Source{Pin: pin, Poll: time.Millisecond}
	start := time.Now()
	require.Equal(t, ht12e.ErrTimedOut, src.WaitForLevel(ht12e.Low, 10*time.Millisecond))
	require.True(t, time.Since(start) >= 10*time.Millisecond)
	require.NoError(t, src.WaitForLevel(ht12e.High, 0))

	src.Invert = true
	require.NoError(t, src.WaitForLevel(ht12e.Low, 0))
}

func TestParsePull(t *testing.T) {
	for s, expect := range map[string]gpio.Pull{
		"":      gpio.PullNoChange,
		"up":    gpio.PullUp,
		"down":  gpio.PullDown,
		"float": gpio.Float,
	} {
		pull, err := ParsePull(s)
		require.NoError(t, err)
		require.Equal(t, expect, pull)
	}
	_, err := ParsePull("sideways")
	require.Error(t, err)
}
