package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

func TestSourceWaitForLevel(t *testing.T) {
	src := NewScript().High(time.Millisecond).Low(2 * time.Millisecond).Source()
	require.NoError(t, src.WaitForLevel(ht12e.High, 0))
	require.Zero(t, src.Elapsed())

	require.NoError(t, src.WaitForLevel(ht12e.Low, time.Second))
	require.Equal(t, time.Millisecond, src.Elapsed())

	require.NoError(t, src.WaitForLevel(ht12e.High, time.Second))
	require.Equal(t, 3*time.Millisecond, src.Elapsed())

	require.Equal(t, ht12e.ErrTimedOut, src.WaitForLevel(ht12e.Low, 5*time.Millisecond))
	require.Equal(t, 8*time.Millisecond, src.Elapsed())
	require.Equal(t, 4, src.Calls())
}

func TestSourceMeasurePulse(t *testing.T) {
	src := NewScript().
		High(time.Millisecond).
		Low(2 * time.Millisecond).
		High(3 * time.Millisecond).
		Low(4 * time.Millisecond).
		Source()

	d, err := src.MeasurePulse(ht12e.Low, time.Second)
	require.NoError(t, err)
	require.Equal(t, 2*time.Millisecond, d)

	// already high: wait for the next high pulse.
	require.NoError(t, src.WaitForLevel(ht12e.High, time.Second))
	d, err = src.MeasurePulse(ht12e.High, time.Second)
	require.Equal(t, ht12e.ErrTimedOut, err)
	require.Zero(t, d)

	src.Rewind()
	d, err = src.MeasurePulse(ht12e.High, time.Second)
	require.NoError(t, err)
	require.Equal(t, 3*time.Millisecond, d)

	src.Rewind()
	_, err = src.MeasurePulse(ht12e.Low, 2*time.Millisecond)
	require.Equal(t, ht12e.ErrTimedOut, err)
	require.Equal(t, 2*time.Millisecond, src.Elapsed())
}

func TestSourceMergesSameLevel(t *testing.T) {
	src := NewScript().High(time.Millisecond).Low(time.Millisecond).Low(time.Millisecond).Source()
	d, err := src.MeasurePulse(ht12e.Low, time.Second)
	require.NoError(t, err)
	require.Equal(t, 2*time.Millisecond, d)
}

func TestSourceLoop(t *testing.T) {
	src := NewScript().High(time.Millisecond).Low(time.Millisecond).Repeat().Source()
	for n := 0; n < 5; n++ {
		d, err := src.MeasurePulse(ht12e.Low, time.Second)
		require.NoError(t, err)
		require.Equal(t, time.Millisecond, d)
	}
	require.Equal(t, 10*time.Millisecond, src.Elapsed())
	require.Equal(t, Epoch.Add(10*time.Millisecond), src.Now())
}

func TestFrameBits(t *testing.T) {
	p := 100 * time.Microsecond
	require.Equal(t, []time.Duration{p, p, 2 * p, p, 2 * p, 2 * p, p, p, 2 * p, p, p, 2 * p},
		FrameBits(p, 0xd36))
}

func TestSourceEnds(t *testing.T) {
	src := NewScript().High(time.Millisecond).Low(2 * time.Millisecond).End().Source()
	require.False(t, src.Ended())

	require.Equal(t, ht12e.ErrTimedOut, src.WaitForLevel(ht12e.Low, 500*time.Microsecond))
	require.Equal(t, 500*time.Microsecond, src.Elapsed())

	d, err := src.MeasurePulse(ht12e.High, time.Second)
	require.Equal(t, ErrEnded, err)
	require.Zero(t, d)
	require.Equal(t, 3*time.Millisecond, src.Elapsed())
	require.True(t, src.Ended())

	require.Equal(t, ErrEnded, src.WaitForLevel(ht12e.High, time.Second))
	require.Equal(t, 3*time.Millisecond, src.Elapsed())

	src.Rewind()
	require.False(t, src.Ended())
}

func TestSourceIdlesWithoutEnd(t *testing.T) {
	src := NewScript().High(time.Millisecond).Source()
	require.Equal(t, ht12e.ErrTimedOut, src.WaitForLevel(ht12e.Low, time.Second))
	require.False(t, src.Ended())

	looped := NewScript().High(time.Millisecond).Low(time.Millisecond).End().Repeat().Source()
	for n := 0; n < 3; n++ {
		_, err := looped.MeasurePulse(ht12e.Low, time.Second)
		require.NoError(t, err)
	}
	require.False(t, looped.Ended())
}
