package ht12e_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ht12d/pkg/ht12e"
	"github.com/robotalks/ht12d/pkg/pulse/replay"
)

// burst creates 13 low pulses: one long pulse and twelve short ones.
func burst(short, long time.Duration) *replay.Script {
	s := replay.NewScript().High(short).Low(long)
	for n := 0; n < 12; n++ {
		s.High(short).Low(short)
	}
	return s
}

func TestDetectClock(t *testing.T) {
	testCases := []struct {
		name   string
		script *replay.Script
		period time.Duration
		err    error
	}{
		{
			name:   "ratio 36",
			script: burst(500*us, 18000*us),
			period: 500 * us,
		},
		{
			name:   "ratio 18",
			script: burst(1000*us, 18000*us),
			period: 500 * us,
		},
		{
			name:   "ratio 36 within tolerance",
			script: burst(400*us, 15800*us),
			period: 400 * us,
		},
		{
			name:   "ratio 25",
			script: burst(400*us, 10000*us),
			err:    ht12e.ErrCalibrationIndeterminate,
		},
		{
			name:   "all pulses equal",
			script: burst(400*us, 400*us),
			err:    ht12e.ErrCalibrationIndeterminate,
		},
		{
			name:   "not connected",
			script: &replay.Script{Idle: ht12e.Low},
			err:    ht12e.ErrNotConnected,
		},
		{
			name:   "burst too short",
			script: replay.NewScript().High(500 * us).Low(18000 * us),
			err:    ht12e.ErrCalibrationIndeterminate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			period, err := ht12e.DetectClock(tc.script.Source(), time.Second)
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.period, period)
		})
	}
}

func TestNotConnectedIsTimeout(t *testing.T) {
	require.True(t, errors.Is(ht12e.ErrNotConnected, ht12e.ErrTimeout))
	require.False(t, errors.Is(ht12e.ErrTimeout, ht12e.ErrNotConnected))
}

func TestCalibrator(t *testing.T) {
	testCases := []struct {
		name     string
		script   *replay.Script
		fallback bool
		expect   ht12e.Calibration
		err      error
	}{
		{
			name:   "determined",
			script: burst(500*us, 18000*us).Repeat(),
			expect: ht12e.Calibration{Period: 500 * us, Samples: 5},
		},
		{
			name:     "fallback to default",
			script:   burst(400*us, 10000*us).Repeat(),
			fallback: true,
			expect:   ht12e.Calibration{Period: 333 * us, Degraded: true},
		},
		{
			name:   "fallback disabled",
			script: burst(400*us, 10000*us).Repeat(),
			err:    ht12e.ErrCalibrationIndeterminate,
		},
		{
			name:     "not connected never falls back",
			script:   &replay.Script{Idle: ht12e.Low},
			fallback: true,
			err:      ht12e.ErrNotConnected,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := ht12e.NewCalibrator()
			c.Fallback = tc.fallback
			cal, err := c.Calibrate(tc.script.Source())
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expect, cal)
		})
	}
}

func TestCalibratorAverages(t *testing.T) {
	s := burst(500*us, 18000*us)
	for n := 0; n < 13; n++ {
		s.High(300 * us).Low(300 * us)
	}
	s.High(700 * us).Low(25200 * us)
	for n := 0; n < 12; n++ {
		s.High(700 * us).Low(700 * us)
	}
	c := ht12e.NewCalibrator()
	c.Attempts = 3
	cal, err := c.Calibrate(s.Source())
	require.NoError(t, err)
	require.Equal(t, ht12e.Calibration{Period: 600 * us, Samples: 2}, cal)
}

func TestDecoderCalibrate(t *testing.T) {
	period := 500 * us
	src := burst(period, 36*period).Frame(period, 0x3c3).Source()
	d := newDecoder(t, src, 900*us)
	got, err := d.Calibrate(time.Second)
	require.NoError(t, err)
	require.Equal(t, period, got)
	require.Equal(t, period, d.ClockPeriod())
	w, err := d.Read(time.Second)
	require.NoError(t, err)
	require.Equal(t, ht12e.Word(0x3c3), w)
}

func TestDecoderCalibrateKeepsPeriod(t *testing.T) {
	src := burst(400*us, 10000*us).Source()
	d := newDecoder(t, src, 900*us)
	_, err := d.Calibrate(time.Second)
	require.Equal(t, ht12e.ErrCalibrationIndeterminate, err)
	require.Equal(t, 900*us, d.ClockPeriod())
}

func TestDecoderAutoCalibrate(t *testing.T) {
	src := burst(400*us, 10000*us).Repeat().Source()
	d := newDecoder(t, src, 900*us)
	cal, err := d.AutoCalibrate(ht12e.NewCalibrator())
	require.NoError(t, err)
	require.True(t, cal.Degraded)
	require.Equal(t, 333*us, d.ClockPeriod())
}

func TestConfigNewDecoder(t *testing.T) {
	t.Run("explicit frequency", func(t *testing.T) {
		src := replay.NewScript().Source()
		conf := ht12e.NewConfig()
		conf.Frequency = 2000
		d, cal, err := conf.NewDecoder(src)
		require.NoError(t, err)
		require.Equal(t, 500*us, d.ClockPeriod())
		require.Equal(t, ht12e.Calibration{Period: 500 * us}, cal)
		require.Zero(t, src.Calls())
	})

	t.Run("auto detect", func(t *testing.T) {
		conf := ht12e.NewConfig()
		conf.Timeout = 250 * time.Millisecond
		d, cal, err := conf.NewDecoder(burst(250*us, 9000*us).Repeat().Source())
		require.NoError(t, err)
		require.Equal(t, 250*us, d.ClockPeriod())
		require.Equal(t, 250*time.Millisecond, d.Timeout)
		require.Equal(t, 5, cal.Samples)
		require.False(t, cal.Degraded)
	})

	t.Run("not connected", func(t *testing.T) {
		_, _, err := ht12e.NewConfig().NewDecoder((&replay.Script{Idle: ht12e.Low}).Source())
		require.Equal(t, ht12e.ErrNotConnected, err)
	})
}
