package decoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

func TestWordResult(t *testing.T) {
	res := NewWordResult(0xd36)
	require.Equal(t, WordResult{Word: "110100110110", Address: 0xd3, Data: 0x6}, res)
	require.Equal(t, "110100110110 addr=0xd3 data=0x6", res.String())
}

func TestPeriodResult(t *testing.T) {
	testCases := []struct {
		cal  ht12e.Calibration
		text string
	}{
		{ht12e.Calibration{Period: 500 * time.Microsecond}, "500us (2000Hz)"},
		{ht12e.Calibration{Period: 250 * time.Microsecond, Samples: 5}, "250us (4000Hz) from 5 bursts"},
		{ht12e.Calibration{Period: 333 * time.Microsecond, Degraded: true}, "333us (3003Hz) default"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.text, NewPeriodResult(tc.cal).String())
	}
}

func TestFormatBits(t *testing.T) {
	require.Equal(t, "011011001011", FormatBits(ht12e.Word(0xd36).Bits()))
	require.Equal(t, "100000000000", FormatBits(ht12e.Word(1).Bits()))
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration(nil, time.Second)
	require.NoError(t, err)
	require.Equal(t, time.Second, d)
	d, err = parseDuration([]string{"250ms"}, time.Second)
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, d)
	_, err = parseDuration([]string{"soon"}, time.Second)
	require.Error(t, err)
}
