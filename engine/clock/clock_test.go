package clock

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bigTicksToMicros is the arbitrary-precision reference: ticks * 1e6 / freq.
func bigTicksToMicros(ticks, freq int64) int64 {
	v := new(big.Int).Mul(big.NewInt(ticks), big.NewInt(1000000))
	v.Quo(v, big.NewInt(freq))
	return v.Int64()
}

func TestTicksToMicrosMatchesReference(t *testing.T) {
	const century = int64(100 * 365 * 24 * 3600) // seconds in 100 years

	freqs := []int64{
		10_000_000,    // typical QPC frequency
		3_579_545,     // ACPI PM timer
		2_900_000_000, // near the 100-year rollover bound
		1_000,
	}
	for _, freq := range freqs {
		ticks := []int64{
			0,
			1,
			freq - 1,
			freq,
			freq*3600 + 123,
			freq*century - 1, // 100 years of ticks
		}
		for _, tk := range ticks {
			got := TicksToMicros(tk, freq)
			want := bigTicksToMicros(tk, freq)
			require.Equal(t, want, got, "freq=%d ticks=%d", freq, tk)
		}
	}
}

func TestTicksToMicrosNaiveWouldOverflow(t *testing.T) {
	// The naive ticks*1e6/freq blows past int64 here; the split form must not.
	const freq = int64(10_000_000)
	ticks := freq * 100 * 365 * 24 * 3600 // ~3.15e16, naive product ~3.15e22
	got := TicksToMicros(ticks, freq)
	assert.Equal(t, bigTicksToMicros(ticks, freq), got)
}

func TestTicksToMicrosInvalidFrequency(t *testing.T) {
	assert.Zero(t, TicksToMicros(12345, 0))
	assert.Zero(t, TicksToMicros(12345, -1))
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(10_000_000)
	c.Advance(10_000)
	assert.Equal(t, int64(10_000), c.Ticks())
	assert.Equal(t, int64(1_000), c.Micros())
	assert.Equal(t, int64(10_000_000), c.Frequency())

	c.Wall = 42
	assert.Equal(t, int64(42), c.WallMicros())
}
