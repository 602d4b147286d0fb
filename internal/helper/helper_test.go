package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormTF(t *testing.T) {
	assert.Equal(t, "1H", NormTF("1h"))
	assert.Equal(t, "1H", NormTF("candle60m"))
	assert.Equal(t, "4H", NormTF("4h"))
	assert.Equal(t, "15m", NormTF("15m"))
	assert.Equal(t, "1D", NormTF("1d"))
}

func TestRoundToTick(t *testing.T) {
	assert.Equal(t, 0.3, RoundDownToTick(0.35, 0.1))
	assert.Equal(t, 0.4, RoundUpToTick(0.31, 0.1))
	assert.Equal(t, 1.23, RoundToTick(1.234, 0.01))
	assert.Equal(t, 100.5, RoundToTick(100.5, 0))
	// float без decimal дал бы 0.30000000000000004
	assert.Equal(t, 0.3, RoundDownToTick(0.1+0.2, 0.1))
}

func TestFormatStep(t *testing.T) {
	assert.Equal(t, "0.30", FormatStep(0.3, 0.01))
	assert.Equal(t, "12", FormatStep(12, 1))
	assert.Equal(t, "1.5", FormatStep(1.5, 0))
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, "2024-03-02", DayKey(ts))

	d, err := ParseDayKey("2024-03-02")
	assert.NoError(t, err)
	assert.Equal(t, 2, d.Day())
}
