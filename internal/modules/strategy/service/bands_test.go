package service

import (
	"errors"
	"testing"

	"envelope_bot/internal/models"
	"envelope_bot/internal/modules/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(vals ...float64) []models.Candle {
	out := make([]models.Candle, 0, len(vals))
	for _, v := range vals {
		out = append(out, models.Candle{Open: v, High: v, Low: v, Close: v, Confirmed: true})
	}
	return out
}

func flatHistory(n int, px float64) []models.Candle {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = px
	}
	return closes(vals...)
}

func TestComputeBands_Identity(t *testing.T) {
	inst := config.Instrument{Src: config.SourceClose, MABaseWindow: 3, Envelopes: []float64{0.05, 0.1, 0.2}}
	snap, err := ComputeBands("BTC", closes(90, 100, 110, 120), inst)
	require.NoError(t, err)

	assert.InDelta(t, 110.0, snap.Base, 1e-12)
	require.Len(t, snap.Bands, 3)
	for i, b := range snap.Bands {
		e := inst.Envelopes[i]
		assert.Equal(t, i+1, b.Index)
		assert.InDelta(t, snap.Base*(1-e), b.Low, 1e-9)
		assert.InDelta(t, snap.Base/(1-e), b.High, 1e-9)
		assert.Less(t, b.Low, snap.Base)
		assert.Greater(t, b.High, snap.Base)
		if i > 0 {
			assert.Less(t, b.Low, snap.Bands[i-1].Low)
			assert.Greater(t, b.High, snap.Bands[i-1].High)
		}
	}
}

func TestComputeBands_RoundTripReturns(t *testing.T) {
	for _, e := range []float64{0.01, 0.05, 0.07, 0.1, 0.15, 0.5} {
		inst := config.Instrument{MABaseWindow: 2, Envelopes: []float64{e}, Src: config.SourceClose}
		snap, err := ComputeBands("X", flatHistory(2, 250), inst)
		require.NoError(t, err)
		b := snap.Bands[0]

		// лонг от Low до High
		assert.InDelta(t, 1/((1-e)*(1-e))-1, b.High/b.Low-1, 1e-12)
		// лонг от Low до base
		assert.InDelta(t, e/(1-e), snap.Base/b.Low-1, 1e-12)
		// шорт от High до base
		assert.InDelta(t, e, 1-snap.Base/b.High, 1e-12)
	}
}

func TestComputeBands_OHLC4(t *testing.T) {
	inst := config.Instrument{Src: config.SourceOHLC4, MABaseWindow: 2, Envelopes: []float64{0.1}}
	hist := []models.Candle{
		{Open: 1, High: 2, Low: 3, Close: 4, Confirmed: true},
		{Open: 10, High: 20, Low: 30, Close: 40, Confirmed: true},
	}
	snap, err := ComputeBands("X", hist, inst)
	require.NoError(t, err)
	assert.InDelta(t, (2.5+25)/2, snap.Base, 1e-12)
}

func TestComputeBands_InsufficientHistory(t *testing.T) {
	inst := config.Instrument{Src: config.SourceClose, MABaseWindow: 20, Envelopes: []float64{0.05}}
	_, err := ComputeBands("BTC", flatHistory(19, 100), inst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
	assert.Contains(t, err.Error(), "BTC")
}

func TestClosedBars(t *testing.T) {
	hist := closes(1, 2, 3)
	hist = append(hist, models.Candle{Close: 4})
	got := ClosedBars(hist)
	require.Len(t, got, 3)
	assert.Equal(t, 3.0, got[2].Close)

	assert.Empty(t, ClosedBars(nil))
}

func TestSMA(t *testing.T) {
	s := newSMA(3)
	assert.False(t, s.Ready())
	for _, v := range []float64{1, 2, 3, 4} {
		s.Update(v)
	}
	assert.True(t, s.Ready())
	assert.InDelta(t, 3.0, s.Value(), 1e-12)
}
