package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_KeepsOrderAndIsolatesErrors(t *testing.T) {
	boom := errors.New("boom")
	res := fanOut(context.Background(), 3, 6, func(_ context.Context, i int) (int, error) {
		// обратный порядок завершения
		time.Sleep(time.Duration(6-i) * time.Millisecond)
		if i == 2 {
			return 0, boom
		}
		return i * 10, nil
	})

	require.Len(t, res, 6)
	for i, r := range res {
		if i == 2 {
			assert.ErrorIs(t, r.Err, boom)
			continue
		}
		assert.NoError(t, r.Err)
		assert.Equal(t, i*10, r.Value)
	}
}

func TestFanOut_RespectsLimit(t *testing.T) {
	var cur, peak int32
	fanOut(context.Background(), 2, 10, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&cur, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&cur, -1)
		return struct{}{}, nil
	})
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestFanOut_RecoversPanic(t *testing.T) {
	res := fanOut(context.Background(), 0, 2, func(_ context.Context, i int) (string, error) {
		if i == 0 {
			panic("bad task")
		}
		return "ok", nil
	})
	require.Error(t, res[0].Err)
	assert.Contains(t, res[0].Err.Error(), "bad task")
	assert.Equal(t, "ok", res[1].Value)
}

func TestFanOut_Empty(t *testing.T) {
	assert.Empty(t, fanOut(context.Background(), 4, 0, func(context.Context, int) (int, error) { return 0, nil }))
}
