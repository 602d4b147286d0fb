package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result — итог одной задачи группы. Ошибка задачи не отменяет соседей.
type Result[T any] struct {
	Value T
	Err   error
}

// fanOut запускает n задач с ограничением параллелизма и ждёт все.
// Результаты лежат в порядке постановки.
func fanOut[T any](ctx context.Context, limit, n int, task func(ctx context.Context, i int) (T, error)) []Result[T] {
	out := make([]Result[T], n)
	if n == 0 {
		return out
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					out[i].Err = fmt.Errorf("task %d panic: %v", i, p)
				}
			}()
			out[i].Value, out[i].Err = task(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
