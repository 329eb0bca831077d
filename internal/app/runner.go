package app

import (
	"context"
	"sync"
	"sync/atomic"
)

// WithBoundedConcurrency runs fn over items with at most limit calls in flight and
// returns one result per item at the item's index.
//
// Workers claim indexes from a shared cursor, so a slow item never holds back a
// whole chunk. fn owns its own error handling: the runner never recovers or
// inspects failures. Once ctx is done no new items are claimed and the
// unclaimed slots keep R's zero value.
func WithBoundedConcurrency[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) R) []R {
	out := make([]R, len(items))
	n := len(items)
	if n == 0 {
		return out
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > n {
		limit = n
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				i := int(cursor.Add(1) - 1)
				if i >= n {
					return
				}
				out[i] = fn(ctx, items[i])
			}
		}()
	}
	wg.Wait()
	return out
}
