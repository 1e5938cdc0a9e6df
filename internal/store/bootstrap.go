package store

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// lazyInit runs a bootstrap function at most once per process, coalescing
// concurrent first callers onto a single attempt. All waiters share the
// attempt's outcome. A failed attempt leaves the done flag clear, so the next
// caller retries instead of being stuck with a poisoned initializer.
type lazyInit struct {
	sf   singleflight.Group
	done atomic.Bool
	run  func(ctx context.Context) error
}

func (l *lazyInit) ensure(ctx context.Context) error {
	if l.done.Load() {
		return nil
	}
	_, err, _ := l.sf.Do("bootstrap", func() (interface{}, error) {
		if l.done.Load() {
			return nil, nil
		}
		if err := l.run(ctx); err != nil {
			return nil, err
		}
		l.done.Store(true)
		return nil, nil
	})
	return err
}
