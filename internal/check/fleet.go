package check

import (
	"context"
	"sync"

	"github.com/xxjwxc/gowp/workpool"
	"go.uber.org/atomic"

	"github.com/jonathanspw/mirrors/internal/config"
)

// DefaultConcurrency bounds how many mirrors are checked at once.
const DefaultConcurrency = 15

// CheckAll checks every mirror through a bounded work pool and returns the
// verdict per mirror name. Mirror checks are independent, so a fatal error
// from one mirror aborts the run; transient probe failures do not.
func (c *Checker) CheckAll(ctx context.Context, mirrors []*config.Mirror, concurrency int) (map[string]bool, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	results := make(map[string]bool, len(mirrors))
	var available, unavailable atomic.Int32

	wp := workpool.New(concurrency)
	for _, m := range mirrors {
		m := m
		wp.Do(func() error {
			ok, err := c.CheckMirror(ctx, m)
			if err != nil {
				return err
			}
			if ok {
				available.Inc()
			} else {
				unavailable.Inc()
			}
			mu.Lock()
			results[m.Name] = ok
			mu.Unlock()
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("mirror fleet checked",
		"mirrors", len(mirrors),
		"available", available.Load(),
		"unavailable", unavailable.Load())
	return results, nil
}
