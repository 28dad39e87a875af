package batch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
)

// DefaultLimit is the concurrency cap used when a caller passes a
// non-positive limit.
const DefaultLimit = 16

// Item is one unit of work in a batch.
type Item struct {
	// Label identifies the item in the aggregated error.
	Label string
	// Run does the work. It receives the batch context.
	Run func(ctx context.Context) error
}

// Run executes all items with at most limit of them in flight at once
// and waits for every item to settle.
//
// A failing item never stops the batch. Each failure is recorded
// against its label, and after the last item settles they are combined
// into a single error of the form
// "<label>: <failed> of <total> tasks failed: ...".
func Run(ctx context.Context, label string, limit int64, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		waitGroup sync.WaitGroup
		slots     = semaphore.NewWeighted(limit)
		errs      = make([]error, len(items))
	)

	for i, item := range items {
		if err := slots.Acquire(ctx, 1); err != nil {
			errs[i] = fmt.Errorf("%s: %w", item.Label, err)
			continue
		}

		waitGroup.Add(1)

		go func(i int, item Item) {
			defer waitGroup.Done()
			defer slots.Release(1)

			if err := item.Run(ctx); err != nil {
				errs[i] = fmt.Errorf("%s: %w", item.Label, err)
			}
		}(i, item)
	}

	waitGroup.Wait()

	combined := multierr.Combine(errs...)
	if combined == nil {
		return nil
	}

	failed := len(multierr.Errors(combined))

	return fmt.Errorf("%s: %d of %d tasks failed: %w", label, failed, len(items), combined)
}
