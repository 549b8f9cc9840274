package experiment

import (
	"context"
	"sync"
)

// Sweep runs every configuration in parallel. Parameter triples are fully
// independent, so workers share nothing; concurrency never enters a single
// continuation run. The context is consulted before each run starts; a
// run already in flight is not interrupted.
func Sweep(ctx context.Context, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i := range cfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			default:
			}

			results[idx], errs[idx] = Run(cfgs[idx])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
