package checker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	consts "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/constants"
)

// ItemFunc processes the item at position idx. The context carries the
// per-item timeout.
type ItemFunc func(ctx context.Context, idx int)

// Runner orchestrates the execution of checks with concurrency and rate limiting
type Runner struct {
	Concurrency int           // Maximum number of concurrent checks
	RateLimit   int           // Checks started per second (global)
	Timeout     time.Duration // Timeout for each check
}

// Run calls fn once for every index in [0, n) using a bounded worker pool.
// Callers write results into a slice at idx so output order matches input
// order regardless of completion order. Items not yet started when ctx is
// done are skipped and reported in the returned slice (ascending).
func (r *Runner) Run(ctx context.Context, n int, fn ItemFunc) []int {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = consts.DefaultConcurrency
	}
	limit := rate.Inf
	burst := 0
	if r.RateLimit > 0 {
		limit = rate.Limit(r.RateLimit)
		burst = r.RateLimit
	}
	timeout := timeoutOrDefault(r.Timeout)

	// Rate limiter
	limiter := rate.NewLimiter(limit, burst)

	// Worker pool
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	skipped := make([]bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				skipped[idx] = true
				return
			}
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				skipped[idx] = true
				return
			}

			itemCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			fn(itemCtx, idx)
		}(i)
	}

	wg.Wait()

	var out []int
	for idx, s := range skipped {
		if s {
			out = append(out, idx)
		}
	}
	return out
}
