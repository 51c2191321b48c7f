package llm

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxRetries is the attempt cap when the config leaves it unset.
const DefaultMaxRetries = 3

// retryPolicy drives the shared retry loop. Both clients wrap their
// single-attempt call in run.
type retryPolicy struct {
	provider    string
	maxRetries  int
	backoffBase time.Duration
}

func newRetryPolicy(provider string, maxRetries int, backoffBase time.Duration) retryPolicy {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if backoffBase <= 0 {
		backoffBase = time.Second
	}
	return retryPolicy{provider: provider, maxRetries: maxRetries, backoffBase: backoffBase}
}

// run executes attempt up to maxRetries times.
//
// Transient failures (connection, rate limit) back off 2^attempt time
// units before the next try and are returned as-is from the final
// attempt. Authentication and invalid-request failures return
// immediately: retrying cannot fix a bad credential or a malformed
// payload. Anything that is not a provider error is wrapped as a
// connection failure with the original message preserved, then treated
// as transient.
func (p retryPolicy) run(ctx context.Context, attempt func(context.Context) (*Response, error)) (*Response, error) {
	for i := 0; i < p.maxRetries; i++ {
		resp, err := attempt(ctx)
		if err == nil {
			return resp, nil
		}

		var perr *Error
		if !errors.As(err, &perr) {
			perr = &Error{Kind: KindConnection, Provider: p.provider, Message: "unexpected error: " + err.Error(), Err: err}
			err = perr
		}

		if perr.Kind == KindAuthentication || perr.Kind == KindInvalidRequest {
			return nil, err
		}
		if i == p.maxRetries-1 {
			return nil, err
		}
		if waitErr := p.wait(ctx, i); waitErr != nil {
			return nil, &Error{Kind: KindConnection, Provider: p.provider, Message: "cancelled during retry backoff", Err: waitErr}
		}
	}
	// Unreachable if the loop above is correct.
	return nil, &Error{Kind: KindConnection, Provider: p.provider, Message: "max retries exceeded"}
}

// wait sleeps 2^attempt backoff units (1, 2, 4, ... seconds by default),
// returning early if ctx is cancelled.
func (p retryPolicy) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(p.backoffBase << attempt)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
