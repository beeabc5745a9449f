package wowapi

import (
	"context"

	"github.com/avast/retry-go"
)

// RetryPolicy bounds how often one logical operation is attempted.
type RetryPolicy struct {
	// Attempts is the total number of tries, the first one included.
	Attempts uint
	// Retryable decides which failures consume another attempt. Nil means
	// connection failures and non-2xx responses.
	Retryable func(error) bool
	// OnFailure is called for every retryable failure, the last one included.
	OnFailure func(attempt uint, err error)
}

// RetryBudgets holds the attempt budget of every call site.
type RetryBudgets struct {
	Token   uint
	Get     uint
	Search  uint
	Hydrate uint
	Bulk    uint
}

// DefaultRetryBudgets returns the per-call-site budgets. The bulk pager
// tolerates more failures than single requests.
func DefaultRetryBudgets() RetryBudgets {
	return RetryBudgets{
		Token:   5,
		Get:     5,
		Search:  5,
		Hydrate: 5,
		Bulk:    10,
	}
}

func defaultRetryable(err error) bool {
	return !IsExhausted(err) && IsTransient(err)
}

// Retry runs fn until it succeeds, returns a non-retryable error, the
// context ends, or the policy's budget is spent. Attempts are made back to
// back with no delay. A spent budget yields an *ExhaustedError wrapping the
// last failure.
func Retry[T any](ctx context.Context, op string, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		result T
		zero   T
		tried  uint
	)

	attempts := policy.Attempts
	if attempts == 0 {
		attempts = 1
	}
	retryable := policy.Retryable
	if retryable == nil {
		retryable = defaultRetryable
	}

	err := retry.Do(
		func() error {
			tried++
			v, err := fn(ctx)
			if err != nil {
				return err
			}
			result = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			if policy.OnFailure != nil {
				policy.OnFailure(n+1, err)
			}
		}),
	)
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return zero, err
	}
	if tried == attempts && retryable(err) {
		return zero, &ExhaustedError{Op: op, Attempts: tried, Last: err}
	}
	return zero, err
}
