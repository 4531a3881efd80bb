package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

var errRetryableStatus = errors.New("retryable status")

// RetryDoer retries idempotent GET requests on transport errors and on
// 502, 503 and 504, with exponential backoff. Other methods pass through.
type RetryDoer struct {
	next     Doer
	attempts uint64
	base     time.Duration
}

// NewRetryDoer wraps next; attempts counts retries after the first try.
func NewRetryDoer(next Doer, attempts uint64, base time.Duration) *RetryDoer {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	return &RetryDoer{next: next, attempts: attempts, base: base}
}

func (d *RetryDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || d.attempts == 0 {
		return d.next.Do(req)
	}

	var last *http.Response
	backoff := retry.WithMaxRetries(d.attempts, retry.NewExponential(d.base))

	err := retry.Do(req.Context(), backoff, func(ctx context.Context) error {
		if last != nil {
			drain(last)
			last = nil
		}

		resp, err := d.next.Do(req.Clone(ctx))
		if err != nil {
			return retry.RetryableError(err)
		}
		last = resp
		if retryableStatus(resp.StatusCode) {
			return retry.RetryableError(errRetryableStatus)
		}
		return nil
	})

	if errors.Is(err, errRetryableStatus) {
		return last, nil
	}
	if err != nil {
		if last != nil {
			drain(last)
		}
		return nil, err
	}
	return last, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
