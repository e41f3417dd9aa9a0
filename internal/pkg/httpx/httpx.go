// Package httpx holds the retry helpers shared by outbound HTTP clients.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPStatusCoder is implemented by client error types that carry the
// upstream status code.
type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableHTTPStatus reports whether a status code is worth retrying:
// timeouts, throttling and server-side failures.
func IsRetryableHTTPStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500 && code <= 599:
		return true
	}
	return false
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() || netErr.Temporary() {
			return true
		}
	}
	var coder HTTPStatusCoder
	if errors.As(err, &coder) {
		return IsRetryableHTTPStatus(coder.HTTPStatusCode())
	}
	return false
}

// RetryAfterDuration picks the wait before the next attempt, honoring a
// Retry-After header in either delta-seconds or HTTP-date form and
// clamping to max.
func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	wait := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			} else if at, err := http.ParseTime(ra); err == nil {
				if until := time.Until(at); until > 0 {
					wait = until
				}
			}
		}
	}
	if max > 0 && wait > max {
		wait = max
	}
	return wait
}

// JitterSleep spreads a backoff delay +/-20% so synchronized callers do
// not retry in lockstep.
func JitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	if low < 0 {
		low = 0
	}
	high := base.Seconds() + delta
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}
