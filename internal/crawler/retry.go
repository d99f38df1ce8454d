package crawler

import (
	"context"
	"errors"
	"net/http"
)

// Retries are off unless HTTP_RETRY_COUNT is raised; these predicates only
// decide which failures are worth repeating when they are on.

func ShouldRetryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func ShouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}
