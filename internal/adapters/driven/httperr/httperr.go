// Package httperr is the HTTP layer shared by the AI provider adapters. It
// maps provider failures to domain errors.
package httperr

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// maxBodyInError caps how much of a response body is quoted in an error.
const maxBodyInError = 512

// FromResponse returns an error for a non-success response.
// HTTP 429 becomes a *domain.RateLimitError carrying the Retry-After hint.
func FromResponse(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitError{RetryAfter: RetryAfter(resp.Header, time.Now())}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBodyInError {
		msg = msg[:maxBodyInError] + "..."
	}
	return fmt.Errorf("%s error (status %d): %s", provider, resp.StatusCode, msg)
}

// RetryAfter parses a Retry-After header given as seconds or an HTTP date.
// It returns zero when the header is absent or unparseable.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
