package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/kintree/pkg/errors"
)

const httpTimeout = 10 * time.Second

// NewClient returns an HTTP client with the standard timeout. A non-positive
// timeout uses 10s.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &http.Client{Timeout: timeout}
}

// CheckStatus maps a response to an error. 2xx is success, 404 NOT_FOUND,
// 429 RATE_LIMITED, 5xx a retryable NETWORK_FETCH_FAILED and anything else
// a plain NETWORK_FETCH_FAILED. The body is read (up to 512 bytes) into the
// message but not closed.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(snippet))
	msg := fmt.Sprintf("%s %s: status %d", resp.Request.Method, resp.Request.URL.Path, code)
	if detail != "" {
		msg += ": " + detail
	}

	switch {
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", msg)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: retryAfter, Message: detail}, "%s", msg)
	case code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetworkFetch, "%s", msg))
	}
	return errors.New(errors.ErrCodeNetworkFetch, "%s", msg)
}

// TransportError wraps a failed round trip as a retryable NETWORK_FETCH_FAILED,
// or TIMEOUT when the client deadline was hit.
func TransportError(method, url string, err error) error {
	code := errors.ErrCodeNetworkFetch
	if t, ok := err.(interface{ Timeout() bool }); ok && t.Timeout() {
		code = errors.ErrCodeTimeout
	}
	return Retryable(errors.Wrap(code, err, "%s %s", method, url))
}
