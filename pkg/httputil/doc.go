// Package httputil holds the HTTP plumbing shared by backend clients.
//
//   - [NewClient]: an *http.Client with the standard timeout
//   - [CheckStatus]: maps response status codes to structured errors
//   - [Retry]: bounded retry with exponential backoff
//
// Only errors wrapped in [RetryableError] are retried. [CheckStatus] marks
// 5xx responses as retryable; callers decide how many attempts to allow.
// The family API makes a single attempt unless configured otherwise.
package httputil
