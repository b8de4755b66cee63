package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/kintree/pkg/errors"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New(errors.ErrCodeNetworkFetch, "boom")

	tests := []struct {
		name      string
		attempts  int
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 3, 0, true, 1, false},
		{"non-retryable stops", 3, 5, false, 1, true},
		{"retry then succeed", 3, 1, true, 2, false},
		{"exhausted", 2, 5, true, 2, true},
		{"single attempt", 0, 5, true, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(errBoom)
					}
					return errBoom
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error { return Retryable(errors.New(errors.ErrCodeTimeout, "slow")) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  errors.Code
		retryable bool
	}{
		{http.StatusOK, "", false},
		{http.StatusCreated, "", false},
		{http.StatusNotFound, errors.ErrCodeNotFound, false},
		{http.StatusTooManyRequests, errors.ErrCodeRateLimited, false},
		{http.StatusBadGateway, errors.ErrCodeNetworkFetch, true},
		{http.StatusBadRequest, errors.ErrCodeNetworkFetch, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("detail"))
			}))
			defer srv.Close()

			resp, err := NewClient(0).Get(srv.URL + "/x")
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			err = CheckStatus(resp)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("CheckStatus() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("CheckStatus() = %v, want code %s", err, tt.wantCode)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}
