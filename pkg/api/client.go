package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/httputil"
	"github.com/matzehuels/kintree/pkg/observability"
)

// DefaultSearchTTL is how long search results stay cached.
const DefaultSearchTTL = 2 * time.Minute

// Options configures a [Client].
type Options struct {
	BaseURL string
	// Timeout bounds each request; zero means 10s.
	Timeout time.Duration
	// Headers are sent with every request.
	Headers map[string]string
	// RateLimit caps requests per second; zero disables throttling.
	RateLimit float64
	Burst     int
	// Retries is the number of attempts per request; zero means one.
	Retries    int
	RetryDelay time.Duration
	// Cache holds search results; nil disables caching.
	Cache     cache.Cache
	SearchTTL time.Duration
	// HTTPClient overrides the default client; Timeout is then ignored.
	HTTPClient *http.Client
}

// Client talks to the family records backend. It is safe for concurrent
// use.
type Client struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
	limiter *rate.Limiter
	retries int
	delay   time.Duration
	cache   cache.Cache
	ttl     time.Duration
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL")
	}

	c := &Client{
		base:    base,
		http:    opts.HTTPClient,
		headers: opts.Headers,
		retries: max(opts.Retries, 1),
		delay:   opts.RetryDelay,
		cache:   opts.Cache,
		ttl:     opts.SearchTTL,
	}
	if c.http == nil {
		c.http = httputil.NewClient(opts.Timeout)
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.ttl <= 0 {
		c.ttl = DefaultSearchTTL
	}
	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.base.String() }

// request describes one call. body is JSON-encoded unless raw is set.
type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         []byte
	contentType string
}

// do performs req with throttling, retries and hooks, decoding a JSON
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	payload := req.raw
	contentType := req.contentType
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
		}
		payload, contentType = data, "application/json"
	}

	u := *c.base
	u.Path = c.base.Path + req.path
	u.RawQuery = req.query.Encode()

	return httputil.Retry(ctx, c.retries, c.delay, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return errors.Wrap(errors.ErrCodeTimeout, err, "rate limiter")
			}
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		hreq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
		}
		for k, v := range c.headers {
			hreq.Header.Set(k, v)
		}
		hreq.Header.Set("Accept", "application/json")
		if contentType != "" {
			hreq.Header.Set("Content-Type", contentType)
		}

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, req.method, u.Host, u.Path)
		start := time.Now()
		resp, err := c.http.Do(hreq)
		if err != nil {
			hooks.OnError(ctx, req.method, u.Host, u.Path, err)
			return httputil.TransportError(req.method, u.Path, err)
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, req.method, u.Host, u.Path, resp.StatusCode, time.Since(start))

		if err := httputil.CheckStatus(resp); err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s %s: decode response", req.method, u.Path)
		}
		return nil
	})
}
