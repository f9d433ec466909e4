package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is sent with every request unless a caller overrides it.
const DefaultUserAgent = "khobor-digest/1.0 (+https://github.com/Adda-Baaj/khobor-digest)"

const maxRedirects = 10

// Response is the subset of an HTTP response the fetchers and publishers read.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client performs HTTP requests with a bounded timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a Client backed by resty. A non-positive timeout falls back to 15s.
func NewRestyClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", DefaultUserAgent)

	return &restyClient{client: c}
}

// Get issues a GET request.
func (r *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return r.Do(ctx, http.MethodGet, url, headers, nil)
}

// Do issues a request with the given method. A non-nil body is serialized by resty (JSON for structs and maps).
func (r *restyClient) Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
