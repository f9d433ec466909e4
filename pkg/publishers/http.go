package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-digest/pkg/httpclient"
)

const maxErrorSnippet = 512

// httpPublisher posts the message as JSON to a webhook-style endpoint.
type httpPublisher struct {
	id      string
	typ     string
	url     string
	method  string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

// newHTTPPublisher builds an HTTP publisher from config.
func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second

	return &httpPublisher{
		id:      cfg.ID,
		typ:     cfg.Type,
		url:     cfg.HTTP.URL,
		method:  cfg.HTTP.Method,
		headers: withJSONContentType(cfg.HTTP.Headers),
		client:  httpclient.NewRestyClient(timeout),
		log:     ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return p.typ }

// Publish sends the message and treats any non-2xx status as a failure.
func (p *httpPublisher) Publish(ctx context.Context, msg Message) error {
	resp, err := p.client.Do(ctx, p.method, p.url, p.headers, msg)
	if err != nil {
		p.log.ErrorObj("http publisher request failed", "publisher_http_error", map[string]any{
			"publisher_id": p.id,
			"url":          p.url,
			"error":        err.Error(),
		})
		return fmt.Errorf("http request: %w", err)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return fmt.Errorf("status %d body: %s", code, snippet)
	}

	p.log.DebugObj("http publisher delivered digest", "publisher_http_delivery", map[string]any{
		"publisher_id": p.id,
		"status":       resp.StatusCode(),
	})
	return nil
}

func withJSONContentType(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	for k := range out {
		if strings.EqualFold(k, "Content-Type") {
			return out
		}
	}
	out["Content-Type"] = "application/json"
	return out
}
