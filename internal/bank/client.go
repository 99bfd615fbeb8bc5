package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikitakapustkin/bankctl/internal/session"
	"github.com/nikitakapustkin/bankctl/pkg/tracer"
)

const (
	DefaultTimeout = 30 * time.Second

	acceptHeader = "application/json, text/plain, */*"
)

// RetryPolicy bounds the eventual-consistency retry loop: up to MaxAttempts
// calls with a linear backoff of attempt*BaseDelay between them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 300 * time.Millisecond}
}

// Descriptor describes one API call. The zero value of SkipAuth means the
// call requires a stored credential.
type Descriptor struct {
	Path     string
	Method   string
	Body     any
	SkipAuth bool
	Headers  map[string]string
}

// Client turns request descriptors into normalized payloads or classified
// errors against the banking service. The session handle is injected
// explicitly; the client holds no ambient credential state of its own.
type Client struct {
	http    *resty.Client
	session *session.Session
	retry   RetryPolicy
}

func NewClient(baseURL string, sess *session.Session, timeout time.Duration, retry RetryPolicy) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", acceptHeader)

	return &Client{
		http:    rc,
		session: sess,
		retry:   retry,
	}
}

// Session exposes the injected session handle to callers that manage it
// alongside the client (login stores through it, the guard reads it).
func (c *Client) Session() *session.Session {
	return c.session
}

// Do dispatches one request. Outcome classification is total: every upstream
// response, including non-2xx statuses and unparsable bodies, maps to either
// a normalized payload or an *APIError.
func (c *Client) Do(ctx context.Context, d Descriptor) (any, error) {
	method := d.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := tracer.Start(ctx, "bank.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", d.Path),
	))
	defer span.End()

	request := c.http.R().SetContext(ctx)

	if !d.SkipAuth {
		token, err := c.session.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token == "" {
			// Fast fail; no network call is made without a credential.
			return nil, ErrNotAuthenticated
		}
		request.SetAuthToken(token)
	}

	for key, value := range d.Headers {
		request.SetHeader(key, value)
	}

	if d.Body != nil {
		request.SetBody(d.Body)
		request.SetHeader("Content-Type", "application/json")
	}

	injectTracingHeaders(ctx, request)

	resp, err := request.Execute(method, d.Path)
	recordSpan(span, resp, err)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	// resty drains the response stream exactly once; everything below works
	// on that single in-memory copy.
	payload := normalizeBody(resp.Header().Get("Content-Type"), string(resp.Body()))

	// Success is exactly 2xx; redirects and other odd statuses classify as
	// errors too, not just 4xx/5xx.
	if !resp.IsSuccess() {
		return nil, classifyError(resp.StatusCode(), payload)
	}

	return payload, nil
}

// normalizeBody turns the raw response text into the payload the caller sees:
// declared JSON is parsed (falling back to the raw text when malformed),
// undeclared but JSON-shaped bodies get the same treatment, anything else is
// the text verbatim, and an empty body is nil.
func normalizeBody(contentType, rawBody string) any {
	if rawBody == "" {
		return nil
	}

	if strings.Contains(contentType, "json") {
		return parseJSONSafe(rawBody)
	}

	trimmed := strings.TrimSpace(rawBody)
	if looksLikeJSON(trimmed) {
		return parseJSONSafe(trimmed)
	}

	return rawBody
}

func looksLikeJSON(trimmed string) bool {
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}

func parseJSONSafe(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

// classifyError extracts a human-readable message with the priority
// message field, error field, string payload, status phrase, and keeps the
// upstream error code when the body carried one.
func classifyError(status int, payload any) *APIError {
	apiErr := &APIError{Status: status}

	switch body := payload.(type) {
	case map[string]any:
		if code, ok := body["error"].(string); ok {
			apiErr.Code = strings.TrimSpace(code)
		}
		if message, ok := body["message"].(string); ok && strings.TrimSpace(message) != "" {
			apiErr.Message = message
			return apiErr
		}
		if apiErr.Code != "" {
			apiErr.Message = apiErr.Code
			return apiErr
		}
	case string:
		if strings.TrimSpace(body) != "" {
			apiErr.Message = strings.TrimSpace(body)
			return apiErr
		}
	}

	apiErr.Message = http.StatusText(status)
	if apiErr.Message == "" {
		apiErr.Message = "request failed"
	}
	return apiErr
}

// decodeInto re-decodes a normalized payload into a typed resource. Unknown
// fields are dropped and missing ones default, so upstream shape additions
// never break the console.
func decodeInto(payload any, out any) error {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}

func recordSpan(span trace.Span, resp *resty.Response, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if resp == nil {
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if !resp.IsSuccess() {
		span.SetStatus(codes.Error, resp.Status())
		return
	}
	span.SetStatus(codes.Ok, "")
}
