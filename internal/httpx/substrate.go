// Package httpx is the HTTP substrate shared by every provider adapter:
// header assembly, request execution, and status-to-error mapping (spec
// §4 component 4). Adapters hold one Substrate and build provider-specific
// bodies around it; the substrate itself knows nothing about any provider's
// wire format.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sibylline/llmbridge/llmtypes"
)

// AuthStyle selects how the API key is attached to outgoing requests.
type AuthStyle int

const (
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer AuthStyle = iota
	// AuthXAPIKey sends "x-api-key: <key>" (Anthropic).
	AuthXAPIKey
	// AuthNone sends no authorization header (local servers such as Ollama).
	AuthNone
)

// Substrate wraps an *http.Client with the header assembly and
// status-to-error mapping every adapter needs.
type Substrate struct {
	Client  *http.Client
	APIKey  string
	Auth    AuthStyle
	Headers map[string]string // extra headers, e.g. OpenAI-Organization; merged last-wins
}

// New builds a Substrate with sane connect/read timeouts, matching the
// defaults spec §5 calls for (configurable per request via ctx deadlines).
func New(apiKey string, auth AuthStyle, timeout time.Duration) *Substrate {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Substrate{
		Client: &http.Client{Timeout: timeout},
		APIKey: apiKey,
		Auth:   auth,
	}
}

// applyHeaders sets Content-Type/Accept plus auth and any custom headers.
// Custom headers are applied last, so caller-supplied headers win over the
// substrate's own defaults per spec §6.
func (s *Substrate) applyHeaders(req *http.Request, accept string) {
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	switch s.Auth {
	case AuthBearer:
		if s.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.APIKey)
		}
	case AuthXAPIKey:
		if s.APIKey != "" {
			req.Header.Set("x-api-key", s.APIKey)
		}
	case AuthNone:
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
}

// PostJSON builds and sends a JSON POST request and returns the raw
// *http.Response on a 2xx status. Non-2xx statuses are translated into a
// *llmtypes.Error per the status-to-error mapping below; the caller does
// not need to inspect status codes itself.
//
// The returned response's Body is NOT closed by PostJSON — the caller owns
// it (needed for both the decode-then-close non-streaming path and the
// goroutine-owns-the-body streaming path).
func (s *Substrate) PostJSON(ctx context.Context, url string, body []byte, streamAccept bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, newReader(body))
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrTransport, "building request", err)
	}
	accept := "application/json"
	if streamAccept {
		accept = "text/event-stream"
	}
	s.applyHeaders(req, accept)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, classifyStatusError(resp)
	}
	return resp, nil
}

// Get builds and sends a GET request, applying the same header and
// status-to-error handling as PostJSON.
func (s *Substrate) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrTransport, "building request", err)
	}
	s.applyHeaders(req, "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, classifyStatusError(resp)
	}
	return resp, nil
}

// Delete builds and sends a DELETE request, applying the same header and
// status-to-error handling as PostJSON.
func (s *Substrate) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, llmtypes.WrapError(llmtypes.ErrTransport, "building request", err)
	}
	s.applyHeaders(req, "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, classifyStatusError(resp)
	}
	return resp, nil
}

func newReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

// classifyTransportError distinguishes a deadline/timeout from a generic
// transport failure (DNS, connection refused, TLS, reset mid-request).
func classifyTransportError(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return llmtypes.WrapError(llmtypes.ErrTimeout, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llmtypes.WrapError(llmtypes.ErrTimeout, "request timed out", err)
	}
	return llmtypes.WrapError(llmtypes.ErrTransport, "sending request", err)
}

// classifyStatusError maps an HTTP status code into the taxonomy of spec §7.
func classifyStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var details any
	if len(body) > 0 {
		var parsed map[string]any
		if json.Unmarshal(body, &parsed) == nil {
			details = parsed
		}
	}

	msg := fmt.Sprintf("upstream returned status %d", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llmtypes.Error{Kind: llmtypes.ErrAuthentication, Message: msg, Code: resp.StatusCode, Details: details}
	case http.StatusNotFound:
		return &llmtypes.Error{Kind: llmtypes.ErrNotFound, Message: msg, Code: resp.StatusCode, Details: details}
	case http.StatusTooManyRequests:
		return &llmtypes.Error{Kind: llmtypes.ErrRateLimit, Message: msg, Code: resp.StatusCode, Details: details}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &llmtypes.Error{Kind: llmtypes.ErrTimeout, Message: msg, Code: resp.StatusCode, Details: details}
	default:
		return &llmtypes.Error{Kind: llmtypes.ErrAPI, Message: msg, Code: resp.StatusCode, Details: details}
	}
}

// DecodeJSON decodes resp.Body into v, closing the body, and wraps any
// decode failure as *llmtypes.Error{Kind: ErrParse}.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return llmtypes.WrapError(llmtypes.ErrParse, "decoding response body", err)
	}
	return nil
}
