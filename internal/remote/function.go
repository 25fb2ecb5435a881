package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes caps a deterministic function's response body.
const maxResponseBytes = 10 * 1024 * 1024

// headerFunctionError marks a response where the function ran but its own
// dependency or logic failed, even when the gateway answered 200.
const headerFunctionError = "X-Function-Error"

// FunctionClient invokes deterministic functions: one JSON request in, one
// JSON response out, no streaming.
type FunctionClient struct {
	url     string
	timeout time.Duration
	hc      *http.Client
	logger  *slog.Logger
}

// NewFunctionClient returns a client for the function gateway at url.
func NewFunctionClient(url string, connect, read time.Duration, logger *slog.Logger) *FunctionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FunctionClient{
		url:     strings.TrimRight(url, "/"),
		timeout: read,
		hc: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: connect}).DialContext,
				TLSHandshakeTimeout:   connect,
				ResponseHeaderTimeout: read,
			},
		},
		logger: logger,
	}
}

// Invoke posts the payload to the named function and returns its response
// body as the result payload. The returned result is never nil.
func (c *FunctionClient) Invoke(ctx context.Context, call Call) *Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := call.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Errorf(ClassBadRequest, "encoding function payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/"+call.Ref, bytes.NewReader(body))
	if err != nil {
		return Errorf(ClassBadRequest, "building function request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if call.Session != "" {
		req.Header.Set("X-Correlation-ID", call.Session)
	}

	c.logger.Debug("invoking function", "function", call.Ref, "session", call.Session)

	resp, err := c.hc.Do(req)
	if err != nil {
		return Errorf(classifyErr(err), "function gateway: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Errorf(classifyErr(err), "reading function response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Errorf(classifyStatus(resp.StatusCode),
			"function %s returned %d: %s", call.Ref, resp.StatusCode, snippet(data))
	}
	if resp.Header.Get(headerFunctionError) != "" {
		return Errorf(ClassDependency, "function %s failed: %s", call.Ref, snippet(data))
	}

	return &Result{Status: StatusSuccess, Payload: data}
}

// snippet truncates a response body for error messages.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		return s[:197] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
