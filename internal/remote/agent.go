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

// AgentClient invokes generative agents through an HTTP gateway that streams
// NDJSON events back.
type AgentClient struct {
	url     string
	timeout time.Duration
	hc      *http.Client
	logger  *slog.Logger
}

// NewAgentClient returns a client for the agent gateway at url. The connect
// timeout bounds dialing; the read timeout bounds the whole invocation
// including stream consumption.
func NewAgentClient(url string, connect, read time.Duration, logger *slog.Logger) *AgentClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentClient{
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

// agentRequest is the gateway invocation body.
type agentRequest struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
	InputText string `json:"input_text"`
}

// Invoke sends the prompt and consumes the event stream. The returned result
// is never nil; transport and gateway failures come back classified.
func (c *AgentClient) Invoke(ctx context.Context, call Call) *Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(agentRequest{
		AgentID:   call.Ref,
		SessionID: call.Session,
		InputText: call.Input,
	})
	if err != nil {
		return Errorf(ClassBadRequest, "encoding agent request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/invoke", bytes.NewReader(body))
	if err != nil {
		return Errorf(ClassBadRequest, "building agent request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	c.logger.Debug("invoking agent", "agent", call.Ref, "session", call.Session)

	resp, err := c.hc.Do(req)
	if err != nil {
		return Errorf(classifyErr(err), "agent gateway: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Errorf(classifyStatus(resp.StatusCode),
			"agent gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	res := readStream(ctx, resp.Body)
	if res.OK() {
		c.logger.Debug("agent call complete",
			"agent", call.Ref, "chars", len(res.Completion), "actions", len(res.Invocations))
	}
	return res
}

// readErrorBody extracts a short message from a non-200 response body.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "no response body"
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(data))
}
