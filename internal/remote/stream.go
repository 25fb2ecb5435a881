package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// maxStreamBytes caps how much of an agent stream is consumed.
const maxStreamBytes = 16 * 1024 * 1024

// streamEvent is one NDJSON line from the agent gateway.
//
//	{"type":"chunk","text":"..."}                          completion fragment
//	{"type":"action","operation":"...","target":"..."}     side effect performed
//	{"type":"error","code":"...","message":"..."}          terminal failure
type streamEvent struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Operation string `json:"operation"`
	Target    string `json:"target"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// readStream consumes agent events until EOF, concatenating chunk text and
// collecting action records. An error event terminates the stream with a
// classified failure; partial output from a failed stream is discarded.
func readStream(ctx context.Context, body io.Reader) *Result {
	scanner := bufio.NewScanner(io.LimitReader(body, maxStreamBytes))
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)

	res := &Result{Status: StatusSuccess}
	var textBuf strings.Builder

	for scanner.Scan() {
		if ctx.Err() != nil {
			return Errorf(classifyErr(ctx.Err()), "stream interrupted: %v", ctx.Err())
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal(line, &event); err != nil {
			// Skip malformed lines
			continue
		}

		switch event.Type {
		case "chunk":
			textBuf.WriteString(event.Text)
		case "action":
			res.Invocations = append(res.Invocations, Invocation{
				Operation: event.Operation,
				Target:    event.Target,
			})
		case "error":
			return Errorf(classifyCode(event.Code), "agent reported failure: %s", event.Message)
		}
	}

	if err := scanner.Err(); err != nil {
		return Errorf(classifyErr(err), "reading stream: %v", err)
	}

	res.Completion = textBuf.String()
	return res
}
