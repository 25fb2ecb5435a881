package validate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pipewright/pipewright/internal/remote"
)

// RemoteValidator delegates validation to a deterministic function behind
// the function gateway.
type RemoteValidator struct {
	Caller  remote.Caller
	Ref     string // function name on the gateway
	Session string // correlation id for gateway logs
}

func (v *RemoteValidator) Validate(ctx context.Context, content string) (*Verdict, error) {
	res := v.Caller.Invoke(ctx, remote.Call{
		Ref:     v.Ref,
		Session: v.Session,
		Payload: map[string]any{
			"template":      content,
			"template_type": "github_actions",
		},
	})
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("validation function: %w", err)
	}

	var verdict Verdict
	if err := json.Unmarshal(res.Payload, &verdict); err != nil {
		return nil, fmt.Errorf("decoding validation response: %w", err)
	}
	return &verdict, nil
}
