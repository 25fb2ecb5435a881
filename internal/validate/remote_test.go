package validate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pipewright/pipewright/internal/remote"
)

type funcCaller func(ctx context.Context, call remote.Call) *remote.Result

func (f funcCaller) Invoke(ctx context.Context, call remote.Call) *remote.Result {
	return f(ctx, call)
}

func TestRemoteValidatorDecodesVerdict(t *testing.T) {
	var got remote.Call
	caller := funcCaller(func(_ context.Context, call remote.Call) *remote.Result {
		got = call
		return &remote.Result{
			Status:  remote.StatusSuccess,
			Payload: json.RawMessage(`{"valid":false,"errors":["job \"build\" has no steps"],"warnings":["workflow has no name"]}`),
		}
	})

	v := &RemoteValidator{Caller: caller, Ref: "template-validator", Session: "task-1-validate"}
	verdict, err := v.Validate(context.Background(), "name: ci")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if got.Ref != "template-validator" || got.Session != "task-1-validate" {
		t.Fatalf("call = %+v, want ref and session forwarded", got)
	}
	payload, ok := got.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", got.Payload)
	}
	if payload["template"] != "name: ci" || payload["template_type"] != "github_actions" {
		t.Fatalf("payload = %v", payload)
	}

	if verdict.Valid {
		t.Fatalf("Valid = true, want false")
	}
	if len(verdict.Errors) != 1 || len(verdict.Warnings) != 1 {
		t.Fatalf("verdict = %+v, want one error and one warning", verdict)
	}
}

func TestRemoteValidatorCallFailure(t *testing.T) {
	caller := funcCaller(func(context.Context, remote.Call) *remote.Result {
		return remote.Errorf(remote.ClassDependency, "validator timed out")
	})

	v := &RemoteValidator{Caller: caller, Ref: "template-validator"}
	if _, err := v.Validate(context.Background(), "name: ci"); err == nil {
		t.Fatalf("Validate() error = nil, want failure")
	} else if !strings.Contains(err.Error(), "validator timed out") {
		t.Fatalf("error = %v, want cause preserved", err)
	}
}

func TestRemoteValidatorBadPayload(t *testing.T) {
	caller := funcCaller(func(context.Context, remote.Call) *remote.Result {
		return &remote.Result{Status: remote.StatusSuccess, Payload: json.RawMessage(`"not an object"`)}
	})

	v := &RemoteValidator{Caller: caller, Ref: "template-validator"}
	if _, err := v.Validate(context.Background(), "name: ci"); err == nil {
		t.Fatalf("Validate() error = nil, want decode failure")
	}
}
