package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pipewright/pipewright/internal/remote"
)

// RemoteGateway performs publish operations through a deterministic function
// that wraps the hosting service API.
type RemoteGateway struct {
	Caller  remote.Caller
	Ref     string // function name on the gateway
	Session string // correlation id
}

type remoteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Branch  string `json:"branch"`
	PRURL   string `json:"pr_url"`
	Files   []struct {
		Path    string `json:"path"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"files"`
}

func (g *RemoteGateway) call(ctx context.Context, payload map[string]any) (*remoteResponse, error) {
	res := g.Caller.Invoke(ctx, remote.Call{Ref: g.Ref, Session: g.Session, Payload: payload})
	if err := res.Err(); err != nil {
		return nil, err
	}
	var resp remoteResponse
	if err := json.Unmarshal(res.Payload, &resp); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}
	return &resp, nil
}

func (g *RemoteGateway) CreateBranch(ctx context.Context, req Request) (Outcome, error) {
	resp, err := g.call(ctx, map[string]any{
		"operation":   "create_branch",
		"owner":       req.Repo.Owner,
		"repo":        req.Repo.Name,
		"branch":      req.HeadBranch,
		"base_branch": req.BaseBranch,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("create branch: %w", err)
	}
	if resp.Status != "success" {
		if mentionsAlreadyExists(resp.Message) {
			return Outcome{AlreadyExists: true}, nil
		}
		return Outcome{}, fmt.Errorf("create branch: %s", messageOr(resp.Message))
	}
	return Outcome{}, nil
}

func (g *RemoteGateway) PutFile(ctx context.Context, req Request, f File) (Outcome, error) {
	resp, err := g.call(ctx, map[string]any{
		"operation": "create_file",
		"owner":     req.Repo.Owner,
		"repo":      req.Repo.Name,
		"branch":    req.HeadBranch,
		"files": []map[string]any{{
			"path":    f.Path,
			"content": f.Content,
			"message": f.commitMessage(),
		}},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("write %s: %w", f.Path, err)
	}
	if resp.Status != "success" {
		return Outcome{}, fmt.Errorf("write %s: %s", f.Path, messageOr(resp.Message))
	}
	// The function reports per-file results under a successful envelope.
	for _, fr := range resp.Files {
		if fr.Status != "success" {
			return Outcome{}, fmt.Errorf("write %s: %s", fr.Path, messageOr(fr.Message))
		}
	}
	return Outcome{}, nil
}

func (g *RemoteGateway) OpenPullRequest(ctx context.Context, req Request) (Outcome, error) {
	resp, err := g.call(ctx, map[string]any{
		"operation": "create_pr",
		"owner":     req.Repo.Owner,
		"repo":      req.Repo.Name,
		"title":     req.Title,
		"body":      req.Body,
		"head":      req.HeadBranch,
		"base":      req.BaseBranch,
		"draft":     req.Draft,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("open pull request: %w", err)
	}
	if resp.Status != "success" {
		if mentionsAlreadyExists(resp.Message) {
			return Outcome{AlreadyExists: true, Detail: "a pull request for this branch is already open"}, nil
		}
		return Outcome{}, fmt.Errorf("open pull request: %s", messageOr(resp.Message))
	}
	return Outcome{URL: resp.PRURL}, nil
}

// mentionsAlreadyExists spots the wrapped 422 the function relays when the
// target is already there. The function flattens API errors into message
// strings, so this is a substring check by necessity.
func mentionsAlreadyExists(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "already exists") || strings.Contains(lower, "422")
}

func messageOr(msg string) string {
	if msg == "" {
		return "gateway reported an error"
	}
	return msg
}
