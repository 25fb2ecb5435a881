package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// restDoer is the slice of go-gh's REST client the gateway needs. Tests
// substitute their own.
type restDoer interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// GitHubGateway performs publish operations against the GitHub REST API.
type GitHubGateway struct {
	rest   restDoer
	logger *slog.Logger
}

// NewGitHubGateway builds a gateway authenticated with token. An empty host
// targets github.com.
func NewGitHubGateway(token, host string, logger *slog.Logger) (*GitHubGateway, error) {
	client, err := api.NewRESTClient(api.ClientOptions{AuthToken: token, Host: host})
	if err != nil {
		return nil, fmt.Errorf("building rest client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubGateway{rest: client, logger: logger}, nil
}

// CreateBranch points req.HeadBranch at the tip of req.BaseBranch. A branch
// that already exists is reused, not failed.
func (g *GitHubGateway) CreateBranch(ctx context.Context, req Request) (Outcome, error) {
	slug := req.Repo.Slug()

	var ref struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	path := fmt.Sprintf("repos/%s/git/ref/heads/%s", slug, url.PathEscape(req.BaseBranch))
	if err := g.rest.DoWithContext(ctx, http.MethodGet, path, nil, &ref); err != nil {
		return Outcome{}, fmt.Errorf("resolving %s on %s: %w", req.BaseBranch, slug, err)
	}

	body, err := jsonBody(map[string]any{
		"ref": "refs/heads/" + req.HeadBranch,
		"sha": ref.Object.SHA,
	})
	if err != nil {
		return Outcome{}, err
	}
	err = g.rest.DoWithContext(ctx, http.MethodPost, fmt.Sprintf("repos/%s/git/refs", slug), body, nil)
	if isAlreadyExists(err) {
		g.logger.Debug("branch already exists", "repo", slug, "branch", req.HeadBranch)
		return Outcome{AlreadyExists: true}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("creating branch %s: %w", req.HeadBranch, err)
	}
	return Outcome{}, nil
}

// PutFile commits one file to req.HeadBranch, updating in place when the
// path already has content on that branch.
func (g *GitHubGateway) PutFile(ctx context.Context, req Request, f File) (Outcome, error) {
	slug := req.Repo.Slug()
	contentsPath := fmt.Sprintf("repos/%s/contents/%s", slug, escapePath(f.Path))

	var existing struct {
		SHA string `json:"sha"`
	}
	err := g.rest.DoWithContext(ctx, http.MethodGet,
		contentsPath+"?ref="+url.QueryEscape(req.HeadBranch), nil, &existing)
	if err != nil && !isNotFound(err) {
		return Outcome{}, fmt.Errorf("checking %s: %w", f.Path, err)
	}

	payload := map[string]any{
		"message": f.commitMessage(),
		"content": base64.StdEncoding.EncodeToString([]byte(f.Content)),
		"branch":  req.HeadBranch,
	}
	if existing.SHA != "" {
		payload["sha"] = existing.SHA
	}
	body, err := jsonBody(payload)
	if err != nil {
		return Outcome{}, err
	}
	if err := g.rest.DoWithContext(ctx, http.MethodPut, contentsPath, body, nil); err != nil {
		return Outcome{}, fmt.Errorf("writing %s: %w", f.Path, err)
	}

	if existing.SHA != "" {
		return Outcome{Detail: "updated existing file"}, nil
	}
	return Outcome{}, nil
}

// OpenPullRequest opens a pull request from req.HeadBranch into
// req.BaseBranch. One already open for that branch is reported, not failed.
func (g *GitHubGateway) OpenPullRequest(ctx context.Context, req Request) (Outcome, error) {
	slug := req.Repo.Slug()
	body, err := jsonBody(map[string]any{
		"title": req.Title,
		"body":  req.Body,
		"head":  req.HeadBranch,
		"base":  req.BaseBranch,
		"draft": req.Draft,
	})
	if err != nil {
		return Outcome{}, err
	}

	var pr struct {
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	err = g.rest.DoWithContext(ctx, http.MethodPost, fmt.Sprintf("repos/%s/pulls", slug), body, &pr)
	if isAlreadyExists(err) {
		return Outcome{AlreadyExists: true, Detail: "a pull request for this branch is already open"}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("opening pull request: %w", err)
	}

	g.logger.Info("pull request opened", "repo", slug, "number", pr.Number)
	return Outcome{URL: pr.HTMLURL}, nil
}

// isAlreadyExists matches the 422 the API answers when a ref or pull request
// is already there. Other 422s (bad sha, validation failures) stay errors.
func isAlreadyExists(err error) bool {
	var httpErr *api.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	if strings.Contains(strings.ToLower(httpErr.Message), "already exists") {
		return true
	}
	for _, item := range httpErr.Errors {
		if strings.Contains(strings.ToLower(item.Message), "already exists") {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	var httpErr *api.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return bytes.NewReader(data), nil
}
