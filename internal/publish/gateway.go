// Package publish pushes generated artifacts to the hosting service: a
// branch, one commit per file, and a pull request. Two gateways implement
// the operations, one speaking the GitHub REST API directly and one going
// through a deterministic function.
package publish

import (
	"context"

	"github.com/pipewright/pipewright/internal/task"
)

// File is one artifact to commit.
type File struct {
	Path    string
	Content string
	Message string // commit message; "Add <path>" when empty
}

func (f File) commitMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return "Add " + f.Path
}

// Request carries everything needed to publish a set of artifacts.
type Request struct {
	Repo       task.RepoRef
	BaseBranch string
	HeadBranch string
	Files      []File
	Title      string
	Body       string
	Draft      bool
}

// Outcome reports one completed gateway operation. AlreadyExists marks the
// benign case where the branch or pull request was there before we asked.
type Outcome struct {
	AlreadyExists bool
	URL           string // pull request URL when one was opened
	Detail        string
}

// Gateway performs the three publish side effects. Implementations return an
// error only when the operation failed; an existing branch or pull request
// is an Outcome, not an error.
type Gateway interface {
	CreateBranch(ctx context.Context, req Request) (Outcome, error)
	PutFile(ctx context.Context, req Request, f File) (Outcome, error)
	OpenPullRequest(ctx context.Context, req Request) (Outcome, error)
}
