package task

import (
	"fmt"
	"regexp"
	"strings"
)

// RepoRef identifies a repository on the hosting service.
type RepoRef struct {
	Owner string
	Name  string
	URL   string // the form the user supplied
}

// Slug returns "owner/name".
func (r RepoRef) Slug() string { return r.Owner + "/" + r.Name }

var (
	httpsRepoRe = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	sshRepoRe   = regexp.MustCompile(`^(?:ssh://)?git@[^:/]+[:/]([^/]+)/([^/]+?)(?:\.git)?$`)
	slugRepoRe  = regexp.MustCompile(`^([A-Za-z0-9._-]+)/([A-Za-z0-9._-]+)$`)
)

// ParseRepoURL extracts owner and name from an https URL, an ssh remote, or
// a bare "owner/name" slug.
func ParseRepoURL(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	for _, re := range []*regexp.Regexp{httpsRepoRe, sshRepoRe, slugRepoRe} {
		if m := re.FindStringSubmatch(raw); m != nil {
			return RepoRef{Owner: m[1], Name: m[2], URL: raw}, nil
		}
	}
	return RepoRef{}, fmt.Errorf("cannot parse repository %q", raw)
}
