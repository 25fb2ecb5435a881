package scaffold

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DetectRepoURL reads the origin remote from .git/config so init can
// suggest a ready-to-run command. Returns "" when there is no usable
// remote.
func DetectRepoURL(dir string) string {
	f, err := os.Open(filepath.Join(dir, ".git", "config"))
	if err != nil {
		return ""
	}
	defer f.Close()

	inOrigin := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inOrigin = line == `[remote "origin"]`
			continue
		}
		if !inOrigin {
			continue
		}
		rest, ok := strings.CutPrefix(line, "url")
		if !ok {
			continue
		}
		rest, ok = strings.CutPrefix(strings.TrimSpace(rest), "=")
		if !ok {
			continue
		}
		if url := strings.TrimSpace(rest); url != "" {
			return url
		}
	}
	return ""
}
