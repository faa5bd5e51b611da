package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repo is a handle to an on-disk git repository. All operations shell out to
// the git binary; diffing, rename detection and object storage stay in git.
type Repo struct {
	path string
}

// Open verifies that path is inside a git working tree and returns a handle.
func Open(path string) (*Repo, error) {
	r := &Repo{path: path}
	if _, err := r.run(context.Background(), "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, fmt.Errorf("not a git repository at %s: %w", path, err)
	}
	return r, nil
}

// Path returns the repository location the handle was opened with.
func (r *Repo) Path() string {
	return r.path
}

// Head resolves the current HEAD commit SHA.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// run executes a git subcommand in the repository and returns stdout.
// Stderr is folded into the error so callers surface a useful diagnostic.
func (r *Repo) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git %s: %w (stderr: %s)", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return out, nil
}
