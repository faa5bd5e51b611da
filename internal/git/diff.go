package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// EmptyTreeSHA is the well-known id of git's empty tree. Diffing the first
// commit against it yields that commit's full content as additions.
const EmptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// DiffStatus classifies one file's change between two trees.
type DiffStatus int

const (
	StatusModified DiffStatus = iota
	StatusAdded
	StatusDeleted
	StatusRenamed
)

func (s DiffStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	default:
		return "modified"
	}
}

// Hunk is one contiguous block of changed lines. Lines keep their unified
// diff prefix (' ', '+' or '-'); NewStart is the 1-based first line of the
// hunk in the post-change file.
type Hunk struct {
	NewStart int
	Lines    []string
}

// FileDiff is one file's change between two tree snapshots. OldPath is empty
// for added files, NewPath for deleted ones.
type FileDiff struct {
	Status  DiffStatus
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// TreeDiff diffs the trees of two commits with rename detection enabled.
// An empty oldSHA means the empty tree (for the first commit).
func (r *Repo) TreeDiff(ctx context.Context, oldSHA, newSHA string) ([]FileDiff, error) {
	if oldSHA == "" {
		oldSHA = EmptyTreeSHA
	}
	out, err := r.run(ctx, "diff-tree", "-r", "-p", "-M", "--no-color", oldSHA, newSHA)
	if err != nil {
		return nil, fmt.Errorf("diff trees %s..%s: %w", short(oldSHA), short(newSHA), err)
	}
	diffs, err := parseTreeDiff(string(out))
	if err != nil {
		return nil, fmt.Errorf("parse diff %s..%s: %w", short(oldSHA), short(newSHA), err)
	}
	return diffs, nil
}

// parseTreeDiff parses `git diff-tree -p` output into FileDiffs.
func parseTreeDiff(output string) ([]FileDiff, error) {
	if strings.TrimSpace(output) == "" {
		return nil, nil
	}

	fds, err := diff.NewMultiFileDiffReader(strings.NewReader(output)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("unified diff: %w", err)
	}

	out := make([]FileDiff, 0, len(fds))
	for _, fd := range fds {
		out = append(out, classify(fd))
	}
	return out, nil
}

// classify derives status and paths from a parsed file diff. Pure renames
// carry no ---/+++ header, so the extended headers are authoritative for
// rename paths.
func classify(fd *diff.FileDiff) FileDiff {
	d := FileDiff{
		Status:  StatusModified,
		OldPath: stripDiffPath(fd.OrigName),
		NewPath: stripDiffPath(fd.NewName),
	}

	for _, h := range fd.Extended {
		switch {
		case strings.HasPrefix(h, "new file mode"):
			d.Status = StatusAdded
		case strings.HasPrefix(h, "deleted file mode"):
			d.Status = StatusDeleted
		case strings.HasPrefix(h, "rename from "):
			d.Status = StatusRenamed
			d.OldPath = strings.TrimPrefix(h, "rename from ")
		case strings.HasPrefix(h, "rename to "):
			d.NewPath = strings.TrimPrefix(h, "rename to ")
		case strings.HasPrefix(h, "copy to "):
			// A copy creates a new file; the source keeps its own identity.
			d.Status = StatusAdded
			d.NewPath = strings.TrimPrefix(h, "copy to ")
		}
	}

	if d.NewPath == "" && d.Status != StatusDeleted {
		d.NewPath = d.OldPath
	}

	for _, h := range fd.Hunks {
		hunk := Hunk{NewStart: int(h.NewStartLine)}
		for _, line := range strings.Split(string(h.Body), "\n") {
			if line == "" || line[0] == '\\' {
				// Trailing split artifact or "\ No newline" marker.
				continue
			}
			hunk.Lines = append(hunk.Lines, line)
		}
		d.Hunks = append(d.Hunks, hunk)
	}

	return d
}

// stripDiffPath normalizes a diff header name: drops the a/ or b/ prefix and
// maps /dev/null to the empty string.
func stripDiffPath(name string) string {
	if name == "/dev/null" || name == "" {
		return ""
	}
	if strings.HasPrefix(name, "a/") || strings.HasPrefix(name, "b/") {
		return name[2:]
	}
	return name
}

func short(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
