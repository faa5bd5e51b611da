package git

import (
	"bytes"
	"context"
	"fmt"
)

// BlobLineCount returns the number of lines of path's content as of the
// given commit. A trailing newline does not count as an extra line.
func (r *Repo) BlobLineCount(ctx context.Context, sha, path string) (int, error) {
	out, err := r.run(ctx, "show", sha+":"+path)
	if err != nil {
		return 0, fmt.Errorf("read blob %s:%s: %w", short(sha), path, err)
	}
	return countLines(out), nil
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
