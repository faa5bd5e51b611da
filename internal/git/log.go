package git

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// placeholderAuthor stands in for commits whose author name is empty.
const placeholderAuthor = "Unknown"

// Commit is one commit reachable from HEAD. Time is the committer timestamp
// in unix seconds.
type Commit struct {
	SHA    string
	Author string
	Time   int64
}

// Commits enumerates every commit reachable from HEAD. Order is whatever git
// log emits; callers impose their own total order.
func (r *Repo) Commits(ctx context.Context) ([]Commit, error) {
	out, err := r.run(ctx, "log", "--pretty=format:%H|%ct|%an", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("enumerate commits: %w", err)
	}
	return parseCommitLog(string(out))
}

// parseCommitLog parses `git log --pretty=format:%H|%ct|%an` output. The
// author name comes last so that names containing '|' survive the split.
func parseCommitLog(output string) ([]Commit, error) {
	var commits []Commit

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed commit line: %q", line)
		}

		ts, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed commit timestamp in %q: %w", line, err)
		}

		author := parts[2]
		if author == "" {
			author = placeholderAuthor
		}

		commits = append(commits, Commit{
			SHA:    parts[0],
			Author: author,
			Time:   ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning git log output: %w", err)
	}

	return commits, nil
}
