// Package analyzer builds the line-provenance model from a repository's
// commit history. Commits are applied strictly oldest to newest: each diff is
// interpreted against the cumulative file-identity state left by all prior
// commits, so this stage is sequential by construction.
package analyzer

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/fschutt/git-radio/internal/git"
	"github.com/fschutt/git-radio/internal/model"
)

// progressEvery controls how often commit progress is logged.
const progressEvery = 500

// Source is the version-control backend contract the analyzer consumes.
// *git.Repo satisfies it; tests substitute a scripted fake.
type Source interface {
	// Commits enumerates every commit reachable from the current head,
	// in any order.
	Commits(ctx context.Context) ([]git.Commit, error)

	// TreeDiff diffs two commit trees with rename detection. An empty
	// oldSHA means the empty tree.
	TreeDiff(ctx context.Context, oldSHA, newSHA string) ([]git.FileDiff, error)

	// BlobLineCount returns the line count of path's content at a commit.
	BlobLineCount(ctx context.Context, sha, path string) (int, error)
}

// Analyzer turns a commit stream into an immutable AnalysisResult.
type Analyzer struct {
	src Source
	log *logrus.Logger
}

func New(src Source, log *logrus.Logger) *Analyzer {
	return &Analyzer{src: src, log: log}
}

// Analyze walks all commits oldest to newest and folds their diffs into the
// provenance model. Any backend failure aborts the whole analysis; there is
// no partial result.
func (a *Analyzer) Analyze(ctx context.Context) (*model.AnalysisResult, error) {
	commits, err := a.src.Commits(ctx)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("repository has no commits")
	}

	// Time ascending; equal timestamps break ties by SHA so re-runs
	// process commits in the same order.
	sort.Slice(commits, func(i, j int) bool {
		if commits[i].Time != commits[j].Time {
			return commits[i].Time < commits[j].Time
		}
		return commits[i].SHA < commits[j].SHA
	})

	state := newScanState()

	for i, c := range commits {
		oldSHA := ""
		if i > 0 {
			oldSHA = commits[i-1].SHA
		}

		diffs, err := a.src.TreeDiff(ctx, oldSHA, c.SHA)
		if err != nil {
			return nil, err
		}
		if err := state.applyCommit(ctx, a.src, c, diffs); err != nil {
			return nil, err
		}

		if (i+1)%progressEvery == 0 {
			a.log.WithFields(logrus.Fields{
				"commits": i + 1,
				"total":   len(commits),
			}).Debug("analysis progress")
		}
	}

	refs := make([]model.CommitRef, len(commits))
	for i, c := range commits {
		refs[i] = model.CommitRef{SHA: c.SHA, Time: c.Time}
	}

	return &model.AnalysisResult{
		Files:      state.files,
		Changes:    state.changes,
		Committers: state.committers,
		StartTime:  commits[0].Time,
		EndTime:    commits[len(commits)-1].Time,
		Commits:    refs,
	}, nil
}

// scanState is the fold state threaded through the commit stream: the
// path→identity table, the file records, the provenance map and the
// committer registry. Nothing outside applyCommit mutates it.
type scanState struct {
	pathIDs      map[string]model.FileID
	files        []model.FileInfo
	changes      model.ChangeMap
	committerIDs map[string]model.CommitterID
	committers   []string
}

func newScanState() *scanState {
	return &scanState{
		pathIDs:      make(map[string]model.FileID),
		changes:      make(model.ChangeMap),
		committerIDs: make(map[string]model.CommitterID),
	}
}

// committer resolves a display name to a dense id, registering it on first
// sight. Ids are assigned in first-seen order.
func (s *scanState) committer(name string) model.CommitterID {
	if id, ok := s.committerIDs[name]; ok {
		return id
	}
	id := model.CommitterID(len(s.committers))
	s.committerIDs[name] = id
	s.committers = append(s.committers, name)
	return id
}

// applyCommit folds one commit's tree diff into the state.
func (s *scanState) applyCommit(ctx context.Context, src Source, c git.Commit, diffs []git.FileDiff) error {
	who := s.committer(c.Author)

	for _, d := range diffs {
		switch d.Status {
		case git.StatusAdded:
			count, err := src.BlobLineCount(ctx, c.SHA, d.NewPath)
			if err != nil {
				return err
			}
			id := model.FileID(len(s.files))
			s.pathIDs[d.NewPath] = id
			s.files = append(s.files, model.FileInfo{
				ID:         id,
				Path:       d.NewPath,
				BirthTime:  c.Time,
				LineCounts: []model.LineCountSample{{Time: c.Time, Count: count}},
			})

		case git.StatusDeleted:
			// Deleting an untracked path is a no-op, not an error.
			if id, ok := s.pathIDs[d.OldPath]; ok {
				delete(s.pathIDs, d.OldPath)
				s.files[id].DeathTime = c.Time
			}

		case git.StatusRenamed:
			// Re-point the path table; identity and provenance keys
			// are untouched.
			if id, ok := s.pathIDs[d.OldPath]; ok {
				delete(s.pathIDs, d.OldPath)
				s.pathIDs[d.NewPath] = id
				s.files[id].Path = d.NewPath
			}
			// A rename with edits carries hunks; record them below.
			if len(d.Hunks) > 0 {
				if err := s.applyEdits(ctx, src, c, who, d); err != nil {
					return err
				}
			}

		case git.StatusModified:
			if err := s.applyEdits(ctx, src, c, who, d); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyEdits records a modified file's new line count and per-line changes.
// The cursor starts at each hunk's new-file start line: deletions are keyed
// at the position they held before the lines below shifted up, insertions at
// their post-edit position, mirroring a unified diff walk.
func (s *scanState) applyEdits(ctx context.Context, src Source, c git.Commit, who model.CommitterID, d git.FileDiff) error {
	id, ok := s.pathIDs[d.NewPath]
	if !ok {
		// Modify of a path with no known identity: no data, not a fault.
		return nil
	}

	count, err := src.BlobLineCount(ctx, c.SHA, d.NewPath)
	if err != nil {
		return err
	}
	s.files[id].LineCounts = append(s.files[id].LineCounts, model.LineCountSample{Time: c.Time, Count: count})

	for _, h := range d.Hunks {
		cursor := h.NewStart
		for _, line := range h.Lines {
			if line == "" {
				continue
			}
			op := line[0]
			if op == '+' || op == '-' {
				key := model.LineKey{File: id, Line: cursor}
				s.changes[key] = append(s.changes[key], model.LineChange{Timestamp: c.Time, Committer: who})
			}
			if op != '-' {
				cursor++
			}
		}
	}
	return nil
}
