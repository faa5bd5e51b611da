package model

import "sort"

// FileID identifies one logical file across its whole lifetime. Renames keep
// the id; a path that is deleted and later re-added gets a fresh id.
type FileID int

// CommitterID indexes into AnalysisResult.Committers.
type CommitterID int

// LineChange records that a single line was touched (inserted or deleted)
// by a commit.
type LineChange struct {
	Timestamp int64
	Committer CommitterID
}

// LineKey addresses a line by file identity and its 1-based number at the
// time of the change. Line numbers are positional: later edits above a line
// renumber it, so the same key can refer to different content over time.
type LineKey struct {
	File FileID
	Line int
}

// ChangeMap maps a line to its edit history, in chronological order since
// commits are applied oldest first.
type ChangeMap map[LineKey][]LineChange

// LineCountSample is one point of a file's size-over-time step function.
type LineCountSample struct {
	Time  int64
	Count int
}

// FileInfo tracks one file identity from birth to (optional) death.
type FileInfo struct {
	ID        FileID
	Path      string // most recent known path
	BirthTime int64
	DeathTime int64 // 0 while the file is alive

	// LineCounts is ascending by Time. Queries step to the most recent
	// sample at or before the query time, never interpolate.
	LineCounts []LineCountSample
}

// AliveAt reports whether the file exists at time t.
func (f *FileInfo) AliveAt(t int64) bool {
	return f.BirthTime <= t && (f.DeathTime == 0 || f.DeathTime > t)
}

// LineCountAt returns the file's line count as of the latest sample at or
// before t, or 0 when t predates every sample.
func (f *FileInfo) LineCountAt(t int64) int {
	i := sort.Search(len(f.LineCounts), func(i int) bool {
		return f.LineCounts[i].Time > t
	})
	if i == 0 {
		return 0
	}
	return f.LineCounts[i-1].Count
}

// CommitRef is one processed commit in analysis order.
type CommitRef struct {
	SHA  string
	Time int64
}

// AnalysisResult is the immutable output of history analysis. It is built
// once by the analyzer and shared read-only across all rendering workers.
type AnalysisResult struct {
	Files      []FileInfo
	Changes    ChangeMap
	Committers []string
	StartTime  int64
	EndTime    int64

	// Commits is sorted ascending by Time, ties broken by SHA.
	Commits []CommitRef
}

// ActiveCommitTime returns the latest commit timestamp at or before t, or
// StartTime when no commit qualifies.
func (a *AnalysisResult) ActiveCommitTime(t int64) int64 {
	i := sort.Search(len(a.Commits), func(i int) bool {
		return a.Commits[i].Time > t
	})
	if i == 0 {
		return a.StartTime
	}
	return a.Commits[i-1].Time
}

// HeatAt counts the changes to (file, line) with timestamps in [from, to].
func (a *AnalysisResult) HeatAt(file FileID, line int, from, to int64) int {
	heat := 0
	for _, c := range a.Changes[LineKey{File: file, Line: line}] {
		if c.Timestamp >= from && c.Timestamp <= to {
			heat++
		}
	}
	return heat
}

// LastCommitterAt returns the committer of the chronologically last change
// to (file, line) at or before t. ok is false when the line has no history
// up to t.
func (a *AnalysisResult) LastCommitterAt(file FileID, line int, t int64) (id CommitterID, ok bool) {
	history := a.Changes[LineKey{File: file, Line: line}]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Timestamp <= t {
			return history[i].Committer, true
		}
	}
	return 0, false
}
