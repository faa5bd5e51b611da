package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineCountAtStepsNotInterpolates(t *testing.T) {
	f := FileInfo{
		BirthTime: 100,
		LineCounts: []LineCountSample{
			{Time: 100, Count: 3},
			{Time: 220, Count: 2},
		},
	}

	assert.Equal(t, 0, f.LineCountAt(99), "before birth there is no count")
	assert.Equal(t, 3, f.LineCountAt(100))
	assert.Equal(t, 3, f.LineCountAt(219), "holds the previous sample, never interpolates")
	assert.Equal(t, 2, f.LineCountAt(220))
	assert.Equal(t, 2, f.LineCountAt(9999))
}

func TestAliveAt(t *testing.T) {
	alive := FileInfo{BirthTime: 100}
	assert.False(t, alive.AliveAt(99))
	assert.True(t, alive.AliveAt(100))
	assert.True(t, alive.AliveAt(1<<40))

	dead := FileInfo{BirthTime: 100, DeathTime: 500}
	assert.True(t, dead.AliveAt(499))
	assert.False(t, dead.AliveAt(500), "death time is exclusive")
	assert.False(t, dead.AliveAt(501))
}

func TestActiveCommitTime(t *testing.T) {
	a := AnalysisResult{
		StartTime: 100,
		Commits: []CommitRef{
			{SHA: "a", Time: 100},
			{SHA: "b", Time: 200},
		},
	}

	assert.Equal(t, int64(100), a.ActiveCommitTime(50), "falls back to start time")
	assert.Equal(t, int64(100), a.ActiveCommitTime(100))
	assert.Equal(t, int64(100), a.ActiveCommitTime(199))
	assert.Equal(t, int64(200), a.ActiveCommitTime(200))
	assert.Equal(t, int64(200), a.ActiveCommitTime(5000))
}

func TestHeatAtWindowCounting(t *testing.T) {
	a := AnalysisResult{
		Changes: ChangeMap{
			{File: 0, Line: 2}: {
				{Timestamp: 100, Committer: 0},
				{Timestamp: 200, Committer: 1},
				{Timestamp: 300, Committer: 0},
			},
		},
	}

	assert.Equal(t, 0, a.HeatAt(0, 2, 0, 50))
	assert.Equal(t, 1, a.HeatAt(0, 2, 150, 250))
	assert.Equal(t, 3, a.HeatAt(0, 2, 100, 300), "window bounds are inclusive")
	assert.Equal(t, 0, a.HeatAt(0, 1, 0, 1000), "no history means zero heat")

	// Widening the window never decreases heat.
	narrow := a.HeatAt(0, 2, 200, 300)
	wide := a.HeatAt(0, 2, 100, 300)
	assert.GreaterOrEqual(t, wide, narrow)
}

func TestLastCommitterAt(t *testing.T) {
	a := AnalysisResult{
		Changes: ChangeMap{
			{File: 3, Line: 1}: {
				{Timestamp: 100, Committer: 0},
				{Timestamp: 200, Committer: 1},
			},
		},
	}

	_, ok := a.LastCommitterAt(3, 1, 99)
	assert.False(t, ok)

	id, ok := a.LastCommitterAt(3, 1, 150)
	assert.True(t, ok)
	assert.Equal(t, CommitterID(0), id)

	id, ok = a.LastCommitterAt(3, 1, 200)
	assert.True(t, ok)
	assert.Equal(t, CommitterID(1), id)

	_, ok = a.LastCommitterAt(3, 9, 1000)
	assert.False(t, ok, "unknown line has no committer")
}
