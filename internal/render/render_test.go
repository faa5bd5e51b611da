package render

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fschutt/git-radio/internal/model"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testAnalysis models two files: "short" (2 lines, line 1 edited at t=120)
// and "tall" (4 lines, never edited, deleted at t=240).
func testAnalysis() *model.AnalysisResult {
	return &model.AnalysisResult{
		Files: []model.FileInfo{
			{
				ID:         0,
				Path:       "short.txt",
				BirthTime:  0,
				LineCounts: []model.LineCountSample{{Time: 0, Count: 2}},
			},
			{
				ID:         1,
				Path:       "tall.txt",
				BirthTime:  0,
				DeathTime:  240,
				LineCounts: []model.LineCountSample{{Time: 0, Count: 4}},
			},
		},
		Changes: model.ChangeMap{
			{File: 0, Line: 1}: {{Timestamp: 120, Committer: 0}},
		},
		Committers: []string{"alice"},
		StartTime:  0,
		EndTime:    240,
		Commits: []model.CommitRef{
			{SHA: "c1", Time: 0},
			{SHA: "c2", Time: 120},
			{SHA: "c3", Time: 240},
		},
	}
}

func testRenderer(mode Mode) *Renderer {
	return New(Config{
		OutDir:     "",
		Width:      4,
		Height:     4,
		WindowDays: 1,
		Mode:       mode,
		Workers:    2,
	}, testAnalysis(), testLogger())
}

func TestFrameIndexing(t *testing.T) {
	r := testRenderer(ModeHeat)
	assert.Equal(t, 5, r.FrameCount(), "one frame per minute, endpoints included")
	assert.Equal(t, int64(0), r.FrameTime(0))
	assert.Equal(t, int64(180), r.FrameTime(3))
}

func TestRenderFrameHeatMode(t *testing.T) {
	r := testRenderer(ModeHeat)

	// t=180: both files alive, max 4 lines. Left half is short.txt,
	// right half tall.txt.
	img := r.RenderFrame(3)

	// short.txt line 1 was edited at t=120, inside the window.
	assert.Equal(t, heatColor(1), img.RGBAAt(0, 0))
	// short.txt line 2 exists but has no history.
	assert.Equal(t, background, img.RGBAAt(0, 1))
	// Rows past short.txt's 2 lines are background.
	assert.Equal(t, background, img.RGBAAt(0, 3))
	// tall.txt has no history anywhere.
	assert.Equal(t, background, img.RGBAAt(3, 0))
	assert.Equal(t, background, img.RGBAAt(3, 3))
}

func TestRenderFrameBeforeEdit(t *testing.T) {
	r := testRenderer(ModeHeat)

	// t=60: the t=120 edit has not happened, so line 1 has no history yet.
	img := r.RenderFrame(1)
	assert.Equal(t, background, img.RGBAAt(0, 0))
}

func TestRenderFrameDeadFileDisappears(t *testing.T) {
	r := testRenderer(ModeHeat)

	// t=240: tall.txt is dead, short.txt owns the full width and scale.
	img := r.RenderFrame(4)

	// Row 1 now maps to short.txt's line 2 (scale is 2 lines over 4 rows).
	assert.Equal(t, heatColor(1), img.RGBAAt(3, 0), "right half belongs to the survivor now")
	assert.Equal(t, heatColor(1), img.RGBAAt(0, 1), "rows 0-1 are line 1")
	assert.Equal(t, background, img.RGBAAt(0, 2), "rows 2-3 are line 2, no history")
}

func TestRenderFrameCommitterMode(t *testing.T) {
	r := testRenderer(ModeCommitter)
	palette := committerColors(1)

	// Before the edit: no committer owns the line.
	img := r.RenderFrame(0)
	assert.Equal(t, background, img.RGBAAt(0, 0))

	// After the edit: alice's color, stable in every later frame.
	img = r.RenderFrame(3)
	assert.Equal(t, palette[0], img.RGBAAt(0, 0))
	img = r.RenderFrame(4)
	assert.Equal(t, palette[0], img.RGBAAt(0, 0))
}

func TestRenderFrameDeterministic(t *testing.T) {
	r := testRenderer(ModeHeat)
	first := r.RenderFrame(3)
	second := r.RenderFrame(3)
	assert.Equal(t, first.Pix, second.Pix)
}

func TestRenderWritesAllFrames(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{
		OutDir:     dir,
		Width:      4,
		Height:     4,
		WindowDays: 1,
		Mode:       ModeHeat,
		Workers:    2,
	}, testAnalysis(), testLogger())

	require.NoError(t, r.Render(context.Background()))

	for i := 0; i < r.FrameCount(); i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i))
		f, err := os.Open(path)
		require.NoError(t, err, "frame %d must exist", i)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 4, img.Bounds().Dx())
		assert.Equal(t, 4, img.Bounds().Dy())
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("heat")
	require.NoError(t, err)
	assert.Equal(t, ModeHeat, m)

	m, err = ParseMode("committer")
	require.NoError(t, err)
	assert.Equal(t, ModeCommitter, m)

	_, err = ParseMode("rainbow")
	assert.Error(t, err)
}
