// Package render turns an analysis result into a sequence of PNG frames, one
// per simulated minute of repository history. Every frame is a pure function
// of the immutable model, the frame index and the configuration, so frames
// fan out across a worker pool with no shared mutable state.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fschutt/git-radio/internal/model"
)

// Mode selects how lines are colored.
type Mode string

const (
	// ModeHeat colors lines by edit frequency inside the trailing window.
	ModeHeat Mode = "heat"
	// ModeCommitter colors lines by the last committer to touch them.
	ModeCommitter Mode = "committer"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHeat, ModeCommitter:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeHeat, ModeCommitter)
}

// Config is the rendering surface: output location, frame geometry, trailing
// window length, color mode and worker count.
type Config struct {
	OutDir     string
	Width      int
	Height     int
	WindowDays int
	Mode       Mode
	Workers    int
}

// Renderer produces the frame sequence for one analysis result.
type Renderer struct {
	cfg      Config
	analysis *model.AnalysisResult
	colors   []color.RGBA
	log      *logrus.Logger
}

// New builds a renderer. The committer color table is generated up front so
// all workers share it read-only.
func New(cfg Config, analysis *model.AnalysisResult, log *logrus.Logger) *Renderer {
	return &Renderer{
		cfg:      cfg,
		analysis: analysis,
		colors:   committerColors(len(analysis.Committers)),
		log:      log,
	}
}

// FrameCount is one frame per simulated minute, both endpoints included.
func (r *Renderer) FrameCount() int {
	return int((r.analysis.EndTime-r.analysis.StartTime)/60) + 1
}

// FrameTime maps a frame index to its simulated wall-clock time.
func (r *Renderer) FrameTime(i int) int64 {
	return r.analysis.StartTime + int64(i)*60
}

// Render writes every frame to OutDir as frame_%06d.png. Completion order is
// unspecified; the index-to-timestamp mapping is not. A failure writing any
// frame fails the run.
func (r *Renderer) Render(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := r.FrameCount()
	r.log.WithFields(logrus.Fields{
		"frames":  total,
		"workers": workers,
		"mode":    r.cfg.Mode,
	}).Info("rendering frames")

	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error {
			img := r.RenderFrame(i)
			path := filepath.Join(r.cfg.OutDir, fmt.Sprintf("frame_%06d.png", i))
			if err := writePNG(path, img); err != nil {
				return fmt.Errorf("write frame %d: %w", i, err)
			}
			if n := done.Add(1); n%1000 == 0 {
				r.log.WithFields(logrus.Fields{"done": n, "total": total}).Debug("render progress")
			}
			return nil
		})
	}
	return g.Wait()
}

// RenderFrame rasterizes the frame for index i. Active files split the width
// evenly in model order; rows scale against the largest active file, so
// shorter files leave background below their last line.
func (r *Renderer) RenderFrame(i int) *image.RGBA {
	now := r.FrameTime(i)
	img := image.NewRGBA(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	fill(img, background)

	activeTime := r.analysis.ActiveCommitTime(now)

	var active []*model.FileInfo
	for fi := range r.analysis.Files {
		if f := &r.analysis.Files[fi]; f.AliveAt(activeTime) {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return img
	}

	counts := make([]int, len(active))
	maxLines := 0
	for fi, f := range active {
		counts[fi] = f.LineCountAt(activeTime)
		if counts[fi] > maxLines {
			maxLines = counts[fi]
		}
	}
	if maxLines == 0 {
		return img
	}

	cells := r.cellColors(now, active, counts)

	for y := 0; y < r.cfg.Height; y++ {
		line := y * maxLines / r.cfg.Height
		for x := 0; x < r.cfg.Width; x++ {
			fi := x * len(active) / r.cfg.Width
			if line < counts[fi] {
				img.SetRGBA(x, y, cells[fi][line])
			}
		}
	}
	return img
}

// cellColors resolves the color of every (active file, line) cell once per
// frame, so the pixel loop is a pair of index lookups.
func (r *Renderer) cellColors(now int64, active []*model.FileInfo, counts []int) [][]color.RGBA {
	windowStart := now - int64(r.cfg.WindowDays)*86400

	cells := make([][]color.RGBA, len(active))
	for fi, f := range active {
		cells[fi] = make([]color.RGBA, counts[fi])
		for line := 0; line < counts[fi]; line++ {
			key := model.LineKey{File: f.ID, Line: line + 1}
			history := r.analysis.Changes[key]
			if len(history) == 0 {
				cells[fi][line] = background
				continue
			}

			switch r.cfg.Mode {
			case ModeCommitter:
				if id, ok := r.analysis.LastCommitterAt(f.ID, line+1, now); ok {
					cells[fi][line] = r.colors[id]
				} else {
					cells[fi][line] = background
				}
			default:
				heat := r.analysis.HeatAt(f.ID, line+1, windowStart, now)
				cells[fi][line] = heatColor(heat)
			}
		}
	}
	return cells
}

func fill(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
