package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fschutt/git-radio/internal/analyzer"
	"github.com/fschutt/git-radio/internal/cache"
	"github.com/fschutt/git-radio/internal/config"
	"github.com/fschutt/git-radio/internal/git"
	"github.com/fschutt/git-radio/internal/model"
	"github.com/fschutt/git-radio/internal/render"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "git-radio",
	Short: "git-radio - render a repository's history as a heatmap time-lapse",
	Long: `git-radio walks a git repository's commit history, builds a per-line
edit model that survives file renames, and renders one PNG frame per minute
of project history. Columns are files, pixel rows are lines, colored by edit
recency or by last committer. Feed the frame directory to a video encoder.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlagOverrides(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return run(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .git-radio.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().StringP("repo", "r", ".", "path to the git repository to analyze")
	rootCmd.Flags().StringP("output", "o", "frames", "directory to write PNG frames to")
	rootCmd.Flags().Int("width", 1280, "frame width in pixels")
	rootCmd.Flags().Int("height", 720, "frame height in pixels")
	rootCmd.Flags().Int("window-days", 30, "trailing window for heat calculation, in days")
	rootCmd.Flags().String("mode", "heat", "color mode: heat or committer")
	rootCmd.Flags().IntP("jobs", "j", 0, "render workers (0 = one per CPU)")
	rootCmd.Flags().Bool("no-cache", false, "skip the analysis cache")

	rootCmd.SetVersionTemplate(`git-radio {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)
}

// applyFlagOverrides lets explicitly set flags win over file/env config.
func applyFlagOverrides(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("repo") {
		cfg.Repo, _ = f.GetString("repo")
	}
	if f.Changed("output") {
		cfg.Output, _ = f.GetString("output")
	}
	if f.Changed("width") {
		cfg.Width, _ = f.GetInt("width")
	}
	if f.Changed("height") {
		cfg.Height, _ = f.GetInt("height")
	}
	if f.Changed("window-days") {
		cfg.WindowDays, _ = f.GetInt("window-days")
	}
	if f.Changed("mode") {
		cfg.Mode, _ = f.GetString("mode")
	}
	if f.Changed("jobs") {
		cfg.Workers, _ = f.GetInt("jobs")
	}
	if f.Changed("no-cache") {
		cfg.NoCache, _ = f.GetBool("no-cache")
	}
}

func run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	mode, err := render.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	repo, err := git.Open(cfg.Repo)
	if err != nil {
		return err
	}
	logger.WithField("repo", repo.Path()).Info("Analyzing repository")

	analysis, err := loadOrAnalyze(cmd, repo)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"files":      len(analysis.Files),
		"committers": len(analysis.Committers),
		"from":       time.Unix(analysis.StartTime, 0).UTC().Format(time.RFC1123),
		"to":         time.Unix(analysis.EndTime, 0).UTC().Format(time.RFC1123),
	}).Info("History span")

	renderer := render.New(render.Config{
		OutDir:     cfg.Output,
		Width:      cfg.Width,
		Height:     cfg.Height,
		WindowDays: cfg.WindowDays,
		Mode:       mode,
		Workers:    cfg.Workers,
	}, analysis, logger)

	renderStart := time.Now()
	if err := renderer.Render(ctx); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"frames": renderer.FrameCount(),
		"took":   time.Since(renderStart).Round(time.Millisecond),
	}).Info("Rendering complete")
	return nil
}

// loadOrAnalyze consults the analysis cache before walking the history.
// Cache trouble is only a warning; the run falls back to a fresh analysis.
func loadOrAnalyze(cmd *cobra.Command, repo *git.Repo) (*model.AnalysisResult, error) {
	ctx := cmd.Context()

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, err
	}

	store := cache.New(cfg.CacheDir)
	if !cfg.NoCache {
		cached, err := store.Get(head)
		if err != nil {
			logger.WithError(err).Warn("Failed to read analysis cache")
		} else if cached != nil {
			logger.WithField("head", head[:8]).Info("Loaded cached analysis")
			return cached, nil
		}
	}

	start := time.Now()
	analysis, err := analyzer.New(repo, logger).Analyze(ctx)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"commits": len(analysis.Commits),
		"took":    time.Since(start).Round(time.Millisecond),
	}).Info("Analysis complete")

	if !cfg.NoCache {
		if err := store.Put(head, analysis); err != nil {
			logger.WithError(err).Warn("Failed to write analysis cache")
		}
	}
	return analysis, nil
}
