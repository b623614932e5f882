// astro-scan reads metadata and quality metrics from astronomical image
// files and writes a per-frame report.
//
// Usage:
//
//	astro-scan [flags] <files or directories...>
//
// With --metrics each frame's pixels are decoded and scored via star
// detection; without it the report covers header metadata only.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	astrocore "github.com/dostergaard/astro-core"
	"github.com/dostergaard/astro-core/internal/parsing"
	"github.com/dostergaard/astro-core/metrics"
)

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	Workers  int       `yaml:"workers"`
	MaxStars int       `yaml:"maxStars"`
	Logs     logConfig `yaml:"logs"`
}

func defaultConfig() config {
	return config{
		Workers:  runtime.NumCPU(),
		MaxStars: 200,
		Logs: logConfig{
			MaxSizeMB:  50,
			MaxAgeDays: 14,
			MaxBackups: 5,
		},
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}

// buildLogger writes console output to stderr and, when a log directory
// is configured, JSON events to a size-rotated file as well.
func buildLogger(logs logConfig, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	var out io.Writer = console
	if logs.Directory != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(logs.Directory, "astro-scan.log"),
			MaxSize:    logs.MaxSizeMB,
			MaxAge:     logs.MaxAgeDays,
			MaxBackups: logs.MaxBackups,
			Compress:   logs.Compress,
		}
		out = zerolog.MultiLevelWriter(console, rotator)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// frameRow is one line of the report.
type frameRow struct {
	Path     string
	Format   string
	Object   string
	Filter   string
	FrameTyp string
	Frame    string
	ExpTime  string
	Session  string
	Warnings int

	Quality *metrics.FrameQualityMetrics
}

func main() {
	flagSet := pflag.NewFlagSet("astro-scan", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "YAML config file")
	workers := flagSet.IntP("workers", "j", 0, "concurrent workers (default: CPU count)")
	maxStars := flagSet.Int("max-stars", 0, "brightest stars used for quality statistics")
	withMetrics := flagSet.Bool("metrics", false, "decode pixels and compute quality scores")
	csvPath := flagSet.StringP("output", "o", "", "write CSV report to this path (default: stdout)")
	verbose := flagSet.BoolP("verbose", "v", false, "debug logging")
	showVersion := flagSet.Bool("version", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *showVersion {
		fmt.Printf("astro-scan %s\n", astrocore.Version)
		return
	}

	paths := flagSet.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: astro-scan [flags] <files or directories...>")
		flagSet.PrintDefaults()
		os.Exit(1)
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	if flagSet.Changed("workers") {
		cfg.Workers = *workers
	}
	if flagSet.Changed("max-stars") {
		cfg.MaxStars = *maxStars
	}

	logger := buildLogger(cfg.Logs, *verbose)

	paths, err := expandPaths(paths)
	if err != nil {
		logger.Fatal().Err(err).Msg("resolve inputs")
	}
	if len(paths) == 0 {
		logger.Fatal().Msg("no image files found")
	}
	logger.Info().Int("files", len(paths)).Int("workers", cfg.Workers).
		Bool("metrics", *withMetrics).Msg("starting scan")

	start := time.Now()
	rows, failed := scanAll(paths, cfg, *withMetrics, logger)

	out := os.Stdout
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("create report")
		}
		defer f.Close()
		out = f
	}
	if err := writeReport(out, rows, *withMetrics); err != nil {
		logger.Fatal().Err(err).Msg("write report")
	}

	logger.Info().
		Int("scanned", len(rows)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("scan complete")
	if failed > 0 {
		os.Exit(1)
	}
}

// expandPaths resolves the positional arguments: plain files pass
// through, directories are walked for image files by extension.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		walkErr := filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".xisf", ".fits", ".fit", ".fts":
				paths = append(paths, p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return paths, nil
}

// scanAll processes every path with a bounded worker pool. Per-file
// failures are logged and counted, not fatal.
func scanAll(paths []string, cfg config, withMetrics bool, logger zerolog.Logger) ([]frameRow, int) {
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.Workers)

	results := make([]*frameRow, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			row, err := scanOne(path, cfg, withMetrics, logger)
			if err != nil {
				logger.Error().Err(err).Str("path", path).Msg("scan failed")
				return nil
			}
			results[i] = row
			return nil
		})
	}
	g.Wait() //nolint:errcheck // Workers never return errors by contract.

	rows := make([]frameRow, 0, len(results))
	for _, r := range results {
		if r != nil {
			rows = append(rows, *r)
		}
	}
	return rows, len(paths) - len(rows)
}

func scanOne(path string, cfg config, withMetrics bool, logger zerolog.Logger) (*frameRow, error) {
	file, err := astrocore.Open(path, astrocore.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m := file.Meta
	row := &frameRow{
		Path:     path,
		Format:   file.Format.String(),
		Object:   m.Exposure.ObjectName,
		Filter:   m.Filter.Name,
		FrameTyp: m.Exposure.FrameType,
		Warnings: len(file.Warnings),
	}
	if m.Exposure.ExposureTime != nil {
		row.ExpTime = strconv.FormatFloat(*m.Exposure.ExposureTime, 'f', -1, 64)
	}
	if !m.Exposure.SessionDate.IsZero() {
		row.Session = m.Exposure.SessionDate.Format(time.DateOnly)
	}

	// File names often carry sequencing the header lacks; headers win
	// when both are present.
	if m.Exposure.FrameNumber != nil {
		row.Frame = strconv.Itoa(*m.Exposure.FrameNumber)
	} else if n, ok := parsing.FrameNumber(path); ok {
		row.Frame = strconv.Itoa(n)
	}
	if row.Filter == "" {
		if hint, ok := parsing.FilterHint(path); ok {
			row.Filter = hint
		}
	}

	if withMetrics {
		pixels, width, height, err := file.LoadPixels()
		if err != nil {
			return nil, fmt.Errorf("load pixels: %w", err)
		}
		stats, bg := metrics.AnalyzeFrame(pixels, width, height, cfg.MaxStars)
		quality := metrics.FrameMetrics(filepath.Base(path), stats, bg)
		row.Quality = &quality

		logger.Debug().Str("path", path).
			Int("stars", stats.Count).
			Float64("fwhm", stats.MedianFWHM).
			Float64("score", quality.Scores.Overall).
			Msg("frame scored")
	}

	return row, nil
}

func writeReport(out io.Writer, rows []frameRow, withMetrics bool) error {
	w := csv.NewWriter(out)

	header := []string{"path", "format", "object", "filter", "frame_type", "frame", "exptime", "session_date", "warnings"}
	if withMetrics {
		header = append(header, "stars", "median_fwhm", "median_eccentricity", "background_rms", "quality")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Path, r.Format, r.Object, r.Filter, r.FrameTyp,
			r.Frame, r.ExpTime, r.Session, strconv.Itoa(r.Warnings),
		}
		if withMetrics {
			q := r.Quality
			record = append(record,
				strconv.Itoa(q.Stars.Count),
				strconv.FormatFloat(q.Stars.MedianFWHM, 'f', 2, 64),
				strconv.FormatFloat(q.Stars.MedianEccentricity, 'f', 3, 64),
				strconv.FormatFloat(q.Background.RMS, 'f', 5, 64),
				strconv.FormatFloat(q.Scores.Overall, 'f', 3, 64),
			)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
