// Command semseo-gaps reports which search queries a set of pages fails to
// cover semantically.
//
//	semseo-gaps -input gaps.yaml [-threshold 0.6] [-json]
//
// The input file lists queries and page contents. With no contents every
// query is reported as a gap:
//
//	queries:
//	  - how to bake sourdough
//	contents:
//	  - A beginner's guide to sourdough starters.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/semseo/internal/app"
	"github.com/kailas-cloud/semseo/internal/config"
	logpkg "github.com/kailas-cloud/semseo/internal/logger"
	analysisuc "github.com/kailas-cloud/semseo/internal/usecase/analysis"
)

// input is the YAML document read from -input.
type input struct {
	Threshold *float64 `yaml:"threshold"`
	Queries   []string `yaml:"queries"`
	Contents  []string `yaml:"contents"`
}

type gapScorer interface {
	Gaps(ctx context.Context, queries, contents []string, threshold float64) ([]analysisuc.Gap, error)
}

type gapJSON struct {
	Query         string  `json:"query"`
	MaxSimilarity float64 `json:"max_similarity"`
	IsGap         bool    `json:"is_gap"`
}

type reportJSON struct {
	Threshold float64   `json:"threshold"`
	Gaps      int       `json:"gaps"`
	Results   []gapJSON `json:"results"`
}

func main() {
	inputPath := flag.String("input", "", "YAML file with queries and contents")
	threshold := flag.Float64("threshold", -1, "gap threshold in [0, 1]; overrides the file and config")
	asJSON := flag.Bool("json", false, "print JSON instead of a colored report")
	flag.Parse()

	var thresholdFlag *float64
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			thresholdFlag = threshold
		}
	})

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "semseo-gaps: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*inputPath, thresholdFlag, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "semseo-gaps:", err)
		os.Exit(1)
	}
}

func run(inputPath string, thresholdFlag *float64, asJSON bool) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, "warn")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	in, err := readInput(inputPath)
	if err != nil {
		return err
	}
	threshold, err := pickThreshold(thresholdFlag, in.Threshold, cfg.Analysis.GapThreshold)
	if err != nil {
		return err
	}

	embedders, err := app.NewEmbedders(cfg.Embedding, nil, cfg.Storage.KeyPrefix, nil, logger)
	if err != nil {
		return fmt.Errorf("create embedders: %w", err)
	}
	defer func() {
		if err := embedders.Close(); err != nil {
			logger.Warn("Failed to release embedder", zap.Error(err))
		}
	}()

	svc := analysisuc.New(embedders.Document, embedders.Query)
	return report(context.Background(), svc, in, threshold, asJSON, os.Stdout)
}

func readInput(path string) (input, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return input{}, fmt.Errorf("read input: %w", err)
	}
	var in input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return input{}, fmt.Errorf("parse input: %w", err)
	}
	if len(in.Queries) == 0 {
		return input{}, errors.New("input has no queries")
	}
	return in, nil
}

// pickThreshold prefers the flag, then the input file, then config. The
// chosen value must lie in [0, 1].
func pickThreshold(flagValue, fileValue *float64, configValue float64) (float64, error) {
	t, source := configValue, "config"
	switch {
	case flagValue != nil:
		t, source = *flagValue, "-threshold"
	case fileValue != nil:
		t, source = *fileValue, "input threshold"
	}
	if math.IsNaN(t) || t < 0 || t > 1 {
		return 0, fmt.Errorf("%s must be between 0 and 1, got %g", source, t)
	}
	return t, nil
}

func report(ctx context.Context, svc gapScorer, in input, threshold float64, asJSON bool, w io.Writer) error {
	gaps, err := svc.Gaps(ctx, in.Queries, in.Contents, threshold)
	if err != nil {
		return fmt.Errorf("score gaps: %w", err)
	}

	count := 0
	for _, g := range gaps {
		if g.IsGap {
			count++
		}
	}

	if asJSON {
		out := reportJSON{Threshold: threshold, Gaps: count, Results: make([]gapJSON, len(gaps))}
		for i, g := range gaps {
			out.Results[i] = gapJSON(g)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	}

	gapColor := color.New(color.FgRed, color.Bold)
	okColor := color.New(color.FgGreen)
	for _, g := range gaps {
		if g.IsGap {
			gapColor.Fprintf(w, "GAP  %.3f  %s\n", g.MaxSimilarity, g.Query)
			continue
		}
		okColor.Fprintf(w, "ok   %.3f  %s\n", g.MaxSimilarity, g.Query)
	}
	fmt.Fprintf(w, "\n%d of %d queries below %.2f\n", count, len(gaps), threshold)
	return nil
}
