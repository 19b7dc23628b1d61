// File: internal/orchestrator/orchestrator.go
// Description: Drives the gap -> prompt -> backend -> file pipeline. Components
// are injected through small interfaces so each stage can be replaced in tests.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/artifact"
	"github.com/sujikathir/test-gen/internal/coverage"
	"github.com/sujikathir/test-gen/internal/llmclient"
	"github.com/sujikathir/test-gen/internal/llmutil"
	"github.com/sujikathir/test-gen/internal/prompt"
	"github.com/sujikathir/test-gen/internal/source"
)

const maxLoggedPrompt = 512

// Analyzer finds coverage gaps grouped by class.
type Analyzer interface {
	Analyze(ctx context.Context, opts coverage.Options) (coverage.GapsByClass, error)
}

// SourceFinder returns the source text of a class, or "" when none is found.
type SourceFinder interface {
	FindSource(className string) string
}

// TestWriter persists a generated test and returns its path.
type TestWriter interface {
	Save(className, methodName, testSource string) (string, error)
}

// Options controls a single run.
type Options struct {
	Coverage coverage.Options
	// DryRun builds every prompt but never calls the backend or writes files.
	DryRun bool
}

// Summary describes the outcome of a run.
type Summary struct {
	ClassesVisited int
	GapsFound      int
	TestsGenerated int
	GapsSkipped    int
	PromptsBuilt   int
	Written        []string
}

// Orchestrator manages the lifecycle of a generation run.
type Orchestrator struct {
	opts     Options
	logger   *zap.Logger
	analyzer Analyzer
	sources  SourceFinder
	client   llmclient.Client
	writer   TestWriter
	pacer    Pacer
}

// New creates an Orchestrator. The client and writer may be nil in dry-run mode.
func New(
	opts Options,
	logger *zap.Logger,
	analyzer Analyzer,
	sources SourceFinder,
	client llmclient.Client,
	writer TestWriter,
	pacer Pacer,
) (*Orchestrator, error) {
	if logger == nil || analyzer == nil || sources == nil || pacer == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	if !opts.DryRun && (client == nil || writer == nil) {
		return nil, fmt.Errorf("cannot initialize orchestrator without a backend client and test writer")
	}
	return &Orchestrator{
		opts:     opts,
		logger:   logger.Named("orchestrator"),
		analyzer: analyzer,
		sources:  sources,
		client:   client,
		writer:   writer,
		pacer:    pacer,
	}, nil
}

// Run executes one pass over the coverage trace. Per-gap failures are logged
// and skipped; only context cancellation stops the run early.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	startTime := time.Now()

	gaps, err := o.analyzer.Analyze(ctx, o.opts.Coverage)
	if err != nil {
		if errors.Is(err, coverage.ErrTraceNotFound) {
			o.logger.Warn("Coverage trace not found, nothing to do.", zap.String("trace", o.opts.Coverage.TraceFile))
			return summary, nil
		}
		return summary, fmt.Errorf("coverage analysis failed: %w", err)
	}

	summary.GapsFound = gaps.Count()
	if summary.GapsFound == 0 {
		o.logger.Info("No coverage gaps found.", zap.Float64("threshold", o.opts.Coverage.Threshold))
		return summary, nil
	}
	o.logger.Info("Coverage gaps found.",
		zap.Int("classes", len(gaps)),
		zap.Int("gaps", summary.GapsFound),
		zap.Bool("dry_run", o.opts.DryRun),
	)

	for _, className := range gaps.Classes() {
		if err := ctx.Err(); err != nil {
			return summary, o.interrupted(summary, err)
		}
		if err := o.processClass(ctx, className, gaps[className], summary); err != nil {
			return summary, o.interrupted(summary, err)
		}
	}

	o.logger.Info("Generation run finished.",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("classes_visited", summary.ClassesVisited),
		zap.Int("gaps_found", summary.GapsFound),
		zap.Int("tests_generated", summary.TestsGenerated),
		zap.Int("gaps_skipped", summary.GapsSkipped),
	)
	return summary, nil
}

func (o *Orchestrator) interrupted(summary *Summary, err error) error {
	o.logger.Warn("Generation run interrupted.",
		zap.Int("tests_generated", summary.TestsGenerated),
		zap.Error(err),
	)
	return fmt.Errorf("generation run interrupted: %w", err)
}

// processClass returns an error only when the context is done.
func (o *Orchestrator) processClass(ctx context.Context, className string, gaps []coverage.Gap, summary *Summary) error {
	summary.ClassesVisited++
	logger := o.logger.With(zap.String("class", className))

	classSource := o.sources.FindSource(className)
	if classSource == "" {
		logger.Warn("Source not found, skipping class.", zap.Int("gaps", len(gaps)))
		summary.GapsSkipped += len(gaps)
		return nil
	}

	for _, gap := range gaps {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := o.processGap(ctx, className, classSource, gap, summary)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			summary.GapsSkipped++
			o.logGapFailure(logger, gap, err)
			continue
		}
		if path == "" {
			continue
		}
		summary.TestsGenerated++
		summary.Written = append(summary.Written, path)
		logger.Info("Test generated.", zap.String("method", gap.MethodName), zap.String("path", path))
	}
	return nil
}

// processGap returns the written path, or "" in dry-run mode.
func (o *Orchestrator) processGap(ctx context.Context, className, classSource string, gap coverage.Gap, summary *Summary) (string, error) {
	methodSource := source.ExtractOrFallback(classSource, gap)
	text := prompt.Build(className, gap, methodSource)
	summary.PromptsBuilt++

	if o.opts.DryRun {
		o.logger.Info("Dry run, prompt built.",
			zap.String("class", className),
			zap.String("method", gap.MethodName),
			zap.Float64("instruction_coverage", gap.InstructionCoverage),
			zap.Float64("branch_coverage", gap.BranchCoverage),
		)
		o.logger.Debug("Prompt preview.", zap.String("prompt", llmutil.Truncate(text, maxLoggedPrompt)))
		return "", nil
	}

	if err := o.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("pacing wait aborted: %w", err)
	}

	o.logger.Debug("Requesting test generation.",
		zap.String("backend", o.client.Name()),
		zap.String("class", className),
		zap.String("method", gap.MethodName),
	)
	testSource, err := o.client.Generate(ctx, text)
	if err != nil {
		return "", err
	}

	return o.writer.Save(className, gap.MethodName, testSource)
}

func (o *Orchestrator) logGapFailure(logger *zap.Logger, gap coverage.Gap, err error) {
	fields := []zap.Field{zap.String("method", gap.MethodName), zap.Error(err)}

	var apiErr *llmclient.APIError
	var writeErr *artifact.WriteError
	switch {
	case errors.Is(err, llmclient.ErrAuthMissing):
		logger.Warn("Backend credentials missing, gap skipped.", fields...)
	case errors.As(err, &apiErr):
		fields = append(fields, zap.Int("status", apiErr.StatusCode), zap.String("provider", apiErr.Provider))
		logger.Error("Backend returned an error, gap skipped.", fields...)
	case errors.Is(err, llmclient.ErrEmptyResponse):
		logger.Warn("Backend returned no test, gap skipped.", fields...)
	case errors.As(err, &writeErr):
		fields = append(fields, zap.String("path", writeErr.Path))
		logger.Error("Could not write generated test, gap skipped.", fields...)
	default:
		logger.Error("Test generation failed, gap skipped.", fields...)
	}
}
