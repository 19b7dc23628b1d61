// File: internal/coverage/analyzer.go
package coverage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/pattern"
)

const (
	constructorName       = "<init>"
	staticInitializerName = "<clinit>"
)

// Options scopes one analysis pass.
type Options struct {
	TraceFile string
	// ClassDir holds the compiled classes. When it does not exist the
	// compiled-class check is skipped.
	ClassDir  string
	Threshold float64
	Filter    pattern.Filter
}

// Analyzer turns a coverage trace into per-class gaps.
type Analyzer struct {
	reader TraceReader
	logger *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil reader defaults to the JaCoCo XML reader.
func NewAnalyzer(reader TraceReader, logger *zap.Logger) *Analyzer {
	if reader == nil {
		reader = NewJacocoReader()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{reader: reader, logger: logger.Named("coverage")}
}

// Analyze reads the trace and returns every under-tested method of every
// analyzed class. It returns ErrTraceNotFound when the trace file is absent.
// A trace that cannot be parsed is logged and yields an empty result.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (GapsByClass, error) {
	if _, err := os.Stat(opts.TraceFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTraceNotFound, opts.TraceFile)
		}
		return nil, fmt.Errorf("failed to stat coverage trace %s: %w", opts.TraceFile, err)
	}

	classes, err := a.reader.Read(ctx, opts.TraceFile)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.logger.Error("Could not read coverage trace, nothing to analyze.",
			zap.String("trace", opts.TraceFile), zap.Error(err))
		return GapsByClass{}, nil
	}

	checkClassDir := a.classDirUsable(opts.ClassDir)

	result := make(GapsByClass)
	for _, class := range classes {
		if !opts.Filter.Allows(class.Name) {
			continue
		}
		if checkClassDir && !compiledClassExists(opts.ClassDir, class.Name) {
			a.logger.Debug("Class is in the trace but not in the class directory, skipping.",
				zap.String("class", class.Name))
			continue
		}

		gaps := FindGaps(class, opts.Threshold)
		if len(gaps) == 0 {
			continue
		}
		result[class.Name] = append(result[class.Name], gaps...)
	}

	a.logger.Info("Coverage analysis complete.",
		zap.Int("classes_in_trace", len(classes)),
		zap.Int("classes_with_gaps", len(result)),
		zap.Int("gaps", result.Count()))
	return result, nil
}

func (a *Analyzer) classDirUsable(dir string) bool {
	if dir == "" {
		a.logger.Warn("No class directory configured, analyzing every class in the trace.")
		return false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		a.logger.Warn("Class directory not found, analyzing every class in the trace.",
			zap.String("class_dir", dir))
		return false
	}
	return true
}

func compiledClassExists(classDir, className string) bool {
	rel := strings.ReplaceAll(className, ".", string(filepath.Separator)) + ".class"
	_, err := os.Stat(filepath.Join(classDir, rel))
	return err == nil
}

// FindGaps applies the gap rule to every method of class.
func FindGaps(class ClassCoverage, threshold float64) []Gap {
	var gaps []Gap
	for _, m := range class.Methods {
		if m.Name == constructorName || m.Name == staticInitializerName {
			continue
		}
		if m.Instructions.Total() == 0 {
			continue
		}

		instr := m.Instructions.Percent()
		branch := 100.0
		if m.Branches.Total() > 0 {
			branch = m.Branches.Percent()
		}

		if instr < threshold || (m.Branches.Total() > 0 && branch < threshold) {
			gaps = append(gaps, Gap{
				MethodName:          m.Name,
				MethodSignature:     m.Descriptor,
				InstructionCoverage: instr,
				BranchCoverage:      branch,
				MissingCases:        MissingCases(m),
				FirstLine:           m.FirstLine,
				LastLine:            m.LastLine,
			})
		}
	}
	return gaps
}

// MissingCases lists human-readable hints for the uncovered parts of m.
func MissingCases(m MethodCoverage) []string {
	var notes []string
	if m.Branches.Missed > 0 {
		notes = append(notes, fmt.Sprintf("Missing %d branch conditions", m.Branches.Missed))
	}
	if m.FirstLine <= 0 {
		return notes
	}
	for n := m.FirstLine; n <= m.LastLine; n++ {
		line := m.Line(n)
		if line.Branches.Total() > 0 && line.Branches.Covered < line.Branches.Total() {
			notes = append(notes, fmt.Sprintf("Line %d has missing branch coverage", n))
		}
		if line.Instructions.Total() > 0 && line.Instructions.Covered == 0 {
			notes = append(notes, fmt.Sprintf("Line %d is not covered", n))
		}
	}
	return notes
}
