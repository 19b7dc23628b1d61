// File: internal/coverage/types.go
package coverage

import (
	"context"
	"errors"
	"sort"
)

// ErrTraceNotFound is returned when the coverage trace file does not exist.
var ErrTraceNotFound = errors.New("coverage trace not found")

// Counter is a covered/total pair as recorded by the coverage tool.
type Counter struct {
	Missed  int
	Covered int
}

// Total returns Missed + Covered.
func (c Counter) Total() int { return c.Missed + c.Covered }

// Percent returns Covered/Total*100. The caller decides what an empty counter means.
func (c Counter) Percent() float64 {
	if c.Total() == 0 {
		return 0
	}
	return float64(c.Covered) * 100 / float64(c.Total())
}

// LineCoverage holds the instruction and branch counters of one source line.
type LineCoverage struct {
	Number       int
	Instructions Counter
	Branches     Counter
}

// MethodCoverage is one method as it appears in the trace.
type MethodCoverage struct {
	Name         string
	Descriptor   string
	FirstLine    int
	LastLine     int
	Instructions Counter
	Branches     Counter
	// Lines is keyed by line number and only holds instrumented lines.
	Lines map[int]LineCoverage
}

// Line returns the counters of line n, or a zero value if the line is not instrumented.
func (m MethodCoverage) Line(n int) LineCoverage {
	if l, ok := m.Lines[n]; ok {
		return l
	}
	return LineCoverage{Number: n}
}

// ClassCoverage is one class as it appears in the trace.
type ClassCoverage struct {
	// Name is the fully-qualified, dot-separated class name.
	Name       string
	SourceFile string
	Methods    []MethodCoverage
}

// TraceReader loads the per-class coverage recorded in a trace file.
type TraceReader interface {
	Read(ctx context.Context, path string) ([]ClassCoverage, error)
}

// Gap is one under-tested method.
type Gap struct {
	MethodName          string
	MethodSignature     string
	InstructionCoverage float64
	BranchCoverage      float64
	MissingCases        []string
	FirstLine           int
	LastLine            int
}

// GapsByClass maps a fully-qualified class name to its gaps in trace order.
type GapsByClass map[string][]Gap

// Classes returns the class names in lexical order.
func (g GapsByClass) Classes() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of gaps across all classes.
func (g GapsByClass) Count() int {
	n := 0
	for _, gaps := range g {
		n += len(gaps)
	}
	return n
}
