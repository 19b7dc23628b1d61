// File: internal/coverage/jacoco.go
package coverage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// JacocoReader reads JaCoCo XML reports (jacoco.xml).
//
// The report carries method-level counters and the first line of every method,
// but not the last one. LastLine is derived from the source file's line table:
// the highest instrumented line before the next method of the same file starts.
type JacocoReader struct{}

// NewJacocoReader returns a TraceReader for JaCoCo XML reports.
func NewJacocoReader() *JacocoReader { return &JacocoReader{} }

// Read parses the report at path.
func (r *JacocoReader) Read(ctx context.Context, path string) ([]ClassCoverage, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to parse jacoco report %s: %w", path, err)
	}
	return parseReport(ctx, doc)
}

// ReadBytes parses an in-memory report.
func (r *JacocoReader) ReadBytes(ctx context.Context, data []byte) ([]ClassCoverage, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse jacoco report: %w", err)
	}
	return parseReport(ctx, doc)
}

func parseReport(ctx context.Context, doc *etree.Document) ([]ClassCoverage, error) {
	report := doc.SelectElement("report")
	if report == nil {
		return nil, fmt.Errorf("not a jacoco report: missing <report> root element")
	}

	var classes []ClassCoverage
	if err := walkPackages(ctx, report, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// walkPackages collects packages in document order. Packages may sit directly
// under <report> or inside (nested) <group> elements.
func walkPackages(ctx context.Context, parent *etree.Element, classes *[]ClassCoverage) error {
	for _, child := range parent.ChildElements() {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch child.Tag {
		case "package":
			*classes = append(*classes, parsePackage(child)...)
		case "group":
			if err := walkPackages(ctx, child, classes); err != nil {
				return err
			}
		}
	}
	return nil
}

// sourceFile is the line table of one <sourcefile> element.
type sourceFile struct {
	lines   map[int]LineCoverage
	numbers []int // sorted
}

func parsePackage(pkg *etree.Element) []ClassCoverage {
	files := make(map[string]*sourceFile)
	for _, sf := range pkg.SelectElements("sourcefile") {
		f := &sourceFile{lines: make(map[int]LineCoverage)}
		for _, line := range sf.SelectElements("line") {
			nr := intAttr(line, "nr")
			f.lines[nr] = LineCoverage{
				Number:       nr,
				Instructions: Counter{Missed: intAttr(line, "mi"), Covered: intAttr(line, "ci")},
				Branches:     Counter{Missed: intAttr(line, "mb"), Covered: intAttr(line, "cb")},
			}
			f.numbers = append(f.numbers, nr)
		}
		sort.Ints(f.numbers)
		files[sf.SelectAttrValue("name", "")] = f
	}

	// Method start lines per source file, across every class compiled from it.
	starts := make(map[string][]int)
	for _, cls := range pkg.SelectElements("class") {
		file := cls.SelectAttrValue("sourcefilename", "")
		for _, m := range cls.SelectElements("method") {
			if l := intAttr(m, "line"); l > 0 {
				starts[file] = append(starts[file], l)
			}
		}
	}
	for file := range starts {
		sort.Ints(starts[file])
	}

	var out []ClassCoverage
	for _, cls := range pkg.SelectElements("class") {
		file := cls.SelectAttrValue("sourcefilename", "")
		cc := ClassCoverage{
			Name:       strings.ReplaceAll(cls.SelectAttrValue("name", ""), "/", "."),
			SourceFile: file,
		}
		for _, m := range cls.SelectElements("method") {
			mc := MethodCoverage{
				Name:       m.SelectAttrValue("name", ""),
				Descriptor: m.SelectAttrValue("desc", ""),
				FirstLine:  intAttr(m, "line"),
				Lines:      make(map[int]LineCoverage),
			}
			for _, c := range m.SelectElements("counter") {
				counter := Counter{Missed: intAttr(c, "missed"), Covered: intAttr(c, "covered")}
				switch c.SelectAttrValue("type", "") {
				case "INSTRUCTION":
					mc.Instructions = counter
				case "BRANCH":
					mc.Branches = counter
				}
			}
			attachLines(&mc, files[file], starts[file])
			cc.Methods = append(cc.Methods, mc)
		}
		out = append(out, cc)
	}
	return out
}

// attachLines sets LastLine and copies the method's slice of the line table.
func attachLines(mc *MethodCoverage, file *sourceFile, starts []int) {
	mc.LastLine = mc.FirstLine
	if file == nil || mc.FirstLine <= 0 {
		return
	}

	bound := -1
	for _, s := range starts {
		if s > mc.FirstLine {
			bound = s - 1
			break
		}
	}

	for _, nr := range file.numbers {
		if nr < mc.FirstLine {
			continue
		}
		if bound >= 0 && nr > bound {
			break
		}
		mc.Lines[nr] = file.lines[nr]
		mc.LastLine = nr
	}
}

func intAttr(el *etree.Element, key string) int {
	v, err := strconv.Atoi(el.SelectAttrValue(key, "0"))
	if err != nil {
		return 0
	}
	return v
}
