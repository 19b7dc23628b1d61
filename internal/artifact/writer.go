// internal/artifact/writer.go
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/prompt"
	"github.com/sujikathir/test-gen/internal/source"
)

// generatedPackage is the sub-package every generated test lives in.
const generatedPackage = "generated"

// WriteError reports a filesystem failure while persisting a generated test.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write generated test %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer persists generated tests under an output root.
type Writer struct {
	outputRoot string
	logger     *zap.Logger
}

// NewWriter creates a writer rooted at outputRoot.
func NewWriter(outputRoot string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{outputRoot: outputRoot, logger: logger.Named("artifact")}
}

// Path returns where the test for className.methodName is written:
// <root>/<pkg path>/generated/<Simple>_<method>Test.java.
func (w *Writer) Path(className, methodName string) string {
	pkg, _ := source.SplitClassName(className)
	dir := w.outputRoot
	if pkg != "" {
		dir = filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
	}
	return filepath.Join(dir, generatedPackage, prompt.TestClassName(className, methodName)+".java")
}

// PackageDeclaration is the declaration prepended to sources that lack one.
func PackageDeclaration(className string) string {
	pkg, _ := source.SplitClassName(className)
	if pkg == "" {
		return "package " + generatedPackage + ";\n\n"
	}
	return "package " + pkg + "." + generatedPackage + ";\n\n"
}

// Save writes testSource for the given method, replacing any previous file.
func (w *Writer) Save(className, methodName, testSource string) (string, error) {
	content := testSource
	if !strings.HasPrefix(content, "package ") {
		content = PackageDeclaration(className) + content
	}

	path := w.Path(className, methodName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	w.logger.Debug("Generated test written.", zap.String("path", path), zap.Int("bytes", len(content)))
	return path, nil
}
