// File: internal/source/locator.go
// Package source finds the Java source of a class and cuts single methods out of it.
package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Extension is the source file extension the locator looks for.
const Extension = ".java"

const indexCacheSize = 512

// Locator maps fully-qualified class names to source text under a source root.
type Locator struct {
	sourceDir string
	logger    *zap.Logger
	// index caches the fallback walk: file name -> candidate paths.
	index *lru.Cache[string, []string]
}

// NewLocator creates a Locator rooted at sourceDir.
func NewLocator(sourceDir string, logger *zap.Logger) (*Locator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[string, []string](indexCacheSize)
	if err != nil {
		return nil, err
	}
	return &Locator{
		sourceDir: sourceDir,
		logger:    logger.Named("source"),
		index:     cache,
	}, nil
}

// FindSource returns the text of the file declaring className, or "" when it
// cannot be found. Nested classes ("Outer$Inner") resolve to the outer file.
func (l *Locator) FindSource(className string) string {
	pkg, simple := SplitClassName(className)

	primary := filepath.Join(l.sourceDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")), simple+Extension)
	if data, err := os.ReadFile(primary); err == nil {
		return string(data)
	} else if !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Could not read source file.", zap.String("path", primary), zap.Error(err))
	}

	for _, candidate := range l.candidates(simple + Extension) {
		data, err := os.ReadFile(candidate)
		if err != nil {
			l.logger.Debug("Skipping unreadable candidate.", zap.String("path", candidate), zap.Error(err))
			continue
		}
		content := string(data)
		if pkg == "" || strings.Contains(content, "package "+pkg) {
			l.logger.Debug("Source found by search.", zap.String("class", className), zap.String("path", candidate))
			return content
		}
	}
	return ""
}

// candidates walks the source root once per file name and caches the result.
func (l *Locator) candidates(fileName string) []string {
	if paths, ok := l.index.Get(fileName); ok {
		return paths
	}

	var paths []string
	err := filepath.WalkDir(l.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, the rest of the walk continues.
			if d != nil && d.IsDir() && path != l.sourceDir {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && d.Name() == fileName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		l.logger.Debug("Source search failed.", zap.String("source_dir", l.sourceDir), zap.Error(err))
		return nil
	}

	l.index.Add(fileName, paths)
	return paths
}

// SplitClassName splits a dotted class name into its package and the simple
// name of the top-level class declaring it.
// "com.acme.Outer$Inner" -> ("com.acme", "Outer").
func SplitClassName(className string) (pkg, simple string) {
	simple = className
	if i := strings.LastIndex(className, "."); i >= 0 {
		pkg, simple = className[:i], className[i+1:]
	}
	if i := strings.Index(simple, "$"); i > 0 {
		simple = simple[:i]
	}
	return pkg, simple
}
