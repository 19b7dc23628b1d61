// internal/project/root.go
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// BuildFiles mark the root of a Gradle or Maven project.
var BuildFiles = []string{"build.gradle", "build.gradle.kts", "pom.xml"}

// FindRoot returns the nearest ancestor of start (inclusive) holding a build
// file. Without one it falls back to the enclosing git work tree, and then to
// start itself.
func FindRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for dir := abs; ; {
		if hasBuildFile(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if root, ok := gitWorkTree(abs); ok {
		return root, nil
	}
	return abs, nil
}

func hasBuildFile(dir string) bool {
	for _, name := range BuildFiles {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func gitWorkTree(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no work tree.
		return "", false
	}
	return wt.Filesystem.Root(), true
}
