// File: internal/pattern/matcher.go
// Package pattern implements the glob-like include/exclude rules applied to
// fully-qualified class names. A single '*' covers what '**' would in a richer
// glob dialect, so "**/*Config" behaves like "*Config".
package pattern

import (
	"regexp"
	"strings"
)

// Matches reports whether name matches pattern.
//
//   - "a.b.*"  prefix match on "a.b."
//   - "*.C"    suffix match on ".C"
//   - "a.*.C"  regex match with every other metacharacter escaped
//   - "a.b.C"  exact match
func Matches(name, pattern string) bool {
	switch {
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, strings.TrimPrefix(pattern, "*"))
	case strings.Contains(pattern, "*"):
		re, err := compileWildcard(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(name)
	default:
		return name == pattern
	}
}

// compileWildcard turns a pattern into an anchored regex where only '*' is special.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

// Filter combines include and exclude pattern sets. Exclusion wins.
type Filter struct {
	Include []string
	Exclude []string
}

// NewFilter builds a Filter, dropping blank patterns and rewriting path-style
// globs into the dotted form Matches understands.
func NewFilter(include, exclude []string) Filter {
	return Filter{Include: compact(include), Exclude: compact(exclude)}
}

// Included reports whether name passes the include set. An empty set includes everything.
func (f Filter) Included(name string) bool {
	if len(f.Include) == 0 {
		return true
	}
	return anyMatch(name, f.Include)
}

// Excluded reports whether any exclude pattern matches name.
func (f Filter) Excluded(name string) bool {
	return anyMatch(name, f.Exclude)
}

// Allows is Included && !Excluded.
func (f Filter) Allows(name string) bool {
	return f.Included(name) && !f.Excluded(name)
}

func anyMatch(name string, patterns []string) bool {
	for _, p := range patterns {
		if Matches(name, p) {
			return true
		}
	}
	return false
}

func compact(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = Normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalize rewrites a path-style glob into dotted form: leading "**/" segments
// (any package) are dropped, remaining "**" collapse to "*" and '/' becomes '.'.
// "**/*Config" -> "*Config", "com/acme/**" -> "com.acme.*".
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	for strings.HasPrefix(p, "**/") {
		p = strings.TrimPrefix(p, "**/")
	}
	for strings.Contains(p, "**") {
		p = strings.ReplaceAll(p, "**", "*")
	}
	return strings.ReplaceAll(p, "/", ".")
}
