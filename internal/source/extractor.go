// File: internal/source/extractor.go
package source

import (
	"regexp"

	"github.com/sujikathir/test-gen/internal/coverage"
)

// FallbackHeader prefixes the whole class source when a method cannot be isolated.
const FallbackHeader = "// Method code not found, using whole class\n"

// Extract returns the text of the method named by gap, from the start of its
// signature to the brace closing its body, or "" if it cannot be isolated.
//
// The lookup is by name only, so with overloads the first declaration wins.
// Braces inside string literals, char literals and comments are counted like
// any other brace and can end the scan early.
func Extract(classSource string, gap coverage.Gap) string {
	if gap.MethodName == "" {
		return ""
	}
	re, err := signaturePattern(gap.MethodName)
	if err != nil {
		return ""
	}
	loc := re.FindStringIndex(classSource)
	if loc == nil {
		return ""
	}

	start := loc[0]
	depth := 0
	entered := false
	for i := start; i < len(classSource); i++ {
		switch classSource[i] {
		case '{':
			depth++
			entered = true
		case '}':
			depth--
			if entered && depth == 0 {
				return classSource[start : i+1]
			}
		}
	}
	return ""
}

// ExtractOrFallback is Extract with the whole-class fallback applied.
func ExtractOrFallback(classSource string, gap coverage.Gap) string {
	if code := Extract(classSource, gap); code != "" {
		return code
	}
	return FallbackHeader + classSource
}

// signaturePattern matches "<modifier> <returnType> <name>(<params>) {" or "... throws".
func signaturePattern(name string) (*regexp.Regexp, error) {
	return regexp.Compile(`\s*(public|protected|private|static|\s) +[\w<>\[\]]+\s+` +
		regexp.QuoteMeta(name) + `\s*\([^)]*\)\s*(\{|throws)`)
}
