// File: internal/prompt/builder.go
// Package prompt renders the instruction sent to every AI backend for one gap.
package prompt

import (
	"fmt"
	"strings"

	"github.com/sujikathir/test-gen/internal/coverage"
	"github.com/sujikathir/test-gen/internal/source"
)

// Build renders the generation prompt for gap in className. methodSource is the
// extracted method, or the whole-class fallback.
func Build(className string, gap coverage.Gap, methodSource string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate a JUnit 5 test for the following Java method: %s in class %s\n\n", gap.MethodName, className)

	sb.WriteString("Method code:\n```java\n")
	sb.WriteString(methodSource)
	sb.WriteString("\n```\n\n")

	sb.WriteString("The test should focus on these missing coverage cases:\n")
	for _, c := range gap.MissingCases {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\nCurrent instruction coverage: %.1f%%", gap.InstructionCoverage)
	fmt.Fprintf(&sb, "\nCurrent branch coverage: %.1f%%", gap.BranchCoverage)

	sb.WriteString("\n\nGenerate a complete JUnit 5 test class that includes:")
	sb.WriteString("\n1. Necessary imports")
	sb.WriteString("\n2. Proper setup with mocks using Mockito where needed")
	sb.WriteString("\n3. Test methods that specifically address the missing coverage cases")
	sb.WriteString("\n4. Assertions to verify expected behavior")
	fmt.Fprintf(&sb, "\n\nThe test class should be named %s", TestClassName(className, gap.MethodName))

	sb.WriteString("\n\nPlease provide only the code without explanations, starting with package declaration.")
	return sb.String()
}

// TestClassName is "<Simple>_<method>Test".
func TestClassName(className, methodName string) string {
	_, simple := source.SplitClassName(className)
	return simple + "_" + methodName + "Test"
}
