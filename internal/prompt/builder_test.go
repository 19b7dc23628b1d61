// File: internal/prompt/builder_test.go
package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sujikathir/test-gen/internal/coverage"
)

func chargeGap() coverage.Gap {
	return coverage.Gap{
		MethodName:          "charge",
		MethodSignature:     "(I)Z",
		InstructionCoverage: 60,
		BranchCoverage:      50,
		MissingCases:        []string{"Missing 1 branch conditions", "Line 8 is not covered"},
	}
}

func TestBuild(t *testing.T) {
	method := "public boolean charge(int amount) {\n    return amount > 0;\n}"
	p := Build("com.acme.Billing", chargeGap(), method)

	assert.Contains(t, p, "charge")
	assert.Contains(t, p, "60.0%")
	assert.Contains(t, p, "Current branch coverage: 50.0%")
	assert.Contains(t, p, "Generate a JUnit 5 test for the following Java method: charge in class com.acme.Billing\n")
	assert.Contains(t, p, "Method code:\n```java\n"+method+"\n```\n")
	assert.Contains(t, p, "- Missing 1 branch conditions\n- Line 8 is not covered\n")
	assert.Contains(t, p, "The test class should be named Billing_chargeTest")
	assert.True(t, strings.HasSuffix(p, "Please provide only the code without explanations, starting with package declaration."))
}

func TestBuild_Deterministic(t *testing.T) {
	assert.Equal(t, Build("a.B", chargeGap(), "x"), Build("a.B", chargeGap(), "x"))
}

func TestBuild_RoundsToOneDecimal(t *testing.T) {
	gap := chargeGap()
	gap.InstructionCoverage = 100.0 * 2 / 3
	gap.MissingCases = nil

	p := Build("a.B", gap, "")
	assert.Contains(t, p, "Current instruction coverage: 66.7%")
	assert.Contains(t, p, "missing coverage cases:\n\nCurrent")
}

func TestTestClassName(t *testing.T) {
	assert.Equal(t, "Foo_barTest", TestClassName("com.acme.Foo", "bar"))
	assert.Equal(t, "Outer_runTest", TestClassName("com.acme.Outer$Inner", "run"))
	assert.Equal(t, "Main_mainTest", TestClassName("Main", "main"))
}
