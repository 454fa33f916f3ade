package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	assert.Equal(t, "def example_function():\n    return 'Generated code!'", GenerateCode("generate code: a Python Function please"))
	assert.Equal(t, "function example() {\n    return 'Generated code!';\n}", GenerateCode("generate code in JavaScript"))
	assert.Equal(t, "Please specify a language or task for code generation.", GenerateCode("generate code"))
}

func TestReviewCode(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{"eval", "eval(x)", "Code Review:\nAvoid using eval() due to security risks."},
		{"print", "print(x)", "Code Review:\nConsider using logging instead of print for production code."},
		{"print with logging", "import logging\nprint(x)", "Code looks good! No major issues found."},
		{"both", "print(eval(x))", "Code Review:\nConsider using logging instead of print for production code.\nAvoid using eval() due to security risks."},
		{"clean", "x = 1", "Code looks good! No major issues found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReviewCode(tt.snippet))
		})
	}
}

func TestDetectBugs(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		want    string
	}{
		{
			name:    "well formed loop",
			snippet: "for x in range(10): print(x)",
			want:    "No obvious bugs detected.",
		},
		{
			name:    "missing in",
			snippet: "for x range(10):",
			want:    "Bug Detection:\nPossible syntax error: 'for' loop missing 'in' keyword.\nPotential undefined variable: x",
		},
		{
			name:    "assigned names",
			snippet: "a = 1\nb = a + c",
			want:    "Bug Detection:\nPotential undefined variable: c",
		},
		{
			name:    "every occurrence reported",
			snippet: "y + y",
			want:    "Bug Detection:\nPotential undefined variable: y\nPotential undefined variable: y",
		},
		{
			name:    "numbers and keywords skipped",
			snippet: "if 42 else 7",
			want:    "No obvious bugs detected.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBugs(tt.snippet))
		})
	}
}
