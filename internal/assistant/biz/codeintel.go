package biz

import (
	"regexp"
	"strings"
)

// GenerateCode returns a canned snippet for the requested language.
func GenerateCode(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "python function"):
		return "def example_function():\n    return 'Generated code!'"
	case strings.Contains(lower, "javascript"):
		return "function example() {\n    return 'Generated code!';\n}"
	default:
		return "Please specify a language or task for code generation."
	}
}

// ReviewCode flags print statements without logging and eval calls.
func ReviewCode(snippet string) string {
	var issues []string
	if strings.Contains(snippet, "print(") && !strings.Contains(snippet, "logging") {
		issues = append(issues, "Consider using logging instead of print for production code.")
	}
	if strings.Contains(snippet, "eval(") {
		issues = append(issues, "Avoid using eval() due to security risks.")
	}
	if len(issues) == 0 {
		return "Code looks good! No major issues found."
	}
	return "Code Review:\n" + strings.Join(issues, "\n")
}

var (
	wordPattern    = regexp.MustCompile(`\b\w+\b`)
	loopVarPattern = regexp.MustCompile(`\bfor\s+(\w+)\s+in\b`)
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)

	bugStoplist = map[string]bool{"print": true, "for": true, "in": true, "if": true, "else": true}
)

// DetectBugs flags a for loop without "in" and every occurrence of a word
// that is never assigned. Assigned names are the left-hand sides of lines
// containing "=" and loop variables of "for <name> in". Calls, numbers and
// a few keywords are ignored. The check is syntax-unaware and over-reports.
func DetectBugs(snippet string) string {
	var bugs []string
	if strings.Contains(snippet, "for ") && !strings.Contains(snippet, " in ") {
		bugs = append(bugs, "Possible syntax error: 'for' loop missing 'in' keyword.")
	}

	defined := make(map[string]bool)
	for _, line := range strings.Split(snippet, "\n") {
		if lhs, _, ok := strings.Cut(line, "="); ok {
			defined[strings.TrimSpace(lhs)] = true
		}
	}
	for _, m := range loopVarPattern.FindAllStringSubmatch(snippet, -1) {
		defined[m[1]] = true
	}

	for _, loc := range wordPattern.FindAllStringIndex(snippet, -1) {
		word := snippet[loc[0]:loc[1]]
		if defined[word] || bugStoplist[word] || digitsPattern.MatchString(word) {
			continue
		}
		if loc[1] < len(snippet) && snippet[loc[1]] == '(' {
			continue
		}
		bugs = append(bugs, "Potential undefined variable: "+word)
	}

	if len(bugs) == 0 {
		return "No obvious bugs detected."
	}
	return "Bug Detection:\n" + strings.Join(bugs, "\n")
}
