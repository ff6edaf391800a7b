package templates

import (
	"path"
	"strings"
)

// rewriteRule renames a destination whose template filename matches.
type rewriteRule struct {
	name    string
	matches func(templateName string) bool
	rewrite func(destName string) string
}

// rewriteRules are evaluated in order; the first match wins.
var rewriteRules = []rewriteRule{
	{
		name:    "unmask .gitignore",
		matches: hasSuffix("_.gitignore"),
		rewrite: replaceSuffix("_.gitignore", ".gitignore"),
	},
	{
		name:    "unmask .npmignore",
		matches: hasSuffix("_.npmignore"),
		rewrite: replaceSuffix("_.npmignore", ".npmignore"),
	},
	{
		name:    "rename generic test",
		matches: equals(genericTestName),
		rewrite: replaceSuffix(genericTestName, canonicalTestName),
	},
}

const (
	// genericTestName is the test template renamed on emission.
	genericTestName = "_test.js"

	// canonicalTestName is the emitted name of the generic test template.
	canonicalTestName = "test.js"
)

// rewriteDest applies the first matching rule to the final element of the
// slash-separated destination relPath.
func rewriteDest(templateName, relPath string) string {
	dir, name := path.Split(relPath)
	for _, rule := range rewriteRules {
		if rule.matches(templateName) {
			return dir + rule.rewrite(name)
		}
	}
	return relPath
}

func hasSuffix(suffix string) func(string) bool {
	return func(s string) bool { return strings.HasSuffix(s, suffix) }
}

func equals(want string) func(string) bool {
	return func(s string) bool { return s == want }
}

func replaceSuffix(old, replacement string) func(string) string {
	return func(s string) string {
		if !strings.HasSuffix(s, old) {
			return s
		}
		return strings.TrimSuffix(s, old) + replacement
	}
}
