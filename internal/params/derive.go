package params

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
)

var quoteRuns = regexp.MustCompile(`"+`)

// Dequote replaces every run of double quotes with a single escaped quote,
// so the value can sit inside a JSON or JS double-quoted string.
func Dequote(s string) string {
	return quoteRuns.ReplaceAllString(s, `\"`)
}

var escapedQuote = regexp.MustCompile(`\\"+`)

// TestDescription escapes s for a single-quoted JS string literal. Double
// quotes are left bare.
func TestDescription(s string) string {
	return escapedQuote.ReplaceAllString(jsStringEscape(s), `"`)
}

func jsStringEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '"', '\'', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VarName converts a module name to a JS identifier in lowerCamel case.
// Names that would start with a digit or collide with a reserved word get a
// leading underscore.
func VarName(name string) string {
	camel := strcase.ToLowerCamel(name)

	result := make([]rune, 0, len(camel))
	for _, r := range camel {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "module"
	}

	ident := string(result)
	if unicode.IsDigit(result[0]) || isReservedWord(ident) {
		ident = "_" + ident
	}

	return ident
}

// TagsJSON splits space-separated tags and renders them as a JSON array
// with four-space indentation. Blank tags are dropped.
func TagsJSON(input string) (string, error) {
	tags := []string{}
	for _, tag := range strings.Split(input, " ") {
		tag = strings.TrimSpace(Dequote(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tags); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// reservedWords are JS keywords and strict-mode reserved names.
var reservedWords = map[string]bool{
	"arguments":  true,
	"await":      true,
	"break":      true,
	"case":       true,
	"catch":      true,
	"class":      true,
	"const":      true,
	"continue":   true,
	"debugger":   true,
	"default":    true,
	"delete":     true,
	"do":         true,
	"else":       true,
	"enum":       true,
	"eval":       true,
	"export":     true,
	"extends":    true,
	"false":      true,
	"finally":    true,
	"for":        true,
	"function":   true,
	"if":         true,
	"implements": true,
	"import":     true,
	"in":         true,
	"instanceof": true,
	"interface":  true,
	"let":        true,
	"new":        true,
	"null":       true,
	"package":    true,
	"private":    true,
	"protected":  true,
	"public":     true,
	"return":     true,
	"static":     true,
	"super":      true,
	"switch":     true,
	"this":       true,
	"throw":      true,
	"true":       true,
	"try":        true,
	"typeof":     true,
	"var":        true,
	"void":       true,
	"while":      true,
	"with":       true,
	"yield":      true,
}

func isReservedWord(name string) bool {
	return reservedWords[name]
}
