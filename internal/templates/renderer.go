package templates

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// placeholderPattern matches {{dotted.path}} up to the next closing braces.
var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// MissingKeyError reports a placeholder with no value under MissingError.
type MissingKeyError struct {
	Path string
}

// Error implements the error interface.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("no value for placeholder {{%s}}", e.Path)
}

// Renderer substitutes placeholders with values from a parameter mapping.
type Renderer struct {
	params Params
	policy MissingKeyPolicy
}

// NewRenderer creates a new renderer for the given params.
func NewRenderer(params Params, policy MissingKeyPolicy) *Renderer {
	return &Renderer{params: params, policy: policy}
}

// Render substitutes placeholders in a template string using params.
func Render(template string, params Params, policy MissingKeyPolicy) (string, error) {
	return NewRenderer(params, policy).RenderString(template)
}

// RenderString renders a template string in a single pass. Substituted
// values are never scanned for further placeholders.
func (r *Renderer) RenderString(template string) (string, error) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	var b strings.Builder
	b.Grow(len(template))

	last := 0
	for _, m := range matches {
		b.WriteString(template[last:m[0]])

		path := strings.TrimSpace(template[m[2]:m[3]])
		value, err := r.resolve(path)
		if err != nil {
			return "", err
		}
		b.WriteString(value)

		last = m[1]
	}
	b.WriteString(template[last:])

	return b.String(), nil
}

// RenderFile renders file content.
func (r *Renderer) RenderFile(content []byte) ([]byte, error) {
	rendered, err := r.RenderString(string(content))
	if err != nil {
		return nil, err
	}
	return []byte(rendered), nil
}

func (r *Renderer) resolve(path string) (string, error) {
	v, ok := Lookup(r.params, path)
	if !ok {
		if r.policy == MissingError {
			return "", &MissingKeyError{Path: path}
		}
		return "", nil
	}
	return formatValue(v)
}

// Lookup resolves a dot-separated path against a nested mapping.
// It reports false when any segment is absent or a non-map value is
// traversed.
func Lookup(params Params, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = map[string]any(params)
	for _, segment := range strings.Split(path, ".") {
		var next any
		var ok bool

		switch m := current.(type) {
		case map[string]any:
			next, ok = m[segment]
		case Params:
			next, ok = m[segment]
		case map[string]string:
			next, ok = m[segment]
		default:
			return nil, false
		}

		if !ok {
			return nil, false
		}
		current = next
	}

	return current, true
}

// formatValue converts a looked-up value to its substitution text.
// Structured values are JSON encoded.
func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case map[string]any, Params, map[string]string, []any, []string:
		data, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("encoding value: %w", err)
		}
		return string(data), nil
	default:
		return cast.ToStringE(val)
	}
}
