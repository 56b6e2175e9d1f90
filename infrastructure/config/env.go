package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	bracketVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*|:\?[^}]*)?\}`)
	simpleVarPattern  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// envExpander substitutes environment variables in config text. The
// supported forms are ${VAR}, ${VAR:-default}, ${VAR:?message} and
// bare $VAR.
type envExpander struct {
	strict  bool
	missing []string
}

func (e *envExpander) Expand(input string) (string, error) {
	e.missing = nil

	result := bracketVarPattern.ReplaceAllStringFunc(input, e.expandBracket)
	result = simpleVarPattern.ReplaceAllStringFunc(result, e.expandSimple)

	if len(e.missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingEnvVar, strings.Join(e.missing, ", "))
	}
	return result, nil
}

func (e *envExpander) expandBracket(match string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
	name, modifier, _ := strings.Cut(inner, ":")
	value, exists := os.LookupEnv(name)

	switch {
	case strings.HasPrefix(modifier, "-"):
		if !exists || value == "" {
			return modifier[1:]
		}
	case strings.HasPrefix(modifier, "?"):
		if !exists || value == "" {
			e.missing = append(e.missing, fmt.Sprintf("%s: %s", name, modifier[1:]))
			return match
		}
	default:
		if !exists {
			if e.strict {
				e.missing = append(e.missing, name)
			}
			return ""
		}
	}
	return value
}

func (e *envExpander) expandSimple(match string) string {
	name := match[1:]
	value, exists := os.LookupEnv(name)
	if !exists {
		if e.strict {
			e.missing = append(e.missing, name)
		}
		return ""
	}
	return value
}

// ExpandEnv substitutes variables, leaving unset ones empty.
func ExpandEnv(input string) string {
	e := &envExpander{strict: false}
	result, _ := e.Expand(input)
	return result
}

// ExpandEnvStrict substitutes variables and fails on unset ones.
func ExpandEnvStrict(input string) (string, error) {
	e := &envExpander{strict: true}
	return e.Expand(input)
}
