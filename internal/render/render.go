// Package render turns templates and variable bindings into channel-ready
// content. Rendering is pure: the same template and bindings always produce
// byte-identical output.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"notifyd/internal/models"
)

// placeholders look like {{variable_name}}
var placeholderRe = regexp.MustCompile(`\{\{([a-zA-Z0-9_.-]+)\}\}`)

// MissingVariableError is the only render failure mode: a referenced
// placeholder has no binding.
type MissingVariableError struct {
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variable: %s", e.Variable)
}

// ReferencedVariables returns the distinct placeholder names used by the
// template's subject and body, sorted.
func ReferencedVariables(tmpl *models.Template) []string {
	seen := map[string]struct{}{}
	for _, pattern := range []string{tmpl.Subject, tmpl.Body} {
		for _, m := range placeholderRe.FindAllStringSubmatch(pattern, -1) {
			seen[m[1]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidateTemplate enforces the creation-time invariant that every referenced
// placeholder is a declared variable. Declaring unused variables is legal.
func ValidateTemplate(tmpl *models.Template) error {
	var undeclared []string
	for _, name := range ReferencedVariables(tmpl) {
		if !tmpl.DeclaresVariable(name) {
			undeclared = append(undeclared, name)
		}
	}
	if len(undeclared) > 0 {
		return fmt.Errorf("template %q references undeclared variables: %s",
			tmpl.Name, strings.Join(undeclared, ", "))
	}
	return nil
}

// Render substitutes bindings into the template and applies channel-specific
// escaping. Bindings not referenced by any placeholder are ignored.
func Render(tmpl *models.Template, bindings map[string]string) (*models.Content, error) {
	subject, err := renderPattern(tmpl.Subject, bindings)
	if err != nil {
		return nil, err
	}
	body, err := renderPattern(tmpl.Body, bindings)
	if err != nil {
		return nil, err
	}

	return &models.Content{
		Subject: EscapeForChannel(tmpl.Channel, subject),
		Body:    EscapeForChannel(tmpl.Channel, body),
	}, nil
}

func renderPattern(pattern string, bindings map[string]string) (string, error) {
	for _, m := range placeholderRe.FindAllStringSubmatch(pattern, -1) {
		if _, ok := bindings[m[1]]; !ok {
			return "", &MissingVariableError{Variable: m[1]}
		}
	}

	return placeholderRe.ReplaceAllStringFunc(pattern, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		return bindings[name]
	}), nil
}
