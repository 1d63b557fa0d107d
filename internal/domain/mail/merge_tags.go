package mail

import (
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"time"
)

var mergeTagPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\.([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*)\s*\}\}`)

// HiddenAttributes never resolve in merge tags
var HiddenAttributes = map[string]bool{
	"password":       true,
	"password_hash":  true,
	"remember_token": true,
	"token_hash":     true,
}

// IsHiddenAttribute reports whether name refers to a hidden attribute, by column
// name or by field name (PasswordHash, passwordHash)
func IsHiddenAttribute(name string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(name, "_", ""))
	for hidden := range HiddenAttributes {
		if normalized == strings.ReplaceAll(hidden, "_", "") {
			return true
		}
	}
	return false
}

// MergeTag is a parsed {{ entity.path }} placeholder
type MergeTag struct {
	Raw    string
	Entity string
	Path   string
}

// Name returns the canonical "entity.path" form
func (t MergeTag) Name() string {
	return t.Entity + "." + t.Path
}

// ParseMergeTags returns the distinct tags of s in order of appearance
func ParseMergeTags(s string) []MergeTag {
	seen := make(map[string]bool)
	var tags []MergeTag
	for _, m := range mergeTagPattern.FindAllStringSubmatch(s, -1) {
		tag := MergeTag{Raw: m[0], Entity: m[1], Path: m[2]}
		if seen[tag.Name()] {
			continue
		}
		seen[tag.Name()] = true
		tags = append(tags, tag)
	}
	return tags
}

// AttributeResolver reads a dot path from a model value
type AttributeResolver interface {
	Resolve(model interface{}, path string) (interface{}, bool)
}

// Rendered is a template with its tags replaced
type Rendered struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	// Unresolved lists tags left untouched
	Unresolved []string `json:"unresolved"`
}

// RenderString replaces the tags of s with values from entities. Values are HTML
// escaped when escape is set. Tags with an unknown entity, an unknown or hidden
// attribute are left as written and returned.
func RenderString(s string, entities map[string]interface{}, resolver AttributeResolver, escape bool) (string, []string) {
	var unresolved []string
	seen := make(map[string]bool)

	out := mergeTagPattern.ReplaceAllStringFunc(s, func(raw string) string {
		m := mergeTagPattern.FindStringSubmatch(raw)
		tag := MergeTag{Raw: raw, Entity: m[1], Path: m[2]}

		value, ok := resolveTag(tag, entities, resolver)
		if !ok {
			if !seen[tag.Name()] {
				seen[tag.Name()] = true
				unresolved = append(unresolved, tag.Name())
			}
			return raw
		}

		text := FormatValue(value)
		if escape {
			text = html.EscapeString(text)
		}
		return text
	})
	return out, unresolved
}

// Render renders the subject unescaped and the body escaped
func Render(tpl *EmailTemplate, entities map[string]interface{}, resolver AttributeResolver) *Rendered {
	subject, u1 := RenderString(tpl.Subject, entities, resolver, false)
	body, u2 := RenderString(tpl.Body, entities, resolver, true)

	unresolved := u1
	for _, name := range u2 {
		if !contains(unresolved, name) {
			unresolved = append(unresolved, name)
		}
	}
	return &Rendered{Subject: subject, HTML: body, Unresolved: unresolved}
}

func resolveTag(tag MergeTag, entities map[string]interface{}, resolver AttributeResolver) (interface{}, bool) {
	for _, segment := range strings.Split(tag.Path, ".") {
		if IsHiddenAttribute(segment) {
			return nil, false
		}
	}

	model, ok := entities[tag.Entity]
	if !ok || model == nil {
		return nil, false
	}

	if m, ok := model.(map[string]interface{}); ok {
		v, ok := lookupMap(m, tag.Path)
		return v, ok
	}
	if resolver == nil {
		return nil, false
	}
	return resolver.Resolve(model, tag.Path)
}

func lookupMap(m map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = m
	for _, segment := range strings.Split(path, ".") {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = asMap[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// FormatValue renders a resolved attribute as text
func FormatValue(v interface{}) string {
	if v == nil {
		return ""
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
