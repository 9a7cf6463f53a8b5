package registry

import (
	"strconv"
	"strings"
	"unicode"
)

// TitleCase upper-cases the first letter of s and keeps the rest as written,
// so heroName becomes HeroName.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SnakeCase converts a string from CamelCase or PascalCase to snake_case.
func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// pythonKeywords cannot be used as attribute names.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// modelAttributes shadow methods of the generated base model.
var modelAttributes = map[string]bool{
	"schema": true, "json": true, "dict": true, "copy": true,
	"validate": true, "construct": true, "fields": true, "model_config": true,
}

// normalizeIdentifier maps arbitrary GraphQL text to a Python attribute name.
// It is a pure function: equal input always yields equal output.
func normalizeIdentifier(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if name == "" {
		name = "field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "field_" + name
	}
	if pythonKeywords[name] || modelAttributes[name] {
		name += "_"
	}
	return name
}

// suffixed returns the n-th disambiguated form of name.
func suffixed(name string, n int) string {
	return name + strconv.Itoa(n)
}
