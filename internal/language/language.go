package language

import (
	"bytes"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"github.com/vektah/gqlparser/v2/validator/rules"
)

func ParseQuery(name, source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL sources into a schema, prelude included.
func LoadSchema(sources ...*Source) (*Schema, error) {
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks doc against s and annotates its selections with their
// definitions. Fragments no operation spreads are allowed; they still get
// generated.
func Validate(s *Schema, doc *QueryDocument) gqlerror.List {
	r := rules.NewDefaultRules()
	r.RemoveRule(rules.NoUnusedFragmentsRule.Name)
	return validator.ValidateWithRules(s, doc, r)
}

// FormatQuery prints doc back to GraphQL source.
func FormatQuery(doc *QueryDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatQueryDocument(doc)
	return buf.String()
}
