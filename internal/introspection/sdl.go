package introspection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

var ErrNoSchema = errors.New("introspection result has no __schema")

// origin marks generated definitions as user-defined; the formatter reads
// the source of directive definitions to tell them from built-ins.
var origin = &ast.Position{Src: &ast.Source{Name: "introspection"}}

// prelude holds the built-in definitions gqlparser adds to every schema.
// They are left out of the SDL so loading it does not redeclare them.
var prelude = sync.OnceValues(func() (*ast.SchemaDocument, error) {
	return parser.ParseSchema(validator.Prelude)
})

// Parse decodes an introspection result.
func Parse(data []byte) (*Schema, error) {
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode introspection result: %w", err)
	}
	s := res.schema()
	if s == nil {
		return nil, ErrNoSchema
	}
	return s, nil
}

// Source decodes an introspection result and returns it as an SDL source.
func Source(name string, data []byte) (*ast.Source, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	sdl, err := SDL(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &ast.Source{Name: name, Input: sdl}, nil
}

// SDL renders s as schema definition language. Built-in scalars, directives
// and introspection types are omitted.
func SDL(s *Schema) (string, error) {
	builtin, err := prelude()
	if err != nil {
		return "", fmt.Errorf("parse prelude: %w", err)
	}

	doc := &ast.SchemaDocument{}
	if def := schemaDefinition(s); def != nil {
		doc.Schema = append(doc.Schema, def)
	}
	for _, t := range s.Types {
		if strings.HasPrefix(t.Name, "__") || builtin.Definitions.ForName(t.Name) != nil {
			continue
		}
		def, err := definition(t)
		if err != nil {
			return "", err
		}
		doc.Definitions = append(doc.Definitions, def)
	}
	for _, d := range s.Directives {
		if builtin.Directives.ForName(d.Name) != nil {
			continue
		}
		def, err := directiveDefinition(d)
		if err != nil {
			return "", err
		}
		doc.Directives = append(doc.Directives, def)
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf, formatter.WithIndent("  ")).FormatSchemaDocument(doc)
	return buf.String(), nil
}

// schemaDefinition returns nil when every root type has its conventional name.
func schemaDefinition(s *Schema) *ast.SchemaDefinition {
	roots := []struct {
		op   ast.Operation
		ref  *TypeRef
		name string
	}{
		{ast.Query, s.QueryType, "Query"},
		{ast.Mutation, s.MutationType, "Mutation"},
		{ast.Subscription, s.SubscriptionType, "Subscription"},
	}
	def := &ast.SchemaDefinition{Description: str(s.Description)}
	conventional := true
	for _, root := range roots {
		if root.ref == nil || root.ref.Name == nil {
			continue
		}
		def.OperationTypes = append(def.OperationTypes, &ast.OperationTypeDefinition{
			Operation: root.op,
			Type:      *root.ref.Name,
		})
		if *root.ref.Name != root.name {
			conventional = false
		}
	}
	if conventional {
		return nil
	}
	return def
}

func definition(t FullType) (*ast.Definition, error) {
	def := &ast.Definition{
		Kind:        ast.DefinitionKind(t.Kind),
		Name:        t.Name,
		Description: str(t.Description),
	}
	switch def.Kind {
	case ast.Object, ast.Interface:
		for _, f := range t.Fields {
			fd, err := fieldDefinition(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, f.Name, err)
			}
			def.Fields = append(def.Fields, fd)
		}
		for _, i := range t.Interfaces {
			def.Interfaces = append(def.Interfaces, str(i.Name))
		}
	case ast.Union:
		for _, p := range t.PossibleTypes {
			def.Types = append(def.Types, str(p.Name))
		}
	case ast.Enum:
		for _, v := range t.EnumValues {
			def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{
				Name:        v.Name,
				Description: str(v.Description),
				Directives:  deprecated(v.IsDeprecated, v.DeprecationReason),
			})
		}
	case ast.InputObject:
		for _, v := range t.InputFields {
			typ, dflt, err := inputValue(v)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, v.Name, err)
			}
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name:         v.Name,
				Description:  str(v.Description),
				Type:         typ,
				DefaultValue: dflt,
				Directives:   deprecated(v.IsDeprecated, v.DeprecationReason),
			})
		}
	case ast.Scalar:
	default:
		return nil, fmt.Errorf("type %q has unknown kind %q", t.Name, t.Kind)
	}
	return def, nil
}

func fieldDefinition(f Field) (*ast.FieldDefinition, error) {
	typ, err := typeRef(f.Type)
	if err != nil {
		return nil, err
	}
	args, err := argumentDefinitions(f.Args)
	if err != nil {
		return nil, err
	}
	return &ast.FieldDefinition{
		Name:        f.Name,
		Description: str(f.Description),
		Arguments:   args,
		Type:        typ,
		Directives:  deprecated(f.IsDeprecated, f.DeprecationReason),
	}, nil
}

func argumentDefinitions(values []InputValue) (ast.ArgumentDefinitionList, error) {
	var args ast.ArgumentDefinitionList
	for _, v := range values {
		typ, def, err := inputValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", v.Name, err)
		}
		args = append(args, &ast.ArgumentDefinition{
			Name:         v.Name,
			Description:  str(v.Description),
			Type:         typ,
			DefaultValue: def,
			Directives:   deprecated(v.IsDeprecated, v.DeprecationReason),
		})
	}
	return args, nil
}

func directiveDefinition(d Directive) (*ast.DirectiveDefinition, error) {
	args, err := argumentDefinitions(d.Args)
	if err != nil {
		return nil, fmt.Errorf("directive @%s: %w", d.Name, err)
	}
	def := &ast.DirectiveDefinition{
		Name:         d.Name,
		Description:  str(d.Description),
		Arguments:    args,
		IsRepeatable: d.IsRepeatable,
		Position:     origin,
	}
	for _, loc := range d.Locations {
		def.Locations = append(def.Locations, ast.DirectiveLocation(loc))
	}
	return def, nil
}

func inputValue(v InputValue) (*ast.Type, *ast.Value, error) {
	typ, err := typeRef(v.Type)
	if err != nil {
		return nil, nil, err
	}
	if v.DefaultValue == nil {
		return typ, nil, nil
	}
	def, err := literal(*v.DefaultValue)
	if err != nil {
		return nil, nil, err
	}
	return typ, def, nil
}

func typeRef(r TypeRef) (*ast.Type, error) {
	switch r.Kind {
	case "NON_NULL":
		if r.OfType == nil {
			return nil, fmt.Errorf("NON_NULL type reference without ofType")
		}
		inner, err := typeRef(*r.OfType)
		if err != nil {
			return nil, err
		}
		inner.NonNull = true
		return inner, nil
	case "LIST":
		if r.OfType == nil {
			return nil, fmt.Errorf("LIST type reference without ofType")
		}
		elem, err := typeRef(*r.OfType)
		if err != nil {
			return nil, err
		}
		return &ast.Type{Elem: elem}, nil
	default:
		if r.Name == nil {
			return nil, fmt.Errorf("%s type reference without name", r.Kind)
		}
		return &ast.Type{NamedType: *r.Name}, nil
	}
}

// literal parses a default value, which introspection reports as GraphQL
// source text, by placing it in argument position of a throwaway query.
func literal(src string) (*ast.Value, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "defaultValue", Input: "{f(v: " + src + ")}"})
	if err != nil {
		return nil, fmt.Errorf("default value %s: %w", src, err)
	}
	f, ok := doc.Operations[0].SelectionSet[0].(*ast.Field)
	if !ok || len(f.Arguments) != 1 {
		return nil, fmt.Errorf("default value %s: not a single value", src)
	}
	return f.Arguments[0].Value, nil
}

func deprecated(is bool, reason *string) ast.DirectiveList {
	if !is {
		return nil
	}
	d := &ast.Directive{Name: "deprecated"}
	if reason != nil {
		d.Arguments = ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: *reason},
		}}
	}
	return ast.DirectiveList{d}
}
