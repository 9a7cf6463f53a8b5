package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hanpama/gqlmodel/internal/introspection"
	"github.com/hanpama/gqlmodel/internal/language"
)

const defaultDeprecationReason = "No longer supported"

// BuildFromAST converts a validated gqlparser schema into the type graph.
func BuildFromAST(src *language.Schema) *Schema {
	s := &Schema{
		Types:       make(map[string]*Type, len(src.Types)),
		Description: src.Description,
	}
	if src.Query != nil {
		s.QueryType = src.Query.Name
	}
	if src.Mutation != nil {
		s.MutationType = src.Mutation.Name
	}
	if src.Subscription != nil {
		s.SubscriptionType = src.Subscription.Name
	}
	for name, def := range src.Types {
		s.Types[name] = buildType(src, def)
	}
	return s
}

func buildType(src *language.Schema, def *language.Definition) *Type {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
	}
	switch def.Kind {
	case language.Object:
		t.Kind = TypeKindObject
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		t.Fields = buildFields(def)
	case language.Interface:
		t.Kind = TypeKindInterface
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		t.Fields = buildFields(def)
		t.PossibleTypes = possibleTypes(src, def)
	case language.Union:
		t.Kind = TypeKindUnion
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	case language.Enum:
		t.Kind = TypeKindEnum
		for _, v := range def.EnumValues {
			ev := &EnumValue{Name: v.Name, Description: v.Description}
			ev.IsDeprecated, ev.DeprecationReason = deprecation(v.Directives)
			t.EnumValues = append(t.EnumValues, ev)
		}
	case language.InputObject:
		t.Kind = TypeKindInputObject
		for _, f := range def.Fields {
			iv := &InputValue{Name: f.Name, Description: f.Description, Type: buildTypeRef(f.Type)}
			iv.IsDeprecated, iv.DeprecationReason = deprecation(f.Directives)
			t.InputFields = append(t.InputFields, iv)
		}
	case language.Scalar:
		t.Kind = TypeKindScalar
	default:
		panic("unreachable")
	}
	return t
}

func buildFields(def *language.Definition) []*Field {
	fields := make([]*Field, 0, len(def.Fields))
	for _, f := range def.Fields {
		field := &Field{
			Name:        f.Name,
			Description: f.Description,
			Type:        buildTypeRef(f.Type),
		}
		field.IsDeprecated, field.DeprecationReason = deprecation(f.Directives)
		fields = append(fields, field)
	}
	return fields
}

func possibleTypes(src *language.Schema, def *language.Definition) []string {
	defs := src.GetPossibleTypes(def)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

func deprecation(dirs language.DirectiveList) (bool, string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil && arg.Value.Raw != "" {
		return true, arg.Value.Raw
	}
	return true, defaultDeprecationReason
}

// BuildTypeRef converts a gqlparser type into a type reference.
func BuildTypeRef(t *language.Type) *TypeRef { return buildTypeRef(t) }

func buildTypeRef(t *language.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListRef(buildTypeRef(t.Elem))
	} else {
		ref = NamedRef(t.NamedType)
	}
	if t.NonNull {
		return NonNullRef(ref)
	}
	return ref
}

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	src, err := language.LoadSchema(&language.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return BuildFromAST(src), nil
}

// Load reads schema files and returns both the gqlparser schema, needed to
// validate documents, and the type graph built from it. Files ending in
// .json hold an introspection result; all others hold SDL.
func Load(paths ...string) (*language.Schema, *Schema, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no schema files given")
	}
	sources := make([]*language.Source, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("read schema %q: %w", p, err)
		}
		if strings.EqualFold(filepath.Ext(p), ".json") {
			src, err := introspection.Source(p, content)
			if err != nil {
				return nil, nil, err
			}
			sources = append(sources, src)
			continue
		}
		sources = append(sources, &language.Source{Name: p, Input: string(content)})
	}
	src, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, nil, err
	}
	return src, BuildFromAST(src), nil
}
