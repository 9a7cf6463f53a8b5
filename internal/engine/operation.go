package engine

import (
	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/hanpama/gqlmodel/internal/schema"
)

// Operation generates the root class of a named operation. The root class
// carries no discriminator and is never collapsed into a fragment.
func (g *Generator) Operation(op *language.OperationDefinition) (*model.Class, error) {
	if op.Name == "" {
		return nil, g.errorf(ErrAnonymousOperation, op.Position, "%s operations must be named to generate a class", op.Operation)
	}
	scope := g.scope
	g.scope = string(op.Operation) + " " + op.Name
	defer func() { g.scope = scope }()

	root := g.schema.RootType(op.Operation)
	if root == nil {
		return nil, g.errorf(ErrUnknownField, op.Position, "schema does not define a %s type", op.Operation)
	}

	name := g.reg.ClaimName(registry.TitleCase(op.Name))
	b := g.newBody()
	if err := g.fill(b, root, name, collectSelections(op.SelectionSet)); err != nil {
		return nil, err
	}
	args, err := g.arguments(op, name)
	if err != nil {
		return nil, err
	}
	cls := &model.Class{
		Name:        name,
		Fields:      b.fields,
		GraphQLType: root.Name,
		Bases:       g.bases(root.Name, b.inherited, g.conf.ObjectBases),
		Operation:   string(op.Operation),
		Arguments:   args,
		Document:    g.operationDocument(op),
	}
	if err := g.appendClass(cls, op.Position); err != nil {
		return nil, err
	}
	return cls, nil
}

func (g *Generator) arguments(op *language.OperationDefinition, parent string) ([]*model.Field, error) {
	b := g.newBody()
	for _, v := range op.VariableDefinitions {
		f := &model.Field{Name: g.reg.NormalizeField(v.Variable)}
		if f.Name != v.Variable {
			f.Alias = v.Variable
			g.reg.RegisterImport("pydantic.Field")
		}
		typ, err := g.inputAnnotation(schema.BuildTypeRef(v.Type), parent, true)
		if err != nil {
			return nil, g.wrap(err, v.Position)
		}
		f.Type = typ
		g.addField(b, f, v.Variable)
	}
	return b.fields, nil
}

// inputAnnotation types a value the client sends: a variable or an input
// object field.
func (g *Generator) inputAnnotation(ref *schema.TypeRef, parent string, nullable bool) (model.Expr, error) {
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		return g.inputAnnotation(ref.OfType, parent, false)
	case schema.TypeRefKindList:
		inner, err := g.inputAnnotation(ref.OfType, parent, true)
		if err != nil {
			return nil, err
		}
		g.reg.RegisterImport(g.seq.Import())
		return g.optional(g.seq.Wrap(inner), nullable), nil
	}
	t := g.schema.Types[ref.Named]
	if t == nil {
		return nil, g.errorf(ErrUnknownField, nil, "unknown input type %s", ref.Named)
	}
	switch t.Kind {
	case schema.TypeKindScalar:
		return g.optional(g.reg.ReferenceScalar(t.Name), nullable), nil
	case schema.TypeKindEnum:
		return g.optional(g.reg.ReferenceEnum(t.Name, parent), nullable), nil
	case schema.TypeKindInputObject:
		return g.optional(g.reg.ReferenceInput(t.Name), nullable), nil
	default:
		return nil, g.errorf(ErrUnsupportedSelection, nil, "%s is not an input type", t.Name)
	}
}

// operationDocument prints op together with every fragment it reaches.
func (g *Generator) operationDocument(op *language.OperationDefinition) string {
	doc := &language.QueryDocument{Operations: language.OperationList{op}}
	seen := make(map[string]bool)
	var visit func(language.SelectionSet)
	visit = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				visit(sel.SelectionSet)
			case *language.InlineFragment:
				visit(sel.SelectionSet)
			case *language.FragmentSpread:
				if seen[sel.Name] {
					continue
				}
				seen[sel.Name] = true
				if def := g.fragments[sel.Name]; def != nil {
					doc.Fragments = append(doc.Fragments, def)
					visit(def.SelectionSet)
				}
			}
		}
	}
	visit(op.SelectionSet)
	return language.FormatQuery(doc)
}
