package engine

import (
	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/hanpama/gqlmodel/internal/schema"
)

// BuildFragment generates the class tree of a fragment. The registry calls
// it once per fragment and run; everything else goes through the registry.
func (g *Generator) BuildFragment(name string) (*registry.Fragment, error) {
	def := g.fragments[name]
	if def == nil {
		return nil, g.errorf(ErrUnknownFragment, nil, "fragment %s is not defined", name)
	}

	scope, depth, peak := g.scope, g.depth, g.peak
	g.scope, g.depth, g.peak = "fragment "+name, 0, 0
	defer func() { g.scope, g.depth, g.peak = scope, depth, peak }()

	t := g.schema.Types[def.TypeCondition]
	if t == nil {
		return nil, g.errorf(ErrUnknownField, def.Position, "unknown type condition %s", def.TypeCondition)
	}

	clsName := g.reg.ClaimName(registry.TitleCase(name))
	sels := collectSelections(def.SelectionSet)
	b := g.newBody()

	if !t.IsAbstract() {
		g.addField(b, g.discriminator(t), language.TypenameField)
		if err := g.fill(b, t, clsName, sels); err != nil {
			return nil, err
		}
		cls := &model.Class{
			Name:        clsName,
			Doc:         t.Description,
			Fields:      b.fields,
			GraphQLType: t.Name,
			Bases:       g.bases(t.Name, b.inherited, g.conf.ObjectBases),
		}
		if err := g.appendClass(cls, def.Position); err != nil {
			return nil, err
		}
		return &registry.Fragment{Class: clsName, Ref: model.ClassRef(clsName), Depth: g.peak}, nil
	}

	// Abstract fragments carry the shared fields on a base class; each
	// inline fragment narrows it to a concrete variant.
	g.addField(b, g.typenameField(model.Name{Ref: "str", Kind: model.RefScalar}), language.TypenameField)
	var inlines []*language.InlineFragment
	var rest language.SelectionSet
	for _, sel := range sels {
		if inline, ok := sel.(*language.InlineFragment); ok {
			inlines = append(inlines, inline)
			continue
		}
		rest = append(rest, sel)
	}
	if err := g.fill(b, t, clsName, rest); err != nil {
		return nil, err
	}
	defaults := g.conf.ObjectBases
	if t.Kind == schema.TypeKindInterface {
		defaults = g.conf.Interfaces()
	}
	cls := &model.Class{
		Name:        clsName,
		Doc:         t.Description,
		Fields:      b.fields,
		GraphQLType: t.Name,
		Bases:       g.bases(t.Name, b.inherited, defaults),
	}
	if err := g.appendClass(cls, def.Position); err != nil {
		return nil, err
	}
	if len(inlines) == 0 {
		return &registry.Fragment{Class: clsName, Ref: model.ClassRef(clsName), Depth: g.peak}, nil
	}

	var variants []model.Expr
	for _, inline := range inlines {
		variant, err := g.inlineVariant(inline, clsName, t, []string{clsName}, nil)
		if err != nil {
			return nil, err
		}
		variants = append(variants, model.ClassRef(variant))
	}
	if !g.conf.AlwaysResolveInterfaces {
		variants = append(variants, model.ClassRef(clsName))
	}
	return &registry.Fragment{Class: clsName, Ref: g.collapse(variants, false), Depth: g.peak}, nil
}
