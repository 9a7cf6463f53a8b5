package engine

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/hanpama/gqlmodel/internal/schema"
)

// ResolveType returns the annotation for a field of type t selected by node,
// appending the classes the annotation refers to. prefix is the name of the
// enclosing class.
func (g *Generator) ResolveType(node *language.Field, prefix string, t schema.OutputType, nullable bool) (model.Expr, error) {
	switch t := t.(type) {
	case schema.NonNull:
		return g.ResolveType(node, prefix, t.OfType, false)
	case schema.List:
		inner, err := g.ResolveType(node, prefix, t.OfType, true)
		if err != nil {
			return nil, err
		}
		g.reg.RegisterImport(g.seq.Import())
		return g.optional(g.seq.Wrap(inner), nullable), nil
	case schema.Scalar:
		return g.optional(g.reg.ReferenceScalar(t.Name), nullable), nil
	case schema.Enum:
		return g.optional(g.reg.ReferenceEnum(t.Name, prefix), nullable), nil
	case schema.Object:
		return g.resolveObject(node, prefix, t.Type, nullable)
	case schema.Interface:
		return g.resolveInterface(node, prefix, t.Type, nullable)
	case schema.Union:
		return g.resolveUnion(node, prefix, t.Type, nullable)
	default:
		return nil, fmt.Errorf("unhandled output type %T", t)
	}
}

// ResolveField types one selected field of the class named prefix.
func (g *Generator) ResolveField(node *language.Field, prefix string, def *schema.Field) (*model.Field, error) {
	target := language.ResponseKey(node)
	out := &model.Field{Name: g.reg.NormalizeField(target)}
	if out.Name != target {
		out.Alias = target
		g.reg.RegisterImport("pydantic.Field")
	}

	typ, err := g.schema.Resolve(def.Type)
	if err != nil {
		return nil, g.errorf(ErrUnknownField, node.Position, "field %s: %v", node.Name, err)
	}
	out.Type, err = g.ResolveType(node, prefix, typ, true)
	if err != nil {
		return nil, err
	}

	if def.IsDeprecated {
		g.reg.Warn(fmt.Sprintf("field %s on %s is deprecated: %s", node.Name, prefix, def.DeprecationReason))
		out.Doc = deprecationDoc(def.DeprecationReason, def.Description)
	} else {
		out.Doc = def.Description
	}
	return out, nil
}

func (g *Generator) resolveObject(node *language.Field, prefix string, t *schema.Type, nullable bool) (model.Expr, error) {
	leave, err := g.descend(node.Position)
	if err != nil {
		return nil, err
	}
	defer leave()

	sels := collectSelections(node.SelectionSet)
	if spread := singleSpread(sels); spread != nil {
		return g.referenceFragment(spread, prefix, nullable)
	}

	name := g.reg.ClaimName(prefix + registry.TitleCase(language.ResponseKey(node)))
	b := g.newBody()
	g.addField(b, g.discriminator(t), language.TypenameField)
	if err := g.fill(b, t, name, sels); err != nil {
		return nil, err
	}
	cls := &model.Class{
		Name:        name,
		Doc:         t.Description,
		Fields:      b.fields,
		GraphQLType: t.Name,
		Bases:       g.bases(t.Name, b.inherited, g.conf.ObjectBases),
	}
	if err := g.appendClass(cls, node.Position); err != nil {
		return nil, err
	}
	return g.optional(model.ClassRef(name), nullable), nil
}

func (g *Generator) resolveInterface(node *language.Field, prefix string, t *schema.Type, nullable bool) (model.Expr, error) {
	leave, err := g.descend(node.Position)
	if err != nil {
		return nil, err
	}
	defer leave()

	sels := collectSelections(node.SelectionSet)
	if spread := singleSpread(sels); spread != nil {
		return g.referenceFragment(spread, prefix, nullable)
	}

	base := prefix + registry.TitleCase(language.ResponseKey(node))
	motherName := g.reg.ClaimName(base + "Base")
	mb := g.newBody()
	if err := g.fill(mb, t, base, fieldsOf(sels)); err != nil {
		return nil, err
	}
	mother := &model.Class{
		Name:        motherName,
		Doc:         t.Description,
		Fields:      mb.fields,
		GraphQLType: t.Name,
		Bases:       g.interfaceBases(t.Name),
	}
	if err := g.appendClass(mother, node.Position); err != nil {
		return nil, err
	}

	var variants []model.Expr
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *language.FragmentSpread:
			fragment, err := g.reg.InheritFragment(sel.Name)
			if err != nil {
				return nil, g.wrap(err, sel.Position)
			}
			if err := g.spreadDepth(sel.Name, sel.Position); err != nil {
				return nil, err
			}
			variant := &model.Class{
				Name:        g.reg.ClaimName(base + registry.TitleCase(sel.Name)),
				Bases:       []string{motherName, fragment},
				GraphQLType: t.Name,
			}
			if err := g.appendClass(variant, sel.Position); err != nil {
				return nil, err
			}
			variants = append(variants, model.ClassRef(variant.Name))
		case *language.InlineFragment:
			name, err := g.inlineVariant(sel, base, t, []string{motherName}, nil)
			if err != nil {
				return nil, err
			}
			variants = append(variants, model.ClassRef(name))
		}
	}
	if !g.conf.AlwaysResolveInterfaces {
		variants = append(variants, model.ClassRef(motherName))
	}
	if len(variants) == 0 {
		return nil, g.errorf(ErrUnresolvableSelection, node.Position,
			"selection %s on interface %s has no fragments to resolve it to a concrete type", base, t.Name)
	}
	return g.collapse(variants, nullable), nil
}

func (g *Generator) resolveUnion(node *language.Field, prefix string, t *schema.Type, nullable bool) (model.Expr, error) {
	leave, err := g.descend(node.Position)
	if err != nil {
		return nil, err
	}
	defer leave()

	base := prefix + registry.TitleCase(language.ResponseKey(node))
	var variants []model.Expr
	seen := make(map[string]bool)
	add := func(e model.Expr) {
		if !seen[e.String()] {
			seen[e.String()] = true
			variants = append(variants, e)
		}
	}
	for _, sel := range collectSelections(node.SelectionSet) {
		switch sel := sel.(type) {
		case *language.Field:
			if sel.Name != language.TypenameField {
				return nil, g.errorf(ErrUnknownField, sel.Position, "union %s has no field %s", t.Name, sel.Name)
			}
		case *language.FragmentSpread:
			ref, err := g.reg.ReferenceFragment(sel.Name, prefix)
			if err != nil {
				return nil, g.wrap(err, sel.Position)
			}
			if err := g.spreadDepth(sel.Name, sel.Position); err != nil {
				return nil, err
			}
			if u, ok := ref.(model.Union); ok {
				for _, alt := range u.Of {
					add(alt)
				}
				continue
			}
			add(ref)
		case *language.InlineFragment:
			name, err := g.inlineVariant(sel, base, t, nil, g.conf.ObjectBases)
			if err != nil {
				return nil, err
			}
			add(model.ClassRef(name))
		}
	}
	if len(variants) == 0 {
		return nil, g.errorf(ErrUnresolvableSelection, node.Position,
			"selection %s on union %s has no fragments to resolve it to a concrete type", base, t.Name)
	}
	return g.collapse(variants, nullable), nil
}

// inlineVariant generates the class for an inline fragment under an
// abstract selection. parents are inherited after the bases contributed by
// spreads inside the fragment; defaults come last.
func (g *Generator) inlineVariant(frag *language.InlineFragment, base string, owner *schema.Type, parents, defaults []string) (string, error) {
	cond := owner
	if frag.TypeCondition != "" {
		cond = g.schema.Types[frag.TypeCondition]
		if cond == nil {
			return "", g.errorf(ErrUnknownField, frag.Position, "unknown type condition %s", frag.TypeCondition)
		}
	}
	name := g.reg.ClaimName(base + registry.TitleCase(cond.Name) + "InlineFragment")
	b := g.newBody()
	g.addField(b, g.discriminator(cond), language.TypenameField)
	if err := g.fill(b, cond, name, collectSelections(frag.SelectionSet)); err != nil {
		return "", err
	}
	cls := &model.Class{
		Name:        name,
		Doc:         cond.Description,
		Fields:      b.fields,
		GraphQLType: cond.Name,
		Bases:       g.bases(cond.Name, append(b.inherited, parents...), defaults),
	}
	if err := g.appendClass(cls, frag.Position); err != nil {
		return "", err
	}
	return name, nil
}

func (g *Generator) referenceFragment(spread *language.FragmentSpread, prefix string, nullable bool) (model.Expr, error) {
	ref, err := g.reg.ReferenceFragment(spread.Name, prefix)
	if err != nil {
		return nil, g.wrap(err, spread.Position)
	}
	if err := g.spreadDepth(spread.Name, spread.Position); err != nil {
		return nil, err
	}
	return g.optional(ref, nullable), nil
}

// interfaceBases lists the bases of an interface base class: the configured
// interface bases, then the extra bases for the type.
func (g *Generator) interfaceBases(typeName string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range [][]string{g.conf.Interfaces(), g.conf.Additional(typeName)} {
		for _, b := range list {
			name := g.reg.BaseName(b)
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// discriminator is the typename field restricted to the concrete types a
// value of t can have.
func (g *Generator) discriminator(t *schema.Type) *model.Field {
	values := []string{t.Name}
	if t.IsAbstract() {
		values = append([]string(nil), t.PossibleTypes...)
		sort.Strings(values)
	}
	g.reg.RegisterImport("typing.Literal")
	return g.typenameField(model.Literal{Values: values})
}

func (g *Generator) typenameField(of model.Expr) *model.Field {
	g.reg.RegisterImport("typing.Optional")
	g.reg.RegisterImport("pydantic.Field")
	return &model.Field{
		Name:  "typename",
		Type:  model.Optional{Of: of},
		Alias: language.TypenameField,
	}
}

// body accumulates the members of a class under construction.
type body struct {
	fields    []*model.Field
	used      map[string]bool
	inherited []string
}

func (g *Generator) newBody() *body {
	return &body{used: make(map[string]bool)}
}

// addField appends f, renaming it with a numeric suffix when another field
// of the class already took its name. target is the response key.
func (g *Generator) addField(b *body, f *model.Field, target string) {
	name := f.Name
	for n := 2; b.used[name]; n++ {
		name = f.Name + strconv.Itoa(n)
	}
	if name != f.Name {
		f.Name = name
		if f.Alias == "" {
			f.Alias = target
			g.reg.RegisterImport("pydantic.Field")
		}
	}
	b.used[name] = true
	b.fields = append(b.fields, f)
}

// fill resolves sels against owner into b. Fields become members, spreads
// become inherited classes. Inline fragments are only valid where the
// caller handles them and are rejected here.
func (g *Generator) fill(b *body, owner *schema.Type, prefix string, sels language.SelectionSet) error {
	for _, sel := range sels {
		switch sel := sel.(type) {
		case *language.Field:
			if sel.Name == language.TypenameField {
				continue
			}
			def := owner.Field(sel.Name)
			if def == nil {
				return g.errorf(ErrUnknownField, sel.Position, "type %s has no field %s", owner.Name, sel.Name)
			}
			f, err := g.ResolveField(sel, prefix, def)
			if err != nil {
				return err
			}
			g.addField(b, f, language.ResponseKey(sel))
		case *language.FragmentSpread:
			cls, err := g.reg.InheritFragment(sel.Name)
			if err != nil {
				return g.wrap(err, sel.Position)
			}
			if err := g.spreadDepth(sel.Name, sel.Position); err != nil {
				return err
			}
			b.inherited = append(b.inherited, cls)
		case *language.InlineFragment:
			return g.errorf(ErrUnsupportedSelection, sel.Position,
				"inline fragment on %s inside %s: inline fragments are only supported directly under interface or union selections",
				sel.TypeCondition, owner.Name)
		}
	}
	return nil
}

// fieldsOf keeps only the field selections of sels.
func fieldsOf(sels language.SelectionSet) language.SelectionSet {
	out := make(language.SelectionSet, 0, len(sels))
	for _, sel := range sels {
		if f, ok := sel.(*language.Field); ok {
			out = append(out, f)
		}
	}
	return out
}
