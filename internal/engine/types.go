package engine

import (
	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/schema"
)

// inputClasses generates the input object types referenced during the run.
// Generating one may reference more, so the list is walked until it stops
// growing. Classes are ordered so dependencies precede their users.
func (g *Generator) inputClasses() ([]*model.Class, error) {
	byName := make(map[string]*model.Class)
	deps := make(map[string][]string)
	for i := 0; i < len(g.reg.UsedInputs()); i++ {
		name := g.reg.UsedInputs()[i]
		t := g.schema.Types[name]
		if t == nil {
			return nil, g.errorf(ErrUnknownField, nil, "unknown input type %s", name)
		}
		cls := &model.Class{
			Name:        g.reg.InputClass(name),
			Doc:         t.Description,
			GraphQLType: name,
			Bases:       g.bases(name, nil, g.conf.ObjectBases),
			Frozen:      g.conf.Freeze.Enabled,
		}
		b := g.newBody()
		for _, iv := range t.InputFields {
			f := &model.Field{Name: g.reg.NormalizeField(iv.Name), Doc: iv.Description}
			if f.Name != iv.Name {
				f.Alias = iv.Name
				g.reg.RegisterImport("pydantic.Field")
			}
			typ, err := g.inputAnnotation(iv.Type, cls.Name, true)
			if err != nil {
				return nil, err
			}
			f.Type = typ
			if iv.IsDeprecated {
				g.reg.Warn("input field " + iv.Name + " on " + name + " is deprecated: " + iv.DeprecationReason)
				f.Doc = deprecationDoc(iv.DeprecationReason, iv.Description)
			}
			g.addField(b, f, iv.Name)

			if dep := g.schema.Types[iv.Type.GetNamedType()]; dep != nil && dep.Kind == schema.TypeKindInputObject {
				deps[name] = append(deps[name], dep.Name)
			}
		}
		cls.Fields = b.fields
		byName[name] = cls
	}
	if len(byName) > 0 && g.conf.Freeze.Enabled {
		g.reg.RegisterImport("pydantic.ConfigDict")
	}

	ordered := make([]*model.Class, 0, len(byName))
	visited := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, dep := range deps[name] {
			visit(dep)
		}
		ordered = append(ordered, byName[name])
	}
	for _, name := range g.reg.UsedInputs() {
		visit(name)
	}
	return ordered, nil
}

// enums generates the schema enums referenced without a custom mapping.
func (g *Generator) enums() []*model.Enum {
	var out []*model.Enum
	for _, name := range g.reg.UsedEnums() {
		t := g.schema.Types[name]
		if t == nil {
			continue
		}
		e := &model.Enum{Name: g.reg.EnumClass(name), Doc: t.Description}
		for _, v := range t.EnumValues {
			ev := &model.EnumValue{
				Name:  g.reg.NormalizeField(v.Name),
				Value: v.Name,
				Doc:   v.Description,
			}
			if v.IsDeprecated {
				ev.Deprecation = v.DeprecationReason
			}
			e.Values = append(e.Values, ev)
		}
		out = append(out, e)
	}
	return out
}

func deprecationDoc(reason, description string) string {
	doc := "DEPRECATED " + reason
	if description != "" {
		doc += ": " + description
	}
	return doc
}
