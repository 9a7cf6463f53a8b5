package engine

import (
	"github.com/hanpama/gqlmodel/internal/config"
	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/hanpama/gqlmodel/internal/schema"
)

// Generator is the context of a single generation run. It owns its registry
// and output buffer and is not safe for concurrent use.
type Generator struct {
	schema *schema.Schema
	conf   config.Generator
	reg    *registry.Registry
	buf    *model.Buffer
	seq    model.Sequence

	fragments map[string]*language.FragmentDefinition

	// scope names the operation or fragment being generated, for errors.
	scope string
	depth int
	// peak is the deepest nesting reached in the current scope.
	peak int
}

// Option customizes a Generator.
type Option func(*options)

type options struct {
	onWarn func(string)
}

// WithWarningHandler observes every warning as it is raised.
func WithWarningHandler(fn func(message string)) Option {
	return func(o *options) { o.onWarn = fn }
}

// New creates the context for one run over s.
func New(s *schema.Schema, conf config.Generator, opts ...Option) *Generator {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	g := &Generator{
		schema: s,
		conf:   conf,
		reg: registry.New(registry.Options{
			Scalars: conf.ScalarDefinitions,
			Enums:   conf.EnumDefinitions,
			OnWarn:  o.onWarn,
		}),
		buf:       model.NewBuffer(),
		seq:       model.NewSequence(conf.Freeze.Enabled),
		fragments: make(map[string]*language.FragmentDefinition),
	}
	g.reg.SetFragmentBuilder(g)
	return g
}

// Registry exposes the run's registry.
func (g *Generator) Registry() *registry.Registry { return g.reg }

// Buffer exposes the run's output buffer.
func (g *Generator) Buffer() *model.Buffer { return g.buf }

// AddFragments makes fragment definitions available to spreads.
func (g *Generator) AddFragments(defs language.FragmentDefinitionList) {
	for _, def := range defs {
		g.fragments[def.Name] = def
	}
}

// Result is the output of a completed run.
type Result struct {
	Unit     string         `json:"unit"`
	Classes  []*model.Class `json:"classes"`
	Enums    []*model.Enum  `json:"enums,omitempty"`
	Inputs   []*model.Class `json:"inputs,omitempty"`
	Imports  []string       `json:"imports"`
	Warnings []string       `json:"warnings,omitempty"`
	// Operations maps operation names to their root classes.
	Operations map[string]string `json:"operations,omitempty"`
	// Fragments maps fragment names to the classes spreads inherit from.
	Fragments map[string]string `json:"fragments,omitempty"`
}

// Generate runs the generator over a unit. Fragments defined by the unit
// come first so they keep their plain names; operations follow, then the
// input types and enums they reference.
func (g *Generator) Generate(unit *document.Unit) (*Result, error) {
	g.AddFragments(unit.Definitions)
	g.AddFragments(unit.Fragments)

	res := &Result{
		Unit:       unit.Name,
		Operations: make(map[string]string),
		Fragments:  make(map[string]string),
	}
	for _, def := range unit.Fragments {
		cls, err := g.reg.InheritFragment(def.Name)
		if err != nil {
			return nil, g.wrap(err, def.Position)
		}
		res.Fragments[def.Name] = cls
	}
	for _, op := range unit.Operations {
		cls, err := g.Operation(op)
		if err != nil {
			return nil, err
		}
		res.Operations[op.Name] = cls.Name
	}
	for name := range g.fragments {
		if f, ok := g.reg.Fragment(name); ok {
			res.Fragments[name] = f.Class
		}
	}

	inputs, err := g.inputClasses()
	if err != nil {
		return nil, err
	}
	res.Inputs = inputs
	res.Enums = g.enums()
	res.Classes = g.buf.Classes()
	res.Imports = g.reg.Imports()
	res.Warnings = g.reg.Warnings()
	return res, nil
}

// optional wraps e when nullable and records the import it needs.
func (g *Generator) optional(e model.Expr, nullable bool) model.Expr {
	if nullable {
		g.reg.RegisterImport("typing.Optional")
	}
	return model.Nullable(e, nullable)
}

// collapse turns resolved variants into a single annotation: the variant
// itself when there is one, their union otherwise.
func (g *Generator) collapse(variants []model.Expr, nullable bool) model.Expr {
	if len(variants) == 1 {
		return g.optional(variants[0], nullable)
	}
	g.reg.RegisterImport("typing.Union")
	return g.optional(model.Union{Of: variants}, nullable)
}

// bases assembles the base list of a class: the extra bases configured for
// typeName, then inherited classes, then the trailing defaults. Duplicates
// keep their first position.
func (g *Generator) bases(typeName string, inherited []string, defaults []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, b := range g.conf.Additional(typeName) {
		add(g.reg.BaseName(b))
	}
	for _, b := range inherited {
		add(b)
	}
	for _, b := range defaults {
		add(g.reg.BaseName(b))
	}
	return out
}

func (g *Generator) appendClass(cls *model.Class, pos *language.Position) error {
	cls.Frozen = g.conf.Freeze.Enabled
	if cls.Frozen {
		g.reg.RegisterImport("pydantic.ConfigDict")
	}
	if err := g.buf.Append(cls); err != nil {
		return g.errorf(ErrNameCollision, pos, "%v", err)
	}
	return nil
}

// descend enters one level of selection nesting. The returned func leaves it.
func (g *Generator) descend(pos *language.Position) (func(), error) {
	g.depth++
	leave := func() { g.depth-- }
	if err := g.reach(g.depth, pos); err != nil {
		leave()
		return nil, err
	}
	return leave, nil
}

// reach records that selections nest depth levels deep at pos.
func (g *Generator) reach(depth int, pos *language.Position) error {
	if depth > g.peak {
		g.peak = depth
	}
	if g.conf.MaxDepth > 0 && depth > g.conf.MaxDepth {
		return g.errorf(ErrDepthExceeded, pos, "selection nesting exceeds %d levels", g.conf.MaxDepth)
	}
	return nil
}

// spreadDepth applies the depth guard to the selections a fragment spread
// pulls in at the current level.
func (g *Generator) spreadDepth(name string, pos *language.Position) error {
	f, ok := g.reg.Fragment(name)
	if !ok {
		return nil
	}
	return g.reach(g.depth+f.Depth, pos)
}
