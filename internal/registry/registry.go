package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hanpama/gqlmodel/internal/model"
)

var (
	ErrFragmentCycle     = errors.New("fragment cycle")
	ErrNoFragmentBuilder = errors.New("no fragment builder configured")
)

// Fragment is a materialized fragment: the class spread sites inherit from
// and the expression fields selecting only this fragment are typed with.
type Fragment struct {
	Class string
	Ref   model.Expr
	// Depth is the selection nesting the fragment spans below its spread site.
	Depth int
}

// FragmentBuilder generates the class tree of a fragment on first use.
type FragmentBuilder interface {
	BuildFragment(name string) (*Fragment, error)
}

// Options configures the lookups of a Registry.
type Options struct {
	// Scalars maps GraphQL scalar names to dotted Python symbols.
	Scalars map[string]string
	// Enums maps "Enum" or "Parent.Enum" to dotted Python symbols.
	Enums map[string]string
	// OnWarn, when set, observes every warning.
	OnWarn func(message string)
}

var builtinScalars = map[string]string{
	"String":  "str",
	"Int":     "int",
	"Float":   "float",
	"Boolean": "bool",
	"ID":      "str",
}

// Symbols the emitted module imports by bare name; classes must not shadow them.
var reservedNames = []string{
	"BaseModel", "Field", "ConfigDict", "Enum",
	"Any", "List", "Literal", "Optional", "Tuple", "Union",
}

// Registry is the per-run bookkeeping of a generation run. It is not safe
// for concurrent use; every run owns its own instance.
type Registry struct {
	opts    Options
	builder FragmentBuilder

	claimed    map[string]struct{}
	fieldNames map[string]string
	imports    map[string]struct{}

	fragments map[string]*Fragment
	building  map[string]bool

	enums      map[string]string
	enumOrder  []string
	inputs     map[string]string
	inputOrder []string

	dependencies map[string][]string
	warnings     []string
}

func New(opts Options) *Registry {
	r := &Registry{
		opts:         opts,
		claimed:      make(map[string]struct{}),
		fieldNames:   make(map[string]string),
		imports:      make(map[string]struct{}),
		fragments:    make(map[string]*Fragment),
		building:     make(map[string]bool),
		enums:        make(map[string]string),
		inputs:       make(map[string]string),
		dependencies: make(map[string][]string),
	}
	for _, name := range reservedNames {
		r.claimed[name] = struct{}{}
	}
	return r
}

// SetFragmentBuilder installs the generator that materializes fragments.
func (r *Registry) SetFragmentBuilder(b FragmentBuilder) { r.builder = b }

// ClaimName returns candidate, or candidate followed by the smallest counter
// from 2 up that is still free, and marks the result as taken.
func (r *Registry) ClaimName(candidate string) string {
	name := candidate
	for n := 2; r.isClaimed(name); n++ {
		name = suffixed(candidate, n)
	}
	r.claimed[name] = struct{}{}
	return name
}

func (r *Registry) isClaimed(name string) bool {
	_, ok := r.claimed[name]
	return ok
}

// NormalizeField maps a GraphQL field name or alias to a valid identifier.
func (r *Registry) NormalizeField(raw string) string {
	if name, ok := r.fieldNames[raw]; ok {
		return name
	}
	name := normalizeIdentifier(raw)
	r.fieldNames[raw] = name
	return name
}

// RegisterImport records a dotted symbol the emitted code needs.
func (r *Registry) RegisterImport(symbol string) {
	r.imports[symbol] = struct{}{}
}

// Imports returns the registered symbols, sorted.
func (r *Registry) Imports() []string {
	out := make([]string, 0, len(r.imports))
	for s := range r.imports {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// InheritFragment returns the class to inherit from for a fragment spread,
// generating the fragment on first use.
func (r *Registry) InheritFragment(name string) (string, error) {
	f, err := r.fragment(name)
	if err != nil {
		return "", err
	}
	return f.Class, nil
}

// ReferenceFragment returns the expression for typing a field directly with
// the fragment, recording that parent depends on it.
func (r *Registry) ReferenceFragment(name, parent string) (model.Expr, error) {
	f, err := r.fragment(name)
	if err != nil {
		return nil, err
	}
	r.addDependency(parent, name)
	return f.Ref, nil
}

// Fragment returns a fragment if it has been materialized.
func (r *Registry) Fragment(name string) (*Fragment, bool) {
	f, ok := r.fragments[name]
	return f, ok
}

func (r *Registry) fragment(name string) (*Fragment, error) {
	if f, ok := r.fragments[name]; ok {
		return f, nil
	}
	if r.building[name] {
		return nil, fmt.Errorf("%w: %s spreads itself", ErrFragmentCycle, name)
	}
	if r.builder == nil {
		return nil, ErrNoFragmentBuilder
	}
	r.building[name] = true
	f, err := r.builder.BuildFragment(name)
	delete(r.building, name)
	if err != nil {
		return nil, err
	}
	r.fragments[name] = f
	return f, nil
}

// ReferenceScalar returns the annotation for a scalar. Unknown scalars pass
// through as Any.
func (r *Registry) ReferenceScalar(name string) model.Expr {
	if target, ok := r.opts.Scalars[name]; ok {
		return model.Name{Ref: r.importSymbol(target), Kind: model.RefScalar}
	}
	if builtin, ok := builtinScalars[name]; ok {
		return model.Name{Ref: builtin, Kind: model.RefScalar}
	}
	r.RegisterImport("typing.Any")
	return model.Name{Ref: "Any", Kind: model.RefScalar}
}

// ReferenceEnum returns the annotation for an enum used under parent. A
// mapping for "Parent.Enum" wins over one for "Enum"; without either the
// enum is generated from the schema.
func (r *Registry) ReferenceEnum(name, parent string) model.Expr {
	r.addDependency(parent, name)
	if target, ok := r.opts.Enums[parent+"."+name]; ok {
		return model.Name{Ref: r.importSymbol(target), Kind: model.RefExternal}
	}
	if target, ok := r.opts.Enums[name]; ok {
		return model.Name{Ref: r.importSymbol(target), Kind: model.RefExternal}
	}
	cls, ok := r.enums[name]
	if !ok {
		cls = r.ClaimName(TitleCase(name))
		r.enums[name] = cls
		r.enumOrder = append(r.enumOrder, name)
		r.RegisterImport("enum.Enum")
	}
	return model.Name{Ref: cls, Kind: model.RefEnum}
}

// ReferenceInput returns the annotation for an input object type, which is
// generated from the schema once per run.
func (r *Registry) ReferenceInput(name string) model.Expr {
	cls, ok := r.inputs[name]
	if !ok {
		cls = r.ClaimName(TitleCase(name))
		r.inputs[name] = cls
		r.inputOrder = append(r.inputOrder, name)
	}
	return model.Name{Ref: cls, Kind: model.RefInput}
}

// UsedEnums returns the GraphQL names of generated enums in first-use order.
func (r *Registry) UsedEnums() []string { return r.enumOrder }

// EnumClass returns the class name assigned to a generated enum.
func (r *Registry) EnumClass(name string) string { return r.enums[name] }

// UsedInputs returns the GraphQL names of referenced input types in first-use order.
func (r *Registry) UsedInputs() []string { return r.inputOrder }

// InputClass returns the class name assigned to an input type.
func (r *Registry) InputClass(name string) string { return r.inputs[name] }

// Dependencies returns the fragments and enums referenced under parent.
func (r *Registry) Dependencies(parent string) []string { return r.dependencies[parent] }

func (r *Registry) addDependency(parent, name string) {
	for _, d := range r.dependencies[parent] {
		if d == name {
			return
		}
	}
	r.dependencies[parent] = append(r.dependencies[parent], name)
}

// Warn records a non-fatal diagnostic.
func (r *Registry) Warn(message string) {
	r.warnings = append(r.warnings, message)
	if r.opts.OnWarn != nil {
		r.opts.OnWarn(message)
	}
}

// Warnings returns the diagnostics recorded so far.
func (r *Registry) Warnings() []string { return r.warnings }

// importSymbol registers a dotted symbol and returns the bare name to use.
// Builtins without a module are returned as is.
func (r *Registry) importSymbol(dotted string) string {
	i := strings.LastIndex(dotted, ".")
	if i < 0 {
		return dotted
	}
	r.RegisterImport(dotted)
	return dotted[i+1:]
}

// BaseName registers a dotted base class and returns the name to inherit from.
func (r *Registry) BaseName(dotted string) string { return r.importSymbol(dotted) }
