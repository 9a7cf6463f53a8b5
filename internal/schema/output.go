package schema

import "fmt"

// OutputType is the closed set of shapes a selected field's type can take.
// Consumers switch over the concrete types below; adding a variant means
// revisiting every such switch.
type OutputType interface {
	outputType()
	String() string
}

type (
	Object    struct{ *Type }
	Interface struct{ *Type }
	Union     struct{ *Type }
	Enum      struct{ *Type }
	Scalar    struct{ *Type }

	List    struct{ OfType OutputType }
	NonNull struct{ OfType OutputType }
)

func (Object) outputType()    {}
func (Interface) outputType() {}
func (Union) outputType()     {}
func (Enum) outputType()      {}
func (Scalar) outputType()    {}
func (List) outputType()      {}
func (NonNull) outputType()   {}

func (t Object) String() string    { return t.Name }
func (t Interface) String() string { return t.Name }
func (t Union) String() string     { return t.Name }
func (t Enum) String() string      { return t.Name }
func (t Scalar) String() string    { return t.Name }
func (t List) String() string      { return "[" + t.OfType.String() + "]" }
func (t NonNull) String() string   { return t.OfType.String() + "!" }

// WrapNonNull marks t as non-nullable. Wrapping an already non-null type
// returns it unchanged, so a NonNull never contains another NonNull.
func WrapNonNull(t OutputType) OutputType {
	if nn, ok := t.(NonNull); ok {
		return nn
	}
	return NonNull{OfType: t}
}

// WrapList returns a list of t.
func WrapList(t OutputType) OutputType { return List{OfType: t} }

// Resolve converts a type reference into an OutputType, looking named types up in s.
func (s *Schema) Resolve(ref *TypeRef) (OutputType, error) {
	if ref == nil {
		return nil, fmt.Errorf("nil type reference")
	}
	switch ref.Kind {
	case TypeRefKindNonNull:
		inner, err := s.Resolve(ref.OfType)
		if err != nil {
			return nil, err
		}
		return WrapNonNull(inner), nil
	case TypeRefKindList:
		inner, err := s.Resolve(ref.OfType)
		if err != nil {
			return nil, err
		}
		return WrapList(inner), nil
	case TypeRefKindNamed:
		return s.Named(ref.Named)
	default:
		return nil, fmt.Errorf("unknown type reference kind %q", ref.Kind)
	}
}

// Named returns the OutputType for a named type. Input objects are not output types.
func (s *Schema) Named(name string) (OutputType, error) {
	t, ok := s.Types[name]
	if !ok {
		return nil, fmt.Errorf("type %q not found in schema", name)
	}
	switch t.Kind {
	case TypeKindObject:
		return Object{t}, nil
	case TypeKindInterface:
		return Interface{t}, nil
	case TypeKindUnion:
		return Union{t}, nil
	case TypeKindEnum:
		return Enum{t}, nil
	case TypeKindScalar:
		return Scalar{t}, nil
	default:
		return nil, fmt.Errorf("type %q of kind %s is not an output type", name, t.Kind)
	}
}
