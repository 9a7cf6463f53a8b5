package model

import (
	"strconv"
	"strings"
)

// Expr is a type annotation. It is a closed sum; every implementation is
// declared in this file and values are immutable once built.
type Expr interface {
	expr()
	// String renders the annotation in Python typing syntax.
	String() string
}

// RefKind tells emitters what a Name points at.
type RefKind int

const (
	RefClass RefKind = iota
	RefScalar
	RefEnum
	RefInput
	RefExternal
)

func (k RefKind) String() string {
	switch k {
	case RefClass:
		return "class"
	case RefScalar:
		return "scalar"
	case RefEnum:
		return "enum"
	case RefInput:
		return "input"
	case RefExternal:
		return "external"
	default:
		return "unknown"
	}
}

type (
	// Name references a class, scalar, enum or externally provided symbol.
	Name struct {
		Ref  string
		Kind RefKind
	}
	Optional struct{ Of Expr }
	// Union lists alternatives in first-seen order.
	Union struct{ Of []Expr }
	List  struct{ Of Expr }
	// Tuple is the frozen list variant, Tuple[X, ...].
	Tuple struct{ Of Expr }
	// Literal restricts a string to a fixed set of values.
	Literal struct{ Values []string }
)

func (Name) expr()     {}
func (Optional) expr() {}
func (Union) expr()    {}
func (List) expr()     {}
func (Tuple) expr()    {}
func (Literal) expr()  {}

func (e Name) String() string     { return e.Ref }
func (e Optional) String() string { return "Optional[" + e.Of.String() + "]" }
func (e List) String() string     { return "List[" + e.Of.String() + "]" }
func (e Tuple) String() string    { return "Tuple[" + e.Of.String() + ", ...]" }

func (e Union) String() string {
	parts := make([]string, len(e.Of))
	for i, alt := range e.Of {
		parts[i] = alt.String()
	}
	return "Union[" + strings.Join(parts, ", ") + "]"
}

func (e Literal) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = strconv.Quote(v)
	}
	return "Literal[" + strings.Join(parts, ", ") + "]"
}

// ClassRef returns a reference to a generated class.
func ClassRef(name string) Name { return Name{Ref: name, Kind: RefClass} }

// Nullable wraps e in Optional when nullable is set.
func Nullable(e Expr, nullable bool) Expr {
	if nullable {
		return Optional{Of: e}
	}
	return e
}

// IsOptional reports whether e is Optional at its outermost layer.
func IsOptional(e Expr) bool {
	_, ok := e.(Optional)
	return ok
}

// Sequence builds the list annotation for one run. The choice between List
// and Tuple is made once, when the builder is created.
type Sequence int

const (
	SequenceList Sequence = iota
	SequenceTuple
)

// NewSequence picks the sequence builder for the freeze policy.
func NewSequence(frozen bool) Sequence {
	if frozen {
		return SequenceTuple
	}
	return SequenceList
}

// Wrap builds a sequence of inner.
func (s Sequence) Wrap(inner Expr) Expr {
	if s == SequenceTuple {
		return Tuple{Of: inner}
	}
	return List{Of: inner}
}

// Import is the typing symbol the sequence annotation needs.
func (s Sequence) Import() string {
	if s == SequenceTuple {
		return "typing.Tuple"
	}
	return "typing.List"
}
