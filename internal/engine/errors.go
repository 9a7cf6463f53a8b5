package engine

import (
	"errors"
	"fmt"

	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/registry"
)

var (
	ErrUnsupportedSelection  = errors.New("unsupported selection")
	ErrUnresolvableSelection = errors.New("unresolvable selection")
	ErrNameCollision         = errors.New("name collision")
	ErrDepthExceeded         = errors.New("selection depth exceeded")
	ErrUnknownField          = errors.New("unknown field")
	ErrUnknownFragment       = errors.New("unknown fragment")
	ErrAnonymousOperation    = errors.New("anonymous operation")

	// ErrFragmentCycle is reported by the registry when a fragment spreads itself.
	ErrFragmentCycle = registry.ErrFragmentCycle
)

// Error is a fatal generation error tied to the operation or fragment being
// generated and, when known, a document position.
type Error struct {
	Scope   string `json:"scope,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Scope != "" {
		msg = e.Scope + ": " + msg
	}
	if e.File != "" {
		msg += fmt.Sprintf(" (%s:%d:%d)", e.File, e.Line, e.Column)
	} else if e.Line > 0 {
		msg += fmt.Sprintf(" (%d:%d)", e.Line, e.Column)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (g *Generator) errorf(kind error, pos *language.Position, format string, args ...any) error {
	err := &Error{
		Scope:   g.scope,
		Message: fmt.Sprintf(format, args...),
		Err:     kind,
	}
	if pos != nil {
		err.Line = pos.Line
		err.Column = pos.Column
		if pos.Src != nil {
			err.File = pos.Src.Name
		}
	}
	return err
}

// wrap attaches position context to errors coming from the registry or from
// nested fragment generation. Errors that already carry context pass through.
func (g *Generator) wrap(err error, pos *language.Position) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return g.errorf(err, pos, "%v", err)
}
