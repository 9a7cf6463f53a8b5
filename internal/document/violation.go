package document

import (
	"errors"
	"fmt"

	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type Violation struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		line := "- " + v.Message
		if v.File != "" {
			line += fmt.Sprintf(" %s:%d:%d", v.File, v.Line, v.Column)
		}
		msg += line + "\n"
	}
	return msg
}

func violationWithPosition(message string, pos *language.Position) *Violation {
	v := &Violation{Message: message}
	if pos != nil {
		v.Line, v.Column = pos.Line, pos.Column
		if pos.Src != nil {
			v.File = pos.Src.Name
		}
	}
	return v
}

// violationFromError converts a gqlparser error into a violation. file is
// used when the error does not name one.
func violationFromError(err error, file string) *Violation {
	var gqlErr *gqlerror.Error
	if !errors.As(err, &gqlErr) {
		return &Violation{Message: err.Error(), File: file}
	}
	v := &Violation{Message: gqlErr.Message, File: file}
	if f, ok := gqlErr.Extensions["file"].(string); ok && f != "" {
		v.File = f
	}
	if len(gqlErr.Locations) > 0 {
		v.Line = gqlErr.Locations[0].Line
		v.Column = gqlErr.Locations[0].Column
	}
	return v
}

func violationAnonymousOperation(pos *language.Position) *Violation {
	return violationWithPosition("Anonymous operations cannot be generated; give the operation a name", pos)
}

func violationNoDocuments() *Violation {
	return &Violation{Message: "No GraphQL documents found"}
}
