package document

import "github.com/hanpama/gqlmodel/internal/language"

// Unit is the set of operations and fragments one generation run covers.
type Unit struct {
	Name       string
	Operations language.OperationList
	// Fragments are the fragments defined by this unit; each is generated
	// even when nothing spreads it.
	Fragments language.FragmentDefinitionList
	// Definitions holds every fragment a spread in this unit may name.
	Definitions language.FragmentDefinitionList
}

// Fragment looks up a fragment definition by name.
func (u *Unit) Fragment(name string) *language.FragmentDefinition {
	return u.Definitions.ForName(name)
}
