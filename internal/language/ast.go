package language

import "github.com/vektah/gqlparser/v2/ast"

type (
	Schema                 = ast.Schema
	Source                 = ast.Source
	QueryDocument          = ast.QueryDocument
	OperationDefinition    = ast.OperationDefinition
	OperationList          = ast.OperationList
	VariableDefinition     = ast.VariableDefinition
	SelectionSet           = ast.SelectionSet
	Selection              = ast.Selection
	Field                  = ast.Field
	InlineFragment         = ast.InlineFragment
	FragmentDefinition     = ast.FragmentDefinition
	FragmentDefinitionList = ast.FragmentDefinitionList
	FragmentSpread         = ast.FragmentSpread
	Directive              = ast.Directive
	DirectiveList          = ast.DirectiveList
	FieldDefinition        = ast.FieldDefinition
	EnumValueDefinition    = ast.EnumValueDefinition
	Type                   = ast.Type
	Definition             = ast.Definition
	Position               = ast.Position
)

type DefinitionKind = ast.DefinitionKind

type Operation = ast.Operation

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription

	Object      DefinitionKind = ast.Object
	Interface   DefinitionKind = ast.Interface
	Union       DefinitionKind = ast.Union
	Scalar      DefinitionKind = ast.Scalar
	Enum        DefinitionKind = ast.Enum
	InputObject DefinitionKind = ast.InputObject
)

// TypenameField is the meta field every selection may request.
const TypenameField = "__typename"

// ResponseKey returns the key a field is reported under: its alias, or its name.
func ResponseKey(f *Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}
