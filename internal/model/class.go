package model

import "fmt"

// Class is one generated data-model class.
type Class struct {
	Name        string   `json:"name"`
	Bases       []string `json:"bases"`
	Doc         string   `json:"doc,omitempty"`
	Fields      []*Field `json:"fields"`
	GraphQLType string   `json:"graphqlType,omitempty"`
	Frozen      bool     `json:"frozen,omitempty"`

	// Set on operation root classes only.
	Operation string   `json:"operation,omitempty"`
	Arguments []*Field `json:"arguments,omitempty"`
	Document  string   `json:"document,omitempty"`
}

// Field is a typed attribute of a Class.
type Field struct {
	Name  string `json:"name"`
	Type  Expr   `json:"-"`
	Alias string `json:"alias,omitempty"`
	Doc   string `json:"doc,omitempty"`
}

// MarshalJSON is implemented on the field so the annotation prints as text.
func (f *Field) MarshalJSON() ([]byte, error) {
	type plain Field
	return marshalWithType((*plain)(f), f.Type)
}

// Enum is a generated enumeration.
type Enum struct {
	Name   string       `json:"name"`
	Doc    string       `json:"doc,omitempty"`
	Values []*EnumValue `json:"values"`
}

// EnumValue is a member of an Enum. Name is the member identifier and Value
// the GraphQL value it stands for.
type EnumValue struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Doc         string `json:"doc,omitempty"`
	Deprecation string `json:"deprecation,omitempty"`
}

// Buffer is the ordered output of a generation run.
type Buffer struct {
	classes []*Class
	index   map[string]int
}

func NewBuffer() *Buffer {
	return &Buffer{index: make(map[string]int)}
}

// Append adds c to the end of the buffer. A class whose name is already
// present is rejected; the earlier class is never overwritten.
func (b *Buffer) Append(c *Class) error {
	if _, ok := b.index[c.Name]; ok {
		return fmt.Errorf("class %q already generated", c.Name)
	}
	b.index[c.Name] = len(b.classes)
	b.classes = append(b.classes, c)
	return nil
}

// Get returns the class called name, or nil.
func (b *Buffer) Get(name string) *Class {
	if i, ok := b.index[name]; ok {
		return b.classes[i]
	}
	return nil
}

// Classes returns the classes in append order.
func (b *Buffer) Classes() []*Class { return b.classes }

func (b *Buffer) Len() int { return len(b.classes) }
