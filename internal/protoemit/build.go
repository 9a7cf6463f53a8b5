// Package protoemit emits the class tree of a generation run as a proto3
// file, one message per generated class.
package protoemit

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/engine"
	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/jhump/protoreflect/v2/protobuilder"
	"google.golang.org/protobuf/reflect/protoreflect"
)

var (
	// ErrNestedList is returned for list-of-list annotations, which have no
	// proto3 encoding without a wrapper message.
	ErrNestedList = errors.New("nested lists cannot be emitted")
	// ErrUnknownClass is returned when an annotation names a class that is
	// not part of the result.
	ErrUnknownClass = errors.New("unknown class")
)

// scalarKinds maps the Python builtins used for GraphQL scalars. Anything
// else is carried as a string.
var scalarKinds = map[string]protoreflect.Kind{
	"str":   protoreflect.StringKind,
	"int":   protoreflect.Int32Kind,
	"float": protoreflect.DoubleKind,
	"bool":  protoreflect.BoolKind,
}

type builder struct {
	file     *protobuilder.FileBuilder
	messages map[string]*protobuilder.MessageBuilder
	enums    map[string]*protobuilder.EnumBuilder
	classes  map[string]*model.Class
	names    map[string]bool
}

// Build converts a generation result into a file descriptor in package pkg.
// The file is named after the result's unit.
func Build(res *engine.Result, pkg string) (protoreflect.FileDescriptor, error) {
	b := &builder{
		file:     protobuilder.NewFile(filePath(res.Unit)),
		messages: make(map[string]*protobuilder.MessageBuilder),
		enums:    make(map[string]*protobuilder.EnumBuilder),
		classes:  make(map[string]*model.Class),
		names:    make(map[string]bool),
	}
	b.file.SetPackageName(protoreflect.FullName(pkg))
	b.file.SetSyntax(protoreflect.Proto3)

	for _, e := range res.Enums {
		b.addEnum(e)
	}
	// Pass 1: declare a message per class so fields can refer to any of them.
	classes := append(append([]*model.Class(nil), res.Inputs...), res.Classes...)
	for _, c := range classes {
		b.classes[c.Name] = c
		b.declare(c.Name, c.Doc)
	}
	// Pass 2: fields, flattened through bases.
	for _, c := range classes {
		fields, err := b.flatten(c, map[string]bool{})
		if err != nil {
			return nil, err
		}
		if err := b.addFields(b.messages[c.Name], fields); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		if c.Operation != "" && len(c.Arguments) > 0 {
			args := b.declare(c.Name+"Arguments", "Variables of "+c.Operation+" "+c.Name)
			if err := b.addFields(args, c.Arguments); err != nil {
				return nil, fmt.Errorf("%s arguments: %w", c.Name, err)
			}
		}
	}
	return b.file.Build()
}

func filePath(unit string) string {
	if unit == "" {
		unit = document.CombinedUnit
	}
	base := path.Base(strings.ReplaceAll(unit, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base)) + ".proto"
}

// claim reserves a message name, suffixing it when already taken.
func (b *builder) claim(name string) string {
	if !b.names[name] {
		b.names[name] = true
		return name
	}
	for n := 2; ; n++ {
		candidate := name + strconv.Itoa(n)
		if !b.names[candidate] {
			b.names[candidate] = true
			return candidate
		}
	}
}

func (b *builder) declare(name, doc string) *protobuilder.MessageBuilder {
	name = b.claim(name)
	mb := protobuilder.NewMessage(protoreflect.Name(name))
	mb.SetComments(comment(doc))
	b.messages[name] = mb
	b.file.AddMessage(mb)
	return mb
}

func (b *builder) addEnum(e *model.Enum) {
	b.names[e.Name] = true
	eb := protobuilder.NewEnum(protoreflect.Name(e.Name))
	eb.SetComments(comment(e.Doc))
	prefix := strings.ToUpper(registry.SnakeCase(e.Name))

	zero := protobuilder.NewEnumValue(protoreflect.Name(prefix + "_UNSPECIFIED"))
	zero.SetNumber(0)
	eb.AddValue(zero)

	values := make([]*protobuilder.EnumValueBuilder, 0, len(e.Values))
	for _, v := range e.Values {
		name := strings.ToUpper(v.Value)
		if name == "UNSPECIFIED" {
			continue
		}
		evb := protobuilder.NewEnumValue(protoreflect.Name(prefix + "_" + name))
		doc := v.Doc
		if v.Deprecation != "" {
			doc = strings.TrimSpace("DEPRECATED " + v.Deprecation + "\n" + v.Doc)
		}
		evb.SetComments(comment(doc))
		eb.AddValue(evb)
		values = append(values, evb)
	}
	allocateEnumValueNumbers(values)

	b.enums[e.Name] = eb
	b.file.AddEnum(eb)
}

// flatten returns the fields of c after those of its generated bases. A
// field redeclared lower in the hierarchy replaces the inherited one in place.
func (b *builder) flatten(c *model.Class, visiting map[string]bool) ([]*model.Field, error) {
	if visiting[c.Name] {
		return nil, fmt.Errorf("class %s inherits from itself", c.Name)
	}
	visiting[c.Name] = true
	defer delete(visiting, c.Name)

	var out []*model.Field
	index := make(map[string]int)
	add := func(f *model.Field) {
		if i, ok := index[f.Name]; ok {
			out[i] = f
			return
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	for _, base := range c.Bases {
		parent, ok := b.classes[base]
		if !ok {
			continue
		}
		inherited, err := b.flatten(parent, visiting)
		if err != nil {
			return nil, err
		}
		for _, f := range inherited {
			add(f)
		}
	}
	for _, f := range c.Fields {
		add(f)
	}
	return out, nil
}

func (b *builder) addFields(mb *protobuilder.MessageBuilder, fields []*model.Field) error {
	used := make(map[string]bool, len(fields))
	builders := make([]*protobuilder.FieldBuilder, 0, len(fields))
	for _, f := range fields {
		rt, err := b.resolve(mb, f, f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		name := fieldName(f.Name, used)
		fb := protobuilder.NewField(protoreflect.Name(name), rt.fieldType)
		fb.SetComments(comment(f.Doc))
		if rt.isOptional && !rt.isMessage {
			fb.SetProto3Optional(true)
		}
		if rt.isRepeated {
			fb.SetRepeated()
		}
		mb.AddField(fb)
		builders = append(builders, fb)
	}
	allocateFieldNumbers(builders)
	return nil
}

func fieldName(name string, used map[string]bool) string {
	out := registry.SnakeCase(strings.TrimSuffix(name, "_"))
	if out == "" {
		out = "field"
	}
	candidate := out
	for n := 2; used[candidate]; n++ {
		candidate = out + "_" + strconv.Itoa(n)
	}
	used[candidate] = true
	return candidate
}

type resolvedType struct {
	isRepeated bool
	isOptional bool
	isMessage  bool // message fields have presence without the optional keyword
	fieldType  *protobuilder.FieldType
}

// resolve maps an annotation to a proto field type. Optional becomes proto3
// optional; List and Tuple become repeated.
func (b *builder) resolve(owner *protobuilder.MessageBuilder, f *model.Field, e model.Expr) (resolvedType, error) {
	switch e := e.(type) {
	case model.Optional:
		inner, err := b.resolve(owner, f, e.Of)
		if err != nil {
			return resolvedType{}, err
		}
		if !inner.isRepeated {
			inner.isOptional = true
		}
		return inner, nil
	case model.List:
		return b.repeated(owner, f, e.Of)
	case model.Tuple:
		return b.repeated(owner, f, e.Of)
	case model.Union:
		mb, err := b.union(owner, f, e)
		if err != nil {
			return resolvedType{}, err
		}
		return resolvedType{isMessage: true, fieldType: protobuilder.FieldTypeMessage(mb)}, nil
	case model.Literal:
		return resolvedType{fieldType: protobuilder.FieldTypeScalar(protoreflect.StringKind)}, nil
	case model.Name:
		ft, err := b.named(e)
		if err != nil {
			return resolvedType{}, err
		}
		_, isMessage := b.messages[e.Ref]
		isMessage = isMessage && (e.Kind == model.RefClass || e.Kind == model.RefInput)
		return resolvedType{isMessage: isMessage, fieldType: ft}, nil
	default:
		return resolvedType{}, fmt.Errorf("unsupported annotation %T", e)
	}
}

func (b *builder) repeated(owner *protobuilder.MessageBuilder, f *model.Field, of model.Expr) (resolvedType, error) {
	elem, err := b.resolve(owner, f, of)
	if err != nil {
		return resolvedType{}, err
	}
	if elem.isRepeated {
		return resolvedType{}, fmt.Errorf("%w: %s", ErrNestedList, f.Type)
	}
	return resolvedType{isRepeated: true, isMessage: elem.isMessage, fieldType: elem.fieldType}, nil
}

func (b *builder) named(n model.Name) (*protobuilder.FieldType, error) {
	switch n.Kind {
	case model.RefClass, model.RefInput:
		mb, ok := b.messages[n.Ref]
		if !ok {
			return nil, fmt.Errorf("%w %s", ErrUnknownClass, n.Ref)
		}
		return protobuilder.FieldTypeMessage(mb), nil
	case model.RefEnum:
		if eb, ok := b.enums[n.Ref]; ok {
			return protobuilder.FieldTypeEnum(eb), nil
		}
	case model.RefScalar:
		if kind, ok := scalarKinds[n.Ref]; ok {
			return protobuilder.FieldTypeScalar(kind), nil
		}
	}
	return protobuilder.FieldTypeScalar(protoreflect.StringKind), nil
}

// union declares a wrapper message holding one alternative in a oneof.
func (b *builder) union(owner *protobuilder.MessageBuilder, f *model.Field, u model.Union) (*protobuilder.MessageBuilder, error) {
	name := string(owner.Name()) + registry.TitleCase(strings.TrimSuffix(f.Name, "_")) + "Union"
	mb := b.declare(name, "")
	oneof := protobuilder.NewOneof(protoreflect.Name("value"))
	mb.AddOneOf(oneof)

	used := make(map[string]bool, len(u.Of))
	choices := make([]*protobuilder.FieldBuilder, 0, len(u.Of))
	for _, alt := range u.Of {
		n, ok := alt.(model.Name)
		if !ok {
			return nil, fmt.Errorf("union alternative %s is not a class", alt)
		}
		ft, err := b.named(n)
		if err != nil {
			return nil, err
		}
		fb := protobuilder.NewField(protoreflect.Name(fieldName(n.Ref, used)), ft)
		oneof.AddChoice(fb)
		choices = append(choices, fb)
	}
	allocateFieldNumbers(choices)
	return mb, nil
}

func comment(desc string) protobuilder.Comments {
	if desc == "" {
		return protobuilder.Comments{}
	}
	lines := strings.Split(desc, "\n")
	for i, line := range lines {
		lines[i] = " " + line
	}
	return protobuilder.Comments{LeadingComment: strings.Join(lines, "\n") + "\n"}
}
