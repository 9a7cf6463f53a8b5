package pyrender

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hanpama/gqlmodel/internal/engine"
	"github.com/hanpama/gqlmodel/internal/model"
)

// Header is the first line of every rendered module.
const Header = "# Generated by gqlmodel. DO NOT EDIT."

const indent = "    "

// stdlibModules are grouped before third-party imports.
var stdlibModules = map[string]bool{
	"datetime": true,
	"decimal":  true,
	"enum":     true,
	"typing":   true,
	"uuid":     true,
}

// Render produces a Python module from a generation result.
// Output is deterministic: enums, then inputs, then classes in buffer order.
func Render(res *engine.Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n")
	b.WriteString("from __future__ import annotations\n\n")
	renderImports(&b, imports(res))

	for _, e := range res.Enums {
		b.WriteString("\n\n")
		renderEnum(&b, e)
	}
	for _, c := range res.Inputs {
		b.WriteString("\n\n")
		renderClass(&b, c)
	}
	for _, c := range res.Classes {
		b.WriteString("\n\n")
		renderClass(&b, c)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// imports adds the symbols the renderer itself writes to the ones the
// generator recorded.
func imports(res *engine.Result) []string {
	set := make(map[string]bool, len(res.Imports))
	for _, imp := range res.Imports {
		set[imp] = true
	}
	for _, c := range res.Classes {
		if len(c.Arguments) > 0 {
			set["pydantic.BaseModel"] = true
		}
	}
	out := make([]string, 0, len(set))
	for imp := range set {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

// renderImports writes one `from m import a, b` line per module, standard
// library modules first.
func renderImports(b *strings.Builder, symbols []string) {
	byModule := make(map[string][]string)
	for _, sym := range symbols {
		i := strings.LastIndexByte(sym, '.')
		if i < 0 {
			continue
		}
		mod, name := sym[:i], sym[i+1:]
		byModule[mod] = append(byModule[mod], name)
	}
	var std, other []string
	for mod := range byModule {
		if stdlibModules[strings.SplitN(mod, ".", 2)[0]] {
			std = append(std, mod)
		} else {
			other = append(other, mod)
		}
	}
	sort.Strings(std)
	sort.Strings(other)

	group := func(mods []string) {
		for _, mod := range mods {
			names := byModule[mod]
			sort.Strings(names)
			b.WriteString("from ")
			b.WriteString(mod)
			b.WriteString(" import ")
			b.WriteString(strings.Join(names, ", "))
			b.WriteString("\n")
		}
	}
	group(std)
	if len(std) > 0 && len(other) > 0 {
		b.WriteString("\n")
	}
	group(other)
}

func renderEnum(b *strings.Builder, e *model.Enum) {
	b.WriteString("class ")
	b.WriteString(e.Name)
	b.WriteString("(str, Enum):\n")
	renderDocstring(b, indent, e.Doc)
	if len(e.Values) == 0 {
		b.WriteString(indent + "pass\n")
		return
	}
	for _, v := range e.Values {
		if v.Deprecation != "" {
			b.WriteString(indent + "# DEPRECATED ")
			b.WriteString(singleLine(v.Deprecation))
			b.WriteString("\n")
		}
		b.WriteString(indent)
		b.WriteString(v.Name)
		b.WriteString(" = ")
		b.WriteString(strconv.Quote(v.Value))
		b.WriteString("\n")
		if v.Doc != "" {
			b.WriteString(indent)
			b.WriteString(strconv.Quote(v.Doc))
			b.WriteString("\n")
		}
	}
}

func renderClass(b *strings.Builder, c *model.Class) {
	b.WriteString("class ")
	b.WriteString(c.Name)
	if len(c.Bases) > 0 {
		b.WriteString("(")
		b.WriteString(strings.Join(c.Bases, ", "))
		b.WriteString(")")
	}
	b.WriteString(":\n")

	body := false
	if c.Doc != "" {
		renderDocstring(b, indent, c.Doc)
		body = true
	}
	if c.Frozen {
		b.WriteString(indent + "model_config = ConfigDict(frozen=True)\n")
		body = true
	}
	if len(c.Fields) > 0 && body {
		b.WriteString("\n")
	}
	for _, f := range c.Fields {
		renderField(b, indent, f)
		body = true
	}

	if c.Operation != "" {
		if body {
			b.WriteString("\n")
		}
		b.WriteString(indent + "class Arguments(BaseModel):\n")
		if len(c.Arguments) == 0 {
			b.WriteString(indent + indent + "pass\n")
		}
		for _, f := range c.Arguments {
			renderField(b, indent+indent, f)
		}
		b.WriteString("\n")
		b.WriteString(indent + "class Meta:\n")
		b.WriteString(indent + indent + "document = ")
		b.WriteString(strconv.Quote(c.Document))
		b.WriteString("\n")
		body = true
	}

	if !body {
		b.WriteString(indent + "pass\n")
	}
}

func renderField(b *strings.Builder, prefix string, f *model.Field) {
	b.WriteString(prefix)
	b.WriteString(f.Name)
	b.WriteString(": ")
	b.WriteString(f.Type.String())
	optional := model.IsOptional(f.Type)
	switch {
	case f.Alias != "" && optional:
		b.WriteString(" = Field(default=None, alias=")
		b.WriteString(strconv.Quote(f.Alias))
		b.WriteString(")")
	case f.Alias != "":
		b.WriteString(" = Field(alias=")
		b.WriteString(strconv.Quote(f.Alias))
		b.WriteString(")")
	case optional:
		b.WriteString(" = None")
	}
	b.WriteString("\n")
	if f.Doc != "" {
		b.WriteString(prefix)
		b.WriteString(strconv.Quote(f.Doc))
		b.WriteString("\n")
	}
}

func renderDocstring(b *strings.Builder, prefix, doc string) {
	if doc == "" {
		return
	}
	escaped := strings.ReplaceAll(doc, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	b.WriteString(prefix)
	b.WriteString(`"""`)
	if strings.Contains(escaped, "\n") {
		lines := strings.Split(escaped, "\n")
		b.WriteString(lines[0])
		b.WriteString("\n")
		for _, line := range lines[1:] {
			if line != "" {
				b.WriteString(prefix)
				b.WriteString(line)
			}
			b.WriteString("\n")
		}
		b.WriteString(prefix)
	} else {
		b.WriteString(escaped)
	}
	b.WriteString(`"""`)
	b.WriteString("\n")
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
