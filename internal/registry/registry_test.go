package registry_test

import (
	"errors"
	"testing"

	"github.com/hanpama/gqlmodel/internal/model"
	"github.com/hanpama/gqlmodel/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBuilder struct {
	reg   *registry.Registry
	calls map[string]int
	// spreads maps a fragment to the fragment it inherits from while building.
	spreads map[string]string
}

func (b *stubBuilder) BuildFragment(name string) (*registry.Fragment, error) {
	b.calls[name]++
	if dep, ok := b.spreads[name]; ok {
		if _, err := b.reg.InheritFragment(dep); err != nil {
			return nil, err
		}
	}
	cls := b.reg.ClaimName(registry.TitleCase(name))
	return &registry.Fragment{Class: cls, Ref: model.ClassRef(cls)}, nil
}

func newWithBuilder(spreads map[string]string) (*registry.Registry, *stubBuilder) {
	r := registry.New(registry.Options{})
	b := &stubBuilder{reg: r, calls: map[string]int{}, spreads: spreads}
	r.SetFragmentBuilder(b)
	return r, b
}

func TestClaimName(t *testing.T) {
	r := registry.New(registry.Options{})
	assert.Equal(t, "Hero", r.ClaimName("Hero"))
	assert.Equal(t, "Hero2", r.ClaimName("Hero"))
	assert.Equal(t, "Hero3", r.ClaimName("Hero"))
	assert.Equal(t, "Villain", r.ClaimName("Villain"))
}

func TestClaimNameAvoidsEmittedSymbols(t *testing.T) {
	r := registry.New(registry.Options{})
	assert.Equal(t, "Field2", r.ClaimName("Field"))
	assert.Equal(t, "BaseModel2", r.ClaimName("BaseModel"))
}

func TestNormalizeField(t *testing.T) {
	r := registry.New(registry.Options{})
	tests := []struct {
		raw  string
		want string
	}{
		{"name", "name"},
		{"heroName", "heroName"},
		{"__typename", "typename"},
		{"_private", "private"},
		{"1st", "field_1st"},
		{"from", "from_"},
		{"class", "class_"},
		{"schema", "schema_"},
		{"json", "json_"},
		{"___", "field"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, r.NormalizeField(tt.raw))
			// memoized: asking again is stable
			assert.Equal(t, tt.want, r.NormalizeField(tt.raw))
		})
	}
}

func TestImportsSortedAndIdempotent(t *testing.T) {
	r := registry.New(registry.Options{})
	r.RegisterImport("typing.Optional")
	r.RegisterImport("pydantic.Field")
	r.RegisterImport("typing.Optional")
	assert.Equal(t, []string{"pydantic.Field", "typing.Optional"}, r.Imports())
}

func TestInheritFragmentBuildsOnce(t *testing.T) {
	r, b := newWithBuilder(nil)

	cls, err := r.InheritFragment("heroFields")
	require.NoError(t, err)
	assert.Equal(t, "HeroFields", cls)

	again, err := r.InheritFragment("heroFields")
	require.NoError(t, err)
	assert.Equal(t, cls, again)

	ref, err := r.ReferenceFragment("heroFields", "GetHeroHero")
	require.NoError(t, err)
	assert.Equal(t, model.ClassRef("HeroFields"), ref)

	assert.Equal(t, 1, b.calls["heroFields"])
	assert.Equal(t, []string{"heroFields"}, r.Dependencies("GetHeroHero"))
}

func TestFragmentCycle(t *testing.T) {
	r, _ := newWithBuilder(map[string]string{"a": "b", "b": "a"})
	_, err := r.InheritFragment("a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, registry.ErrFragmentCycle))
}

func TestFragmentWithoutBuilder(t *testing.T) {
	r := registry.New(registry.Options{})
	_, err := r.InheritFragment("a")
	assert.ErrorIs(t, err, registry.ErrNoFragmentBuilder)
}

func TestReferenceScalar(t *testing.T) {
	r := registry.New(registry.Options{Scalars: map[string]string{
		"DateTime": "datetime.datetime",
		"Upload":   "bytes",
	}})

	assert.Equal(t, "str", r.ReferenceScalar("String").String())
	assert.Equal(t, "int", r.ReferenceScalar("Int").String())
	assert.Equal(t, "float", r.ReferenceScalar("Float").String())
	assert.Equal(t, "bool", r.ReferenceScalar("Boolean").String())
	assert.Equal(t, "str", r.ReferenceScalar("ID").String())
	assert.Equal(t, "datetime", r.ReferenceScalar("DateTime").String())
	assert.Equal(t, "bytes", r.ReferenceScalar("Upload").String())
	assert.Equal(t, "Any", r.ReferenceScalar("JSON").String())

	assert.Equal(t, []string{"datetime.datetime", "typing.Any"}, r.Imports())
}

func TestReferenceEnum(t *testing.T) {
	r := registry.New(registry.Options{Enums: map[string]string{
		"Episode":         "app.enums.Episode",
		"GetHeroHero.Era": "app.enums.HeroEra",
	}})

	assert.Equal(t, model.Name{Ref: "Episode", Kind: model.RefExternal}, r.ReferenceEnum("Episode", "GetHero"))
	assert.Equal(t, model.Name{Ref: "HeroEra", Kind: model.RefExternal}, r.ReferenceEnum("Era", "GetHeroHero"))

	got := r.ReferenceEnum("Era", "GetVillain")
	assert.Equal(t, model.Name{Ref: "Era", Kind: model.RefEnum}, got)
	r.ReferenceEnum("Era", "Other")
	r.ReferenceEnum("Color", "Other")

	assert.Equal(t, []string{"Era", "Color"}, r.UsedEnums())
	assert.Equal(t, "Era", r.EnumClass("Era"))
	assert.Contains(t, r.Imports(), "app.enums.Episode")
	assert.Contains(t, r.Imports(), "enum.Enum")
}

func TestReferenceInput(t *testing.T) {
	r := registry.New(registry.Options{})
	r.ClaimName("ReviewInput")
	ref := r.ReferenceInput("ReviewInput")
	assert.Equal(t, model.Name{Ref: "ReviewInput2", Kind: model.RefInput}, ref)
	assert.Equal(t, ref, r.ReferenceInput("ReviewInput"))
	assert.Equal(t, []string{"ReviewInput"}, r.UsedInputs())
}

func TestWarn(t *testing.T) {
	var seen []string
	r := registry.New(registry.Options{OnWarn: func(m string) { seen = append(seen, m) }})
	r.Warn("field Hero.age is deprecated")
	assert.Equal(t, []string{"field Hero.age is deprecated"}, r.Warnings())
	assert.Equal(t, seen, r.Warnings())
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "HeroName", registry.TitleCase("heroName"))
	assert.Equal(t, "", registry.TitleCase(""))
	assert.Equal(t, "hero_name", registry.SnakeCase("HeroName"))
	assert.Equal(t, "get_hero", registry.SnakeCase("getHero"))
}
