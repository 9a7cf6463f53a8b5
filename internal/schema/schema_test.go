package schema_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sdl = `
"Something with an id"
interface Node { id: ID! }
type User implements Node {
  id: ID!
  name: String @deprecated
  nick: String @deprecated(reason: "use name")
  friends: [User!]!
}
type Group implements Node { id: ID! }
union Member = User | Group
enum Role { ADMIN LEGACY @deprecated(reason: "gone") }
input Filter { role: Role, first: Int = 10 }
type Query { node(id: ID!): Node members(filter: Filter): [Member] }
type Mutation { touch: Boolean }
`

func build(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL("schema.graphql", sdl)
	require.NoError(t, err)
	return s
}

func TestBuildFromSDL(t *testing.T) {
	s := build(t)

	assert.Equal(t, "Query", s.QueryType)
	assert.Equal(t, "Mutation", s.MutationType)
	assert.Empty(t, s.SubscriptionType)
	assert.Equal(t, "Query", s.RootType(language.Query).Name)
	assert.Equal(t, "Mutation", s.RootType(language.Mutation).Name)
	assert.Nil(t, s.RootType(language.Subscription))

	node := s.Types["Node"]
	require.NotNil(t, node)
	assert.Equal(t, schema.TypeKindInterface, node.Kind)
	assert.Equal(t, "Something with an id", node.Description)
	possible := append([]string(nil), node.PossibleTypes...)
	sort.Strings(possible)
	assert.Equal(t, []string{"Group", "User"}, possible)
	assert.True(t, node.IsAbstract())

	assert.Equal(t, []string{"User", "Group"}, s.Types["Member"].PossibleTypes)
	assert.False(t, s.Types["User"].IsAbstract())
	assert.Equal(t, []string{"Node"}, s.Types["User"].Interfaces)

	filter := s.Types["Filter"]
	require.Len(t, filter.InputFields, 2)
	assert.Equal(t, "Role", filter.InputFields[0].Type.String())
}

func TestDeprecation(t *testing.T) {
	s := build(t)

	name := s.Field("User", "name")
	require.NotNil(t, name)
	assert.True(t, name.IsDeprecated)
	assert.Equal(t, "No longer supported", name.DeprecationReason)

	nick := s.Field("User", "nick")
	assert.True(t, nick.IsDeprecated)
	assert.Equal(t, "use name", nick.DeprecationReason)

	assert.False(t, s.Field("User", "id").IsDeprecated)
	assert.Nil(t, s.Field("User", "missing"))
	assert.Nil(t, s.Field("Missing", "id"))

	legacy := s.Types["Role"].EnumValues[1]
	assert.Equal(t, "LEGACY", legacy.Name)
	assert.True(t, legacy.IsDeprecated)
	assert.Equal(t, "gone", legacy.DeprecationReason)
}

func TestResolve(t *testing.T) {
	s := build(t)

	friends, err := s.Resolve(s.Field("User", "friends").Type)
	require.NoError(t, err)
	assert.Equal(t, "[User!]!", friends.String())

	nn, ok := friends.(schema.NonNull)
	require.True(t, ok)
	list, ok := nn.OfType.(schema.List)
	require.True(t, ok)
	elem, ok := list.OfType.(schema.NonNull)
	require.True(t, ok)
	_, ok = elem.OfType.(schema.Object)
	assert.True(t, ok)

	for name, want := range map[string]any{
		"Node":   schema.Interface{},
		"Member": schema.Union{},
		"Role":   schema.Enum{},
		"String": schema.Scalar{},
	} {
		got, err := s.Named(name)
		require.NoError(t, err, name)
		assert.IsType(t, want, got, name)
	}
}

func TestResolveErrors(t *testing.T) {
	s := build(t)

	_, err := s.Named("Filter")
	assert.ErrorContains(t, err, "not an output type")
	_, err = s.Named("Nope")
	assert.ErrorContains(t, err, "not found")
	_, err = s.Resolve(nil)
	assert.Error(t, err)
}

func TestWrapNonNullIsIdempotent(t *testing.T) {
	s := build(t)
	user, err := s.Named("User")
	require.NoError(t, err)
	once := schema.WrapNonNull(user)
	assert.Equal(t, once, schema.WrapNonNull(once))
	assert.Equal(t, "[User]", schema.WrapList(user).String())
}

func TestTypeRef(t *testing.T) {
	ref := schema.NonNullRef(schema.ListRef(schema.NonNullRef(schema.NamedRef("ID"))))
	assert.Equal(t, "[ID!]!", ref.String())
	assert.Equal(t, "ID", ref.GetNamedType())
	assert.True(t, ref.IsNonNull())
	assert.Same(t, ref, schema.NonNullRef(ref))

	var missing *schema.TypeRef
	assert.Equal(t, "Unknown", missing.String())
	assert.False(t, missing.IsNonNull())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.graphql")
	ext := filepath.Join(dir, "ext.graphql")
	require.NoError(t, os.WriteFile(base, []byte(`type Query { a: String }`), 0o644))
	require.NoError(t, os.WriteFile(ext, []byte(`extend type Query { b: Int }`), 0o644))

	src, s, err := schema.Load(base, ext)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.NotNil(t, s.Field("Query", "a"))
	assert.NotNil(t, s.Field("Query", "b"))

	_, _, err = schema.Load()
	assert.Error(t, err)
	_, _, err = schema.Load(filepath.Join(dir, "missing.graphql"))
	assert.Error(t, err)
}
