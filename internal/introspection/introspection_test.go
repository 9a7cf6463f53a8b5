package introspection_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hanpama/gqlmodel/internal/introspection"
	"github.com/hanpama/gqlmodel/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// equivalentSDL describes the same schema as testdata/schema.json.
const equivalentSDL = `
"Calendar date"
scalar Date
directive @cached(ttl: Int = 60) on FIELD_DEFINITION
interface Node { id: ID! }
type User implements Node {
  id: ID!
  "Display name"
  name: String
  nick: String @deprecated(reason: "use name")
  born: Date
  friends(first: Int = 10): [User!]!
}
type Bot implements Node { id: ID! }
union Actor = User | Bot
enum Role { ADMIN LEGACY @deprecated(reason: "gone") }
input Filter { role: Role = ADMIN, tags: [String!] = ["a", "b"] }
type Query { node(id: ID!): Node actors(filter: Filter): [Actor] }
`

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "schema.json"))
	require.NoError(t, err)
	return data
}

func TestSDL(t *testing.T) {
	s, err := introspection.Parse(readFixture(t))
	require.NoError(t, err)

	sdl, err := introspection.SDL(s)
	require.NoError(t, err)

	assert.Contains(t, sdl, "scalar Date")
	assert.Contains(t, sdl, "type User implements Node")
	assert.Contains(t, sdl, `@deprecated(reason: "use name")`)
	assert.Contains(t, sdl, "role: Role = ADMIN")
	assert.Contains(t, sdl, "directive @cached")
	assert.NotContains(t, sdl, "__Schema")
	assert.NotContains(t, sdl, "scalar String")
	assert.NotContains(t, sdl, "directive @skip")
	assert.NotContains(t, sdl, "schema {")
}

func TestSourceMatchesSDL(t *testing.T) {
	src, err := introspection.Source("schema.json", readFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "schema.json", src.Name)

	fromJSON, err := schema.BuildFromSDL(src.Name, src.Input)
	require.NoError(t, err, src.Input)
	fromSDL, err := schema.BuildFromSDL("schema.graphql", equivalentSDL)
	require.NoError(t, err)

	sortStrings := cmpopts.SortSlices(func(a, b string) bool { return a < b })
	if diff := cmp.Diff(fromSDL, fromJSON, sortStrings); diff != "" {
		t.Errorf("schema mismatch (-sdl +introspection):\n%s", diff)
	}
}

func TestCustomDirective(t *testing.T) {
	data := []byte(`{"__schema": {
		"queryType": {"name": "Query"},
		"types": [{"kind": "OBJECT", "name": "Query", "fields": [
			{"name": "ok", "args": [], "type": {"kind": "SCALAR", "name": "Boolean"}}
		]}],
		"directives": [{"name": "cached", "locations": ["FIELD_DEFINITION"], "args": []}]
	}}`)
	src, err := introspection.Source("schema.json", data)
	require.NoError(t, err)
	assert.Contains(t, src.Input, "directive @cached on FIELD_DEFINITION")

	_, err = schema.BuildFromSDL(src.Name, src.Input)
	require.NoError(t, err, src.Input)
}

func TestCustomRootTypes(t *testing.T) {
	data := []byte(`{"__schema": {
		"queryType": {"name": "RootQuery"},
		"types": [{"kind": "OBJECT", "name": "RootQuery", "fields": [
			{"name": "ok", "args": [], "type": {"kind": "SCALAR", "name": "Boolean"}}
		]}]
	}}`)
	src, err := introspection.Source("root.json", data)
	require.NoError(t, err)
	assert.Contains(t, src.Input, "query: RootQuery")

	s, err := schema.BuildFromSDL(src.Name, src.Input)
	require.NoError(t, err, src.Input)
	assert.Equal(t, "RootQuery", s.QueryType)
	assert.NotNil(t, s.Field("RootQuery", "ok"))
}

func TestParseErrors(t *testing.T) {
	_, err := introspection.Parse([]byte(`{"data": {}}`))
	assert.ErrorIs(t, err, introspection.ErrNoSchema)

	_, err = introspection.Parse([]byte(`not json`))
	assert.Error(t, err)

	_, err = introspection.Source("bad.json", []byte(`{"__schema": {"types": [{"kind": "WIDGET", "name": "X"}]}}`))
	assert.ErrorContains(t, err, `unknown kind "WIDGET"`)

	_, err = introspection.Source("bad.json", []byte(`{"__schema": {"types": [{"kind": "OBJECT", "name": "X", "fields": [
		{"name": "f", "type": {"kind": "LIST"}}
	]}]}}`))
	assert.ErrorContains(t, err, "X.f")
}

func TestSchemaLoadReadsIntrospection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, readFixture(t), 0o644))
	ext := filepath.Join(dir, "ext.graphql")
	require.NoError(t, os.WriteFile(ext, []byte(`extend type Query { me: User }`), 0o644))

	_, s, err := schema.Load(path, ext)
	require.NoError(t, err)
	assert.NotNil(t, s.Field("Query", "actors"))
	assert.NotNil(t, s.Field("Query", "me"))
	assert.Equal(t, "gone", s.Types["Role"].EnumValues[1].DeprecationReason)
}
