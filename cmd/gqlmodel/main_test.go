package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
interface Node { id: ID! }
type User implements Node {
  id: ID!
  name: String!
  email: String @deprecated(reason: "use contact")
  friends: [User!]
}
type Group implements Node { id: ID! title: String }
type Query {
  user(id: ID!): User
  node(id: ID!): Node
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupProject lays out a schema, documents and a configuration in a temp
// dir and returns the configuration path.
func setupProject(t *testing.T, generator string, docs map[string]string) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), testSchema)
	for name, content := range docs {
		writeFile(t, filepath.Join(dir, "graphql", name), content)
	}
	configPath = filepath.Join(dir, "gqlmodel.yaml")
	writeFile(t, configPath, "schema: [schema.graphql]\ndocuments: [graphql/]\ngenerator:\n"+generator)
	return dir, configPath
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = runMain(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"generate", "proto", "inspect", "watch"} {
		assert.Contains(t, out, cmd)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := execute(t, "frobnicate")
	require.Error(t, err)
	assert.Contains(t, stderr, "error:")
}

func TestGenerate(t *testing.T) {
	dir, cfg := setupProject(t, "  out: api/models.py\n", map[string]string{
		"user.graphql": `query GetUser($id: ID!) { user(id: $id) { id name } }`,
	})

	_, stderr, err := execute(t, "generate", "--config", cfg)
	require.NoError(t, err, stderr)

	models := readFile(t, filepath.Join(dir, "api", "models.py"))
	assert.True(t, strings.HasPrefix(models, "# Generated by gqlmodel. DO NOT EDIT.\n"))
	assert.Contains(t, models, "from pydantic import BaseModel")
	assert.Contains(t, models, "class GetUserUser(BaseModel):")
	assert.Contains(t, models, "class GetUser(BaseModel):")
	assert.Contains(t, models, "class Arguments(BaseModel):\n        id: str\n")
	assert.Contains(t, stderr, "wrote")
}

func TestGenerateSplit(t *testing.T) {
	dir, cfg := setupProject(t, "  out: api\n  split_documents: true\n", map[string]string{
		"users.graphql":    `query GetUser { user(id: "1") { name } }`,
		"get-node.graphql": `query GetNode { node(id: "1") { id ... on Group { title } } }`,
	})

	_, stderr, err := execute(t, "generate", "--config", cfg)
	require.NoError(t, err, stderr)

	assert.Contains(t, readFile(t, filepath.Join(dir, "api", "users.py")), "class GetUser(BaseModel):")
	assert.Contains(t, readFile(t, filepath.Join(dir, "api", "get_node.py")), "class GetNode(BaseModel):")
}

func TestGenerateViolations(t *testing.T) {
	dir, cfg := setupProject(t, "  out: models.py\n", map[string]string{
		"user.graphql": `query GetUser { user(id: "1") { missing } }`,
	})

	_, stderr, err := execute(t, "generate", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, stderr, "error:")
	assert.Contains(t, stderr, `Cannot query field "missing" on type "User".`)
	assert.NoFileExists(t, filepath.Join(dir, "models.py"))
}

func TestGenerateWarnings(t *testing.T) {
	_, cfg := setupProject(t, "  out: models.py\n", map[string]string{
		"user.graphql": `query GetUser { user(id: "1") { email } }`,
	})

	_, stderr, err := execute(t, "generate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning:")
	assert.Contains(t, stderr, "is deprecated: use contact")
}

func TestGeneratePartialFailure(t *testing.T) {
	dir, cfg := setupProject(t, "  out: api\n  split_documents: true\n", map[string]string{
		"good.graphql":   `query GetUser { user(id: "1") { name } }`,
		"broken.graphql": `query Broken { node(id: "1") { id } }`,
	})

	_, stderr, err := execute(t, "generate", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.graphql")
	assert.Contains(t, stderr, "run failed")
	assert.FileExists(t, filepath.Join(dir, "api", "good.py"))
	assert.NoFileExists(t, filepath.Join(dir, "api", "broken.py"))
}

func TestGenerateFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), testSchema)
	writeFile(t, filepath.Join(dir, "ops", "user.gql"), `query GetUser { user(id: "1") { id } }`)
	out := filepath.Join(dir, "out", "models.py")

	_, stderr, err := execute(t, "generate",
		"--schema", filepath.Join(dir, "schema.graphql"),
		"--documents", filepath.Join(dir, "ops"),
		"--out", out)
	require.NoError(t, err, stderr)
	assert.Contains(t, readFile(t, out), "class GetUser(BaseModel):")
}

func TestInspect(t *testing.T) {
	_, cfg := setupProject(t, "  out: models.py\n", map[string]string{
		"user.graphql": `query GetUser { user(id: "1") { id name } }`,
	})

	out, stderr, err := execute(t, "inspect", "--config", cfg)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, `"unit": "combined"`)
	assert.Contains(t, out, `"name": "GetUserUser"`)
	assert.Contains(t, out, `"runId": "`)
}

func TestProto(t *testing.T) {
	dir, cfg := setupProject(t, "  out: models.py\n  proto_package: acme.models\n", map[string]string{
		"user.graphql": `query GetUser { user(id: "1") { id name friends { name } } }`,
	})
	outDir := filepath.Join(dir, "protos")

	_, stderr, err := execute(t, "proto", "--config", cfg, "--out", outDir)
	require.NoError(t, err, stderr)

	proto := readFile(t, filepath.Join(outDir, "combined.proto"))
	assert.Contains(t, proto, "package acme.models;")
	assert.Contains(t, proto, "message GetUserUser {")
}

func TestWatch(t *testing.T) {
	dir, cfg := setupProject(t, "  out: models.py\n", map[string]string{
		"user.graphql": `query GetUser { user(id: "1") { id } }`,
	})
	models := filepath.Join(dir, "models.py")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var out, errOut bytes.Buffer
		done <- runMain(ctx, []string{"watch", "--config", cfg}, &out, &errOut)
	}()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(models)
		return err == nil && strings.Contains(string(data), "class GetUser(")
	}, 5*time.Second, 20*time.Millisecond)
	// Let the watcher register before changing inputs.
	time.Sleep(300 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "graphql", "user.graphql"),
		`query GetUser { user(id: "1") { id } } query GetName { user(id: "2") { name } }`)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(models)
		return err == nil && strings.Contains(string(data), "class GetName(")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "get_node", moduleName("/tmp/graphql/get-node.graphql"))
	assert.Equal(t, "users", moduleName("users.gql"))
	assert.Equal(t, "combined", moduleName("combined"))
}
