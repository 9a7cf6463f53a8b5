package run_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hanpama/gqlmodel/internal/config"
	"github.com/hanpama/gqlmodel/internal/document"
	"github.com/hanpama/gqlmodel/internal/engine"
	"github.com/hanpama/gqlmodel/internal/eventbus"
	"github.com/hanpama/gqlmodel/internal/events"
	"github.com/hanpama/gqlmodel/internal/language"
	"github.com/hanpama/gqlmodel/internal/run"
	"github.com/hanpama/gqlmodel/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sdl = `
interface Node { id: ID! }
type User implements Node { id: ID! name: String! age: Int @deprecated(reason: "private") }
type Query { node(id: ID!): Node user(id: ID!): User }
`

func load(t *testing.T, docs ...document.InMemoryDocument) (*schema.Schema, []*document.Unit) {
	t.Helper()
	src, err := language.LoadSchema(&language.Source{Name: "schema.graphql", Input: sdl})
	require.NoError(t, err)
	set, err := document.Load(context.Background(), document.NewInMemoryDiscovery(docs), src, true)
	require.NoError(t, err)
	return schema.BuildFromAST(src), set.Units
}

func TestUnitsIsolateFailures(t *testing.T) {
	s, units := load(t,
		document.InMemoryDocument{Name: "good", Content: `query GetUser { user(id: "1") { name age } }`},
		document.InMemoryDocument{Name: "bad", Content: `query GetNode { node(id: "1") { id } }`},
		document.InMemoryDocument{Name: "also_good", Content: `query GetName { user(id: "1") { name } }`},
	)
	conf := config.DefaultGenerator()
	conf.Parallelism = 2

	outcomes, err := run.Units(context.Background(), s, conf, units)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "good.graphql", outcomes[0].Unit)
	require.NotNil(t, outcomes[0].Result)
	assert.Equal(t, "GetUser", outcomes[0].Result.Operations["GetUser"])

	assert.Nil(t, outcomes[1].Result)
	assert.ErrorIs(t, outcomes[1].Err, engine.ErrUnresolvableSelection)

	require.NotNil(t, outcomes[2].Result)
	assert.NotEqual(t, outcomes[0].RunID, outcomes[2].RunID)

	assert.Len(t, run.Results(outcomes), 2)
	joined := run.Err(outcomes)
	require.Error(t, joined)
	var unitErr *run.UnitError
	require.True(t, errors.As(joined, &unitErr))
	assert.Equal(t, "bad.graphql", unitErr.Unit)
}

func TestRunEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var mu sync.Mutex
	var starts, finishes []string
	var warnings []events.Warning
	defer eventbus.Subscribe(func(_ context.Context, e events.RunStart) {
		mu.Lock()
		defer mu.Unlock()
		starts = append(starts, e.Unit)
	})()
	defer eventbus.Subscribe(func(_ context.Context, e events.RunFinish) {
		mu.Lock()
		defer mu.Unlock()
		finishes = append(finishes, e.Unit)
	})()
	defer eventbus.Subscribe(func(_ context.Context, e events.Warning) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, e)
	})()

	s, units := load(t, document.InMemoryDocument{Name: "ops", Content: `query GetUser { user(id: "1") { age } }`})
	outcomes, err := run.Units(context.Background(), s, config.DefaultGenerator(), units)
	require.NoError(t, err)
	require.NoError(t, run.Err(outcomes))

	assert.Equal(t, []string{"ops.graphql"}, starts)
	assert.Equal(t, []string{"ops.graphql"}, finishes)
	require.Len(t, warnings, 1)
	assert.Equal(t, "ops.graphql", warnings[0].Unit)
}

func TestUnitsCancelled(t *testing.T) {
	s, units := load(t, document.InMemoryDocument{Name: "ops", Content: `query GetUser { user(id: "1") { name } }`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := run.Units(ctx, s, config.DefaultGenerator(), units)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
}
