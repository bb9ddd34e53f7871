package mermaid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordr-dev/ordr"
)

type fetched struct{ V int }
type parsed struct{ V int }

func testGraph(t *testing.T) *ordr.Graph {
	t.Helper()
	fetch := ordr.NewNode0("fetch", func(ctx context.Context) (fetched, error) {
		return fetched{V: 1}, nil
	})
	parse := ordr.NewNode1("parse", func(ctx context.Context, f fetched) (parsed, error) {
		return parsed{V: f.V}, nil
	})
	g, err := ordr.NewGraphBuilder().AddNode(fetch).AddNode(parse).Build()
	require.NoError(t, err)
	return g
}

func TestGraph_RendersAllNodesAndEdges(t *testing.T) {
	g := testGraph(t)
	diagram := Graph(g)

	assert.Contains(t, diagram, "flowchart LR")
	assert.Contains(t, diagram, "fetch")
	assert.Contains(t, diagram, "parse")
	assert.Contains(t, diagram, "-->")
}

func TestJob_ClassifiesNodesByRole(t *testing.T) {
	g := testGraph(t)
	job := ordr.Target[parsed](ordr.NewJob())

	diagram, err := Job(g, job)
	require.NoError(t, err)

	assert.Contains(t, diagram, "classDef target")
	assert.Contains(t, diagram, ":::target")
	assert.Contains(t, diagram, ":::active", "fetch must run to reach parse, so it is active")
}

func TestJob_GivenInputMarksNodeAsGiven(t *testing.T) {
	g := testGraph(t)
	job := ordr.Target[parsed](ordr.Input(ordr.NewJob(), fetched{V: 5}))

	diagram, err := Job(g, job)
	require.NoError(t, err)
	assert.Contains(t, diagram, ":::given")
}

func TestJob_UnknownTarget_ReturnsError(t *testing.T) {
	g := testGraph(t)
	type unknown struct{}
	job := ordr.Target[unknown](ordr.NewJob())

	_, err := Job(g, job)
	assert.Error(t, err)
}
