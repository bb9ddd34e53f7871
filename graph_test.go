package ordr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alpha struct{ V int }
type beta struct{ V int }
type gamma struct{ V int }

func nodeAlpha() *Node {
	return NewNode0("alpha", func(ctx context.Context) (alpha, error) {
		return alpha{V: 1}, nil
	})
}

func nodeBeta() *Node {
	return NewNode1("beta", func(ctx context.Context, a alpha) (beta, error) {
		return beta{V: a.V + 1}, nil
	})
}

func nodeGamma() *Node {
	return NewNode2("gamma", func(ctx context.Context, a alpha, b beta) (gamma, error) {
		return gamma{V: a.V + b.V}, nil
	})
}

func TestGraphBuilder_Build_NoNodes(t *testing.T) {
	_, err := NewGraphBuilder().Build()
	require.Error(t, err)
	var target *NoNodesError
	assert.ErrorAs(t, err, &target, "empty builder should report NoNodesError")
	assert.ErrorIs(t, err, ErrNoNodes)
}

func TestGraphBuilder_Build_DuplicateName(t *testing.T) {
	first := NewNode0("same-name", func(ctx context.Context) (alpha, error) { return alpha{}, nil })
	second := NewNode0("same-name", func(ctx context.Context) (beta, error) { return beta{}, nil })

	_, err := NewGraphBuilder().AddNode(first).AddNode(second).Build()
	require.Error(t, err)
	var target *DuplicateNameError
	assert.ErrorAs(t, err, &target, "two nodes sharing a display name should be rejected")
}

func TestGraphBuilder_Build_DependencyNotFound(t *testing.T) {
	_, err := NewGraphBuilder().AddNode(nodeBeta()).Build()
	require.Error(t, err, "beta depends on alpha, which was never registered")
	var target *DependencyNotFoundError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "beta", target.NodeName)
}

func TestGraphBuilder_Build_DuplicateRegistrationIsIdempotent(t *testing.T) {
	g, err := NewGraphBuilder().
		AddNode(nodeAlpha()).
		AddNode(nodeAlpha()).
		AddNode(nodeBeta()).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount(), "registering alpha twice should collapse to one node")
}

func TestGraphBuilder_Build_Cycle(t *testing.T) {
	a := NewNode1[gamma]("a", func(ctx context.Context, g gamma) (alpha, error) { return alpha{}, nil })
	b := NewNode1[alpha]("b", func(ctx context.Context, a alpha) (beta, error) { return beta{}, nil })
	c := NewNode1[beta]("c", func(ctx context.Context, b beta) (gamma, error) { return gamma{}, nil })

	_, err := NewGraphBuilder().AddNode(a).AddNode(b).AddNode(c).Build()
	require.Error(t, err)
	var target *CycleError
	assert.ErrorAs(t, err, &target, "a -> b -> c -> a should be rejected as a cycle")
	assert.Len(t, target.Path, 3)
}

func TestGraph_TopologicalOrder_RespectsDependencies(t *testing.T) {
	g, err := NewGraphBuilder().
		AddNode(nodeGamma()).
		AddNode(nodeBeta()).
		AddNode(nodeAlpha()).
		Build()
	require.NoError(t, err)

	order := g.TopologicalOrder()
	require.Len(t, order, 3)

	position := make(map[string]int, len(order))
	for i, n := range order {
		position[n.Name()] = i
	}
	assert.Less(t, position["alpha"], position["beta"], "alpha must precede beta")
	assert.Less(t, position["beta"], position["gamma"], "beta must precede gamma")
}

func TestGraph_GetNode(t *testing.T) {
	g, err := NewGraphBuilder().AddNode(nodeAlpha()).Build()
	require.NoError(t, err)

	n, ok := g.GetNode(idOf[alpha]())
	require.True(t, ok)
	assert.Equal(t, "alpha", n.Name())

	_, ok = g.GetNode(idOf[beta]())
	assert.False(t, ok, "beta was never registered in this graph")
}
