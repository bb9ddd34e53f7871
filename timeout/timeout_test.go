package timeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordr-dev/ordr"
)

type a struct{ V int }
type b struct{ V int }

func TestArm_CancelsJobAfterDeadline(t *testing.T) {
	makeA := ordr.NewNode0("a", func(ctx context.Context) (a, error) { return a{V: 1}, nil })
	makeB := ordr.NewNode1("b", func(ctx context.Context, x a) (b, error) {
		time.Sleep(50 * time.Millisecond)
		return b{V: x.V + 2}, nil
	})
	g, err := ordr.NewGraphBuilder().AddNode(makeA).AddNode(makeB).Build()
	require.NoError(t, err)

	job := ordr.Target[b](ordr.NewJob())
	stop := Arm(context.Background(), job, 5*time.Millisecond)
	defer stop()

	out, status, err := g.Execute(context.Background(), job)
	require.Error(t, err)
	assert.Equal(t, ordr.StatusCancelled, status)

	gotA, ok := ordr.Get[a](out)
	require.True(t, ok)
	assert.Equal(t, 1, gotA.V)

	_, ok = ordr.Get[b](out)
	assert.False(t, ok, "b should never have completed before the deadline fired")
}

func TestArm_StopReleasesTimerWithoutCancelling(t *testing.T) {
	makeA := ordr.NewNode0("a", func(ctx context.Context) (a, error) { return a{V: 1}, nil })
	g, err := ordr.NewGraphBuilder().AddNode(makeA).Build()
	require.NoError(t, err)

	job := ordr.Target[a](ordr.NewJob())
	stop := Arm(context.Background(), job, time.Hour)

	out, status, err := g.Execute(context.Background(), job)
	stop()

	require.NoError(t, err)
	assert.Equal(t, ordr.StatusDone, status)
	_, ok := ordr.Get[a](out)
	assert.True(t, ok)
}
