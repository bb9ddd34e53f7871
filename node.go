package ordr

import (
	"context"
	"fmt"
	"time"

	"github.com/ordr-dev/ordr/internal/typeid"
)

// NodeID is the opaque, process-unique identifier of a node, derived from
// its output type. Two node descriptors registered for the same output
// type carry the same NodeID and are deduplicated when a graph is built.
type NodeID struct{ id typeid.ID }

// String renders the id as its underlying output type's name, for
// diagnostics only; it is not guaranteed stable across Go versions or
// compiler internals beyond process lifetime.
func (id NodeID) String() string { return id.id.String() }

func idOf[T any]() NodeID { return NodeID{id: typeid.Of[T]()} }

// Node is the immutable descriptor for one unit of work: its identity, its
// declared dependencies in positional order, and the prepare/execute pair
// that produces its output. Node values are built by the NewNodeN family of
// constructors and are safe to call from any scheduler goroutine; they
// carry no mutable state of their own.
type Node struct {
	id      NodeID
	name    string
	deps    []NodeID
	prepare func(deps []any) any
	execute func(ctx context.Context, packed any) (any, error)
}

// ID returns the node's identity.
func (n *Node) ID() NodeID { return n.id }

// Name returns the node's human-readable, graph-unique display name.
func (n *Node) Name() string { return n.name }

// Deps returns the ordered dependency ids, matching the positional order
// of the registered producer's non-context parameters.
func (n *Node) Deps() []NodeID {
	out := make([]NodeID, len(n.deps))
	copy(out, n.deps)
	return out
}

// retryContextKey and jobStartContextKey carry scheduler-managed metadata
// through the context passed to a node's execute function. The core never
// mutates the caller-supplied context directly; instead it derives a new
// context.WithValue wrapper once per dispatch (including each retry),
// which is the Go-idiomatic analogue of "the context is cloned once per
// task invocation".
type retryContextKey struct{}
type jobStartContextKey struct{}

func withRetryInfo(ctx context.Context, retry int, jobStart time.Time) context.Context {
	ctx = context.WithValue(ctx, retryContextKey{}, retry)
	ctx = context.WithValue(ctx, jobStartContextKey{}, jobStart)
	return ctx
}

// RetryCount returns how many times the current node execution has already
// been retried: 0 on the first attempt, 1 after the first retry, and so
// on. Producers can use it to taper backoff or give up outright.
func RetryCount(ctx context.Context) int {
	if n, ok := ctx.Value(retryContextKey{}).(int); ok {
		return n
	}
	return 0
}

// SinceJobStart returns how long the enclosing job has been running at the
// moment of the call. It is the executor's wall clock, not the individual
// node's own runtime.
func SinceJobStart(ctx context.Context) time.Duration {
	if t, ok := ctx.Value(jobStartContextKey{}).(time.Time); ok {
		return time.Since(t)
	}
	return 0
}

// RetryAfter wraps a producer error to tell the executor this failure is
// transient: the node should be re-invoked after the given delay rather
// than failing the job. Any other error returned from a node's producer is
// treated as fatal.
type RetryAfter struct {
	After time.Duration
	Err   error
}

func (e *RetryAfter) Error() string {
	return fmt.Sprintf("retry after %s: %v", e.After, e.Err)
}
func (e *RetryAfter) Unwrap() error { return e.Err }

// Retry marks err as a transient failure: the executor will re-invoke the
// node's producer after delay, incrementing the retry counter observable
// via RetryCount. The core places no cap on retries; a producer that
// wants a retry budget should count via RetryCount itself and return a
// fatal error once it gives up.
func Retry(err error, delay time.Duration) error {
	return &RetryAfter{After: delay, Err: err}
}

// NewNode0 registers a node with no dependencies: its producer receives
// only the context.
func NewNode0[Out any](name string, fn func(ctx context.Context) (Out, error)) *Node {
	return &Node{
		id:   idOf[Out](),
		name: name,
		deps: nil,
		prepare: func(_ []any) any {
			return struct{}{}
		},
		execute: func(ctx context.Context, _ any) (any, error) {
			return fn(ctx)
		},
	}
}

// NewNode1 registers a node depending on one other node's output.
func NewNode1[D1, Out any](name string, fn func(ctx context.Context, d1 D1) (Out, error)) *Node {
	return &Node{
		id:   idOf[Out](),
		name: name,
		deps: []NodeID{idOf[D1]()},
		prepare: func(deps []any) any {
			return clone(deps[0].(D1))
		},
		execute: func(ctx context.Context, packed any) (any, error) {
			return fn(ctx, packed.(D1))
		},
	}
}

type pair2[A, B any] struct {
	A A
	B B
}

// NewNode2 registers a node depending on two other nodes' outputs, in
// declared positional order.
func NewNode2[D1, D2, Out any](name string, fn func(ctx context.Context, d1 D1, d2 D2) (Out, error)) *Node {
	return &Node{
		id:   idOf[Out](),
		name: name,
		deps: []NodeID{idOf[D1](), idOf[D2]()},
		prepare: func(deps []any) any {
			return pair2[D1, D2]{A: clone(deps[0].(D1)), B: clone(deps[1].(D2))}
		},
		execute: func(ctx context.Context, packed any) (any, error) {
			p := packed.(pair2[D1, D2])
			return fn(ctx, p.A, p.B)
		},
	}
}

type triple3[A, B, C any] struct {
	A A
	B B
	C C
}

// NewNode3 registers a node depending on three other nodes' outputs, in
// declared positional order.
func NewNode3[D1, D2, D3, Out any](name string, fn func(ctx context.Context, d1 D1, d2 D2, d3 D3) (Out, error)) *Node {
	return &Node{
		id:   idOf[Out](),
		name: name,
		deps: []NodeID{idOf[D1](), idOf[D2](), idOf[D3]()},
		prepare: func(deps []any) any {
			return triple3[D1, D2, D3]{
				A: clone(deps[0].(D1)),
				B: clone(deps[1].(D2)),
				C: clone(deps[2].(D3)),
			}
		},
		execute: func(ctx context.Context, packed any) (any, error) {
			p := packed.(triple3[D1, D2, D3])
			return fn(ctx, p.A, p.B, p.C)
		},
	}
}

type quad4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

// NewNode4 registers a node depending on four other nodes' outputs, in
// declared positional order.
func NewNode4[D1, D2, D3, D4, Out any](
	name string,
	fn func(ctx context.Context, d1 D1, d2 D2, d3 D3, d4 D4) (Out, error),
) *Node {
	return &Node{
		id:   idOf[Out](),
		name: name,
		deps: []NodeID{idOf[D1](), idOf[D2](), idOf[D3](), idOf[D4]()},
		prepare: func(deps []any) any {
			return quad4[D1, D2, D3, D4]{
				A: clone(deps[0].(D1)),
				B: clone(deps[1].(D2)),
				C: clone(deps[2].(D3)),
				D: clone(deps[3].(D4)),
			}
		},
		execute: func(ctx context.Context, packed any) (any, error) {
			p := packed.(quad4[D1, D2, D3, D4])
			return fn(ctx, p.A, p.B, p.C, p.D)
		},
	}
}
