package ordr

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Status is the terminal classification of a finished Graph.Execute call.
// Once scheduling has started it is consistent with the returned error:
// StatusDone pairs with a nil error, every other status pairs with the
// matching concrete error type (NodeFailedError, NodePanicError,
// CancelledError respectively). A job rejected before scheduling returns
// StatusDone together with a non-nil error; see Graph.Execute.
type Status int

const (
	// StatusDone means every target was reached.
	StatusDone Status = iota
	// StatusNodeFailed means a node's producer returned a fatal error.
	StatusNodeFailed
	// StatusNodePanic means a node's producer panicked.
	StatusNodePanic
	// StatusCancelled means the job's cancel handle fired before every
	// target was reached.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "Done"
	case StatusNodeFailed:
		return "NodeFailed"
	case StatusNodePanic:
		return "NodePanic"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ExecuteOption configures one call to Graph.Execute. Options are
// per-call, not per-graph, because a Graph is shared and re-run concurrently
// while a sink, logger, or throttle is usually scoped to one run or one
// caller.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	sink        EventSink
	logger      *zap.Logger
	concurrency *semaphore.Weighted
	limiter     *rate.Limiter
}

// WithEventSink attaches a sink that observes every structured event this
// run emits. The default is a sink that discards everything.
func WithEventSink(sink EventSink) ExecuteOption {
	return func(c *executeConfig) { c.sink = sink }
}

// WithLogger attaches a zap logger the executor writes one line to per
// dispatch, completion, retry, and terminal outcome. The default logs
// nothing.
func WithLogger(logger *zap.Logger) ExecuteOption {
	return func(c *executeConfig) { c.logger = logger }
}

// WithConcurrencyLimit bounds how many node producers may run at once
// across this call. Dispatch itself is never blocked by the limit: a ready
// node is always handed its own goroutine immediately, and that goroutine
// blocks on the semaphore before invoking the producer, so a saturated
// limit cannot stall the scheduler loop itself.
func WithConcurrencyLimit(n int64) ExecuteOption {
	return func(c *executeConfig) { c.concurrency = semaphore.NewWeighted(n) }
}

// WithRateLimit throttles how often node producers may start, independent
// of how many run concurrently. Like the concurrency limit, the wait
// happens inside the dispatched goroutine, never on the scheduler loop.
func WithRateLimit(limiter *rate.Limiter) ExecuteOption {
	return func(c *executeConfig) { c.limiter = limiter }
}

// taskResult is one message from a dispatched goroutine back to the single
// scheduler goroutine: either the node's produced value, a retry request, a
// fatal error, or a recovered panic.
type taskResult struct {
	index   int
	retry   int
	elapsed time.Duration
	value   any
	err     error
}

// nodePanic is the error shape a recovered panic is converted to, so the
// scheduler can distinguish it from an ordinary fatal error returned by a
// producer.
type nodePanic struct{ diagnostic string }

func (p *nodePanic) Error() string { return p.diagnostic }

// safeExecute invokes a node's execute function, converting any panic into
// a *nodePanic so a misbehaving producer can never bring down the whole
// process the executor is embedded in.
func safeExecute(ctx context.Context, node *Node, packed any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &nodePanic{diagnostic: fmt.Sprintf("%v\n%s", r, debug.Stack())}
		}
	}()
	return node.execute(ctx, packed)
}

// Execute runs the graph against one job: the minimal sub-DAG reachable
// from job's targets, skipping any node job already supplies an input for.
// It returns every output produced (including pre-supplied inputs) together
// with a Status classifying how the run ended, and an error that is nil
// exactly when status is StatusDone.
//
// Execute can also fail before scheduling ever starts, if job references a
// target or input id the graph doesn't contain: it then returns a
// *NodeNotFoundError with a zero Outputs. That failure predates any node
// dispatch, so the accompanying Status carries no information and should be
// ignored; check err first, as with any Go function.
//
// The scheduler itself never blocks: it dispatches every currently-ready
// node to its own goroutine, then waits for either the next task outcome or
// the job's cancel handle, updates its results table, and dispatches
// whatever became ready as a result. No lock is held across that wait; the
// results table and pending set are owned solely by the goroutine running
// Execute.
func (g *Graph) Execute(ctx context.Context, job *Job, opts ...ExecuteOption) (Outputs, Status, error) {
	cfg := &executeConfig{sink: noopSink{}}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := g.validateJob(job); err != nil {
		return Outputs{}, StatusDone, err
	}

	pending, err := job.pendingSet(g)
	if err != nil {
		return Outputs{}, StatusDone, err
	}

	jobStart := time.Now()
	results := make(map[int]any, len(g.nodes))
	out := newOutputs()

	for id, payload := range job.inputs {
		idx, ok := g.indexOf(id)
		if !ok {
			continue
		}
		results[idx] = payload
		node := g.nodes[idx]
		out.set(id, node.name, payload)
		cfg.emit(Event{Kind: EventProvidedInput, NodeName: node.name})
	}

	taskCh := make(chan taskResult, len(g.nodes))
	outstanding := 0

	prepareFor := func(idx int) any {
		deps := g.adj.Deps[idx]
		args := make([]any, len(deps))
		for i, depIdx := range deps {
			args[i] = results[depIdx]
		}
		return g.nodes[idx].prepare(args)
	}

	spawn := func(idx int, retry int, packed any) {
		node := g.nodes[idx]
		outstanding++
		cfg.emit(Event{Kind: EventNodeStart, NodeName: node.name, Retry: retry})
		cfg.logf("dispatching node", node.name, retry)
		go func() {
			if cfg.concurrency != nil {
				if err := cfg.concurrency.Acquire(ctx, 1); err != nil {
					taskCh <- taskResult{index: idx, retry: retry, err: err}
					return
				}
				defer cfg.concurrency.Release(1)
			}
			if cfg.limiter != nil {
				if err := cfg.limiter.Wait(ctx); err != nil {
					taskCh <- taskResult{index: idx, retry: retry, err: err}
					return
				}
			}
			nodeCtx := withRetryInfo(ctx, retry, jobStart)
			value, err := safeExecute(nodeCtx, node, packed)
			taskCh <- taskResult{index: idx, retry: retry, elapsed: time.Since(jobStart), value: value, err: err}
		}()
	}

	dispatchReady := func() {
		for idx := range pending {
			ready := true
			for _, dep := range g.adj.Deps[idx] {
				if _, ok := results[dep]; !ok {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			delete(pending, idx)
			spawn(idx, 0, prepareFor(idx))
		}
	}

	dispatchReady()

	for {
		if outstanding == 0 && len(pending) == 0 {
			cfg.emit(Event{Kind: EventJobDone})
			cfg.logf("job done", "", 0)
			return out, StatusDone, nil
		}

		select {
		case <-job.cancel.Done():
			cfg.emit(Event{Kind: EventJobCancelled})
			cfg.logf("job cancelled", "", 0)
			return out, StatusCancelled, &CancelledError{Outputs: out}

		case res := <-taskCh:
			outstanding--
			node := g.nodes[res.index]

			var retryAfter *RetryAfter
			switch {
			case res.err == nil:
				results[res.index] = res.value
				out.set(node.id, node.name, res.value)
				cfg.emit(Event{Kind: EventNodeDone, NodeName: node.name, Since: res.elapsed})
				cfg.logf("node done", node.name, res.retry)

			case asRetryAfter(res.err, &retryAfter):
				cfg.emit(Event{Kind: EventNodeRetrying, NodeName: node.name, Retry: res.retry + 1})
				cfg.logf("node retrying", node.name, res.retry+1)
				packed := prepareFor(res.index)
				retry := res.retry + 1
				delay := retryAfter.After
				outstanding++
				go func() {
					timer := time.NewTimer(delay)
					defer timer.Stop()
					select {
					case <-timer.C:
					case <-job.cancel.Done():
						// The job was cancelled while this retry was waiting
						// out its backoff: the main loop will pick up
						// job.cancel.Done() on its next select and return
						// StatusCancelled without waiting on this goroutine,
						// so there is no point dispatching the node at all.
						return
					}
					if cfg.concurrency != nil {
						if err := cfg.concurrency.Acquire(ctx, 1); err != nil {
							taskCh <- taskResult{index: res.index, retry: retry, err: err}
							return
						}
						defer cfg.concurrency.Release(1)
					}
					if cfg.limiter != nil {
						if err := cfg.limiter.Wait(ctx); err != nil {
							taskCh <- taskResult{index: res.index, retry: retry, err: err}
							return
						}
					}
					nodeCtx := withRetryInfo(ctx, retry, jobStart)
					value, err := safeExecute(nodeCtx, node, packed)
					taskCh <- taskResult{index: res.index, retry: retry, elapsed: time.Since(jobStart), value: value, err: err}
				}()

			case isNodePanic(res.err):
				cfg.emit(Event{Kind: EventNodePanic, NodeName: node.name})
				cfg.logf("node panicked", node.name, res.retry)
				return out, StatusNodePanic, &NodePanicError{
					Name:       node.name,
					Diagnostic: res.err.Error(),
					Outputs:    out,
				}

			default:
				cfg.emit(Event{Kind: EventNodeFailed, NodeName: node.name})
				cfg.logf("node failed", node.name, res.retry)
				return out, StatusNodeFailed, &NodeFailedError{
					Name:    node.name,
					Index:   res.index,
					Err:     res.err,
					Outputs: out,
				}
			}
		}

		dispatchReady()
	}
}

// validateJob checks that every node id a job references — as a target or
// as a pre-supplied input — is actually registered in g, before any
// scheduling begins.
func (g *Graph) validateJob(job *Job) error {
	for _, id := range job.targetList() {
		if _, ok := g.indexOf(id); !ok {
			return &NodeNotFoundError{Name: id.String()}
		}
	}
	for id := range job.inputs {
		if _, ok := g.indexOf(id); !ok {
			return &NodeNotFoundError{Name: id.String()}
		}
	}
	return nil
}

func asRetryAfter(err error, out **RetryAfter) bool {
	ra, ok := err.(*RetryAfter)
	if !ok {
		return false
	}
	*out = ra
	return true
}

func isNodePanic(err error) bool {
	_, ok := err.(*nodePanic)
	return ok
}

func (c *executeConfig) emit(e Event) {
	if c.sink != nil {
		c.sink.Emit(e)
	}
}

func (c *executeConfig) logf(msg string, nodeName string, retry int) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, zap.String("node", nodeName), zap.Int("retry", retry))
}
