package ordr

// Outputs is the heterogeneous, typed result collection returned from a
// run: it maps node id to payload, containing exactly the nodes that
// successfully produced a value (including pre-supplied inputs) during
// that run. Outputs are the resume substrate: seeding a new Job's inputs
// from a prior run's Outputs (Job.SeedFromOutputs) and re-executing will
// not re-invoke any producer already present here.
type Outputs struct {
	values map[NodeID]any
	names  map[NodeID]string
}

func newOutputs() Outputs {
	return Outputs{values: make(map[NodeID]any), names: make(map[NodeID]string)}
}

func (o Outputs) set(id NodeID, name string, value any) {
	o.values[id] = value
	o.names[id] = name
}

// Get returns the value produced for output type T, and whether it is
// present in this Outputs at all.
func Get[T any](o Outputs) (T, bool) {
	var zero T
	v, ok := o.values[idOf[T]()]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Take removes and returns the value produced for output type T. Like
// Get, it reports false if T is absent.
func Take[T any](o Outputs) (T, bool) {
	id := idOf[T]()
	var zero T
	v, ok := o.values[id]
	if !ok {
		return zero, false
	}
	delete(o.values, id)
	delete(o.names, id)
	typed, ok := v.(T)
	return typed, ok
}

// Len reports the number of nodes present in this Outputs.
func (o Outputs) Len() int { return len(o.values) }

// Entry is one (node, payload) pair yielded by Outputs.All, for
// diagnostics: logging a run's full result set, or rendering it for
// inspection without knowing every output type up front.
type Entry struct {
	ID    NodeID
	Name  string
	Value any
}

// All iterates every (node-id, payload) pair currently held, in no
// particular order. The payloads are the same instances stored in the
// executor's results table; callers that mutate a returned value risk
// corrupting a concurrently-read result if this Outputs is shared.
func (o Outputs) All() []Entry {
	out := make([]Entry, 0, len(o.values))
	for id, v := range o.values {
		out = append(out, Entry{ID: id, Name: o.names[id], Value: v})
	}
	return out
}
