// Package ordr runs a set of interdependent asynchronous producers as a
// directed acyclic graph, driving each node to completion in an order
// consistent with its declared dependencies, with as much parallelism as
// the graph allows.
//
// A host builds a [Graph] once from node descriptors (see [NewNode0]
// through [NewNode4]);
// for each execution it builds a [Job] and calls [Graph.Execute] with a
// context, which produces [Outputs] plus a terminal [Status].
//
// The core is deliberately small: [Node], [Graph], [Job], [Outputs] and
// the executor embedded in [Graph.Execute]. Everything else in this module
// (config, mermaid, otelsink, promsink, ratelimit, timeout) is a
// collaborator built on top of that core, not part of it.
package ordr
