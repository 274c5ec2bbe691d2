// Package workflow implements the stateful claims-processing executor.
//
// The executor is a small directed graph of named, schema-guarded
// transformation steps over a shared state accumulator. The configured
// graph is a fixed linear chain (triage followed by recommend), but the
// engine is written against an entry node plus a static successor table,
// so short DAG generalizations do not change the execution model.
//
// ARCHITECTURE:
//
// Sequential per-run execution:
// One run executes its nodes strictly in chain order in a single
// goroutine. The recommend node's prompt is built from the triage result,
// so ordering is a correctness dependency, not a performance choice.
// Suspension happens only at node boundaries while a reasoner call is in
// flight.
//
// Execution stream:
// Graph.Execute returns a channel of per-node steps. Each step is emitted
// only after its node completes, and the channel is unbuffered, so
// consumption gates progress. The stream halts at the End sentinel or at
// the first failing node. Consuming a second stream re-runs the graph from
// the entry node, external calls included; idempotence is not guaranteed
// at this level.
//
// State ownership:
// The accumulator is a value passed by ownership transfer between steps.
// Nodes receive a copy of the accumulated state and return a patch; they
// never mutate shared state. Patches merge per-key, and each node owns
// disjoint keys, so conflicts indicate a broken node, not a runtime
// condition to resolve. Independent runs share no mutable state and are
// safe to execute concurrently.
//
// Failure policy:
// Input validation failures, reasoner failures (including timeout and
// cancellation), and contract violations all abort the run. No partial
// patch is merged from a failed node and no partial state is returned.
// The engine never retries internally and never substitutes defaults.
package workflow
