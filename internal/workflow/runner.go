package workflow

import (
	"context"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
)

// Runner orchestrates one end-to-end execution: validate claim input, seed
// the accumulator, drive the graph, and reduce the execution stream into a
// final state.
//
// A Runner holds no per-run state; concurrent Run calls are independent.
type Runner struct {
	graph *Graph
}

// NewRunner wraps a graph, compiling it if the caller has not.
func NewRunner(g *Graph) (*Runner, error) {
	if err := g.Compile(); err != nil {
		return nil, err
	}
	return &Runner{graph: g}, nil
}

// NewClaimsRunner builds the standard two-stage claims chain, triage then
// recommend, against the given reasoner client.
func NewClaimsRunner(client reasoner.Client) (*Runner, error) {
	g := NewGraph()
	if err := g.AddNode(TriageNode(client)); err != nil {
		return nil, err
	}
	if err := g.AddNode(RecommendNode(client)); err != nil {
		return nil, err
	}
	if err := g.SetEntry(NodeTriage); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeTriage, NodeRecommend); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeRecommend, End); err != nil {
		return nil, err
	}
	return NewRunner(g)
}

// Run executes the workflow for one claim.
//
// Input validation happens before any external call; an invalid claim
// fails with an input-validation error and the reasoner is never invoked.
// On success the returned state carries both the triage result and the
// settlement recommendation. On any failure the zero state is returned
// with the first error encountered, never a partially filled state.
func (r *Runner) Run(ctx context.Context, in claim.Input) (claim.WorkflowState, error) {
	if err := in.Validate(); err != nil {
		return claim.WorkflowState{}, &Error{Kind: KindInputValidation, Err: err}
	}

	// The reduction accumulator is owned by this call alone. Patches are
	// applied strictly in emission order.
	acc := claim.NewWorkflowState(in)
	for step := range r.graph.Execute(ctx, acc) {
		if step.Err != nil {
			return claim.WorkflowState{}, step.Err
		}

		next, err := acc.Apply(step.Patch)
		if err != nil {
			return claim.WorkflowState{}, &Error{
				Node: step.Node,
				Kind: KindContractViolation,
				Err:  err,
			}
		}
		acc = next
	}

	if err := ctx.Err(); err != nil {
		return claim.WorkflowState{}, &Error{Kind: KindCancelled, Err: err}
	}
	return acc, nil
}
