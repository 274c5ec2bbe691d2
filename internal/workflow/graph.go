package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/clemhq/clem/internal/claim"
	"github.com/clemhq/clem/internal/reasoner"
	"github.com/clemhq/clem/internal/schema"
)

// NodeName identifies a node within a graph.
type NodeName string

// End is the terminal sentinel: an edge to End marks the last node of the
// chain. End is not a node and never executes.
const End NodeName = "__end__"

// NodeFunc is one transformation step: given the accumulated state,
// produce a partial state patch. Implementations must not mutate the input
// state and must respect context cancellation on blocking calls.
type NodeFunc func(ctx context.Context, state claim.WorkflowState) (claim.Patch, error)

// Node is a named transformation step.
type Node struct {
	Name NodeName
	Run  NodeFunc
}

// Step is one element of the execution stream: the patch produced by one
// completed node, or the failure that halted the run.
type Step struct {
	// Node names the node that produced this step.
	Node NodeName

	// Patch is the node's output. Zero when Err is set.
	Patch claim.Patch

	// Err is the halting failure, if any. A step with Err set is always
	// the final element of the stream.
	Err error
}

// Graph holds an ordered node registration with one entry node and a
// static successor table. Nodes never reference each other directly; the
// only wiring is the name-based successor table.
//
// Build a graph with AddNode/SetEntry/AddEdge, then seal it with Compile
// before executing. A compiled graph is immutable and safe for concurrent
// Execute calls.
type Graph struct {
	nodes    map[NodeName]Node
	order    []NodeName
	entry    NodeName
	succ     map[NodeName]NodeName
	compiled bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeName]Node),
		succ:  make(map[NodeName]NodeName),
	}
}

// AddNode registers a node. Names must be unique within the graph.
func (g *Graph) AddNode(n Node) error {
	if g.compiled {
		return errors.New("graph is already compiled")
	}
	if n.Name == "" || n.Name == End {
		return fmt.Errorf("invalid node name %q", n.Name)
	}
	if n.Run == nil {
		return fmt.Errorf("node %s has no run function", n.Name)
	}
	if _, exists := g.nodes[n.Name]; exists {
		return fmt.Errorf("node %s is already registered", n.Name)
	}
	g.nodes[n.Name] = n
	g.order = append(g.order, n.Name)
	return nil
}

// SetEntry designates the entry node.
func (g *Graph) SetEntry(name NodeName) error {
	if g.compiled {
		return errors.New("graph is already compiled")
	}
	if _, exists := g.nodes[name]; !exists {
		return fmt.Errorf("entry node %s is not registered", name)
	}
	g.entry = name
	return nil
}

// AddEdge wires from's successor. The target must be a registered node or
// the End sentinel; each node has exactly one successor.
func (g *Graph) AddEdge(from, to NodeName) error {
	if g.compiled {
		return errors.New("graph is already compiled")
	}
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("edge source %s is not registered", from)
	}
	if to != End {
		if _, exists := g.nodes[to]; !exists {
			return fmt.Errorf("edge target %s is not registered", to)
		}
	}
	if prev, exists := g.succ[from]; exists {
		return fmt.Errorf("node %s already has successor %s", from, prev)
	}
	g.succ[from] = to
	return nil
}

// Compile seals the graph after verifying it forms a complete chain: an
// entry node is set, following successors from the entry reaches End, and
// every registered node is visited exactly once on the way.
func (g *Graph) Compile() error {
	if g.compiled {
		return nil
	}
	if len(g.nodes) == 0 {
		return errors.New("graph has no nodes")
	}
	if g.entry == "" {
		return errors.New("graph has no entry node")
	}

	visited := make(map[NodeName]bool, len(g.nodes))
	for cur := g.entry; cur != End; {
		if visited[cur] {
			return fmt.Errorf("node %s is visited twice", cur)
		}
		visited[cur] = true

		next, ok := g.succ[cur]
		if !ok {
			return fmt.Errorf("node %s has no successor", cur)
		}
		cur = next
	}
	if len(visited) != len(g.nodes) {
		for _, name := range g.order {
			if !visited[name] {
				return fmt.Errorf("node %s is unreachable from entry", name)
			}
		}
	}

	g.compiled = true
	return nil
}

// Execute runs the graph from the entry node and returns the execution
// stream: the ordered sequence of per-node patches, one per completed
// node, ending either after the final node or with a single failing step.
//
// The stream is lazy: the channel is unbuffered and each node runs only
// after the previous step was consumed. Emission order is execution
// order. The initial state is threaded through by value: each node sees
// the accumulation of all prior patches. Execute does not retain or share
// the accumulator.
//
// Executing an already-consumed graph runs it again from the entry node,
// external calls included.
func (g *Graph) Execute(ctx context.Context, initial claim.WorkflowState) <-chan Step {
	steps := make(chan Step)

	go func() {
		defer close(steps)

		if !g.compiled {
			steps <- Step{Err: &Error{
				Kind: KindContractViolation,
				Err:  errors.New("graph executed before Compile"),
			}}
			return
		}

		state := initial
		for cur := g.entry; cur != End; cur = g.succ[cur] {
			if err := ctx.Err(); err != nil {
				steps <- Step{Node: cur, Err: &Error{Node: cur, Kind: KindCancelled, Err: err}}
				return
			}

			patch, err := g.nodes[cur].Run(ctx, state)
			if err != nil {
				steps <- Step{Node: cur, Err: classify(cur, err)}
				return
			}

			next, applyErr := state.Apply(patch)
			if applyErr != nil {
				steps <- Step{Node: cur, Err: &Error{
					Node: cur,
					Kind: KindContractViolation,
					Err:  applyErr,
				}}
				return
			}
			state = next

			select {
			case steps <- Step{Node: cur, Patch: patch}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return steps
}

// classify wraps a node failure with its error kind. Nodes may return an
// already-classified *Error (preconditions); otherwise validation and
// reasoner failures are recognized by type, cancellation by the context
// sentinels, and anything else is a broken node contract.
func classify(node NodeName, err error) error {
	var we *Error
	if errors.As(err, &we) {
		return err
	}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return &Error{Node: node, Kind: KindInputValidation, Err: err}
	}
	if reasoner.IsReasonerError(err) {
		// Timeout and cancellation surface through the reasoner client and
		// abort the run the same way any reasoner failure does.
		return &Error{Node: node, Kind: KindReasoner, Err: err}
	}
	return &Error{Node: node, Kind: KindContractViolation, Err: err}
}
