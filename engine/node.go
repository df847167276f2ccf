package engine

import (
	"chessai/rules"
)

// Handle is the index of a Node in its Tree. It stands in for *Node so
// children can point back at their parent without an ownership cycle.
type Handle int

// NilHandle marks the missing parent of a root.
const (
	NilHandle  Handle = -1
	RootHandle Handle = 0
)

func (h Handle) IsValid() bool { return h >= 0 }

// Node is one vertex of the search tree.
type Node struct {
	Position rules.Position
	// Move produced Position from the parent's position. Zero for a root.
	Move rules.Move
	// Heuristic is the parent's score plus (White) or minus (Black) the
	// ordering delta of Move. It stands in for an evaluation until one exists.
	Heuristic int
	Parent    Handle
	Children  []Handle
	Depth     int

	eval      int
	evaluated bool
}

// CurrentScore is the memoized evaluation when there is one, else the heuristic.
func (n *Node) CurrentScore() int {
	if n.evaluated {
		return n.eval
	}
	return n.Heuristic
}

// Evaluated reports whether the node carries an evaluation or backed-up score.
func (n *Node) Evaluated() bool { return n.evaluated }

func (n *Node) setEval(score int) {
	n.eval = score
	n.evaluated = true
}

// Tree owns every node of one search. Node pointers are invalidated by
// AddChild, so hold on to handles, not pointers.
type Tree struct {
	nodes []Node
}

// NewTree makes a tree whose root owns pos.
func NewTree(pos rules.Position) *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, Node{
		Position: pos,
		Parent:   NilHandle,
	})
	return t
}

// Root returns the root node.
func (t *Tree) Root() *Node { return &t.nodes[RootHandle] }

// Node returns the node behind h.
func (t *Tree) Node(h Handle) *Node { return &t.nodes[h] }

// Len is the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// AddChild appends a child of parent that owns pos.
func (t *Tree) AddChild(parent Handle, pos rules.Position, move rules.Move, heuristic int) Handle {
	h := Handle(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Position:  pos,
		Move:      move,
		Heuristic: heuristic,
		Parent:    parent,
		Depth:     t.nodes[parent].Depth + 1,
	})
	t.nodes[parent].Children = append(t.nodes[parent].Children, h)
	return h
}

// Extract copies the subtree under h into a new tree rooted at h. Depths are
// rebased so the new root sits at depth 0; the rest of t is left behind.
func (t *Tree) Extract(h Handle) *Tree {
	out := &Tree{}
	base := t.nodes[h].Depth

	var copyNode func(src, parent Handle) Handle
	copyNode = func(src, parent Handle) Handle {
		n := t.nodes[src]
		dst := Handle(len(out.nodes))
		out.nodes = append(out.nodes, Node{
			Position:  n.Position,
			Move:      n.Move,
			Heuristic: n.Heuristic,
			Parent:    parent,
			Depth:     n.Depth - base,
			eval:      n.eval,
			evaluated: n.evaluated,
		})
		children := make([]Handle, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, copyNode(c, dst))
		}
		out.nodes[dst].Children = children
		return dst
	}
	copyNode(h, NilHandle)
	return out
}

// BestChild returns the first child of h whose score equals h's score.
func (t *Tree) BestChild(h Handle) Handle {
	target := t.nodes[h].CurrentScore()
	for _, c := range t.nodes[h].Children {
		if t.nodes[c].CurrentScore() == target {
			return c
		}
	}
	return NilHandle
}
