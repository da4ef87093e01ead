package ast

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each child of the node
// with w, followed by a call of w.Visit(t, 0).
type Visitor interface {
	Visit(t *Tree, id NodeID) (w Visitor)
}

// Walk traverses the tree rooted at id in depth-first order. A subtree
// shared by several parents is visited once per parent.
func Walk(v Visitor, t *Tree, id NodeID) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if v = v.Visit(t, id); v == nil {
		return
	}
	for _, c := range n.children() {
		if *c != 0 {
			Walk(v, t, *c)
		}
	}
	v.Visit(t, 0)
}

type inspector func(NodeID, Node) bool

func (f inspector) Visit(t *Tree, id NodeID) Visitor {
	if id == 0 {
		return nil
	}
	if f(id, t.Node(id)) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at id and calls f for every node.
// Children are skipped when f returns false.
func Inspect(t *Tree, id NodeID, f func(NodeID, Node) bool) {
	Walk(inspector(f), t, id)
}
