package gfx

// Scene owns the root of a node tree.
type Scene struct {
	Background Color

	root *Node
}

// NewScene returns an empty scene with a black background.
func NewScene() *Scene {
	return &Scene{Background: Black, root: NewGroup("scene")}
}

// Add attaches nodes to the scene root.
func (s *Scene) Add(nodes ...*Node) { s.root.Add(nodes...) }

// Remove detaches a direct child of the root.
func (s *Scene) Remove(n *Node) bool { return s.root.Remove(n) }

// ChildCount returns the number of direct children of the root.
func (s *Scene) ChildCount() int { return s.root.ChildCount() }

// Children returns the direct children of the root.
func (s *Scene) Children() []*Node { return s.root.Children() }

// Root exposes the root node for traversal.
func (s *Scene) Root() *Node { return s.root }

// Find returns the first node with the given name, depth first.
func (s *Scene) Find(name string) *Node {
	var found *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if found != nil || n == nil {
			return
		}
		if n.Name == name && n != s.root {
			found = n
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(s.root)
	return found
}
