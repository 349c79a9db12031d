package gfx

// NodeKind identifies what a node contributes to a frame.
type NodeKind uint8

const (
	KindGroup NodeKind = iota
	KindMesh
	KindLine
	KindAmbientLight
	KindDirectionalLight
)

func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLine:
		return "line"
	case KindAmbientLight:
		return "ambient-light"
	case KindDirectionalLight:
		return "directional-light"
	default:
		return "unknown"
	}
}

// Material is a minimal surface description.
type Material struct {
	Color Color
}

// Light holds the parameters shared by ambient and directional lights.
type Light struct {
	Color     Color
	Intensity float32
}

// Node is one element of the scene graph.
//
// Position and Rotation are local to the parent. Rotation is an XYZ Euler
// triple in radians. Only the fields matching Kind are consulted.
type Node struct {
	Name     string
	Kind     NodeKind
	Position Vec3
	Rotation Vec3
	Visible  bool

	Geometry *Geometry
	Material Material

	// Line endpoints, local space.
	From, To  Vec3
	LineColor Color

	Light Light

	parent   *Node
	children []*Node
}

// NewGroup returns an empty transform node.
func NewGroup(name string) *Node {
	return &Node{Name: name, Kind: KindGroup, Visible: true}
}

// NewMesh returns a mesh node drawing g with material m.
func NewMesh(name string, g *Geometry, m Material) *Node {
	if m.Color == (Color{}) {
		m.Color = RGB(0xCC, 0xCC, 0xCC)
	}
	return &Node{Name: name, Kind: KindMesh, Visible: true, Geometry: g, Material: m}
}

// NewLine returns a single line segment node.
func NewLine(name string, from, to Vec3, c Color) *Node {
	return &Node{Name: name, Kind: KindLine, Visible: true, From: from, To: to, LineColor: c}
}

// NewAmbientLight returns a light that adds a constant term to every surface.
func NewAmbientLight(c Color, intensity float32) *Node {
	return &Node{Name: "ambient", Kind: KindAmbientLight, Visible: true, Light: Light{Color: c, Intensity: intensity}}
}

// NewDirectionalLight returns a light shining from its position towards the
// origin of its parent space. Only the direction of Position matters.
func NewDirectionalLight(c Color, intensity float32) *Node {
	return &Node{
		Name:     "directional",
		Kind:     KindDirectionalLight,
		Visible:  true,
		Position: V3(0, 1, 0),
		Light:    Light{Color: c, Intensity: intensity},
	}
}

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	if n == nil {
		return
	}
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches c if it is a direct child of n.
func (n *Node) Remove(c *Node) bool {
	if n == nil || c == nil {
		return false
	}
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the direct children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// LocalMatrix returns T·R for the node.
func (n *Node) LocalMatrix() Mat4 {
	return Mat4Compose(n.Position, n.Rotation)
}

// WorldMatrix walks up to the root and accumulates local matrices.
func (n *Node) WorldMatrix() Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = Mat4Mul(p.LocalMatrix(), m)
	}
	return m
}

// Traverse calls fn for n and each visible descendant with its world matrix.
// Invisible nodes prune their subtree.
func (n *Node) Traverse(parent Mat4, fn func(n *Node, world Mat4)) {
	if n == nil || !n.Visible {
		return
	}
	world := Mat4Mul(parent, n.LocalMatrix())
	fn(n, world)
	for _, c := range n.children {
		c.Traverse(world, fn)
	}
}
