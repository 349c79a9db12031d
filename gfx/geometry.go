package gfx

// Geometry is an indexed triangle list.
type Geometry struct {
	Positions []Vec3
	Indices   []uint32
}

// TriangleCount returns the number of complete triangles.
func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

// Empty reports whether the geometry has no triangles.
func (g *Geometry) Empty() bool { return g.TriangleCount() == 0 }

// Triangle returns the three corner positions of triangle i.
func (g *Geometry) Triangle(i int) (a, b, c Vec3, ok bool) {
	if g == nil || i < 0 || i*3+2 >= len(g.Indices) {
		return Vec3{}, Vec3{}, Vec3{}, false
	}
	i0, i1, i2 := g.Indices[i*3], g.Indices[i*3+1], g.Indices[i*3+2]
	n := uint32(len(g.Positions))
	if i0 >= n || i1 >= n || i2 >= n {
		return Vec3{}, Vec3{}, Vec3{}, false
	}
	return g.Positions[i0], g.Positions[i1], g.Positions[i2], true
}

// Bounds returns the axis-aligned bounding box of all positions.
func (g *Geometry) Bounds() (min, max Vec3) {
	if g == nil || len(g.Positions) == 0 {
		return Vec3{}, Vec3{}
	}
	min, max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// FaceNormal returns the unit normal of the triangle (a, b, c) with
// counter-clockwise winding.
func FaceNormal(a, b, c Vec3) Vec3 {
	return Normalize(Cross(b.Sub(a), c.Sub(a)))
}
