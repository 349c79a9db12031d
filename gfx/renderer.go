package gfx

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it; the depth buffer is kept between frames and
// only reallocated when the target grows.
type Renderer struct {
	Mode  RenderMode
	Depth bool

	depthBuf []float32
	lights   lighting
}

// NewRenderer returns a depth-tested, flat-shading renderer.
func NewRenderer() *Renderer {
	return &Renderer{Mode: RenderSolidFlat, Depth: true}
}

const clipEpsilon = 1e-5

type directional struct {
	dir     Vec3 // unit vector towards the light
	r, g, b float32
}

type lighting struct {
	ambR, ambG, ambB float32
	dirs             []directional
	lit              bool
}

func (l *lighting) reset() {
	l.ambR, l.ambG, l.ambB = 0, 0, 0
	l.dirs = l.dirs[:0]
	l.lit = false
}

func (l *lighting) shade(base Color, n Vec3) Color {
	if !l.lit {
		return base
	}
	r, g, b := l.ambR, l.ambG, l.ambB
	for _, d := range l.dirs {
		k := Dot(n, d.dir)
		if k <= 0 {
			continue
		}
		r += k * d.r
		g += k * d.g
		b += k * d.b
	}
	return base.Modulate(r, g, b)
}

func (r *Renderer) ensureDepth(w, h int) {
	if !r.Depth {
		return
	}
	n := w * h
	if cap(r.depthBuf) < n {
		r.depthBuf = make([]float32, n)
	} else {
		r.depthBuf = r.depthBuf[:n]
	}
	for i := range r.depthBuf {
		r.depthBuf[i] = 1e9
	}
}

// Render draws the scene as seen by cam into t.
func (r *Renderer) Render(t Target, s *Scene, cam *PerspectiveCamera) {
	if r == nil || t == nil || s == nil || cam == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(s.Background)
	r.ensureDepth(w, h)

	r.lights.reset()
	s.root.Traverse(Mat4Identity(), func(n *Node, world Mat4) {
		switch n.Kind {
		case KindAmbientLight:
			k := n.Light.Intensity / 255
			r.lights.ambR += float32(n.Light.Color.R) * k
			r.lights.ambG += float32(n.Light.Color.G) * k
			r.lights.ambB += float32(n.Light.Color.B) * k
			r.lights.lit = true
		case KindDirectionalLight:
			dir := Normalize(world.Translation())
			if dir == (Vec3{}) {
				return
			}
			k := n.Light.Intensity / 255
			r.lights.dirs = append(r.lights.dirs, directional{
				dir: dir,
				r:   float32(n.Light.Color.R) * k,
				g:   float32(n.Light.Color.G) * k,
				b:   float32(n.Light.Color.B) * k,
			})
			r.lights.lit = true
		}
	})

	viewProj := Mat4Mul(cam.ProjectionMatrix(), cam.ViewMatrix())
	eye := cam.Position
	s.root.Traverse(Mat4Identity(), func(n *Node, world Mat4) {
		switch n.Kind {
		case KindMesh:
			r.renderMesh(t, w, h, viewProj, world, eye, n)
		case KindLine:
			r.renderLine(t, w, h, viewProj, world.MulPoint(n.From), world.MulPoint(n.To), n.LineColor)
		}
	})
}

func (r *Renderer) renderMesh(t Target, w, h int, viewProj, world Mat4, eye Vec3, n *Node) {
	g := n.Geometry
	if g.Empty() {
		return
	}
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c, ok := g.Triangle(i)
		if !ok {
			continue
		}
		a = world.MulPoint(a)
		b = world.MulPoint(b)
		c = world.MulPoint(c)

		p0 := Mat4MulV4(viewProj, Vec4{X: a.X, Y: a.Y, Z: a.Z, W: 1})
		p1 := Mat4MulV4(viewProj, Vec4{X: b.X, Y: b.Y, Z: b.Z, W: 1})
		p2 := Mat4MulV4(viewProj, Vec4{X: c.X, Y: c.Y, Z: c.Z, W: 1})

		// Triangles touching the camera plane are dropped rather than clipped.
		if p0.W <= clipEpsilon || p1.W <= clipEpsilon || p2.W <= clipEpsilon {
			continue
		}
		ndc0, ndc1, ndc2 := toNDC(p0), toNDC(p1), toNDC(p2)
		if ndc0.Z > 1 && ndc1.Z > 1 && ndc2.Z > 1 {
			continue
		}

		x0, y0 := ndcToScreen(ndc0, w, h)
		x1, y1 := ndcToScreen(ndc1, w, h)
		x2, y2 := ndcToScreen(ndc2, w, h)

		normal := FaceNormal(a, b, c)
		// Two-sided: light the face that points at the camera.
		if Dot(normal, eye.Sub(a)) < 0 {
			normal = normal.Mul(-1)
		}
		col := r.lights.shade(n.Material.Color, normal)

		switch r.Mode {
		case RenderWireframe:
			r.drawLine(t, w, x0, y0, ndc0.Z, x1, y1, ndc1.Z, col)
			r.drawLine(t, w, x1, y1, ndc1.Z, x2, y2, ndc2.Z, col)
			r.drawLine(t, w, x2, y2, ndc2.Z, x0, y0, ndc0.Z, col)
		default:
			r.fillTriangle(t, w, h, x0, y0, ndc0.Z, x1, y1, ndc1.Z, x2, y2, ndc2.Z, col)
		}
	}
}

func (r *Renderer) renderLine(t Target, w, h int, viewProj Mat4, from, to Vec3, c Color) {
	p0 := Mat4MulV4(viewProj, Vec4{X: from.X, Y: from.Y, Z: from.Z, W: 1})
	p1 := Mat4MulV4(viewProj, Vec4{X: to.X, Y: to.Y, Z: to.Z, W: 1})
	if p0.W <= clipEpsilon && p1.W <= clipEpsilon {
		return
	}
	// Pull the endpoint behind the camera onto the w=epsilon plane.
	if p0.W <= clipEpsilon {
		p0 = clipTowards(p0, p1)
	} else if p1.W <= clipEpsilon {
		p1 = clipTowards(p1, p0)
	}
	n0, n1 := toNDC(p0), toNDC(p1)
	x0, y0 := ndcToScreen(n0, w, h)
	x1, y1 := ndcToScreen(n1, w, h)
	r.drawLine(t, w, x0, y0, n0.Z, x1, y1, n1.Z, c)
}

func clipTowards(out, in Vec4) Vec4 {
	k := (clipEpsilon - out.W) / (in.W - out.W)
	return Vec4{
		X: out.X + (in.X-out.X)*k,
		Y: out.Y + (in.Y-out.Y)*k,
		Z: out.Z + (in.Z-out.Z)*k,
		W: clipEpsilon,
	}
}

type ndcPoint struct {
	X, Y, Z float32
}

func toNDC(p Vec4) ndcPoint {
	inv := 1 / p.W
	return ndcPoint{X: p.X * inv, Y: p.Y * inv, Z: p.Z * inv}
}

func ndcToScreen(p ndcPoint, w, h int) (x, y int) {
	// Far off-screen points are clamped so integer edge math cannot overflow.
	px := clampF32(p.X, -64, 64)
	py := clampF32(p.Y, -64, 64)
	sx := (px*0.5 + 0.5) * float32(w-1)
	sy := (1 - (py*0.5 + 0.5)) * float32(h-1)
	return int(sx + 0.5), int(sy + 0.5)
}

func (r *Renderer) depthTest(w int, x, y int, z float32) bool {
	if !r.Depth || r.depthBuf == nil {
		return true
	}
	if x < 0 || y < 0 || x >= w {
		return false
	}
	idx := y*w + x
	if idx < 0 || idx >= len(r.depthBuf) {
		return false
	}
	// NDC z is in [-1,1]; map to [0,1].
	d := clampF32(z*0.5+0.5, 0, 1)
	if d >= r.depthBuf[idx] {
		return false
	}
	r.depthBuf[idx] = d
	return true
}

func (r *Renderer) drawLine(t Target, w int, x0, y0 int, z0 float32, x1, y1 int, z1 float32, c Color) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	steps := dx
	if -dy > steps {
		steps = -dy
	}
	dz := float32(0)
	if steps > 0 {
		dz = (z1 - z0) / float32(steps)
	}
	z := z0
	err := dx + dy
	for {
		if r.depthTest(w, x0, y0, z) {
			t.SetPixel(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
		z += dz
	}
}

func (r *Renderer) fillTriangle(t Target, w, h int, x0, y0 int, z0 float32, x1, y1 int, z1 float32, x2, y2 int, z2 float32, c Color) {
	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	if area < 0 {
		// Normalize winding so the inside test below holds for both faces.
		x1, y1, z1, x2, y2, z2 = x2, y2, z2, x1, y1, z1
		area = -area
	}

	minX, maxX := min3(x0, x1, x2), max3(x0, x1, x2)
	minY, maxY := min3(y0, y1, y2), max3(y0, y1, y2)
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= w {
		maxX = w - 1
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1.0 / float32(area)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if (w0 | w1 | w2) < 0 {
				continue
			}
			z := (float32(w0)*z0 + float32(w1)*z1 + float32(w2)*z2) * invArea
			if !r.depthTest(w, x, y, z) {
				continue
			}
			t.SetPixel(x, y, c)
		}
	}
}

func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min3(a, b, c int) int {
	if a > b {
		a = b
	}
	if a > c {
		a = c
	}
	return a
}

func max3(a, b, c int) int {
	if a < b {
		a = b
	}
	if a < c {
		a = c
	}
	return a
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
