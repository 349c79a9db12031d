package asset

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"showcase/gfx"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 96

// ModelFunc builds a solid.
type ModelFunc func() (sdf.SDF3, error)

// ProceduralLoader builds "sdf:<name>" models with signed distance fields.
type ProceduralLoader struct {
	Cells  int
	models map[string]ModelFunc
}

// NewProceduralLoader returns a loader with the built-in models.
func NewProceduralLoader() *ProceduralLoader {
	return &ProceduralLoader{
		Cells: defaultMeshCells,
		models: map[string]ModelFunc{
			"inverter": InverterHousing,
		},
	}
}

// Register adds or replaces a model.
func (l *ProceduralLoader) Register(name string, fn ModelFunc) {
	l.models[name] = fn
}

// Models returns the registered model names, sorted.
func (l *ProceduralLoader) Models() []string {
	out := make([]string, 0, len(l.models))
	for name := range l.models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (l *ProceduralLoader) Load(ctx context.Context, p string) (*gfx.Geometry, error) {
	name := strings.TrimPrefix(p, "sdf:")
	fn, ok := l.models[name]
	if !ok {
		return nil, fmt.Errorf("procedural model %q: not found", name)
	}
	s, err := fn()
	if err != nil {
		return nil, fmt.Errorf("procedural model %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cells := l.Cells
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return Mesh(s, cells), nil
}

// Mesh tessellates s with marching cubes into indexed geometry.
func Mesh(s sdf.SDF3, cells int) *gfx.Geometry {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	b := newMeshBuilder(len(triangles))
	for _, tri := range triangles {
		var v [3]gfx.Vec3
		for j := range v {
			v[j] = gfx.Vec3{X: float32(tri[j].X), Y: float32(tri[j].Y), Z: float32(tri[j].Z)}
		}
		b.triangle(v[0], v[1], v[2])
	}
	return b.g
}

// InverterHousing is a finned motor-inverter enclosure with three phase
// connectors. Its minimum corner sits at the origin, in millimetres.
func InverterHousing() (sdf.SDF3, error) {
	const (
		length = 360.0
		height = 60.0
		depth  = 100.0
	)
	body, err := box(length, height, depth)
	if err != nil {
		return nil, err
	}

	// Cooling fins along the top.
	for i := 0; i < 8; i++ {
		fin, err := box(6, 14, depth-20)
		if err != nil {
			return nil, err
		}
		x := 40 + float64(i)*22
		body = sdf.Union3D(body, sdf.Transform3D(fin, sdf.Translate3d(v3.Vec{X: x, Y: height, Z: 10})))
	}

	// Phase connectors on the front face.
	for i := 0; i < 3; i++ {
		c, err := sdf.Cylinder3D(24, 9, 1)
		if err != nil {
			return nil, err
		}
		m := sdf.Translate3d(v3.Vec{X: 250 + float64(i)*30, Y: height / 2, Z: depth + 10})
		body = sdf.Union3D(body, sdf.Transform3D(c, m))
	}

	// Coolant port bore through the side.
	bore, err := sdf.Cylinder3D(length+20, 8, 0)
	if err != nil {
		return nil, err
	}
	m := sdf.Translate3d(v3.Vec{X: length / 2, Y: height / 2, Z: depth / 2}).Mul(sdf.RotateY(math.Pi / 2))
	return sdf.Difference3D(body, sdf.Transform3D(bore, m)), nil
}

// box returns a box with its minimum corner at the origin.
func box(x, y, z float64) (sdf.SDF3, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})), nil
}
