package gfx

// PerspectiveCamera is a pinhole camera with a vertical field of view.
//
// Changes to FOV, Aspect, Near or Far take effect after
// UpdateProjectionMatrix, mirroring how callers batch resize work.
type PerspectiveCamera struct {
	FOV    float32 // degrees, vertical
	Aspect float32
	Near   float32
	Far    float32

	Position Vec3
	Rotation Vec3

	projection Mat4
}

// NewPerspectiveCamera returns a camera at the origin looking down -Z.
func NewPerspectiveCamera(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix recomputes the cached projection.
func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = Mat4Perspective(DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// ProjectionMatrix returns the projection computed by the last update.
func (c *PerspectiveCamera) ProjectionMatrix() Mat4 { return c.projection }

// WorldMatrix returns the camera's placement in world space.
func (c *PerspectiveCamera) WorldMatrix() Mat4 { return Mat4Compose(c.Position, c.Rotation) }

// ViewMatrix maps world space into camera space.
func (c *PerspectiveCamera) ViewMatrix() Mat4 { return Mat4RigidInverse(c.WorldMatrix()) }
