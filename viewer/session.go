// Package viewer runs the hero 3D model viewer: it builds the scene, loads
// the model once, spins it at a capped frame rate and follows viewport
// resizes until stopped.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showcase/ascii"
	"showcase/asset"
	"showcase/gfx"
	"showcase/hal"
)

var (
	ErrStarted  = errors.New("viewer: already started")
	ErrDisposed = errors.New("viewer: stopped")
)

// Session owns one viewer instance.
//
// Start, Stop and every callback run on the host loop goroutine, so the
// session needs no locking.
type Session struct {
	host   hal.Host
	loader asset.Loader
	cfg    Config

	state    State
	disposed bool

	scene    *gfx.Scene
	camera   *gfx.PerspectiveCamera
	renderer *gfx.Renderer
	surface  *gfx.Surface
	effect   *ascii.Effect
	wrapper  *gfx.Node

	viewport hal.Viewport
	element  hal.Element

	cancelLoad  context.CancelFunc
	frameID     hal.FrameID
	unsubscribe func()

	last     time.Duration
	hasLast  bool
	accepted uint64
	skipped  uint64
}

// New returns an idle session. Nothing touches the host until Start.
func New(host hal.Host, loader asset.Loader, opts ...Option) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()
	return &Session{host: host, loader: loader, cfg: cfg}
}

// Start builds the scene, attaches the render target and issues the model
// load.
func (s *Session) Start() error {
	if s.disposed {
		return ErrDisposed
	}
	if s.state != Idle {
		return ErrStarted
	}

	s.viewport = s.host.Viewport()
	w, h, sized := s.clientSize()

	aspect := float32(DefaultAspect)
	if sized {
		aspect = float32(w) / float32(h)
	}
	s.scene = gfx.NewScene()
	s.camera = gfx.NewPerspectiveCamera(FOV, aspect, Near, Far)
	s.renderer = gfx.NewRenderer()
	s.surface = gfx.NewSurface(0, 0)
	if sized {
		s.surface.SetSize(w, h)
	}

	if s.cfg.Stylized {
		if s.viewport != nil {
			s.effect = ascii.New(s.renderer, s.surface, s.cfg.ASCII)
			if sized {
				s.effect.SetSize(w, h)
			}
			s.attach(&glyphElement{effect: s.effect})
		}
	} else {
		if s.viewport != nil {
			s.attach(&rawElement{surf: s.surface})
		}
		s.addAxes()
	}

	s.scene.Add(gfx.NewAmbientLight(gfx.White, s.cfg.AmbientIntensity))
	sun := gfx.NewDirectionalLight(gfx.White, s.cfg.DirectionalIntensity)
	sun.Position = LightDirection
	s.scene.Add(sun)

	s.camera.Rotation.X = CameraTilt
	s.camera.Position = CameraPosition

	s.unsubscribe = s.host.Resize().OnResize(s.handleResize)

	s.state = AwaitingAsset
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelLoad = cancel
	asset.LoadAsync(ctx, s.loader, s.cfg.AssetPath, s.host.Dispatcher(), s.onLoad)
	return nil
}

func (s *Session) clientSize() (w, h int, ok bool) {
	if s.viewport == nil {
		return 0, 0, false
	}
	w, h, ok = s.viewport.ClientSize()
	if !ok || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func (s *Session) attach(e hal.Element) {
	s.viewport.Attach(e)
	s.element = e
}

func (s *Session) addAxes() {
	const half = AxisLength / 2
	s.scene.Add(
		gfx.NewLine("axis-x", gfx.V3(-half, 0, 0), gfx.V3(half, 0, 0), gfx.Hex(0xff0000)),
		gfx.NewLine("axis-y", gfx.V3(0, -half, 0), gfx.V3(0, half, 0), gfx.Hex(0x00ff00)),
		gfx.NewLine("axis-z", gfx.V3(0, 0, -half), gfx.V3(0, 0, half), gfx.Hex(0x0000ff)),
	)
}

func (s *Session) logf(format string, args ...any) {
	s.host.Logger().WriteLineString(fmt.Sprintf("viewer: "+format, args...))
}

func (s *Session) onLoad(g *gfx.Geometry, err error) {
	if s.disposed {
		s.logf("load of %s finished after stop, discarded", s.cfg.AssetPath)
		return
	}
	if err == nil && g == nil {
		err = errors.New("no geometry")
	}
	if err != nil {
		s.logf("model load failed: %v", err)
		s.state = Static
		return
	}

	mesh := gfx.NewMesh("model", g, gfx.Material{Color: ModelColor})
	mesh.Position = MeshOffset
	s.wrapper = gfx.NewGroup("model-wrapper")
	s.wrapper.Position = WrapperOffset
	s.wrapper.Add(mesh)
	s.scene.Add(s.wrapper)

	sw, sh := s.surface.Size()
	s.logf("model loaded: %d triangles", g.TriangleCount())
	s.logf("camera at (%.0f, %.0f, %.0f), surface %dx%d",
		s.camera.Position.X, s.camera.Position.Y, s.camera.Position.Z, sw, sh)

	s.state = Animating
	s.frame(s.host.Frames().Now())
}

func (s *Session) frame(now time.Duration) {
	if s.disposed {
		return
	}
	s.frameID = s.host.Frames().RequestFrame(s.frame)

	if s.hasLast && now-s.last < s.cfg.FrameBudget {
		s.skipped++
		return
	}
	s.last = now
	s.hasLast = true
	s.accepted++

	s.wrapper.Rotation.Y += s.cfg.RotationStep
	if s.effect != nil {
		s.effect.Render(s.scene, s.camera)
	} else {
		s.renderer.Render(s.surface, s.scene, s.camera)
	}
}

func (s *Session) handleResize() {
	if s.disposed {
		return
	}
	w, h, ok := s.clientSize()
	if !ok {
		return
	}
	s.surface.SetSize(w, h)
	s.camera.Aspect = float32(w) / float32(h)
	s.camera.UpdateProjectionMatrix()
	if s.effect != nil {
		s.effect.SetSize(w, h)
	}
}

// Stop tears the session down. It is idempotent and safe after a partial
// or missing Start.
func (s *Session) Stop() error {
	if s.disposed {
		return nil
	}
	s.disposed = true
	s.state = Disposed

	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	if s.frameID != 0 {
		s.host.Frames().CancelFrame(s.frameID)
		s.frameID = 0
	}
	if s.element != nil && s.viewport != nil {
		s.viewport.Detach(s.element)
		s.element = nil
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	return nil
}

// State reports the lifecycle state.
func (s *Session) State() State { return s.state }

// AcceptedFrames counts frame callbacks that rendered.
func (s *Session) AcceptedFrames() uint64 { return s.accepted }

// SkippedFrames counts frame callbacks dropped by the frame budget.
func (s *Session) SkippedFrames() uint64 { return s.skipped }

// ModelRotation returns the model's rotation about Y in radians.
func (s *Session) ModelRotation() float32 {
	if s.wrapper == nil {
		return 0
	}
	return s.wrapper.Rotation.Y
}

// Aspect returns the camera aspect ratio, or 0 before Start.
func (s *Session) Aspect() float32 {
	if s.camera == nil {
		return 0
	}
	return s.camera.Aspect
}

// SurfaceSize returns the raw render surface size.
func (s *Session) SurfaceSize() (w, h int) { return s.surface.Size() }

// Scene returns the session's scene graph, or nil before Start.
func (s *Session) Scene() *gfx.Scene { return s.scene }

// Camera returns the perspective camera, or nil before Start.
func (s *Session) Camera() *gfx.PerspectiveCamera { return s.camera }

// Config returns the configuration after defaults were filled in.
func (s *Session) Config() Config { return s.cfg }

// Attached returns the element attached to the viewport, if any.
func (s *Session) Attached() hal.Element { return s.element }
