package viewer

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"showcase/ascii"
	"showcase/asset"
	"showcase/gfx"
	"showcase/hal"
)

func tetra() *gfx.Geometry {
	return &gfx.Geometry{
		Positions: []gfx.Vec3{gfx.V3(0, 0, 0), gfx.V3(60, 0, 0), gfx.V3(0, 60, 0), gfx.V3(0, 0, 60)},
		Indices:   []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
}

func okLoader() asset.Loader {
	return asset.LoaderFunc(func(context.Context, string) (*gfx.Geometry, error) { return tetra(), nil })
}

func errLoader(err error) asset.Loader {
	return asset.LoaderFunc(func(context.Context, string) (*gfx.Geometry, error) { return nil, err })
}

func newHost(w, h int) (*hal.Core, *bytes.Buffer) {
	host := hal.New(w, h)
	var log bytes.Buffer
	host.SetLogger(hal.NewWriterLogger(&log))
	return host, &log
}

// settle drains the host until the session leaves AwaitingAsset.
func settle(t *testing.T, host *hal.Core, s *Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.State() == AwaitingAsset {
		if time.Now().After(deadline) {
			t.Fatalf("model load never completed")
		}
		host.Drain()
		time.Sleep(time.Millisecond)
	}
}

func start(t *testing.T, host *hal.Core, l asset.Loader, opts ...Option) *Session {
	t.Helper()
	s := New(host, l, opts...)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestAspectMatchesViewport(t *testing.T) {
	sizes := [][2]int{{1, 1}, {640, 360}, {333, 777}, {1920, 1080}}
	for _, sz := range sizes {
		host, _ := newHost(sz[0], sz[1])
		s := start(t, host, okLoader())
		want := float32(sz[0]) / float32(sz[1])
		if s.Aspect() != want {
			t.Fatalf("%dx%d: aspect=%v want %v", sz[0], sz[1], s.Aspect(), want)
		}
		if w, h := s.SurfaceSize(); w != sz[0] || h != sz[1] {
			t.Fatalf("%dx%d: surface %dx%d", sz[0], sz[1], w, h)
		}
		s.Stop()
	}
}

func TestCameraPose(t *testing.T) {
	host, _ := newHost(100, 100)
	s := start(t, host, okLoader())
	c := s.Camera()
	if c.FOV != 75 || c.Near != 0.1 || c.Far != 1000 {
		t.Fatalf("camera %+v", c)
	}
	if c.Position != gfx.V3(0, 75, 275) || c.Rotation.X != float32(-math.Pi/5) {
		t.Fatalf("pose %+v %+v", c.Position, c.Rotation)
	}
}

func TestStartWithoutViewport(t *testing.T) {
	for _, stylized := range []bool{true, false} {
		host, _ := newHost(100, 50)
		host.RemoveViewport()
		s := start(t, host, okLoader(), WithStylized(stylized))
		if s.Aspect() != DefaultAspect {
			t.Fatalf("aspect=%v", s.Aspect())
		}
		if s.Attached() != nil || len(host.Attached()) != 0 {
			t.Fatalf("element attached without viewport")
		}
		host.SetClientSize(300, 100)
		if s.Aspect() != DefaultAspect {
			t.Fatalf("resize applied without viewport: %v", s.Aspect())
		}
		if err := s.Stop(); err != nil {
			t.Fatalf("Stop: %v", err)
		}
	}
}

func TestUnmountedViewportSizesLater(t *testing.T) {
	host, _ := newHost(0, 0)
	s := start(t, host, okLoader())
	if s.Aspect() != DefaultAspect {
		t.Fatalf("aspect=%v", s.Aspect())
	}
	if w, h := s.SurfaceSize(); w != 0 || h != 0 {
		t.Fatalf("surface %dx%d", w, h)
	}
	host.SetMounted(true)
	host.SetClientSize(200, 100)
	if s.Aspect() != 2 {
		t.Fatalf("aspect after mount=%v", s.Aspect())
	}
}

func TestRenderTargetExclusive(t *testing.T) {
	host, _ := newHost(64, 32)
	s := start(t, host, okLoader(), WithStylized(true))
	att := host.Attached()
	if len(att) != 1 || att[0] != s.Attached() {
		t.Fatalf("attached %v", att)
	}
	if _, ok := att[0].(hal.TextElement); !ok {
		t.Fatalf("stylized target is %T", att[0])
	}
	if _, ok := att[0].(hal.ImageElement); ok {
		t.Fatalf("stylized target exposes raw pixels")
	}
	if s.Scene().Find("axis-x") != nil {
		t.Fatalf("axes added in stylized mode")
	}

	host, _ = newHost(64, 32)
	s = start(t, host, okLoader(), WithStylized(false))
	att = host.Attached()
	if len(att) != 1 {
		t.Fatalf("attached %v", att)
	}
	if _, ok := att[0].(hal.ImageElement); !ok {
		t.Fatalf("raw target is %T", att[0])
	}
	for _, name := range []string{"axis-x", "axis-y", "axis-z"} {
		n := s.Scene().Find(name)
		if n == nil || n.Kind != gfx.KindLine {
			t.Fatalf("missing %s", name)
		}
		if l := gfx.Len(n.To.Sub(n.From)); l != AxisLength {
			t.Fatalf("%s length %v", name, l)
		}
	}
}

func TestLightsAlwaysAdded(t *testing.T) {
	for _, stylized := range []bool{true, false} {
		host, _ := newHost(64, 32)
		s := start(t, host, okLoader(), WithStylized(stylized))
		var ambient, directional int
		for _, n := range s.Scene().Children() {
			switch n.Kind {
			case gfx.KindAmbientLight:
				ambient++
			case gfx.KindDirectionalLight:
				directional++
				if gfx.Len(n.Position) < 0.999 || gfx.Len(n.Position) > 1.001 {
					t.Fatalf("light direction not normalized: %v", n.Position)
				}
			}
		}
		if ambient != 1 || directional != 1 {
			t.Fatalf("stylized=%v ambient=%d directional=%d", stylized, ambient, directional)
		}
	}
}

func TestLoadFailureLeavesSceneStatic(t *testing.T) {
	loaders := map[string]asset.Loader{
		"error": errLoader(errors.New("no such file")),
		"nil":   errLoader(nil),
	}
	for name, l := range loaders {
		host, log := newHost(64, 32)
		s := start(t, host, l, WithStylized(false))
		before := s.Scene().ChildCount()
		settle(t, host, s)

		if s.State() != Static {
			t.Fatalf("%s: state=%v", name, s.State())
		}
		if s.Scene().ChildCount() != before {
			t.Fatalf("%s: children %d -> %d", name, before, s.Scene().ChildCount())
		}
		for i := 1; i <= 10; i++ {
			host.Step(time.Duration(i) * 20 * time.Millisecond)
		}
		if host.FrameRequests() != 0 || s.AcceptedFrames() != 0 {
			t.Fatalf("%s: frames requested=%d accepted=%d", name, host.FrameRequests(), s.AcceptedFrames())
		}
		if !strings.Contains(log.String(), "model load failed") {
			t.Fatalf("%s: log=%q", name, log.String())
		}
	}
}

func TestLoadSuccessAddsWrapperOnce(t *testing.T) {
	host, _ := newHost(64, 32)
	s := start(t, host, okLoader())
	before := s.Scene().ChildCount()
	settle(t, host, s)

	if s.State() != Animating {
		t.Fatalf("state=%v", s.State())
	}
	if s.Scene().ChildCount() != before+1 {
		t.Fatalf("children %d -> %d", before, s.Scene().ChildCount())
	}
	wrapper := s.Scene().Find("model-wrapper")
	if wrapper == nil || wrapper.Position != gfx.V3(0, -75, 0) {
		t.Fatalf("wrapper %+v", wrapper)
	}
	kids := wrapper.Children()
	if len(kids) != 1 || kids[0].Kind != gfx.KindMesh || kids[0].Position != gfx.V3(-180, -30, -50) {
		t.Fatalf("wrapper children %+v", kids)
	}
	if kids[0].Material.Color != gfx.Hex(0x00ff00) {
		t.Fatalf("material %+v", kids[0].Material)
	}
	// The first frame runs as soon as the model arrives.
	if s.AcceptedFrames() != 1 || host.PendingFrames() != 1 {
		t.Fatalf("accepted=%d pending=%d", s.AcceptedFrames(), host.PendingFrames())
	}
}

func runFrames(host *hal.Core, n int, spacing time.Duration) {
	for i := 1; i < n; i++ {
		host.Step(time.Duration(i) * spacing)
	}
}

func TestFrameCapAtNativeRate(t *testing.T) {
	host, _ := newHost(32, 16)
	s := start(t, host, okLoader())
	settle(t, host, s)

	// 120 callbacks including the immediate first frame.
	runFrames(host, 120, time.Second/120)
	if s.AcceptedFrames() != 60 {
		t.Fatalf("accepted=%d skipped=%d", s.AcceptedFrames(), s.SkippedFrames())
	}
	if got := s.ModelRotation(); math.Abs(float64(got)-0.9) > 1e-4 {
		t.Fatalf("rotation=%v", got)
	}
	if s.AcceptedFrames()+s.SkippedFrames() != 120 {
		t.Fatalf("callbacks=%d", s.AcceptedFrames()+s.SkippedFrames())
	}
}

func TestFrameCapAt8ms(t *testing.T) {
	host, _ := newHost(32, 16)
	s := start(t, host, okLoader())
	settle(t, host, s)

	runFrames(host, 120, 8*time.Millisecond)
	// Only every third 8ms callback clears a 16.67ms budget.
	if s.AcceptedFrames() != 40 {
		t.Fatalf("accepted=%d", s.AcceptedFrames())
	}
	if got := s.ModelRotation(); math.Abs(float64(got)-40*RotationStep) > 1e-4 {
		t.Fatalf("rotation=%v", got)
	}
	d := 119 * 8 * time.Millisecond
	limit := uint64(math.Ceil(float64(d)/float64(FrameBudget))) + 1
	if s.AcceptedFrames() > limit {
		t.Fatalf("accepted %d over %v exceeds %d", s.AcceptedFrames(), d, limit)
	}
}

func TestFrameAcceptedIffBudgetElapsed(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		host, _ := newHost(16, 8)
		s := start(t, host, okLoader(), WithStylized(false))
		settle(t, host, s)

		var now, last time.Duration
		want := uint64(1)
		for i := 0; i < 200; i++ {
			now += time.Duration(rng.Int63n(int64(40 * time.Millisecond)))
			if now-last >= FrameBudget {
				want++
				last = now
			}
			host.Step(now)
			if s.AcceptedFrames() != want {
				t.Fatalf("trial %d step %d: accepted=%d want %d", trial, i, s.AcceptedFrames(), want)
			}
		}
		if got, exp := s.ModelRotation(), float32(want)*RotationStep; math.Abs(float64(got-exp)) > 1e-3 {
			t.Fatalf("rotation=%v want %v", got, exp)
		}
	}
}

func TestResizeIdempotent(t *testing.T) {
	host, _ := newHost(64, 32)
	s := start(t, host, okLoader())
	host.SetClientSize(800, 600)
	aspect := s.Aspect()
	w, h := s.SurfaceSize()
	cols, rows := s.effect.Grid()

	host.SetClientSize(800, 600)
	if s.Aspect() != aspect || s.Aspect() != float32(800)/600 {
		t.Fatalf("aspect=%v", s.Aspect())
	}
	if w2, h2 := s.SurfaceSize(); w2 != w || h2 != h || w2 != 800 || h2 != 600 {
		t.Fatalf("surface %dx%d", w2, h2)
	}
	if c2, r2 := s.effect.Grid(); c2 != cols || r2 != rows || c2 != 200 {
		t.Fatalf("grid %dx%d", c2, r2)
	}
}

func TestResizeIgnoresZeroSize(t *testing.T) {
	host, _ := newHost(64, 32)
	s := start(t, host, okLoader())
	host.SetClientSize(0, 10)
	if s.Aspect() != 2 {
		t.Fatalf("aspect=%v", s.Aspect())
	}
}

func TestStopTearsDown(t *testing.T) {
	host, _ := newHost(64, 32)
	s := start(t, host, okLoader())
	settle(t, host, s)
	runFrames(host, 10, 20*time.Millisecond)
	frames := s.AcceptedFrames()

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.State() != Disposed {
		t.Fatalf("state=%v", s.State())
	}
	if len(host.Attached()) != 0 || host.ResizeListeners() != 0 || host.PendingFrames() != 0 {
		t.Fatalf("attached=%d listeners=%d pending=%d", len(host.Attached()), host.ResizeListeners(), host.PendingFrames())
	}
	for i := 0; i < 10; i++ {
		host.Step(time.Second + time.Duration(i)*20*time.Millisecond)
	}
	if s.AcceptedFrames() != frames {
		t.Fatalf("frames after stop: %d -> %d", frames, s.AcceptedFrames())
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestLateLoadDiscarded(t *testing.T) {
	host, log := newHost(64, 32)
	release := make(chan struct{})
	l := asset.LoaderFunc(func(context.Context, string) (*gfx.Geometry, error) {
		<-release
		return tetra(), nil
	})
	s := start(t, host, l)
	before := s.Scene().ChildCount()
	s.Stop()
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(log.String(), "discarded") {
		if time.Now().After(deadline) {
			t.Fatalf("continuation never ran; log=%q", log.String())
		}
		host.Drain()
		time.Sleep(time.Millisecond)
	}
	if s.Scene().ChildCount() != before || s.State() != Disposed || host.FrameRequests() != 0 {
		t.Fatalf("late load mutated session: children=%d state=%v", s.Scene().ChildCount(), s.State())
	}
}

func TestLifecycleErrors(t *testing.T) {
	host, _ := newHost(64, 32)
	s := New(host, okLoader())
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Start after Stop: %v", err)
	}

	s = start(t, host, okLoader())
	if err := s.Start(); !errors.Is(err, ErrStarted) {
		t.Fatalf("second Start: %v", err)
	}
}

func TestRawFramePresents(t *testing.T) {
	host, _ := newHost(96, 64)
	s := start(t, host, okLoader(), WithStylized(false))
	settle(t, host, s)
	if err := host.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	lit := 0
	buf := host.Framebuffer().Buffer()
	for i := 0; i+1 < len(buf); i += 2 {
		if buf[i] != 0 || buf[i+1] != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatalf("nothing rendered")
	}
}

func TestOptions(t *testing.T) {
	host, _ := newHost(64, 32)
	var got string
	l := asset.LoaderFunc(func(_ context.Context, p string) (*gfx.Geometry, error) {
		got = p
		return tetra(), nil
	})
	s := New(host, l, WithConfig(Config{Stylized: false}), WithAssetPath("sdf:inverter"))
	if s.Config().FrameBudget != FrameBudget || s.Config().RotationStep != RotationStep {
		t.Fatalf("defaults not filled: %+v", s.Config())
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	settle(t, host, s)
	if got != "sdf:inverter" {
		t.Fatalf("loaded %q", got)
	}
}

func TestPartialConfigKeepsLighting(t *testing.T) {
	host, _ := newHost(64, 32)
	s := start(t, host, okLoader(), WithConfig(Config{Stylized: false}))
	cfg := s.Config()
	if cfg.AmbientIntensity != 0.5 || cfg.DirectionalIntensity != 1 {
		t.Fatalf("ambient=%v directional=%v", cfg.AmbientIntensity, cfg.DirectionalIntensity)
	}
	if cfg.ASCII != ascii.DefaultOptions() {
		t.Fatalf("ascii options not defaulted: %+v", cfg.ASCII)
	}
	for _, n := range s.Scene().Children() {
		if (n.Kind == gfx.KindAmbientLight || n.Kind == gfx.KindDirectionalLight) && n.Light.Intensity == 0 {
			t.Fatalf("%s light has zero intensity", n.Name)
		}
	}
}
