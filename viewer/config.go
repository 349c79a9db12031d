package viewer

import (
	"math"
	"time"

	"showcase/ascii"
	"showcase/asset"
	"showcase/gfx"
)

// Camera frustum: vertical field of view in degrees, clip planes, and the
// aspect used until the viewport reports a size.
const (
	FOV           = 75
	Near          = 0.1
	Far           = 1000
	DefaultAspect = 1
)

// FrameBudget is the minimum spacing between rendered frames; RotationStep
// is the model's turn about Y per rendered frame, in radians.
const (
	FrameBudget  = time.Second / 60
	RotationStep = 0.015
)

// CameraTilt is the camera's pitch in radians. AxisLength sizes the axis
// markers drawn on the raw surface.
const (
	CameraTilt = -math.Pi / 5
	AxisLength = 200
)

// Scene placement and shading.
var (
	CameraPosition = gfx.V3(0, 75, 275)
	MeshOffset     = gfx.V3(-180, -30, -50)
	WrapperOffset  = gfx.V3(0, -75, 0)
	ModelColor     = gfx.Hex(0x00ff00)
	LightDirection = gfx.Normalize(gfx.V3(5, 5, 5))
)

// Config selects the session's render target and tunables. Zero tunables
// take their DefaultConfig values.
type Config struct {
	Stylized     bool
	AssetPath    string
	FrameBudget  time.Duration
	RotationStep float32
	ASCII        ascii.Options

	AmbientIntensity     float32
	DirectionalIntensity float32
}

// DefaultConfig returns the hero viewer configuration.
func DefaultConfig() Config {
	return Config{
		Stylized:             true,
		AssetPath:            asset.DefaultPath,
		FrameBudget:          FrameBudget,
		RotationStep:         RotationStep,
		ASCII:                ascii.DefaultOptions(),
		AmbientIntensity:     0.5,
		DirectionalIntensity: 1,
	}
}

// Option configures a Session.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithStylized selects the glyph render target when on, the raw surface
// with axis markers when off.
func WithStylized(on bool) Option {
	return func(c *Config) { c.Stylized = on }
}

// WithAssetPath sets the model path handed to the loader.
func WithAssetPath(p string) Option {
	return func(c *Config) { c.AssetPath = p }
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.AssetPath == "" {
		c.AssetPath = def.AssetPath
	}
	if c.FrameBudget <= 0 {
		c.FrameBudget = def.FrameBudget
	}
	if c.RotationStep == 0 {
		c.RotationStep = def.RotationStep
	}
	if c.ASCII == (ascii.Options{}) {
		c.ASCII = def.ASCII
	}
	if c.AmbientIntensity == 0 {
		c.AmbientIntensity = def.AmbientIntensity
	}
	if c.DirectionalIntensity == 0 {
		c.DirectionalIntensity = def.DirectionalIntensity
	}
}
