// Package gfx is the small software 3D pipeline behind the hero viewer.
//
// It covers only what a product turntable needs: a scene graph of groups,
// meshes, line segments and lights, a perspective camera, and a rasterizer
// that draws flat-shaded, depth-tested triangles into a caller-provided
// Target.
//
// Pipeline (fixed):
//
//	Scene → World transform → View/Projection → Near reject → Raster → Target.
//
// All math is float32. Matrices are column-major (m[col*4+row]) like OpenGL
// and three.js, and Euler rotations compose as Rx·Ry·Rz.
package gfx
