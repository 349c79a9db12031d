// Package asset loads model geometry for the viewer.
package asset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"showcase/gfx"
)

var (
	ErrTruncated = errors.New("stl: truncated")
	ErrMalformed = errors.New("stl: malformed")
)

const (
	stlHeaderSize = 80
	stlRecordSize = 4*3*4 + 2 // normal, three vertices, attribute count
)

// DecodeSTL reads a binary or ASCII STL stream. Shared corners are merged so
// the result is an indexed mesh.
func DecodeSTL(r io.Reader) (*gfx.Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stl: read: %w", err)
	}
	if isBinarySTL(data) {
		return decodeBinarySTL(data)
	}
	if looksASCII(data) {
		return decodeASCIISTL(data)
	}
	return decodeBinarySTL(data)
}

// isBinarySTL checks the record count against the size. Binary files often
// start with "solid" too, so the keyword alone is not enough.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(n)*stlRecordSize
}

func looksASCII(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("solid"))
}

type meshBuilder struct {
	g    *gfx.Geometry
	seen map[gfx.Vec3]uint32
}

func newMeshBuilder(tris int) *meshBuilder {
	return &meshBuilder{
		g: &gfx.Geometry{
			Positions: make([]gfx.Vec3, 0, tris),
			Indices:   make([]uint32, 0, tris*3),
		},
		seen: make(map[gfx.Vec3]uint32, tris),
	}
}

func (b *meshBuilder) vertex(v gfx.Vec3) uint32 {
	if i, ok := b.seen[v]; ok {
		return i
	}
	i := uint32(len(b.g.Positions))
	b.g.Positions = append(b.g.Positions, v)
	b.seen[v] = i
	return i
}

func (b *meshBuilder) triangle(a, c, d gfx.Vec3) {
	b.g.Indices = append(b.g.Indices, b.vertex(a), b.vertex(c), b.vertex(d))
}

func decodeBinarySTL(data []byte) (*gfx.Geometry, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if len(body)/stlRecordSize < n {
		return nil, fmt.Errorf("%w: want %d triangles, have %d", ErrTruncated, n, len(body)/stlRecordSize)
	}

	b := newMeshBuilder(n)
	var v [3]gfx.Vec3
	for i := 0; i < n; i++ {
		rec := body[i*stlRecordSize:]
		for k := range v {
			const start = 3 * 4 // skip normal
			off := start + 12*k
			v[k] = gfx.Vec3{
				X: math.Float32frombits(binary.LittleEndian.Uint32(rec[off:])),
				Y: math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4:])),
				Z: math.Float32frombits(binary.LittleEndian.Uint32(rec[off+8:])),
			}
		}
		b.triangle(v[0], v[1], v[2])
	}
	return b.g, nil
}

func decodeASCIISTL(data []byte) (*gfx.Geometry, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), len(data)+1)
	sc.Split(bufio.ScanWords)

	b := newMeshBuilder(0)
	var loop []gfx.Vec3
	inLoop := false
	for sc.Scan() {
		switch strings.ToLower(sc.Text()) {
		case "outer":
			if !sc.Scan() || strings.ToLower(sc.Text()) != "loop" {
				return nil, fmt.Errorf("%w: expected loop after outer", ErrMalformed)
			}
			if inLoop {
				return nil, fmt.Errorf("%w: nested loop", ErrMalformed)
			}
			inLoop = true
			loop = loop[:0]
		case "vertex":
			if !inLoop {
				return nil, fmt.Errorf("%w: vertex outside loop", ErrMalformed)
			}
			var xyz [3]float32
			for i := range xyz {
				if !sc.Scan() {
					return nil, fmt.Errorf("%w: vertex", ErrTruncated)
				}
				f, err := strconv.ParseFloat(sc.Text(), 32)
				if err != nil {
					return nil, fmt.Errorf("%w: vertex coordinate %q", ErrMalformed, sc.Text())
				}
				xyz[i] = float32(f)
			}
			loop = append(loop, gfx.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "endloop":
			if !inLoop || len(loop) < 3 {
				return nil, fmt.Errorf("%w: loop with %d vertices", ErrMalformed, len(loop))
			}
			// Fan out polygons; most exporters only write triangles.
			for i := 1; i+1 < len(loop); i++ {
				b.triangle(loop[0], loop[i], loop[i+1])
			}
			inLoop = false
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("stl: scan: %w", err)
	}
	if inLoop {
		return nil, fmt.Errorf("%w: unterminated loop", ErrTruncated)
	}
	return b.g, nil
}

// EncodeBinarySTL writes g as a binary STL with face normals. The header is
// truncated or space padded to 80 bytes.
func EncodeBinarySTL(w io.Writer, g *gfx.Geometry, header string) error {
	bw := bufio.NewWriter(w)
	var h [stlHeaderSize]byte
	for i := range h {
		h[i] = ' '
	}
	copy(h[:], header)
	if _, err := bw.Write(h[:]); err != nil {
		return err
	}

	n := g.TriangleCount()
	var buf [stlRecordSize]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(n))
	if _, err := bw.Write(buf[:4]); err != nil {
		return err
	}
	put := func(off int, v gfx.Vec3) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v.Z))
	}
	for i := 0; i < n; i++ {
		a, b, c, ok := g.Triangle(i)
		if !ok {
			return fmt.Errorf("stl: triangle %d has out of range index", i)
		}
		put(0, gfx.FaceNormal(a, b, c))
		put(12, a)
		put(24, b)
		put(36, c)
		buf[48], buf[49] = 0, 0
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
