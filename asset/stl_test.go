package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"showcase/gfx"
)

func tetra() *gfx.Geometry {
	return &gfx.Geometry{
		Positions: []gfx.Vec3{gfx.V3(0, 0, 0), gfx.V3(1, 0, 0), gfx.V3(0, 1, 0), gfx.V3(0, 0, 1)},
		Indices:   []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
}

func TestBinaryRoundTripDedupes(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBinarySTL(&buf, tetra(), "solid tetra"); err != nil {
		t.Fatalf("EncodeBinarySTL: %v", err)
	}
	if buf.Len() != 84+4*50 {
		t.Fatalf("encoded %d bytes", buf.Len())
	}
	// The header starts with "solid" but the size marks it as binary.
	g, err := DecodeSTL(&buf)
	if err != nil {
		t.Fatalf("DecodeSTL: %v", err)
	}
	if g.TriangleCount() != 4 || len(g.Positions) != 4 {
		t.Fatalf("triangles=%d positions=%d", g.TriangleCount(), len(g.Positions))
	}
	a, b, c, _ := g.Triangle(1)
	if a != gfx.V3(0, 0, 0) || b != gfx.V3(1, 0, 0) || c != gfx.V3(0, 0, 1) {
		t.Fatalf("triangle 1 = %v %v %v", a, b, c)
	}
}

func TestEncodeWritesNormals(t *testing.T) {
	g := &gfx.Geometry{
		Positions: []gfx.Vec3{gfx.V3(0, 0, 0), gfx.V3(1, 0, 0), gfx.V3(0, 1, 0)},
		Indices:   []uint32{0, 1, 2},
	}
	var buf bytes.Buffer
	if err := EncodeBinarySTL(&buf, g, ""); err != nil {
		t.Fatalf("EncodeBinarySTL: %v", err)
	}
	var rec struct {
		N [3]float32
	}
	if err := binary.Read(bytes.NewReader(buf.Bytes()[84:]), binary.LittleEndian, &rec); err != nil {
		t.Fatalf("read normal: %v", err)
	}
	if rec.N != [3]float32{0, 0, 1} {
		t.Fatalf("normal %v", rec.N)
	}
}

const asciiQuad = `solid quad
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid quad
`

func TestDecodeASCII(t *testing.T) {
	g, err := DecodeSTL(strings.NewReader(asciiQuad))
	if err != nil {
		t.Fatalf("DecodeSTL: %v", err)
	}
	if g.TriangleCount() != 3 || len(g.Positions) != 4 {
		t.Fatalf("triangles=%d positions=%d", g.TriangleCount(), len(g.Positions))
	}
	lo, hi := g.Bounds()
	if lo != gfx.V3(0, 0, 0) || hi != gfx.V3(1, 1, 0) {
		t.Fatalf("bounds %v %v", lo, hi)
	}
}

func TestDecodeASCIIErrors(t *testing.T) {
	cases := map[string]struct {
		in   string
		want error
	}{
		"bad float":   {"solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 a 0\n", ErrMalformed},
		"no endloop":  {"solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\n", ErrTruncated},
		"stray":       {"solid x\nvertex 0 0 0\n", ErrMalformed},
		"short loop":  {"solid x\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\n", ErrMalformed},
		"cut vertex":  {"solid x\nouter loop\nvertex 0 0", ErrTruncated},
		"outer alone": {"solid x\nouter face\n", ErrMalformed},
	}
	for name, tc := range cases {
		_, err := DecodeSTL(strings.NewReader(tc.in))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err=%v want %v", name, err, tc.want)
		}
	}
}

func TestDecodeBinaryTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBinarySTL(&buf, tetra(), "model"); err != nil {
		t.Fatalf("EncodeBinarySTL: %v", err)
	}
	cut := buf.Bytes()[:buf.Len()-10]
	if _, err := DecodeSTL(bytes.NewReader(cut)); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err=%v", err)
	}
	if _, err := DecodeSTL(bytes.NewReader(nil)); !errors.Is(err, ErrTruncated) {
		t.Fatalf("empty err=%v", err)
	}
}

// Loaders hand DecodeSTL a body stream with no file behind it.
func TestDecodeStreamWithoutPath(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeBinarySTL(&buf, tetra(), "stream"); err != nil {
		t.Fatalf("EncodeBinarySTL: %v", err)
	}
	g, err := DecodeSTL(iotest.OneByteReader(&buf))
	if err != nil {
		t.Fatalf("DecodeSTL: %v", err)
	}
	if g.TriangleCount() != 4 || len(g.Positions) != 4 {
		t.Fatalf("triangles=%d positions=%d", g.TriangleCount(), len(g.Positions))
	}
	if _, err := DecodeSTL(iotest.ErrReader(errors.New("reset"))); err == nil || !strings.Contains(err.Error(), "reset") {
		t.Fatalf("read error not surfaced: %v", err)
	}
}
