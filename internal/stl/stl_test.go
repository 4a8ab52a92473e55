package stl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/mesh"
	"github.com/khirfan/makeitbig/internal/models"
)

func cube(size float64) *mesh.Mesh {
	s := size
	verts := []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: s, Y: 0, Z: 0}, {X: s, Y: s, Z: 0}, {X: 0, Y: s, Z: 0},
		{X: 0, Y: 0, Z: s}, {X: s, Y: 0, Z: s}, {X: s, Y: s, Z: s}, {X: 0, Y: s, Z: s},
	}
	tris := []mesh.Triangle{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{3, 7, 6}, {3, 6, 2},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}
	return mesh.New(verts, tris)
}

func TestBinaryRoundTrip(t *testing.T) {
	src := cube(10)
	data := Encode(src)
	if want := 84 + 12*50; len(data) != want {
		t.Fatalf("encoded size = %d, want %d", len(data), want)
	}
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := m.TriangleCount(); got != src.TriangleCount() {
		t.Errorf("triangle count = %d, want %d", got, src.TriangleCount())
	}
	if got := m.VertexCount(); got != 8 {
		t.Errorf("welded vertex count = %d, want 8", got)
	}
	if !m.IsWatertight() {
		t.Error("round-tripped cube must be watertight")
	}

	// Load, write, re-load: counts stay fixed.
	again, err := Decode(Encode(m))
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if again.VertexCount() != m.VertexCount() || again.TriangleCount() != m.TriangleCount() {
		t.Errorf("second round trip changed counts: %d/%d -> %d/%d",
			m.VertexCount(), m.TriangleCount(), again.VertexCount(), again.TriangleCount())
	}
}

func asciiCube(name string, size float64) string {
	m := cube(size)
	var b strings.Builder
	fmt.Fprintf(&b, "solid %s\n", name)
	for i, tri := range m.Triangles {
		n := m.Normal(i)
		fmt.Fprintf(&b, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
		b.WriteString("    outer loop\n")
		for _, vi := range tri {
			v := m.Vertices[vi]
			fmt.Fprintf(&b, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		b.WriteString("    endloop\n")
		b.WriteString("  endfacet\n")
	}
	fmt.Fprintf(&b, "endsolid %s\n", name)
	return b.String()
}

func TestASCIIDecodeMatchesBinary(t *testing.T) {
	fromASCII, err := Decode([]byte(asciiCube("cube", 10)))
	if err != nil {
		t.Fatalf("ascii decode: %v", err)
	}
	fromBinary, err := Decode(Encode(cube(10)))
	if err != nil {
		t.Fatalf("binary decode: %v", err)
	}
	if fromASCII.TriangleCount() != fromBinary.TriangleCount() {
		t.Errorf("triangle counts differ: ascii %d, binary %d",
			fromASCII.TriangleCount(), fromBinary.TriangleCount())
	}
	if fromASCII.VertexCount() != fromBinary.VertexCount() {
		t.Errorf("vertex counts differ: ascii %d, binary %d",
			fromASCII.VertexCount(), fromBinary.VertexCount())
	}
	if va, vb := fromASCII.SignedVolume(), fromBinary.SignedVolume(); math.Abs(va-vb) > 1e-6 {
		t.Errorf("volumes differ: ascii %f, binary %f", va, vb)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("not an stl")},
		{"truncated binary", Encode(cube(1))[:100]},
		{"ascii missing solid", []byte("facet normal 0 0 1\nendfacet\n")},
		{"ascii short facet", []byte("solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nendloop\nendfacet\nendsolid x\n")},
		{"ascii bad coordinate", []byte("solid x\nfacet normal 0 0 1\nouter loop\nvertex a b c\nvertex 0 0 0\nvertex 1 1 1\nendloop\nendfacet\nendsolid x\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			var fe *models.FormatError
			if !errors.As(err, &fe) {
				t.Errorf("Decode() error = %v, want FormatError", err)
			}
		})
	}
}

func TestDecodeRejectsNaNVertex(t *testing.T) {
	data := Encode(cube(1))
	// Overwrite the first vertex X of the first record with NaN.
	binary.LittleEndian.PutUint32(data[84+12:], math.Float32bits(float32(math.NaN())))
	_, err := Decode(data)
	var fe *models.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("Decode() error = %v, want FormatError", err)
	}
}

func TestDecodeTrustsByteLengthOverHeaderCount(t *testing.T) {
	data := Encode(cube(1))
	// Lie in the header: declare one triangle too few. The payload is still
	// record-aligned, so the decoder should trust the bytes.
	binary.LittleEndian.PutUint32(data[80:], 11)
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := m.TriangleCount(); got != 12 {
		t.Errorf("triangle count = %d, want 12", got)
	}
}

func TestDecodeBinaryWithSolidHeader(t *testing.T) {
	// Binary exporters sometimes write "solid" into the 80-byte comment
	// header. Without facet grammar in the payload this must still decode
	// as binary.
	data := Encode(cube(1))
	copy(data[:80], []byte("solid exported-by-some-tool"))
	m, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := m.TriangleCount(); got != 12 {
		t.Errorf("triangle count = %d, want 12", got)
	}
}

func TestEncodeRecomputesNormals(t *testing.T) {
	m := cube(2)
	data := Encode(m)
	// Record 2 is the first top-face triangle; its normal must be +Z.
	rec := data[84+2*50:]
	n := get3F32(rec)
	if n[2] != 1 || n[0] != 0 || n[1] != 0 {
		t.Errorf("encoded top normal = %v, want (0,0,1)", n)
	}
}

func TestDecodeEmptyASCIISolid(t *testing.T) {
	m, err := Decode([]byte("solid empty\nendsolid empty\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !m.IsEmpty() {
		t.Error("empty solid should decode to an empty mesh")
	}
}
