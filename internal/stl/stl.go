// Package stl decodes and encodes STL byte buffers. Decoding accepts both
// binary STL (80-byte header, uint32 triangle count, 50-byte records) and
// ASCII STL (solid/facet normal/outer loop grammar) and normalizes either
// into an indexed mesh with welded vertices, which is what gives the
// splitter its connectivity. Encoding always emits binary STL with normals
// recomputed from vertex winding.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/mesh"
	"github.com/khirfan/makeitbig/internal/models"
)

const (
	headerSize = 80
	recordSize = 50
)

// Decode parses an STL byte buffer into a welded, indexed mesh.
func Decode(data []byte) (*mesh.Mesh, error) {
	if looksASCII(data) {
		return decodeASCII(data)
	}
	return decodeBinary(data)
}

// looksASCII reports whether the buffer is ASCII STL. A "solid" prefix alone
// is not enough: binary exporters routinely write "solid" into the comment
// header, so the facet grammar must actually appear.
func looksASCII(data []byte) bool {
	head := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(head, []byte("solid")) {
		return false
	}
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.Contains(probe, []byte("facet")) || bytes.Contains(data, []byte("endsolid"))
}

func decodeBinary(data []byte) (*mesh.Mesh, error) {
	if len(data) < headerSize+4 {
		return nil, &models.FormatError{Msg: fmt.Sprintf("buffer too short for binary STL (%d bytes)", len(data))}
	}
	declared := int(binary.LittleEndian.Uint32(data[headerSize:]))
	body := data[headerSize+4:]

	count := declared
	if len(body) != declared*recordSize {
		// Some exporters write a wrong count. When the byte length itself
		// is record-aligned, trust the bytes over the header.
		if len(body)%recordSize == 0 {
			count = len(body) / recordSize
		} else {
			return nil, &models.FormatError{Msg: fmt.Sprintf(
				"binary STL declares %d triangles but carries %d payload bytes", declared, len(body))}
		}
	}

	b := mesh.NewBuilder()
	for i := 0; i < count; i++ {
		rec := body[i*recordSize:]
		// The stored normal is ignored; it is recomputed from winding on
		// encode. Only the vertices matter.
		v0 := get3F32(rec[12:])
		v1 := get3F32(rec[24:])
		v2 := get3F32(rec[36:])
		if bad3F32(v0) || bad3F32(v1) || bad3F32(v2) {
			return nil, &models.FormatError{Msg: fmt.Sprintf("triangle %d has NaN or Inf vertex", i)}
		}
		b.Add(toVec(v0), toVec(v1), toVec(v2))
	}
	return b.Mesh(), nil
}

func decodeASCII(data []byte) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	b := mesh.NewBuilder()
	var (
		tri         [3]r3.Vec
		vertexCount int
		inFacet     bool
		sawSolid    bool
		sawEnd      bool
		line        int
	)
	for sc.Scan() {
		line++
		fields := bytes.Fields(sc.Bytes())
		if len(fields) == 0 {
			continue
		}
		switch string(fields[0]) {
		case "solid":
			sawSolid = true
		case "facet":
			if !sawSolid {
				return nil, &models.FormatError{Msg: fmt.Sprintf("line %d: facet before solid", line)}
			}
			inFacet = true
			vertexCount = 0
		case "outer", "endloop":
			// "outer loop" and "endloop" carry no data.
		case "vertex":
			if !inFacet {
				return nil, &models.FormatError{Msg: fmt.Sprintf("line %d: vertex outside facet", line)}
			}
			if vertexCount >= 3 {
				return nil, &models.FormatError{Msg: fmt.Sprintf("line %d: more than 3 vertices in facet", line)}
			}
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, &models.FormatError{Msg: fmt.Sprintf("line %d: %v", line, err)}
			}
			tri[vertexCount] = v
			vertexCount++
		case "endfacet":
			if vertexCount != 3 {
				return nil, &models.FormatError{Msg: fmt.Sprintf("line %d: facet has %d vertices", line, vertexCount)}
			}
			b.Add(tri[0], tri[1], tri[2])
			inFacet = false
		case "endsolid":
			sawEnd = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &models.FormatError{Msg: "reading ASCII STL", Err: err}
	}
	if !sawSolid || (!sawEnd && b.TriangleCount() == 0) {
		return nil, &models.FormatError{Msg: "ASCII STL is missing solid/endsolid"}
	}
	return b.Mesh(), nil
}

func parseVertex(fields [][]byte) (r3.Vec, error) {
	if len(fields) != 3 {
		return r3.Vec{}, fmt.Errorf("vertex has %d coordinates, want 3", len(fields))
	}
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(string(f), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("bad coordinate %q", f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r3.Vec{}, fmt.Errorf("non-finite coordinate %q", f)
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// Encode serializes the mesh as binary STL. Per-triangle normals are
// recomputed from vertex winding; whatever the input carried is discarded.
func Encode(m *mesh.Mesh) []byte {
	buf := make([]byte, headerSize+4+m.TriangleCount()*recordSize)
	binary.LittleEndian.PutUint32(buf[headerSize:], uint32(m.TriangleCount()))
	for i, t := range m.Triangles {
		rec := buf[headerSize+4+i*recordSize:]
		n := m.Normal(i)
		put3F32(rec, n)
		put3F32(rec[12:], m.Vertices[t[0]])
		put3F32(rec[24:], m.Vertices[t[1]])
		put3F32(rec[36:], m.Vertices[t[2]])
		binary.LittleEndian.PutUint16(rec[48:], 0)
	}
	return buf
}

func toVec(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func get3F32(b []byte) (f [3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
	return f
}

func put3F32(b []byte, v r3.Vec) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}
