package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Builder accumulates triangles into an indexed mesh, welding coincident
// vertices onto an integer lattice with spacing Tolerance. Welding at build
// time is what gives downstream stages connectivity: triangles that touch
// share vertex indices, so edge adjacency falls out of the index arrays.
type Builder struct {
	inv   float64
	cache map[[3]int64]int
	verts []r3.Vec
	tris  []Triangle
}

// NewBuilder returns a Builder welding at the module-wide Tolerance.
func NewBuilder() *Builder {
	return &Builder{
		inv:   1 / Tolerance,
		cache: make(map[[3]int64]int),
	}
}

// vertex returns the index for v, reusing an existing vertex when v falls in
// the same lattice cell. Rounding (not truncation) keeps cells symmetric
// around zero.
func (b *Builder) vertex(v r3.Vec) int {
	key := [3]int64{
		int64(math.Round(v.X * b.inv)),
		int64(math.Round(v.Y * b.inv)),
		int64(math.Round(v.Z * b.inv)),
	}
	if i, ok := b.cache[key]; ok {
		return i
	}
	i := len(b.verts)
	b.cache[key] = i
	b.verts = append(b.verts, v)
	return i
}

// Add appends one triangle. Triangles that collapse after welding (two
// corners in the same lattice cell) are dropped; they carry no area.
func (b *Builder) Add(v0, v1, v2 r3.Vec) {
	i0 := b.vertex(v0)
	i1 := b.vertex(v1)
	i2 := b.vertex(v2)
	if i0 == i1 || i1 == i2 || i2 == i0 {
		return
	}
	b.tris = append(b.tris, Triangle{i0, i1, i2})
}

// TriangleCount returns the number of triangles added so far.
func (b *Builder) TriangleCount() int { return len(b.tris) }

// Mesh finalizes the builder. The builder must not be used afterwards.
func (b *Builder) Mesh() *Mesh {
	return New(b.verts, b.tris)
}
