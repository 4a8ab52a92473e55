// Package mesh holds the in-memory triangle mesh model shared by every
// processing stage. A Mesh is an indexed structure: a dense vertex array plus
// triangles referencing vertices by index, so sub-meshes can be sliced off
// without pointer lifetime hazards. Meshes are immutable after construction;
// transforms return new instances.
package mesh

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the geometric epsilon used everywhere in this module: vertex
// welding, degenerate triangle rejection and on-plane classification all snap
// to this value. Coordinates are millimeters, so 1e-6 is a nanometer — far
// below print resolution but large enough to absorb float32 STL round-off.
const Tolerance = 1e-6

// Axis identifies one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "?"
}

// Component returns the coordinate of v along the axis.
func (a Axis) Component(v r3.Vec) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return math.NaN()
}

// ParseAxis converts "x", "y" or "z" to an Axis.
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "x", "X":
		return AxisX, true
	case "y", "Y":
		return AxisY, true
	case "z", "Z":
		return AxisZ, true
	}
	return AxisX, false
}

// Triangle is an ordered triple of vertex indices. Winding is
// counter-clockwise seen from outside the solid.
type Triangle [3]int

// Mesh owns its vertex and triangle arrays. The bounding box is derived
// lazily and cached; everything else is computed on demand.
type Mesh struct {
	Vertices  []r3.Vec
	Triangles []Triangle

	bboxOnce sync.Once
	bbox     r3.Box
}

// New wraps vertex and triangle arrays in a Mesh. The caller hands over
// ownership of both slices.
func New(vertices []r3.Vec, triangles []Triangle) *Mesh {
	return &Mesh{Vertices: vertices, Triangles: triangles}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) }

// IsEmpty reports whether the mesh has no triangles. An empty mesh is legal
// and produces no output piece.
func (m *Mesh) IsEmpty() bool { return len(m.Triangles) == 0 }

// Bounds returns the axis-aligned bounding box. For an empty mesh the zero
// box is returned.
func (m *Mesh) Bounds() r3.Box {
	m.bboxOnce.Do(func() {
		if len(m.Vertices) == 0 {
			return
		}
		b := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
		for _, v := range m.Vertices[1:] {
			b.Min.X = math.Min(b.Min.X, v.X)
			b.Min.Y = math.Min(b.Min.Y, v.Y)
			b.Min.Z = math.Min(b.Min.Z, v.Z)
			b.Max.X = math.Max(b.Max.X, v.X)
			b.Max.Y = math.Max(b.Max.Y, v.Y)
			b.Max.Z = math.Max(b.Max.Z, v.Z)
		}
		m.bbox = b
	})
	return m.bbox
}

// Extent returns the bounding box size along the axis.
func (m *Mesh) Extent(a Axis) float64 {
	b := m.Bounds()
	return a.Component(b.Max) - a.Component(b.Min)
}

// Size returns the bounding box extent on all three axes.
func (m *Mesh) Size() r3.Vec {
	b := m.Bounds()
	return r3.Sub(b.Max, b.Min)
}

// Center returns the bounding box center, used as the deterministic sort key
// for piece ordering.
func (m *Mesh) Center() r3.Vec {
	b := m.Bounds()
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Normal returns the outward unit normal of triangle i computed from vertex
// winding. Degenerate triangles yield the zero vector.
func (m *Mesh) Normal(i int) r3.Vec {
	t := m.Triangles[i]
	v0, v1, v2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
	n := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
	norm := r3.Norm(n)
	if norm <= Tolerance {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}

// Scale returns a new mesh with every vertex multiplied by f on all axes.
func (m *Mesh) Scale(f float64) *Mesh {
	verts := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = r3.Scale(f, v)
	}
	tris := make([]Triangle, len(m.Triangles))
	copy(tris, m.Triangles)
	return New(verts, tris)
}

// Translate returns a new mesh with every vertex shifted by d.
func (m *Mesh) Translate(d r3.Vec) *Mesh {
	verts := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = r3.Add(v, d)
	}
	tris := make([]Triangle, len(m.Triangles))
	copy(tris, m.Triangles)
	return New(verts, tris)
}

// SignedVolume returns the volume enclosed by the mesh, computed as the sum
// of signed tetrahedron volumes against the origin. Positive for a closed
// surface with outward winding.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, t := range m.Triangles {
		v0, v1, v2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		vol += r3.Dot(v0, r3.Cross(v1, v2))
	}
	return vol / 6
}

// Edge is an undirected edge keyed by its two vertex indices, lower first.
type Edge [2]int

// MakeEdge builds the canonical undirected key for the edge (a, b).
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// EdgeUses counts how many triangles reference each undirected edge. A
// manifold edge is used exactly twice.
func (m *Mesh) EdgeUses() map[Edge]int {
	uses := make(map[Edge]int, len(m.Triangles)*3/2)
	for _, t := range m.Triangles {
		uses[MakeEdge(t[0], t[1])]++
		uses[MakeEdge(t[1], t[2])]++
		uses[MakeEdge(t[2], t[0])]++
	}
	return uses
}

// IsWatertight reports whether every edge is shared by exactly two
// triangles. An empty mesh is trivially watertight.
func (m *Mesh) IsWatertight() bool {
	for _, n := range m.EdgeUses() {
		if n != 2 {
			return false
		}
	}
	return true
}

// NonManifoldEdges returns the number of edges not shared by exactly two
// triangles. Surfaced as a diagnostic; never escalated to a failure.
func (m *Mesh) NonManifoldEdges() int {
	count := 0
	for _, n := range m.EdgeUses() {
		if n != 2 {
			count++
		}
	}
	return count
}

// BoundaryEdges returns the directed open edges of the mesh: edges used by
// exactly one triangle, in the direction they appear in that triangle. For a
// consistently wound surface the cap closing an open boundary must traverse
// these edges in the opposite direction.
func (m *Mesh) BoundaryEdges() [][2]int {
	uses := m.EdgeUses()
	var open [][2]int
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if uses[MakeEdge(a, b)] == 1 {
				open = append(open, [2]int{a, b})
			}
		}
	}
	return open
}
