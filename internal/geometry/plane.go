package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/mesh"
)

// CutPlane is an axis-aligned plane used to bisect a mesh.
type CutPlane struct {
	Axis   mesh.Axis
	Offset float64
}

func (p CutPlane) String() string {
	return fmt.Sprintf("%s@%.3f", p.Axis, p.Offset)
}

// distance returns the signed distance of v from the plane.
func (p CutPlane) distance(v r3.Vec) float64 {
	return p.Axis.Component(v) - p.Offset
}

// BisectResult carries the two halves of a cut. Either half may be empty.
// BelowClosed/AboveClosed are false when a cut boundary loop on that side
// could not be closed into a cap; the half is still usable but may need
// manual repair.
type BisectResult struct {
	Below, Above             *mesh.Mesh
	BelowClosed, AboveClosed bool
}

// Bisect cuts m against p into a below half and an above half. Straddling
// triangles are re-triangulated at their exact plane intersections, the new
// cross-section boundary is triangulated into caps, and the caps are added
// to both halves with opposite orientation so each half stays a closed
// solid. Triangles lying in the plane are assigned to the below half and
// never duplicated.
func Bisect(m *mesh.Mesh, p CutPlane) BisectResult {
	c := &cutter{
		m:     m,
		plane: p,
		side:  make([]int8, len(m.Vertices)),
		cache: make(map[mesh.Edge]r3.Vec),
		below: mesh.NewBuilder(),
		above: mesh.NewBuilder(),
	}
	for i, v := range m.Vertices {
		d := p.distance(v)
		switch {
		case d < -mesh.Tolerance:
			c.side[i] = -1
		case d > mesh.Tolerance:
			c.side[i] = +1
		default:
			c.side[i] = 0
		}
	}
	for _, t := range m.Triangles {
		c.triangle(t)
	}

	below, belowClosed := closeCut(c.below.Mesh(), p)
	above, aboveClosed := closeCut(c.above.Mesh(), p)
	return BisectResult{
		Below:       below,
		Above:       above,
		BelowClosed: belowClosed,
		AboveClosed: aboveClosed,
	}
}

type cutter struct {
	m     *mesh.Mesh
	plane CutPlane
	side  []int8
	// cache dedups intersection points per mesh edge so adjacent triangles
	// share the exact same cut vertex regardless of traversal direction.
	cache map[mesh.Edge]r3.Vec
	below *mesh.Builder
	above *mesh.Builder
}

// triangle routes one triangle to the below or above builder, splitting it
// when it straddles the plane.
func (c *cutter) triangle(t mesh.Triangle) {
	s0, s1, s2 := c.side[t[0]], c.side[t[1]], c.side[t[2]]
	v0, v1, v2 := c.m.Vertices[t[0]], c.m.Vertices[t[1]], c.m.Vertices[t[2]]

	switch {
	case s0 <= 0 && s1 <= 0 && s2 <= 0:
		// Fully below, including triangles coincident with the plane.
		c.below.Add(v0, v1, v2)
	case s0 >= 0 && s1 >= 0 && s2 >= 0:
		c.above.Add(v0, v1, v2)
	default:
		c.clip(t, -1, c.below)
		c.clip(t, +1, c.above)
	}
}

// clip emits the part of triangle t on the keep side of the plane. The
// clipped region is a triangle or a quad; it is fan-triangulated preserving
// the original winding. Vertices on the plane belong to both sides.
func (c *cutter) clip(t mesh.Triangle, keep int8, out *mesh.Builder) {
	var poly [4]r3.Vec
	n := 0
	for k := 0; k < 3; k++ {
		i, j := t[k], t[(k+1)%3]
		si, sj := c.side[i], c.side[j]
		if si == keep || si == 0 {
			poly[n] = c.m.Vertices[i]
			n++
		}
		if si*sj < 0 {
			poly[n] = c.intersect(i, j)
			n++
		}
	}
	if n < 3 {
		return
	}
	out.Add(poly[0], poly[1], poly[2])
	if n == 4 {
		out.Add(poly[0], poly[2], poly[3])
	}
}

// intersect returns the point where mesh edge (i, j) crosses the plane,
// computed once per undirected edge. Interpolating from the canonical lower
// index makes the result independent of traversal direction, and the axis
// coordinate is pinned exactly to the plane offset.
func (c *cutter) intersect(i, j int) r3.Vec {
	e := mesh.MakeEdge(i, j)
	if v, ok := c.cache[e]; ok {
		return v
	}
	a := c.m.Vertices[e[0]]
	b := c.m.Vertices[e[1]]
	da := c.plane.distance(a)
	db := c.plane.distance(b)
	t := da / (da - db)
	v := r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
	switch c.plane.Axis {
	case mesh.AxisX:
		v.X = c.plane.Offset
	case mesh.AxisY:
		v.Y = c.plane.Offset
	case mesh.AxisZ:
		v.Z = c.plane.Offset
	}
	c.cache[e] = v
	return v
}
