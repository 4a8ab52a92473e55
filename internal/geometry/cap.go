package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/mesh"
)

// closeCut seals the open cross-section a cut left on m. Open edges lying in
// the plane are chained into boundary loops, each loop is ear-clipped, and
// the cap triangles are appended wound opposite to the boundary traversal,
// which makes them face outward on both halves of a cut. Returns the closed
// mesh and false when some loop could not be closed; the mesh is still
// emitted in that case, flagged for manual repair downstream.
func closeCut(m *mesh.Mesh, p CutPlane) (*mesh.Mesh, bool) {
	if m.IsEmpty() {
		return m, true
	}
	onPlane := func(i int) bool {
		return math.Abs(p.distance(m.Vertices[i])) <= 2*mesh.Tolerance
	}

	uses := m.EdgeUses()
	// Directed open edges in the plane, collected in triangle order so loop
	// construction (and with it the output byte stream) is deterministic.
	type edge struct {
		tail, head int
		used       bool
	}
	var open []edge
	outgoing := make(map[int][]int) // tail vertex -> indices into open
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if uses[mesh.MakeEdge(a, b)] == 1 && onPlane(a) && onPlane(b) {
				outgoing[a] = append(outgoing[a], len(open))
				open = append(open, edge{tail: a, head: b})
			}
		}
	}
	if len(open) == 0 {
		return m, true
	}

	clean := true
	caps := make([]mesh.Triangle, 0, len(open))
	takeFrom := func(tail int) int {
		for _, idx := range outgoing[tail] {
			if !open[idx].used {
				open[idx].used = true
				return idx
			}
		}
		return -1
	}
	for start := range open {
		if open[start].used {
			continue
		}
		open[start].used = true
		loop := []int{open[start].tail}
		head := open[start].head
		closed := false
		for len(loop) <= len(open) {
			if head == loop[0] {
				closed = true
				break
			}
			loop = append(loop, head)
			idx := takeFrom(head)
			if idx < 0 {
				break
			}
			head = open[idx].head
		}
		if !closed || len(loop) < 3 {
			// Dangling chain: odd open edges or a self-intersecting
			// boundary. The piece is emitted unrepaired.
			clean = false
			continue
		}
		tris, ok := triangulateLoop(loop, m.Vertices, p.Axis)
		if !ok {
			clean = false
		}
		// Flip against the traversal direction so the cap edges pair up
		// with the existing open edges.
		for _, t := range tris {
			caps = append(caps, mesh.Triangle{t[0], t[2], t[1]})
		}
	}
	if len(caps) == 0 {
		return m, clean
	}
	tris := make([]mesh.Triangle, 0, len(m.Triangles)+len(caps))
	tris = append(tris, m.Triangles...)
	tris = append(tris, caps...)
	return mesh.New(m.Vertices, tris), clean
}

// triangulateLoop ear-clips the polygon described by loop (vertex indices in
// boundary order) projected onto the plane orthogonal to axis. The returned
// triangles follow the loop's own orientation. ok is false when ear clipping
// got stuck and a fan fallback was emitted instead.
func triangulateLoop(loop []int, verts []r3.Vec, axis mesh.Axis) ([]mesh.Triangle, bool) {
	type pt struct{ u, w float64 }
	pts := make([]pt, len(loop))
	u := mesh.Axis((int(axis) + 1) % 3)
	w := mesh.Axis((int(axis) + 2) % 3)
	minU, maxU := math.Inf(1), math.Inf(-1)
	minW, maxW := math.Inf(1), math.Inf(-1)
	for i, vi := range loop {
		pts[i] = pt{u: u.Component(verts[vi]), w: w.Component(verts[vi])}
		minU = math.Min(minU, pts[i].u)
		maxU = math.Max(maxU, pts[i].u)
		minW = math.Min(minW, pts[i].w)
		maxW = math.Max(maxW, pts[i].w)
	}
	extent := math.Max(maxU-minU, maxW-minW)
	eps := 1e-12 * extent * extent

	cross := func(a, b, c pt) float64 {
		return (b.u-a.u)*(c.w-a.w) - (b.w-a.w)*(c.u-a.u)
	}

	// Loop orientation from the shoelace sum.
	var area2 float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area2 += pts[i].u*pts[j].w - pts[j].u*pts[i].w
	}
	sign := 1.0
	if area2 < 0 {
		sign = -1
	}

	rem := make([]int, len(loop)) // indices into loop/pts
	for i := range rem {
		rem[i] = i
	}
	var tris []mesh.Triangle

	// Closed-triangle containment: a vertex exactly on the ear's chord (a
	// reflex corner of an axis-aligned cross-section often is) must block
	// the ear, or the cap would cover the notch. The ear's own corners are
	// excluded by index before this is called.
	inside := func(a, b, c, q pt) bool {
		return sign*cross(a, b, q) > -eps &&
			sign*cross(b, c, q) > -eps &&
			sign*cross(c, a, q) > -eps
	}
	emit := func(i0, i1, i2 int) {
		tris = append(tris, mesh.Triangle{loop[i0], loop[i1], loop[i2]})
	}

	for len(rem) > 3 {
		earAt := -1
		// Prefer strictly convex ears; collinear ears are taken only when
		// nothing else remains, which sheds the zero-area slivers that
		// welded grid cuts leave on flat faces.
		for pass := 0; pass < 2 && earAt < 0; pass++ {
			for k := range rem {
				ip := rem[(k+len(rem)-1)%len(rem)]
				ik := rem[k]
				in := rem[(k+1)%len(rem)]
				c := sign * cross(pts[ip], pts[ik], pts[in])
				if pass == 0 && c <= eps {
					continue
				}
				if pass == 1 && c < -eps {
					continue
				}
				blocked := false
				for _, iq := range rem {
					if iq == ip || iq == ik || iq == in {
						continue
					}
					if inside(pts[ip], pts[ik], pts[in], pts[iq]) {
						blocked = true
						break
					}
				}
				if !blocked {
					earAt = k
					break
				}
			}
		}
		if earAt < 0 {
			// Numerically stuck (self-intersecting boundary). Close the
			// remainder with a fan and report the loop as unrepaired.
			for k := 1; k+1 < len(rem); k++ {
				emit(rem[0], rem[k], rem[k+1])
			}
			return tris, false
		}
		ip := rem[(earAt+len(rem)-1)%len(rem)]
		ik := rem[earAt]
		in := rem[(earAt+1)%len(rem)]
		emit(ip, ik, in)
		rem = append(rem[:earAt], rem[earAt+1:]...)
	}
	emit(rem[0], rem[1], rem[2])
	return tris, true
}
