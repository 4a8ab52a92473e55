// Package pieces turns the splitter's output into the deliverable: pieces
// get stable names in a deterministic order, are checked against the bed
// constraint one last time, and are packaged as a ZIP of binary STL files.
package pieces

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/mesh"
	"github.com/khirfan/makeitbig/internal/models"
	"github.com/khirfan/makeitbig/internal/splitter"
	"github.com/khirfan/makeitbig/internal/stl"
)

// Piece is a named, ordered output mesh.
type Piece struct {
	Name       string
	Index      int
	Mesh       *mesh.Mesh
	Provenance []string
	Unrepaired bool
}

// Assemble orders pieces deterministically and assigns names. Ordering is
// independent of recursion order: pieces sort by bounding-box center along
// the height axis, then along the remaining axes, so piece numbering is
// stable and human-predictable (bottom to top for a Z height axis). Every
// piece is validated against the effective bed box; a violation is an
// internal splitter bug, never expected input behavior.
func Assemble(raw []splitter.Piece, heightAxis mesh.Axis, box r3.Vec) ([]Piece, error) {
	axes := sortAxes(heightAxis)
	sorted := make([]splitter.Piece, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].Mesh.Center(), sorted[j].Mesh.Center()
		for _, a := range axes {
			vi, vj := a.Component(ci), a.Component(cj)
			if vi != vj {
				return vi < vj
			}
		}
		return false
	})

	out := make([]Piece, len(sorted))
	for i, p := range sorted {
		size := p.Mesh.Size()
		for _, a := range []mesh.Axis{mesh.AxisX, mesh.AxisY, mesh.AxisZ} {
			limit := a.Component(box)
			if limit > 0 && a.Component(size)-limit > fitTolerance {
				return nil, &models.InvariantViolation{Msg: fmt.Sprintf(
					"piece %d extent %.3fmm on axis %s exceeds effective bed %.3fmm",
					i+1, a.Component(size), a, limit)}
			}
		}
		out[i] = Piece{
			Name:       fmt.Sprintf("piece_%03d.stl", i+1),
			Index:      i + 1,
			Mesh:       p.Mesh,
			Provenance: p.Provenance,
			Unrepaired: p.Unrepaired,
		}
	}
	return out, nil
}

// fitTolerance absorbs float32 round-off from STL encoding; a piece is not a
// constraint violation over a sub-micron overshoot.
const fitTolerance = 1e-3

// sortAxes returns the height axis first, then the other two in X, Y, Z
// order.
func sortAxes(height mesh.Axis) [3]mesh.Axis {
	axes := [3]mesh.Axis{height}
	n := 1
	for _, a := range []mesh.Axis{mesh.AxisX, mesh.AxisY, mesh.AxisZ} {
		if a != height {
			axes[n] = a
			n++
		}
	}
	return axes
}

// Archive packages the pieces as a ZIP of binary STL entries. Entry headers
// carry no timestamps, so identical pieces produce byte-identical archives.
func Archive(list []Piece) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range list {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   p.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("creating archive entry %s: %w", p.Name, err)
		}
		if _, err := w.Write(stl.Encode(p.Mesh)); err != nil {
			return nil, fmt.Errorf("writing archive entry %s: %w", p.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
