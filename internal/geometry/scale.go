// Package geometry implements the transforms applied to meshes between
// loading and packaging: uniform scaling to a target height and bisection
// against axis-aligned cut planes, including the re-triangulation and cap
// construction that keeps each half a closed solid.
package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/mesh"
	"github.com/khirfan/makeitbig/internal/models"
)

// ScaleToHeight scales m uniformly so its extent along axis equals targetMM,
// then translates the result so its minimum corner sits at the origin.
// Anchoring at the origin makes midpoint cut offsets reproducible run to run.
// Returns the transformed mesh and the applied scale factor.
func ScaleToHeight(m *mesh.Mesh, axis mesh.Axis, targetMM float64) (*mesh.Mesh, float64, error) {
	extent := m.Extent(axis)
	if m.IsEmpty() || extent <= mesh.Tolerance {
		return nil, 0, &models.DegenerateMeshError{Axis: axis.String(), Extent: extent}
	}
	factor := targetMM / extent
	scaled := m.Scale(factor)
	origin := scaled.Bounds().Min
	return scaled.Translate(r3.Scale(-1, origin)), factor, nil
}
