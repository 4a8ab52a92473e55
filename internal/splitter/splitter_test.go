package splitter

import (
	"context"
	"errors"
	"math"
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

func TestSplitFittingMeshPassesThrough(t *testing.T) {
	m := cube(10)
	pieces, err := Split(context.Background(), m, Options{Box: r3.Vec{X: 20, Y: 20, Z: 20}})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(pieces) != 1 {
		t.Fatalf("piece count = %d, want 1", len(pieces))
	}
	if pieces[0].Mesh != m {
		t.Error("a fitting mesh must be returned uncut")
	}
	if len(pieces[0].Provenance) != 0 || pieces[0].Unrepaired {
		t.Errorf("fitting piece should carry no provenance and no repair flag")
	}
}

func TestSplitOversizedCube(t *testing.T) {
	m := cube(10)
	box := r3.Vec{X: 6, Y: 6, Z: 6}
	pieces, err := Split(context.Background(), m, Options{Box: box})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	// One midpoint cut per axis: eight 5mm octants.
	if len(pieces) != 8 {
		t.Fatalf("piece count = %d, want 8", len(pieces))
	}
	var volume float64
	for i, p := range pieces {
		if !p.Mesh.IsWatertight() {
			t.Errorf("piece %d is not watertight", i)
		}
		if p.Unrepaired {
			t.Errorf("piece %d flagged unrepaired", i)
		}
		size := p.Mesh.Size()
		if size.X > box.X || size.Y > box.Y || size.Z > box.Z {
			t.Errorf("piece %d size %v exceeds box %v", i, size, box)
		}
		if len(p.Provenance) == 0 {
			t.Errorf("piece %d has no cut provenance", i)
		}
		volume += p.Mesh.SignedVolume()
	}
	if math.Abs(volume-1000) > 1e-6 {
		t.Errorf("total volume = %f, want 1000", volume)
	}
}

func TestSplitSingleAxis(t *testing.T) {
	m := cube(10)
	// Generous X and Y, tight Z: exactly one horizontal cut.
	pieces, err := Split(context.Background(), m, Options{Box: r3.Vec{X: 20, Y: 20, Z: 6}})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("piece count = %d, want 2", len(pieces))
	}
	for i, p := range pieces {
		if got := p.Mesh.Extent(mesh.AxisZ); math.Abs(got-5) > 1e-9 {
			t.Errorf("piece %d Z extent = %f, want 5", i, got)
		}
	}
}

func TestSplitDepthGuard(t *testing.T) {
	m := cube(10)
	_, err := Split(context.Background(), m, Options{
		Box:      r3.Vec{X: 4, Y: 20, Z: 20},
		MaxDepth: 1,
	})
	var re *models.ResourceExceededError
	if !errors.As(err, &re) || re.Resource != "recursion depth" {
		t.Fatalf("error = %v, want recursion depth ResourceExceededError", err)
	}
}

func TestSplitPieceCountGuard(t *testing.T) {
	m := cube(10)
	_, err := Split(context.Background(), m, Options{
		Box:       r3.Vec{X: 4, Y: 4, Z: 4},
		MaxPieces: 2,
	})
	var re *models.ResourceExceededError
	if !errors.As(err, &re) || re.Resource != "piece count" {
		t.Fatalf("error = %v, want piece count ResourceExceededError", err)
	}
}

func TestSplitCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Split(ctx, cube(10), Options{Box: r3.Vec{X: 4, Y: 4, Z: 4}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestSplitEmptyMesh(t *testing.T) {
	pieces, err := Split(context.Background(), mesh.New(nil, nil), Options{Box: r3.Vec{X: 10, Y: 10, Z: 10}})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(pieces) != 0 {
		t.Errorf("piece count = %d, want 0", len(pieces))
	}
}
