// Package splitter partitions a mesh into pieces that fit a printer bed.
// The mesh is recursively bisected against axis-aligned planes: the axis
// with the greatest overflow ratio is cut at the midpoint of its extent,
// both halves are closed into solids, and each half recurses independently.
// The two branches of every cut operate on disjoint data, so recursion fans
// out over a bounded worker pool.
package splitter

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/geometry"
	"github.com/khirfan/makeitbig/internal/mesh"
	"github.com/khirfan/makeitbig/internal/models"
)

// Piece is one terminal sub-mesh. Provenance records the cuts that produced
// it, for diagnostics only. Unrepaired marks a piece whose cut boundary
// could not be fully closed; it is still emitted.
type Piece struct {
	Mesh       *mesh.Mesh
	Provenance []string
	Unrepaired bool
}

// Options bounds a split run. Box is the effective bed size per axis (bed
// minus twice the safety margin).
type Options struct {
	Box       r3.Vec
	MaxDepth  int
	MaxPieces int
	Workers   int
}

// Split partitions m into pieces whose bounding boxes fit opts.Box on every
// axis. A mesh that already fits is returned as a single piece unchanged.
// Cancellation is checked between recursion steps; depth and piece-count
// guards convert pathological inputs into ResourceExceededError.
func Split(ctx context.Context, m *mesh.Mesh, opts Options) ([]Piece, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = models.DefaultLimits.MaxDepth
	}
	if opts.MaxPieces <= 0 {
		opts.MaxPieces = models.DefaultLimits.MaxPieces
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &splitState{
		opts: opts,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
	g, ctx := errgroup.WithContext(ctx)
	s.run(ctx, g, m, nil, false, 0)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.pieces, nil
}

type splitState struct {
	opts   Options
	sem    *semaphore.Weighted
	mu     sync.Mutex
	pieces []Piece
	count  atomic.Int64
}

// run handles one sub-mesh: either records it as a terminal piece or cuts it
// and recurses on both halves. The second half may run on a pooled worker
// when one is free; otherwise it runs inline, which also bounds goroutine
// growth to the pool size.
func (s *splitState) run(ctx context.Context, g *errgroup.Group, m *mesh.Mesh, provenance []string, unrepaired bool, depth int) {
	g.Go(func() error {
		return s.split(ctx, g, m, provenance, unrepaired, depth)
	})
}

func (s *splitState) split(ctx context.Context, g *errgroup.Group, m *mesh.Mesh, provenance []string, unrepaired bool, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.IsEmpty() {
		// A cut can shave off an empty half; it produces no piece.
		return nil
	}
	plane, overflow := choosePlane(m, s.opts.Box)
	if !overflow {
		s.mu.Lock()
		s.pieces = append(s.pieces, Piece{Mesh: m, Provenance: provenance, Unrepaired: unrepaired})
		s.mu.Unlock()
		return nil
	}
	if depth >= s.opts.MaxDepth {
		return &models.ResourceExceededError{
			Resource: "recursion depth",
			Msg:      fmt.Sprintf("split depth %d reached without fitting the bed", depth),
		}
	}
	if n := s.count.Add(2); n > int64(s.opts.MaxPieces) {
		return &models.ResourceExceededError{
			Resource: "piece count",
			Msg:      fmt.Sprintf("more than %d pieces required", s.opts.MaxPieces),
		}
	}

	res := geometry.Bisect(m, plane)

	belowProv := appendProvenance(provenance, "below "+plane.String())
	aboveProv := appendProvenance(provenance, "above "+plane.String())

	if s.sem.TryAcquire(1) {
		g.Go(func() error {
			defer s.sem.Release(1)
			return s.split(ctx, g, res.Above, aboveProv, unrepaired || !res.AboveClosed, depth+1)
		})
	} else {
		if err := s.split(ctx, g, res.Above, aboveProv, unrepaired || !res.AboveClosed, depth+1); err != nil {
			return err
		}
	}
	return s.split(ctx, g, res.Below, belowProv, unrepaired || !res.BelowClosed, depth+1)
}

// choosePlane picks the axis with the greatest overflow ratio and a cut at
// the midpoint of that axis's extent. Midpoint cuts keep the two halves
// balanced, which minimizes the maximum recursion depth. overflow is false
// when the mesh already fits the box on all axes.
func choosePlane(m *mesh.Mesh, box r3.Vec) (geometry.CutPlane, bool) {
	size := m.Size()
	bounds := m.Bounds()
	best := geometry.CutPlane{}
	bestRatio := 1.0
	found := false
	for _, a := range []mesh.Axis{mesh.AxisX, mesh.AxisY, mesh.AxisZ} {
		limit := a.Component(box)
		if limit <= 0 {
			continue
		}
		ratio := a.Component(size) / limit
		if ratio > bestRatio {
			bestRatio = ratio
			mid := (a.Component(bounds.Min) + a.Component(bounds.Max)) / 2
			best = geometry.CutPlane{Axis: a, Offset: mid}
			found = true
		}
	}
	return best, found
}

// appendProvenance copies before appending; sibling branches share the
// parent slice.
func appendProvenance(prov []string, cut string) []string {
	out := make([]string, len(prov), len(prov)+1)
	copy(out, prov)
	return append(out, cut)
}
