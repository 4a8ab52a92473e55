// Package pipeline sequences one processing request end to end: decode,
// scale, split, assemble, package. Parameters are validated before any
// geometry work; any stage failure aborts the whole request and surfaces a
// single error kind, so a caller either receives a complete archive or none.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/khirfan/makeitbig/internal/geometry"
	"github.com/khirfan/makeitbig/internal/mesh"
	"github.com/khirfan/makeitbig/internal/models"
	"github.com/khirfan/makeitbig/internal/pieces"
	"github.com/khirfan/makeitbig/internal/splitter"
	"github.com/khirfan/makeitbig/internal/stl"
)

// Pipeline processes requests under a fixed set of resource limits. It is
// stateless apart from the limits and safe for concurrent use.
type Pipeline struct {
	limits models.Limits
}

// New returns a pipeline with normalized limits.
func New(limits models.Limits) *Pipeline {
	limits.Normalize()
	return &Pipeline{limits: limits}
}

// Limits returns the normalized limits the pipeline runs under.
func (p *Pipeline) Limits() models.Limits { return p.limits }

// PieceInfo describes one output piece for diagnostics and progress
// reporting.
type PieceInfo struct {
	Name       string
	Triangles  int
	Size       r3.Vec
	Provenance []string
	Unrepaired bool
}

// Result is a completed run: the ZIP archive plus its report.
type Result struct {
	Archive     []byte
	ScaleFactor float64
	Pieces      []PieceInfo
}

// Validate checks request parameters. It is exported so the CLI and the
// server reject bad input with the same rules the pipeline enforces.
func Validate(req models.Request) error {
	if req.TargetHeightFeet <= 0 {
		return &models.ValidationError{Msg: fmt.Sprintf("target height must be positive, got %g", req.TargetHeightFeet)}
	}
	if _, ok := mesh.ParseAxis(req.HeightAxis); !ok {
		return &models.ValidationError{Msg: fmt.Sprintf("height axis must be x, y or z, got %q", req.HeightAxis)}
	}
	if req.PrinterBedSize <= 0 {
		return &models.ValidationError{Msg: fmt.Sprintf("printer bed size must be positive, got %g", req.PrinterBedSize)}
	}
	if req.SafetyMargin < 0 {
		return &models.ValidationError{Msg: fmt.Sprintf("safety margin must not be negative, got %g", req.SafetyMargin)}
	}
	if req.EffectiveBedSize() <= 0 {
		return &models.ValidationError{Msg: fmt.Sprintf(
			"safety margin %gmm leaves no printable area on a %gmm bed", req.SafetyMargin, req.PrinterBedSize)}
	}
	return nil
}

// Process runs the full pipeline on one STL buffer.
func (p *Pipeline) Process(ctx context.Context, req models.Request, data []byte) (*Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if int64(len(data)) > p.limits.MaxUploadBytes {
		return nil, &models.ResourceExceededError{
			Resource: "file size",
			Msg:      fmt.Sprintf("%d bytes exceeds the %d byte limit", len(data), p.limits.MaxUploadBytes),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.limits.Timeout)
	defer cancel()

	m, err := stl.Decode(data)
	if err != nil {
		return nil, err
	}
	if m.TriangleCount() > p.limits.MaxTriangles {
		return nil, &models.ResourceExceededError{
			Resource: "triangle count",
			Msg:      fmt.Sprintf("%d triangles exceeds the %d triangle limit", m.TriangleCount(), p.limits.MaxTriangles),
		}
	}

	axis := req.Axis()
	scaled, factor, err := geometry.ScaleToHeight(m, axis, req.TargetHeightMM())
	if err != nil {
		return nil, err
	}

	bed := req.EffectiveBedSize()
	box := r3.Vec{X: bed, Y: bed, Z: bed}
	raw, err := splitter.Split(ctx, scaled, splitter.Options{
		Box:       box,
		MaxDepth:  p.limits.MaxDepth,
		MaxPieces: p.limits.MaxPieces,
		Workers:   p.limits.Workers,
	})
	if err != nil {
		return nil, timeoutKind(ctx, err)
	}

	assembled, err := pieces.Assemble(raw, axis, box)
	if err != nil {
		return nil, err
	}
	archive, err := pieces.Archive(assembled)
	if err != nil {
		return nil, err
	}

	res := &Result{Archive: archive, ScaleFactor: factor}
	for _, piece := range assembled {
		res.Pieces = append(res.Pieces, PieceInfo{
			Name:       piece.Name,
			Triangles:  piece.Mesh.TriangleCount(),
			Size:       piece.Mesh.Size(),
			Provenance: piece.Provenance,
			Unrepaired: piece.Unrepaired,
		})
	}
	return res, nil
}

// timeoutKind converts a deadline abort into the resource error the caller
// contract names; cancellation and stage errors pass through unchanged.
func timeoutKind(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(ctx.Err(), context.Canceled) {
		return &models.ResourceExceededError{
			Resource: "processing time",
			Msg:      "splitting did not finish within the configured timeout",
		}
	}
	return err
}
