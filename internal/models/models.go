// Package models holds the shared request, limit and configuration types
// used across the pipeline, the HTTP server and the CLI.
package models

import (
	"time"

	"github.com/khirfan/makeitbig/internal/mesh"
)

// MillimetersPerFoot converts the form's target height (feet) to the
// millimeter space every geometric stage works in.
const MillimetersPerFoot = 304.8

// Request carries the processing parameters exactly as submitted by the form
// or the CLI. All lengths except TargetHeightFeet are millimeters.
type Request struct {
	TargetHeightFeet float64
	HeightAxis       string
	PrinterBedSize   float64
	SafetyMargin     float64
}

// TargetHeightMM returns the target height normalized to millimeters.
func (r Request) TargetHeightMM() float64 {
	return r.TargetHeightFeet * MillimetersPerFoot
}

// EffectiveBedSize returns the true per-piece size limit: the bed dimension
// reduced by the safety margin on both sides.
func (r Request) EffectiveBedSize() float64 {
	return r.PrinterBedSize - 2*r.SafetyMargin
}

// Axis returns the parsed height axis. Callers must have validated the
// request first.
func (r Request) Axis() mesh.Axis {
	a, _ := mesh.ParseAxis(r.HeightAxis)
	return a
}

// Limits bounds the resources a single request may consume. Zero values are
// filled in by Normalize.
type Limits struct {
	// MaxUploadBytes caps the size of the submitted STL file.
	MaxUploadBytes int64
	// MaxTriangles caps the triangle count of the decoded mesh.
	MaxTriangles int
	// MaxPieces aborts a split that fans out pathologically.
	MaxPieces int
	// MaxDepth bounds the recursion depth of the splitter.
	MaxDepth int
	// Timeout is the wall-clock budget for one pipeline run.
	Timeout time.Duration
	// Workers is the size of the splitter's worker pool. 0 means GOMAXPROCS.
	Workers int
}

// DefaultLimits are the limits applied when the configuration leaves them
// unset. The upload cap matches the documented interface contract; the
// timeout matches the original service's 15 minute processing budget.
var DefaultLimits = Limits{
	MaxUploadBytes: 100 << 20,
	MaxTriangles:   4_000_000,
	MaxPieces:      4096,
	MaxDepth:       48,
	Timeout:        15 * time.Minute,
}

// Normalize fills unset fields from DefaultLimits.
func (l *Limits) Normalize() {
	if l.MaxUploadBytes <= 0 {
		l.MaxUploadBytes = DefaultLimits.MaxUploadBytes
	}
	if l.MaxTriangles <= 0 {
		l.MaxTriangles = DefaultLimits.MaxTriangles
	}
	if l.MaxPieces <= 0 {
		l.MaxPieces = DefaultLimits.MaxPieces
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultLimits.MaxDepth
	}
	if l.Timeout <= 0 {
		l.Timeout = DefaultLimits.Timeout
	}
}

// Config is the YAML configuration schema for the server and the CLI
// defaults.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Limits   LimitsConfig   `yaml:"limits"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address        string `yaml:"address"`
	MaxConcurrent  int    `yaml:"max_concurrent"`
	RequestLogging bool   `yaml:"request_logging"`
}

// LimitsConfig is the YAML view of Limits.
type LimitsConfig struct {
	MaxUploadMB  int64         `yaml:"max_upload_mb"`
	MaxTriangles int           `yaml:"max_triangles"`
	MaxPieces    int           `yaml:"max_pieces"`
	MaxDepth     int           `yaml:"max_depth"`
	Timeout      time.Duration `yaml:"timeout"`
	Workers      int           `yaml:"workers"`
}

// DefaultsConfig supplies parameter defaults for requests that omit them.
type DefaultsConfig struct {
	PrinterBedSize float64 `yaml:"printer_bed_size"`
	SafetyMargin   float64 `yaml:"safety_margin"`
	HeightAxis     string  `yaml:"height_axis"`
}

// ToLimits converts the YAML view into runtime Limits.
func (c LimitsConfig) ToLimits() Limits {
	l := Limits{
		MaxUploadBytes: c.MaxUploadMB << 20,
		MaxTriangles:   c.MaxTriangles,
		MaxPieces:      c.MaxPieces,
		MaxDepth:       c.MaxDepth,
		Timeout:        c.Timeout,
		Workers:        c.Workers,
	}
	l.Normalize()
	return l
}
