// Package server exposes the processing pipeline over HTTP. The contract is
// two shapes: a multipart POST to /process answered with a ZIP archive of
// binary STL pieces, or a JSON error body with a non-2xx status.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/khirfan/makeitbig/internal/models"
	"github.com/khirfan/makeitbig/internal/pipeline"
)

// Server wires the pipeline into an echo application.
type Server struct {
	echo     *echo.Echo
	pipe     *pipeline.Pipeline
	defaults models.DefaultsConfig
	// gate applies backpressure: when all slots are busy new requests are
	// rejected instead of queueing unbounded mesh work.
	gate *semaphore.Weighted
}

// New builds a server from the configuration.
func New(cfg *models.Config) *Server {
	s := &Server{
		pipe:     pipeline.New(cfg.Limits.ToLimits()),
		defaults: cfg.Defaults,
		gate:     semaphore.NewWeighted(int64(cfg.Server.MaxConcurrent)),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if cfg.Server.RequestLogging {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", s.pipe.Limits().MaxUploadBytes>>20+1)))

	e.POST("/process", s.process)
	e.GET("/healthz", s.healthz)

	s.echo = e
	return s
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Handler exposes the underlying handler, used by tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// errorBody is the JSON failure shape: {"error": "<message>"}.
type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) process(c echo.Context) error {
	if !s.gate.TryAcquire(1) {
		return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "server is busy, retry later"})
	}
	defer s.gate.Release(1)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "no file uploaded"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "cannot read uploaded file"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "cannot read uploaded file"})
	}

	req, err := s.parseRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}

	res, err := s.pipe.Process(c.Request().Context(), req, data)
	if err != nil {
		return c.JSON(statusFor(err), errorBody{Error: err.Error()})
	}

	unrepaired := 0
	for _, p := range res.Pieces {
		if p.Unrepaired {
			unrepaired++
		}
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="processed_stl_files.zip"`)
	c.Response().Header().Set("X-Piece-Count", strconv.Itoa(len(res.Pieces)))
	if unrepaired > 0 {
		c.Response().Header().Set("X-Unrepaired-Pieces", strconv.Itoa(unrepaired))
	}
	return c.Blob(http.StatusOK, "application/zip", res.Archive)
}

// parseRequest reads the form fields, falling back to configured defaults
// for the optional parameters.
func (s *Server) parseRequest(c echo.Context) (models.Request, error) {
	req := models.Request{
		HeightAxis:     s.defaults.HeightAxis,
		PrinterBedSize: s.defaults.PrinterBedSize,
		SafetyMargin:   s.defaults.SafetyMargin,
	}

	height := c.FormValue("target_height_feet")
	if height == "" {
		return req, errors.New("target_height_feet is required")
	}
	v, err := strconv.ParseFloat(height, 64)
	if err != nil {
		return req, fmt.Errorf("target_height_feet is not a number: %q", height)
	}
	req.TargetHeightFeet = v

	if axis := c.FormValue("height_axis"); axis != "" {
		req.HeightAxis = axis
	}
	if bed := c.FormValue("printer_bed_size"); bed != "" {
		v, err := strconv.ParseFloat(bed, 64)
		if err != nil {
			return req, fmt.Errorf("printer_bed_size is not a number: %q", bed)
		}
		req.PrinterBedSize = v
	}
	if margin := c.FormValue("safety_margin"); margin != "" {
		v, err := strconv.ParseFloat(margin, 64)
		if err != nil {
			return req, fmt.Errorf("safety_margin is not a number: %q", margin)
		}
		req.SafetyMargin = v
	}
	return req, nil
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	var (
		formatErr     *models.FormatError
		validationErr *models.ValidationError
		degenerateErr *models.DegenerateMeshError
		resourceErr   *models.ResourceExceededError
		invariantErr  *models.InvariantViolation
	)
	switch {
	case errors.As(err, &formatErr), errors.As(err, &validationErr), errors.As(err, &degenerateErr):
		return http.StatusBadRequest
	case errors.As(err, &resourceErr):
		switch resourceErr.Resource {
		case "file size":
			return http.StatusRequestEntityTooLarge
		case "processing time":
			return http.StatusGatewayTimeout
		default:
			return http.StatusUnprocessableEntity
		}
	case errors.As(err, &invariantErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
