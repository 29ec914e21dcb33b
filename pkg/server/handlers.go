package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/anointarray/sealforge/pkg/artifact"
	"github.com/anointarray/sealforge/pkg/buildinfo"
	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/pipeline"
	"github.com/anointarray/sealforge/pkg/seal/clock"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// Response headers describing a rendered seal.
const (
	HeaderDegraded = "X-Seal-Degraded"
	HeaderCache    = "X-Seal-Cache"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tick struct {
	Label string  `json:"label"`
	Angle float64 `json:"angle"`
}

type artifactResponse struct {
	ID       string   `json:"id"`
	Size     int      `json:"size"`
	Fidelity string   `json:"fidelity"`
	Degraded []string `json:"degraded,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	labels := clock.Labels()
	ticks := make([]tick, len(labels))
	for i, label := range labels {
		angle, _ := clock.AngleFor(label)
		ticks[i] = tick{Label: label, Angle: angle}
	}
	writeJSON(w, http.StatusOK, ticks)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.exportOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatPNG
	}
	opts.Formats = []string{format}
	s.export(w, r, opts)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts, err := s.exportOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("size") == "" {
		opts.Size = pipeline.DefaultPreviewSize
	}
	debug, err := geometry.ParseDebugRings(r.URL.Query().Get("debug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Mode = geometry.ModePreview
	opts.Fidelity = pipeline.FidelityBaseline
	opts.Debug = debug
	opts.Formats = []string{pipeline.FormatPNG}
	s.export(w, r, opts)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	l, err := s.readLayout(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Export(r.Context(), l, s.cfg.Settings, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	writeSealHeaders(w, res)
	w.Header().Set("Content-Type", pipeline.MIME(format))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

func (s *Server) handleCreateArtifact(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "artifact storage is not configured"))
		return
	}
	opts, err := s.exportOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatPNG}

	l, err := s.readLayout(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Export(r.Context(), l, s.cfg.Settings, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kinds := degradedKinds(res)
	meta, err := s.store.Save(r.Context(), artifact.Meta{
		Size:       opts.Size,
		Fidelity:   opts.Fidelity,
		Mode:       opts.Mode.String(),
		LayoutHash: res.LayoutHash,
		Degraded:   kinds,
	}, res.Artifacts[pipeline.FormatPNG])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored seal", "id", meta.ID, "size", meta.Size, "fidelity", meta.Fidelity)

	w.Header().Set("Location", "/v1/seals/artifacts/"+meta.ID)
	writeJSON(w, http.StatusCreated, artifactResponse{
		ID:       meta.ID,
		Size:     meta.Size,
		Fidelity: meta.Fidelity,
		Degraded: kinds,
	})
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeUnsupported, "artifact storage is not configured"))
		return
	}
	_, data, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// exportOptions reads size and fidelity from the query string.
func (s *Server) exportOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Size:     s.cfg.DefaultSize,
		Fidelity: s.cfg.DefaultFidelity,
		Refresh:  q.Get("refresh") == "true",
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidSize, "size %q is not an integer", v)
		}
		opts.Size = n
	}
	if v := q.Get("fidelity"); v != "" {
		opts.Fidelity = v
	}
	return opts, nil
}

func (s *Server) readLayout(w http.ResponseWriter, r *http.Request) (*layout.Layout, error) {
	return layout.ReadLayout(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
}

func writeSealHeaders(w http.ResponseWriter, res *pipeline.Result) {
	if kinds := degradedKinds(res); len(kinds) > 0 {
		w.Header().Set(HeaderDegraded, strings.Join(kinds, ","))
	}
	if res.CacheHit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
}

// degradedKinds returns the distinct degradation kinds in first-seen order.
func degradedKinds(res *pipeline.Result) []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, d := range res.Degraded {
		if !seen[d.Kind] {
			seen[d.Kind] = true
			kinds = append(kinds, d.Kind)
		}
	}
	return kinds
}

// status maps an error to its HTTP status.
func status(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errs.IsInvalid(err):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrCodeNotFound), errs.Is(err, errs.ErrCodeAssetNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errs.Is(err, errs.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := status(err)
	body := errorBody{Code: string(errs.GetCode(err)), Message: errs.UserMessage(err)}
	if body.Code == "" {
		body.Code = string(errs.ErrCodeInternal)
	}
	if code == http.StatusRequestEntityTooLarge {
		body.Code = string(errs.ErrCodeInvalidInput)
		body.Message = "request body too large"
	}
	if code >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		if code == http.StatusInternalServerError && errs.GetCode(err) == "" {
			body.Message = "internal error"
		}
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
