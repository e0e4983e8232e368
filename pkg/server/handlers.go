package server

import (
	"encoding/json"
	"math"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/squaremap/pkg/buildinfo"
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/interact"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/holdings"
	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/storage"
)

// =============================================================================
// Request / Response Types
// =============================================================================

type createRequest struct {
	Name     string          `json:"name"`
	Holdings holdings.File   `json:"holdings"`
	Canvas   *storage.Canvas `json:"canvas"`
	Palette  []string        `json:"palette"`
	Content  *content.Config `json:"content"`
}

type summary struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Cells     int            `json:"cells"`
	Canvas    storage.Canvas `json:"canvas"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type hitCell struct {
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

type hitResponse struct {
	Hit     bool            `json:"hit"`
	Cell    *hitCell        `json:"cell,omitempty"`
	Tooltip *interact.Point `json:"tooltip,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type statsResponse struct {
	observability.Snapshot
	CacheHitRate float64 `json:"cache_hit_rate"`
	Layers       int     `json:"layers"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	s.mu.Lock()
	layers := len(s.layers)
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, statsResponse{Snapshot: snap, CacheHitRate: snap.HitRate(), Layers: layers})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	// Omitted canvas and content fields keep the server defaults.
	canvas := storage.Canvas{Width: s.defaults.Width, Height: s.defaults.Height, Padding: s.defaults.Padding}
	cfg := s.defaults.Content
	req := createRequest{Canvas: &canvas, Content: &cfg, Palette: slices.Clone(s.defaults.Palette)}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Holdings.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	opts.Width, opts.Height, opts.Padding = canvas.Width, canvas.Height, canvas.Padding
	opts.Palette = req.Palette
	opts.Content = cfg

	rec := &storage.Record{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Holdings: req.Holdings,
		Palette:  req.Palette,
	}
	if err := s.compute(r, rec, opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.layer(rec)

	s.logger.Info("created layout", "id", rec.ID, "cells", len(rec.Layout.Cells))
	w.Header().Set("Location", "/api/layouts/"+rec.ID)
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]summary, len(recs))
	for i, rec := range recs {
		out[i] = summary{
			ID:        rec.ID,
			Name:      rec.Name,
			Cells:     len(rec.Layout.Cells),
			Canvas:    rec.Canvas,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{
		Formats:  []string{pipeline.FormatSVG},
		Tooltips: r.URL.Query().Get("tooltips") != "false",
		Font:     s.defaults.Font,
	}
	artifacts, err := s.runner.Render(r.Context(), rec.Layout, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[pipeline.FormatSVG])
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	var canvas storage.Canvas
	if err := decodeBody(w, r, &canvas); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.defaults
	opts.Width, opts.Height, opts.Padding = canvas.Width, canvas.Height, canvas.Padding
	opts.Palette = rec.Palette
	opts.Content = rec.Layout.Text
	if err := s.compute(r, rec, opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.layer(rec).Swap(rec.Layout.Scene().Layout)

	s.logger.Info("resized layout", "id", rec.ID, "width", canvas.Width, "height", canvas.Height)
	s.writeJSON(w, http.StatusOK, rec)
}

// finiteParam parses a query value, rejecting NaN and infinities, which
// ParseFloat accepts.
func finiteParam(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := finiteParam(q.Get("x"))
	y, errY := finiteParam(q.Get("y"))
	if errX != nil || errY != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "x and y must be finite numbers"))
		return
	}
	var viewport interact.Size
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"vw", &viewport.W}, {"vh", &viewport.H}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := finiteParam(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number, got %q", p.name, v))
			return
		}
		*p.dst = f
	}

	rec, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	hit, ok := s.layer(rec).Hover(x, y, viewport)
	observability.Server().OnHover(r.Context(), ok)
	if !ok {
		s.writeJSON(w, http.StatusOK, hitResponse{})
		return
	}
	s.writeJSON(w, http.StatusOK, hitResponse{
		Hit: true,
		Cell: &hitCell{
			Index: hit.Node.Index,
			Name:  hit.Node.Item.Name,
			Value: hit.Node.Item.Value,
			Share: hit.Share,
		},
		Tooltip: &hit.Tooltip,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.dropLayer(id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// compute lays out rec.Holdings with opts and stores the result and the
// canvas on rec.
func (s *Server) compute(r *http.Request, rec *storage.Record, opts pipeline.Options) error {
	doc, err := s.runner.GenerateLayout(r.Context(), rec.Holdings, opts)
	if err != nil {
		return err
	}
	rec.Layout = doc
	rec.Canvas = storage.Canvas{Width: opts.Width, Height: opts.Height, Padding: opts.Padding}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// writeJSON encodes v before sending the status, so an unencodable value
// becomes a 500 rather than an empty success.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		body, status = []byte(`{"code":"INTERNAL_ERROR","message":"internal error"}`), http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		if code == errors.ErrCodeInternal {
			msg = "internal error"
		}
	}
	s.writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// logRequests logs every request and reports it to the server hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		observability.Server().OnRequest(r.Context(), r.Method, route, status, duration)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
