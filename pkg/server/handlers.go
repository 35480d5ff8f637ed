package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/observability"
	"github.com/matzehuels/occupancy/pkg/pipeline"
	"github.com/matzehuels/occupancy/pkg/render/overlap"
)

const (
	formatDOT = pipeline.FormatDOT
	formatSVG = pipeline.FormatSVG
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Server) handleTimelines(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts, err := s.options(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeBody(w, r, pipeline.ContentTypes[format], res.Artifacts[format])
}

func (s *Server) handleOverlaps(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateIdentifier("support", id); err != nil {
		s.writeError(w, r, err)
		return
	}
	format := chi.URLParam(r, "format")
	if format == "" {
		format = formatDOT
	}
	if format != formatDOT && format != formatSVG {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg)", format))
		return
	}

	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Filter.Support = id
	opts.Detailed = true

	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	supports := pipeline.MergeSupports(res.Document)
	if len(supports) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no bookings for support %s in %d", id, opts.Year))
		return
	}

	dot := overlap.ToDOT(supports[0], overlap.Options{Detailed: true})
	if format == formatDOT {
		s.writeBody(w, r, pipeline.ContentTypes[formatDOT], []byte(dot))
		return
	}
	svg, err := overlap.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render overlap graph"))
		return
	}
	s.writeBody(w, r, pipeline.ContentTypes[formatSVG], svg)
}

// options builds pipeline options from the server defaults and the query.
func (s *Server) options(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.Defaults.Clone()
	opts.Formats = []string{format}
	opts.Logger = s.requestLogger(r.Context())
	opts.Now = s.now

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidYear, "invalid year %q", v)
		}
		opts.Year = year
	}
	if v, ok := q["group_by"]; ok {
		opts.GroupBy = v[0]
	}
	opts.Filter = pipeline.Filter{
		Vendor:  q.Get("vendor"),
		Client:  q.Get("client"),
		Status:  q.Get("status"),
		Support: q.Get("support"),
	}
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	if v := q.Get("lang"); v != "" {
		opts.Lang = v
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid refresh %q", v)
		}
		opts.Refresh = refresh
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// writeBody sends data with a content ETag, honoring If-None-Match.
func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	sum := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-cache")
	h.Set("ETag", etag)

	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.requestLogger(r.Context()).Warn("write response", "error", err)
	}
}

func etagMatch(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if status >= http.StatusInternalServerError {
		s.requestLogger(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}

	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	if errors.IsInvalid(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSourceUnavailable, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
