package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/callscape/callscape/pkg/cache"
	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/observability"
	"github.com/callscape/callscape/pkg/profile"
	"github.com/callscape/callscape/pkg/render/console"
	"github.com/callscape/callscape/pkg/render/nodelink"
)

// renderRequest is the body of every render endpoint: the profile
// document plus the options shaping the output.
type renderRequest struct {
	Profile json.RawMessage `json:"profile"`
	Options renderOptions   `json:"options"`
}

// renderOptions mirrors the console and nodelink options with JSON
// names. Zero values fall back to the render defaults; ASCII replaces
// the Unicode toggle so that the zero value means Unicode output.
type renderOptions struct {
	Metrics        []string `json:"metrics,omitempty"`
	Annotation     string   `json:"annotation,omitempty"`
	Precision      int      `json:"precision,omitempty"`
	NameColumn     string   `json:"name_column,omitempty"`
	ExpandNames    bool     `json:"expand_names,omitempty"`
	Context        string   `json:"context,omitempty"`
	Rank           int      `json:"rank,omitempty"`
	Thread         int      `json:"thread,omitempty"`
	Depth          int      `json:"depth,omitempty"`
	HighlightNames bool     `json:"highlight_names,omitempty"`
	Colormap       string   `json:"colormap,omitempty"`
	InvertColormap bool     `json:"invert_colormap,omitempty"`
	Min            *float64 `json:"min,omitempty"`
	Max            *float64 `json:"max,omitempty"`
	Color          bool     `json:"color,omitempty"`
	ASCII          bool     `json:"ascii,omitempty"`
}

func (o renderOptions) metrics() []string {
	if len(o.Metrics) == 0 {
		return []string{"time"}
	}
	return o.Metrics
}

func (o renderOptions) console() console.Options {
	opts := console.Options{
		Unicode:          !o.ASCII,
		Color:            o.Color,
		MetricColumns:    o.metrics(),
		AnnotationColumn: o.Annotation,
		Precision:        o.Precision,
		NameColumn:       o.NameColumn,
		ExpandName:       o.ExpandNames,
		ContextColumn:    o.Context,
		Rank:             o.Rank,
		Thread:           o.Thread,
		Depth:            o.Depth,
		HighlightName:    o.HighlightNames,
		Colormap:         o.Colormap,
		InvertColormap:   o.InvertColormap,
		MinValue:         o.Min,
		MaxValue:         o.Max,
	}
	if opts.Color && o.Annotation != "" {
		opts.AnnotationColors = console.AnnotationColors{Name: opts.Colormap}
	}
	return opts
}

func (o renderOptions) nodelink() nodelink.Options {
	return nodelink.Options{
		MetricColumn: o.metrics()[0],
		NameColumn:   o.NameColumn,
		Rank:         o.Rank,
		Precision:    o.Precision,
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "tree", "text/plain; charset=utf-8", func(ctx context.Context, p *profile.Profile, opts renderOptions) ([]byte, error) {
		copts := opts.console()
		copts.Logger = s.logger
		out, err := console.Render(p.Graph, p.Table, copts)
		return []byte(out), err
	})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dot", "text/vnd.graphviz; charset=utf-8", func(ctx context.Context, p *profile.Profile, opts renderOptions) ([]byte, error) {
		dot, err := nodelink.ToDOT(p.Graph, p.Table, opts.nodelink())
		return []byte(dot), err
	})
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "svg", "image/svg+xml", func(ctx context.Context, p *profile.Profile, opts renderOptions) ([]byte, error) {
		dot, err := nodelink.ToDOT(p.Graph, p.Table, opts.nodelink())
		if err != nil {
			return nil, err
		}
		return nodelink.RenderSVG(ctx, dot)
	})
}

// render is the shared handler body: decode, consult the cache, parse
// the profile, run the renderer, store, respond.
func (s *Server) render(w http.ResponseWriter, r *http.Request, format, contentType string, fn func(context.Context, *profile.Profile, renderOptions) ([]byte, error)) {
	ctx := r.Context()

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if len(req.Profile) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "request is missing the profile document"))
		return
	}

	key := cache.RenderKey(req.Profile, struct {
		Format  string        `json:"format"`
		Options renderOptions `json:"options"`
	}{format, req.Options})

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "render")
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	p, err := profile.ReadJSON(bytes.NewReader(req.Profile))
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	observability.Render().OnRenderStart(ctx, format, len(p.Graph.Nodes()))
	out, err := fn(ctx, p, req.Options)
	observability.Render().OnRenderComplete(ctx, format, len(out), time.Since(start), err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		s.logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(out))
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps error codes to HTTP status and emits a JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidProfile, errors.ErrCodeInvalidColormap,
		errors.ErrCodeInvalidFormat, errors.ErrCodeColumnNotFound, errors.ErrCodeEmptyMetricDomain:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}
