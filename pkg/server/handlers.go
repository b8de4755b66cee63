package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/render/sink"
)

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRecord, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidOrientation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetworkFetch, errors.ErrCodeReconciliation:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error":   string(errors.GetCode(err)),
		"message": errors.UserMessage(err),
	})
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: sans-serif; background: #f7f7f9; }
  header { padding: 8px 16px; background: #2f3640; color: #fff; }
  #notices { position: fixed; top: 48px; right: 16px; width: 280px; }
  .notice { padding: 8px 12px; margin-bottom: 6px; border-radius: 6px; color: #fff; background: #487eb0; }
  .notice.error { background: #c23616; }
  .notice.success { background: #44bd32; }
  main svg { display: block; margin: 16px auto; }
</style>
</head>
<body>
<header>{{.Title}}</header>
<div id="notices"></div>
<main>{{.SVG}}</main>
<script>
  (function () {
    const box = document.getElementById('notices');
    function show(list) {
      box.innerHTML = '';
      (list || []).forEach(n => {
        const d = document.createElement('div');
        d.className = 'notice ' + n.level;
        d.textContent = n.message;
        box.appendChild(d);
      });
    }
    setInterval(() => fetch('/api/notices').then(r => r.json()).then(show).catch(() => {}), 1000);
  })();
</script>
</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	l := s.coord.Layout(r.Context())
	opts := append([]sink.SVGOption{sink.WithInteractive("/ws"), sink.WithTitle(s.title)}, s.svgOpts...)
	svg := sink.RenderSVG(l, opts...)

	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title string
		SVG   template.HTML
	}{s.title, template.HTML(svg)})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRender(rd render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data, err := rd.Render(s.coord.Layout(r.Context()))
		observability.Chart().OnRenderComplete(r.Context(), rd.Format(), len(data), time.Since(start), err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", rd.ContentType())
		_, _ = w.Write(data)
	}
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.coord.Expand(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "nodes": len(s.coord.Layout(r.Context()).Nodes)})
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	collapsed, err := s.coord.ToggleCollapsed(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "collapsed": collapsed})
}

func (s *Server) handleResetPositions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
			return
		}
	}
	n := s.coord.ResetPositions(req.IDs...)
	writeJSON(w, http.StatusOK, map[string]int{"reset": n})
}

func (s *Server) handleOrientation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Orientation string `json:"orientation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Orientation == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidOrientation, "orientation is required"))
		return
	}
	if err := s.coord.SetOrientation(layout.Orientation(req.Orientation)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"orientation": string(s.coord.Layout(r.Context()).Orientation)})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.coord.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	notices := s.coord.Notices()
	if notices == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, notices)
}
