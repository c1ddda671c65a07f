// Package httpapi exposes boards over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/1broseidon/gridtile/internal/board"
	"github.com/1broseidon/gridtile/internal/geometry"
	"github.com/1broseidon/gridtile/internal/grid"
	"github.com/1broseidon/gridtile/internal/session"
)

// maxBody bounds request bodies; a board with thousands of widgets fits.
const maxBody = 1 << 20

type Server struct {
	registry *board.Registry
	logger   *log.Logger
	router   chi.Router
}

func New(registry *board.Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{registry: registry, logger: logger.WithPrefix("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/boards", s.listBoards)
	r.Route("/boards/{name}", func(r chi.Router) {
		r.Get("/", s.getBoard)
		r.Delete("/", s.deleteBoard)
		r.Post("/widgets", s.addWidget)
		r.Patch("/widgets/{id}", s.editWidget)
		r.Delete("/widgets/{id}", s.removeWidget)
		r.Post("/events", s.postEvents)
		r.Put("/grid", s.setGrid)
		r.Post("/save", s.saveBoard)
	})
	r.Post("/resolve", s.resolve)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type boardsResponse struct {
	Boards []string `json:"boards"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// editRequest sets a widget's position, size or both. Omitted fields keep
// their current value.
type editRequest struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

type gridRequest struct {
	Grid             geometry.GridConfig `json:"grid"`
	ContainerWidthPx int                 `json:"container_width_px"`
}

type resolveRequest struct {
	Layout    grid.Layout         `json:"layout"`
	ChangedID string              `json:"changed_id"`
	Grid      geometry.GridConfig `json:"grid"`
}

type resolveResponse struct {
	Layout grid.Layout `json:"layout"`
	Rows   int         `json:"rows"`
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	names, err := s.registry.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, boardsResponse{Boards: names})
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	sf, err := s.registry.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sf.View())
}

func (s *Server) deleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addWidget(w http.ResponseWriter, r *http.Request) {
	var spec board.WidgetSpec
	if err := decode(r, &spec); err != nil {
		s.fail(w, err)
		return
	}
	sf, err := s.registry.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := sf.AddWidget(spec); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sf.View())
}

func (s *Server) editWidget(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	sf, err := s.registry.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	current, ok := sf.Snapshot().Widgets.Find(id)
	if !ok {
		s.fail(w, grid.InvalidArgument("edit", "id", "widget %q not in layout", id))
		return
	}

	if req.W != nil || req.H != nil {
		if err := sf.ResizeWidget(id, orInt(req.W, current.W), orInt(req.H, current.H)); err != nil {
			s.fail(w, err)
			return
		}
	}
	if req.X != nil || req.Y != nil {
		if err := sf.MoveWidget(id, orInt(req.X, current.X), orInt(req.Y, current.Y)); err != nil {
			s.fail(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, sf.View())
}

func (s *Server) removeWidget(w http.ResponseWriter, r *http.Request) {
	sf, err := s.registry.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sf.RemoveWidget(chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sf.View())
}

// postEvents accepts a single event or an array of events. Events are
// applied in order and processing stops at the first rejected one.
func (s *Server) postEvents(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decode(r, &raw); err != nil {
		s.fail(w, err)
		return
	}
	var events []session.Event
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &events); err != nil {
			s.fail(w, badJSON(err))
			return
		}
	} else {
		var ev session.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.fail(w, badJSON(err))
			return
		}
		events = append(events, ev)
	}

	sf, err := s.registry.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	for i, ev := range events {
		if err := sf.Handle(ev); err != nil {
			s.fail(w, fmt.Errorf("event %d: %w", i, err))
			return
		}
	}
	writeJSON(w, http.StatusOK, sf.View())
}

func (s *Server) setGrid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	sf, err := s.registry.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sf.SetGrid(req.Grid, req.ContainerWidthPx); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sf.View())
}

func (s *Server) saveBoard(w http.ResponseWriter, r *http.Request) {
	sf, err := s.registry.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sf.Save(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sf.View())
}

// resolve runs the engine on a caller-supplied layout without touching any
// board.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	out, err := grid.Resolve(req.Layout, req.ChangedID, req.Grid)
	if err != nil {
		s.fail(w, err)
		return
	}
	if out == nil {
		out = grid.Layout{}
	}
	writeJSON(w, http.StatusOK, resolveResponse{Layout: out, Rows: out.Bottom()})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case grid.IsInvalidArgument(err):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badJSON(err)
	}
	return nil
}

func badJSON(err error) error {
	return grid.InvalidArgument("http", "body", "invalid JSON: %v", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func orInt(p *int, fallback int) int {
	if p != nil {
		return *p
	}
	return fallback
}
