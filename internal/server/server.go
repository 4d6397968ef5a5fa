package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/internal/metrics"
	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/locale"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/store"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
	"github.com/goliatone/go-formbuilder/pkg/visibility/expr"
)

const (
	maxBodyBytes  = 1 << 20
	writeWait     = 5 * time.Second
	defaultBuffer = 32
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvaluator replaces the visibility evaluator.
func WithEvaluator(evaluator *visibility.FieldEvaluator) Option {
	return func(s *Server) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithHTMLRenderer replaces the preview renderer.
func WithHTMLRenderer(r *render.HTMLRenderer) Option {
	return func(s *Server) {
		if r != nil {
			s.html = r
		}
	}
}

// WithTranslator localizes the HTML preview.
func WithTranslator(t locale.Translator) Option {
	return func(s *Server) {
		s.translator = t
	}
}

// WithLocale sets the preview locale used when a request names none.
func WithLocale(tag string) Option {
	return func(s *Server) {
		s.locale = tag
	}
}

// WithEventBuffer sets how many events a websocket subscriber may lag behind
// before it is dropped.
func WithEventBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.eventBuffer = n
		}
	}
}

// Server exposes one store over HTTP. The store is single owner, so every
// call into it goes through mu.
type Server struct {
	mu    sync.Mutex
	store *store.Store

	evaluator   *visibility.FieldEvaluator
	html        *render.HTMLRenderer
	translator  locale.Translator
	locale      string
	eventBuffer int
	logger      *zap.Logger
	validate    *validator.Validate
	upgrader    websocket.Upgrader
	hub         *hub

	unsubscribe func()
}

// New wires a Server around s. Store events feed the websocket stream and
// the mutation counters.
func New(s *store.Store, options ...Option) (*Server, error) {
	if s == nil {
		return nil, errors.New("server: store is required")
	}
	srv := &Server{
		store:       s,
		logger:      zap.NewNop(),
		eventBuffer: defaultBuffer,
		validate:    codec.Validator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(srv)
		}
	}
	if srv.evaluator == nil {
		srv.evaluator = visibility.NewFieldEvaluator(expr.New(),
			visibility.WithLogger(srv.logger),
			visibility.WithFailureHandler(metrics.RecordExpressionFailure),
		)
	}
	if srv.translator == nil {
		t, err := locale.NewTranslator(nil)
		if err != nil {
			return nil, err
		}
		srv.translator = t
	}
	if srv.html == nil {
		html, err := render.NewHTML(srv.evaluator,
			render.WithTranslator(srv.translator),
			render.WithLogger(srv.logger),
		)
		if err != nil {
			return nil, err
		}
		srv.html = html
	}
	srv.hub = newHub(srv.eventBuffer, srv.logger)

	srv.mu.Lock()
	unsubscribeHub := s.Subscribe(srv.hub.publish)
	unsubscribeMetrics := s.Subscribe(metrics.RecordStoreEvent)
	srv.mu.Unlock()
	srv.unsubscribe = func() {
		unsubscribeHub()
		unsubscribeMetrics()
	}
	return srv, nil
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/fields", s.listFields)
		r.Post("/fields", s.addField)
		r.Post("/fields/move", s.moveField)
		r.Patch("/fields/{id}", s.updateField)
		r.Delete("/fields/{id}", s.deleteField)
		r.Post("/fields/{id}/duplicate", s.duplicateField)
		r.Put("/selection", s.selectField)
		r.Get("/export", s.export)
		r.Post("/import", s.importFields)
		r.Post("/preview", s.previewVisibility)
		r.Get("/events", s.events)
	})
	r.Post("/preview", s.previewHTML)
	return r
}

// Close detaches the server from the store and disconnects event
// subscribers.
func (s *Server) Close() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Unlock()
	s.hub.closeAll()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	n := s.store.Len()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "fields": n})
}
