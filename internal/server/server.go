// Package server exposes exam generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/examiz/internal/blueprint"
	"github.com/abhisek/examiz/internal/examgen"
	"github.com/abhisek/examiz/internal/llm"
)

// ExamGenerator produces exam content for one part or a whole section.
type ExamGenerator interface {
	Generate(ctx context.Context, req examgen.Request) (*examgen.ExamContent, error)
	GenerateSection(ctx context.Context, section blueprint.Section, difficulty string) (*examgen.Result, error)
}

// Options configures the HTTP server.
type Options struct {
	AllowedOrigins    []string
	RequestTimeout    time.Duration
	DefaultDifficulty string
}

// Server routes HTTP requests to the exam pipeline.
type Server struct {
	gen      ExamGenerator
	registry *blueprint.Registry
	auth     Authenticator
	logger   *zap.Logger
	opts     Options
	router   chi.Router
}

// New builds a Server. auth defaults to AllowAll and logger to a no-op.
func New(gen ExamGenerator, reg *blueprint.Registry, auth Authenticator, logger *zap.Logger, opts Options) *Server {
	if auth == nil {
		auth = AllowAll{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{gen: gen, registry: reg, auth: auth, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, s.accessLog, middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(s.authenticate)
		api.Get("/blueprints", s.listBlueprints)
		api.Post("/exams", s.createExam)
		api.Post("/sections", s.createSection)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type examRequest struct {
	Section    string `json:"section"`
	Part       int    `json:"part"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) createExam(w http.ResponseWriter, r *http.Request) {
	body, section, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	content, err := s.gen.Generate(r.Context(), examgen.Request{Section: section, Part: body.Part, Difficulty: body.Difficulty})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) createSection(w http.ResponseWriter, r *http.Request) {
	body, section, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	res, err := s.gen.GenerateSection(r.Context(), section, body.Difficulty)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Content)
}

// decodeRequest reads the JSON body and resolves its section. On failure
// it has already written the response.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (examRequest, blueprint.Section, bool) {
	var body examRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", fmt.Errorf("bad json: %w", err))
		return body, "", false
	}
	if body.Difficulty == "" {
		body.Difficulty = s.opts.DefaultDifficulty
	}

	section, err := blueprint.ParseSection(body.Section)
	if err != nil {
		s.fail(w, r, &examgen.ErrInvalidSectionOrPart{Section: body.Section, Part: body.Part})
		return body, "", false
	}
	return body, section, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := examgen.KindOf(err)
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprint(int(math.Ceil(rl.RetryAfter.Seconds()))))
	}
	status := statusFor(kind)
	if status >= 500 {
		s.logger.Error("exam generation failed",
			zap.String("request_id", llm.RequestIDFrom(r.Context())),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	writeError(w, status, string(kind), err)
}

type blueprintView struct {
	Section           blueprint.Section    `json:"section"`
	Part              int                  `json:"part"`
	Title             string               `json:"title"`
	OptionType        blueprint.OptionType `json:"optionType"`
	QuestionCount     int                  `json:"questionCount"`
	PointsPerQuestion float64              `json:"pointsPerQuestion"`
	MaxPoints         float64              `json:"maxPoints"`
	CanonicalLabels   []string             `json:"canonicalLabels,omitempty"`
	Instructions      string               `json:"instructions"`
	TimeLimitMinutes  int                  `json:"timeLimitMinutes"`
}

func (s *Server) listBlueprints(w http.ResponseWriter, r *http.Request) {
	var out []blueprintView
	for _, bp := range s.registry.All() {
		out = append(out, blueprintView{
			Section:           bp.Section,
			Part:              bp.Part,
			Title:             bp.Title,
			OptionType:        bp.OptionType,
			QuestionCount:     bp.QuestionCount,
			PointsPerQuestion: bp.PointsPerQuestion,
			MaxPoints:         bp.MaxPoints,
			CanonicalLabels:   bp.CanonicalLabels(),
			Instructions:      bp.Instructions,
			TimeLimitMinutes:  s.registry.TimeLimit(bp.Section),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// statusFor maps error kinds onto HTTP status codes.
func statusFor(kind examgen.Kind) int {
	switch kind {
	case examgen.KindInvalidSectionOrPart:
		return http.StatusBadRequest
	case examgen.KindRateLimited:
		return http.StatusTooManyRequests
	case examgen.KindQuotaExhausted:
		return http.StatusPaymentRequired
	case examgen.KindUpstreamParseFailure:
		return http.StatusBadGateway
	case examgen.KindTransientFailure:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	msg := err.Error()
	if status >= 500 && kind != string(examgen.KindUpstreamParseFailure) && kind != string(examgen.KindTransientFailure) {
		// Internal details stay in the logs.
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := s.auth.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
			return
		}
		s.logger.Debug("authenticated", zap.String("subject", p.Subject))
		next.ServeHTTP(w, r)
	})
}

// requestID takes X-Request-Id from the caller or assigns a UUID, echoes
// it, and attaches it to the context so LLM and repair events carry it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(llm.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("request_id", llm.RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
