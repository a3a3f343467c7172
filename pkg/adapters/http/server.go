package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tutorgraph"
	"github.com/aretw0/tutorgraph/internal/logging"
	"github.com/aretw0/tutorgraph/pkg/chat"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/registry"
	"github.com/aretw0/tutorgraph/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

//go:embed openapi.yaml
var rawSpec []byte

// ChatService answers learner messages. Implemented by chat.Service.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (chat.Response, error)
}

// SessionService manages session lifecycles. Implemented by session.Manager.
type SessionService interface {
	Start(ctx context.Context, owner string, topics []string, persona string) (*domain.Session, error)
	End(ctx context.Context, sessionID string) (*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Server exposes the chat service and the session manager over HTTP.
type Server struct {
	Chat     ChatService
	Sessions SessionService

	metrics  http.Handler
	logger   *slog.Logger
	doc      *openapi3.T
	router   routers.Router
	validate *validator.Validate
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	Graph     string `json:"graph" validate:"omitempty,oneof=validation enriched tutoring"`
}

type startSessionRequest struct {
	UserID  string   `json:"userId" validate:"required"`
	Topics  []string `json:"topics" validate:"required,min=1,dive,required"`
	Persona string   `json:"persona" validate:"required"`
}

type startSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler. Requests under /api/v1 are validated
// against the embedded OpenAPI document before reaching the handlers.
func NewHandler(chatSvc ChatService, sessions SessionService, opts ...Option) (http.Handler, error) {
	s := &Server{
		Chat:     chatSvc,
		Sessions: sessions,
		logger:   logging.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}
	s.doc = doc
	s.router = router

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.validateRequest)
		r.Post("/chat", s.PostChat)
		r.Post("/sessions/start", s.StartSession)
		r.Post("/sessions/{sessionId}/end", s.EndSession)
		r.Get("/sessions/{sessionId}", s.GetSession)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validateRequest rejects requests that do not match the OpenAPI document.
func (s *Server) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := s.router.FindRoute(r)
		if err != nil {
			if errors.Is(err, routers.ErrMethodNotAllowed) {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			writeError(w, http.StatusNotFound, "route not found")
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.WarnContext(r.Context(), "request rejected by OpenAPI validation", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusBadRequest, "invalid request: "+firstLine(err.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Tutorgraph API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// PostChat handles POST /api/v1/chat.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if !s.decode(w, r, &body) {
		return
	}

	resp, err := s.Chat.Handle(r.Context(), chat.Request{
		SessionID: body.SessionID,
		Message:   body.Message,
		Code:      body.Code,
		Graph:     body.Graph,
	})
	if err != nil {
		status := chatStatus(err)
		if status == http.StatusInternalServerError {
			// Unexpected failures still answer with the tutor apology.
			s.logger.ErrorContext(r.Context(), "chat failed", "error", err)
			writeJSON(w, http.StatusOK, chat.Response{Response: chat.Reply{Sender: chat.SenderTutor, Text: chat.ApologyText}})
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// StartSession handles POST /api/v1/sessions/start.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body startSessionRequest
	if !s.decode(w, r, &body) {
		return
	}

	sess, err := s.Sessions.Start(r.Context(), body.UserID, body.Topics, body.Persona)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "session start failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{SessionID: sess.ID})
}

// EndSession handles POST /api/v1/sessions/{sessionId}/end.
func (s *Server) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.End(r.Context(), chi.URLParam(r, "sessionId"))
	s.writeSession(w, r, sess, err)
}

// GetSession handles GET /api/v1/sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "sessionId"))
	s.writeSession(w, r, sess, err)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, sess *domain.Session, err error) {
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc != nil && s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "tutorgraph-http",
		"version":     strings.TrimSpace(tutorgraph.Version),
		"api_version": apiVersion,
	})
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.WarnContext(r.Context(), "invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func chatStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, chat.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrGraphNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
