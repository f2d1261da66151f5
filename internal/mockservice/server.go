// Package mockservice is a local stand-in for the prompt service. It serves
// the auth and prompt endpoints over a SQLite file so that the scenario can
// run, and its storage lookups can be checked, without the real backend.
package mockservice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RecordedRequest stores information about a received request.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// Server wraps the Echo server
type Server struct {
	echo  *echo.Echo
	store *Store

	mu       sync.Mutex
	tokens   map[string]*User
	requests []RecordedRequest
}

// New creates the service over store.
func New(store *Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		store:  store,
		tokens: make(map[string]*User),
	}

	e.Use(middleware.Recover())
	e.Use(s.record)

	api := e.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.authenticate)
	authed.GET("/prompts/:id", s.getPrompt)
	authed.POST("/prompts", s.createPrompt)
	authed.PUT("/prompts/:id", s.updatePrompt)

	return s
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests returns how many requests matched method and path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  req.Method,
			Path:    req.URL.Path,
			Headers: req.Header.Clone(),
			Body:    body,
		})
		s.mu.Unlock()

		return next(c)
	}
}

func message(text string) map[string]string {
	return map[string]string{"message": text}
}

// authenticate validates the bearer token issued by login.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		const prefix = "Bearer "
		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, prefix) || strings.TrimPrefix(authHeader, prefix) == "" {
			return c.JSON(http.StatusUnauthorized, message("Unauthorized"))
		}

		s.mu.Lock()
		user, ok := s.tokens[strings.TrimPrefix(authHeader, prefix)]
		s.mu.Unlock()
		if !ok {
			return c.JSON(http.StatusForbidden, message("Forbidden"))
		}

		c.Set("user", user)
		return next(c)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, message("Email and password are required"))
	}

	user, err := s.store.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, message("Invalid credentials"))
		}
		return s.internalError(c, err)
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = user
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (s *Server) getPrompt(c echo.Context) error {
	prompt, err := s.store.GetPrompt(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, message("Prompt not found"))
		}
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, prompt)
}

func (s *Server) createPrompt(c echo.Context) error {
	var in PromptInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	if err := s.store.InsertPrompt(c.Request().Context(), in); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Prompt added",
		"id":      in.ID,
	})
}

func (s *Server) updatePrompt(c echo.Context) error {
	var in PromptInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid request body"))
	}

	if err := s.store.UpdatePrompt(c.Request().Context(), c.Param("id"), in); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, message("Prompt updated"))
}

func (s *Server) internalError(c echo.Context, err error) error {
	slog.Error("mock service request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
