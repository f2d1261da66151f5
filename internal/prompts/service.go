// Package prompts calls the prompt service's auth and prompt endpoints.
package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"promptcheck/internal/apiclient"
)

// Endpoint paths, relative to the API root.
const (
	loginPath   = "/auth/login"
	promptsPath = "/prompts"
)

// Service wraps an API client with the prompt operations.
type Service struct {
	client *apiclient.Client
	logger *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default().
func NewService(client *apiclient.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login submits credentials and returns the service's response as is.
// Success is indicated by a "token" field; there is no separate failure type.
func (s *Service) Login(ctx context.Context, email, password string) (*apiclient.Document, error) {
	doc, err := s.client.Do(ctx, apiclient.Request{
		Op:       "login",
		Method:   http.MethodPost,
		Endpoint: loginPath,
		Body:     loginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("login response", "status", doc.StatusCode, "has_token", doc.Has("token"))
	return doc, nil
}

// Create generates an identifier, posts a new prompt built from d, and returns
// the response with the identifier. The response status is not checked.
func (s *Service) Create(ctx context.Context, token string, d Draft) (*apiclient.Document, string, error) {
	id := NewID()
	doc, err := s.client.Do(ctx, apiclient.Request{
		Op:       "create",
		Method:   http.MethodPost,
		Endpoint: promptsPath,
		Token:    token,
		Body:     NewRecord(id, d),
	})
	if err != nil {
		return nil, id, err
	}
	s.logger.Debug("create response", "id", id, "status", doc.StatusCode)
	return doc, id, nil
}

// Update replaces the description of prompt id by reading the full record,
// changing one field, and writing the whole record back.
//
// If the read is not 2xx its document is returned unchanged and nothing is
// written. There is no conflict detection: concurrent changes made between
// the read and the write are overwritten.
func (s *Service) Update(ctx context.Context, token, id, description string) (*apiclient.Document, error) {
	endpoint := promptsPath + "/" + url.PathEscape(id)

	current, err := s.client.Do(ctx, apiclient.Request{
		Op:       "update",
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Token:    token,
	})
	if err != nil {
		return nil, err
	}
	if !current.OK() {
		s.logger.Debug("update aborted, read failed", "id", id, "status", current.StatusCode)
		return current, nil
	}

	record, err := current.Object()
	if err != nil {
		return nil, fmt.Errorf("update: reading prompt %s: %w", id, err)
	}
	record["description"] = description

	doc, err := s.client.Do(ctx, apiclient.Request{
		Op:       "update",
		Method:   http.MethodPut,
		Endpoint: endpoint,
		Token:    token,
		Body:     record,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("update response", "id", id, "status", doc.StatusCode)
	return doc, nil
}
