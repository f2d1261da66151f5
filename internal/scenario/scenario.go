// Package scenario runs the admin prompt round trip: login, create, verify in
// storage, update, verify again.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"promptcheck/config"
	"promptcheck/internal/apiclient"
	"promptcheck/internal/prompts"
	"promptcheck/internal/storage"
)

// ErrNoUserName is returned when a successful login response carries no
// user.name to use as the prompt author.
var ErrNoUserName = errors.New("login response has no user.name")

// PromptService is the subset of prompts.Service the scenario calls.
type PromptService interface {
	Login(ctx context.Context, email, password string) (*apiclient.Document, error)
	Create(ctx context.Context, token string, d prompts.Draft) (*apiclient.Document, string, error)
	Update(ctx context.Context, token, id, description string) (*apiclient.Document, error)
}

// RowLookup reads a prompt row directly from storage.
type RowLookup interface {
	Lookup(ctx context.Context, id string) (*storage.Row, error)
}

// Deps holds what a run needs.
type Deps struct {
	Prompts PromptService
	Storage RowLookup
	Admin   config.AdminConfig
	Sample  config.SampleConfig
	// Out receives the human-readable results
	Out    io.Writer
	Logger *slog.Logger
}

// Result summarizes a run for callers and tests.
type Result struct {
	LoggedIn   bool
	PromptID   string
	CreatedRow *storage.Row
	UpdatedRow *storage.Row
}

// Run executes the scenario once. A failed login is reported on Out and is
// not an error; transport and storage failures abort the run.
func Run(ctx context.Context, d Deps) (*Result, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{}

	login, err := d.Prompts.Login(ctx, d.Admin.Email, d.Admin.Password)
	if err != nil {
		return res, fmt.Errorf("logging in: %w", err)
	}
	if !login.Has("token") {
		logger.Warn("admin login failed", "status", login.StatusCode)
		fmt.Fprintln(d.Out, "Admin login failed:", login)
		return res, nil
	}
	res.LoggedIn = true
	token := login.Get("token").String()
	fmt.Fprintln(d.Out, "Admin login successful.")

	name := login.Get("user.name")
	if !name.Exists() {
		return res, ErrNoUserName
	}
	adminName := name.String()

	created, id, err := d.Prompts.Create(ctx, token, prompts.Draft{
		Title:       d.Sample.Title,
		Description: d.Sample.Description,
		Text:        d.Sample.Text,
		Category:    d.Sample.Category,
		Author:      adminName,
	})
	res.PromptID = id
	if err != nil {
		return res, fmt.Errorf("creating prompt: %w", err)
	}
	logger.Info("prompt created", "id", id, "status", created.StatusCode)
	fmt.Fprintln(d.Out, "Create Prompt Response (Admin):", created)
	fmt.Fprintln(d.Out, "New prompt ID:", id)

	res.CreatedRow, err = d.Storage.Lookup(ctx, id)
	if err != nil {
		return res, fmt.Errorf("verifying created prompt: %w", err)
	}
	fmt.Fprintln(d.Out, "Created Prompt in DB (Admin):", res.CreatedRow)

	updated, err := d.Prompts.Update(ctx, token, id, d.Sample.UpdatedDescription)
	if err != nil {
		return res, fmt.Errorf("updating prompt: %w", err)
	}
	logger.Info("prompt updated", "id", id, "status", updated.StatusCode)
	fmt.Fprintln(d.Out, "Update Prompt Response (Admin):", updated)

	res.UpdatedRow, err = d.Storage.Lookup(ctx, id)
	if err != nil {
		return res, fmt.Errorf("verifying updated prompt: %w", err)
	}
	fmt.Fprintln(d.Out, "Updated Prompt in DB (Admin):", res.UpdatedRow)

	return res, nil
}
