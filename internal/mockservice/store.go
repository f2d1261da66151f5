package mockservice

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  tags TEXT,
  text TEXT NOT NULL,
  category TEXT NOT NULL,
  author TEXT,
  isRecommended INTEGER,
  createdAt INTEGER,
  isPublic INTEGER NOT NULL,
  supportedInputs TEXT
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT UNIQUE NOT NULL,
  password TEXT NOT NULL,
  name TEXT,
  avatarUrl TEXT,
  role TEXT DEFAULT 'user'
);
`

// Seeded administrator account
const (
	AdminID       = "user-admin"
	AdminEmail    = "admin@example.com"
	AdminPassword = "adminpassword"
	AdminName     = "Admin"
)

// ErrNotFound is returned when a prompt or user does not exist.
var ErrNotFound = errors.New("not found")

// User is a row of the users table
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Name         *string `json:"name"`
	AvatarURL    *string `json:"avatarUrl"`
	Role         string  `json:"role"`
}

// PromptInput is the writable part of a prompt as sent by clients.
// Flags accept booleans or numbers; list fields are stored as JSON text.
type PromptInput struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Tags            json.RawMessage `json:"tags"`
	Text            string          `json:"text"`
	Category        string          `json:"category"`
	Author          *string         `json:"author"`
	IsRecommended   Flag            `json:"isRecommended"`
	CreatedAt       *int64          `json:"createdAt"`
	IsPublic        Flag            `json:"isPublic"`
	SupportedInputs json.RawMessage `json:"supportedInputs"`
}

// Flag is a loosely typed boolean: true, false, 0, 1, or null.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(val)
	case float64:
		*f = val != 0
	case string:
		*f = val != ""
	default:
		*f = true
	}
	return nil
}

func (f Flag) toInt() int {
	if f {
		return 1
	}
	return 0
}

// Store persists users and prompts in SQLite
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path, applies the
// schema, and seeds the admin account.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedAdmin(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) seedAdmin(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, email, password, name, role) VALUES (?, ?, ?, ?, 'admin')`,
		AdminID, AdminEmail, string(hash), AdminName)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Authenticate returns the user with email if password matches.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var u User
	var role sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password, name, avatarUrl, role FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.AvatarURL, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	u.Role = role.String

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return &u, nil
}

// GetPrompt returns the prompt as served by the API: list fields decoded,
// flags as stored integers, plus like and comment counts.
func (s *Store) GetPrompt(ctx context.Context, id string) (map[string]any, error) {
	var (
		pid, title, description, text, category string
		tags, author, supportedInputs           sql.NullString
		isRecommended, createdAt                sql.NullInt64
		isPublic                                int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, tags, text, category, author, isRecommended, createdAt, isPublic, supportedInputs
		 FROM prompts WHERE id = ?`, id).
		Scan(&pid, &title, &description, &tags, &text, &category, &author, &isRecommended, &createdAt, &isPublic, &supportedInputs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query prompt: %w", err)
	}

	return map[string]any{
		"id":              pid,
		"title":           title,
		"description":     description,
		"tags":            decodeList(tags),
		"text":            text,
		"category":        category,
		"author":          nullString(author),
		"isRecommended":   nullInt(isRecommended),
		"createdAt":       nullInt(createdAt),
		"isPublic":        isPublic,
		"supportedInputs": decodeList(supportedInputs),
		"likeCount":       0,
		"commentCount":    0,
	}, nil
}

// InsertPrompt stores a new prompt under in.ID.
func (s *Store) InsertPrompt(ctx context.Context, in PromptInput) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompts (id, title, description, tags, text, category, author, isRecommended, createdAt, isPublic, supportedInputs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Description, listText(in.Tags), in.Text, in.Category, in.Author,
		in.IsRecommended.toInt(), in.CreatedAt, in.IsPublic.toInt(), listText(in.SupportedInputs))
	if err != nil {
		return fmt.Errorf("failed to insert prompt: %w", err)
	}
	return nil
}

// UpdatePrompt replaces the editable columns of prompt id. Author,
// recommendation and creation time are left as they are. Updating an id that
// does not exist changes nothing and is not an error.
func (s *Store) UpdatePrompt(ctx context.Context, id string, in PromptInput) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET title = ?, description = ?, tags = ?, text = ?, category = ?, isPublic = ?, supportedInputs = ? WHERE id = ?`,
		in.Title, in.Description, listText(in.Tags), in.Text, in.Category, in.IsPublic.toInt(), listText(in.SupportedInputs), id)
	if err != nil {
		return fmt.Errorf("failed to update prompt: %w", err)
	}
	return nil
}

// listText stores a JSON list as compact text; absent becomes NULL.
func listText(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// decodeList parses stored JSON text, falling back to an empty list.
func decodeList(v sql.NullString) any {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return []any{}
	}
	return out
}

func nullString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

func nullInt(v sql.NullInt64) any {
	if !v.Valid {
		return nil
	}
	return v.Int64
}
