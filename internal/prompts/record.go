package prompts

import "github.com/google/uuid"

// IDPrefix starts every identifier generated for a new prompt.
const IDPrefix = "prompt-"

// Fixed values stamped on every created prompt.
const (
	DefaultTag       = "admin-test"
	DefaultCreatedAt = int64(1752567360)
)

// Record is the body sent when creating a prompt.
type Record struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Text            string   `json:"text"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Author          string   `json:"author"`
	IsPublic        bool     `json:"isPublic"`
	IsRecommended   bool     `json:"isRecommended"`
	CreatedAt       int64    `json:"createdAt"`
	SupportedInputs []string `json:"supportedInputs"`
}

// Draft carries the caller-chosen fields of a new prompt.
type Draft struct {
	Title       string
	Description string
	Text        string
	Category    string
	Author      string
}

// NewID returns a fresh identifier of the form prompt-<uuid v4>.
// No uniqueness check is made against the service.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// NewRecord fills a Record from d with the fixed creation defaults.
func NewRecord(id string, d Draft) Record {
	return Record{
		ID:              id,
		Title:           d.Title,
		Description:     d.Description,
		Text:            d.Text,
		Category:        d.Category,
		Tags:            []string{DefaultTag},
		Author:          d.Author,
		IsPublic:        true,
		IsRecommended:   false,
		CreatedAt:       DefaultCreatedAt,
		SupportedInputs: []string{},
	}
}
