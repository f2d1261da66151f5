package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Document is a JSON response body together with its HTTP status.
type Document struct {
	StatusCode int
	Raw        []byte
}

// OK reports whether the status is 2xx.
func (d *Document) OK() bool {
	return d.StatusCode >= 200 && d.StatusCode < 300
}

// Get looks up a value by gjson path, e.g. "token" or "user.name".
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.Raw, path)
}

// Has reports whether path is present in the document.
func (d *Document) Has(path string) bool {
	return d.Get(path).Exists()
}

// Object unmarshals the document as a JSON object, keeping numbers exact.
func (d *Document) Object() (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(d.Raw))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("failed to decode document as object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	return obj, nil
}

// String returns the compact JSON text of the document.
func (d *Document) String() string {
	if d == nil {
		return "<nil>"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, d.Raw); err != nil {
		return string(d.Raw)
	}
	return buf.String()
}
