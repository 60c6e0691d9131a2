// Package payload reads and writes the exported layout document
// ({"component_list": [...]}) in JSON or YAML.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

// ErrImportFormat indicates a configuration payload that cannot be imported.
var ErrImportFormat = errors.New("invalid configuration payload")

// ImportFormatError locates the problem in a rejected payload. Index is -1
// for document-level problems.
type ImportFormatError struct {
	Index int
	Field string
	Err   error
}

func (e *ImportFormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid configuration payload: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid configuration payload: component_list[%d].%s: %v", e.Index, e.Field, e.Err)
}

func (e *ImportFormatError) Unwrap() error {
	return e.Err
}

func (e *ImportFormatError) Is(target error) bool {
	return target == ErrImportFormat
}

func docError(field string, err error) *ImportFormatError {
	return &ImportFormatError{Index: -1, Field: field, Err: err}
}

// NewID generates identifiers for entries that arrive without one.
var NewID = uuid.NewString

type rawDocument struct {
	TemplateID    string          `json:"template_id"`
	Version       string          `json:"version"`
	ComponentList json.RawMessage `json:"component_list"`
}

type rawComponent struct {
	ID       *string       `json:"id"`
	Location *string       `json:"location"`
	Type     *string       `json:"type"`
	Prompt   *string       `json:"prompt"`
	Name     *string       `json:"name"`
	Style    *models.Style `json:"style"`
}

// Decode parses a JSON payload. Entries without an id get a fresh one, every
// location is normalised and an entry without a location stays unpositioned. Nothing is returned unless the whole payload
// is valid.
func Decode(data []byte) (models.Config, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Config{}, docError("document", err)
	}

	list := bytes.TrimSpace(doc.ComponentList)
	if len(list) == 0 || bytes.Equal(list, []byte("null")) {
		return models.Config{}, docError("component_list", errors.New("missing"))
	}
	if list[0] != '[' {
		return models.Config{}, docError("component_list", errors.New("not an array"))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(list, &entries); err != nil {
		return models.Config{}, docError("component_list", err)
	}

	out := models.Config{
		TemplateID:    doc.TemplateID,
		Version:       doc.Version,
		ComponentList: make([]models.Component, 0, len(entries)),
	}
	seen := make(map[string]int, len(entries))

	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			return models.Config{}, &ImportFormatError{Index: i, Field: "entry", Err: errors.New("not an object")}
		}
		var raw rawComponent
		if err := json.Unmarshal(entry, &raw); err != nil {
			return models.Config{}, &ImportFormatError{Index: i, Field: "entry", Err: err}
		}

		c, err := fromRaw(i, raw)
		if err != nil {
			return models.Config{}, err
		}
		if prev, dup := seen[c.ID]; dup {
			return models.Config{}, &ImportFormatError{Index: i, Field: "id", Err: fmt.Errorf("duplicate of component_list[%d]", prev)}
		}
		seen[c.ID] = i
		out.ComponentList = append(out.ComponentList, c)
	}

	return out, nil
}

func fromRaw(i int, raw rawComponent) (models.Component, error) {
	if raw.Type == nil {
		return models.Component{}, &ImportFormatError{Index: i, Field: "type", Err: errors.New("missing")}
	}
	typ, ok := models.ParseComponentType(*raw.Type)
	if !ok {
		return models.Component{}, &ImportFormatError{Index: i, Field: "type", Err: fmt.Errorf("unknown component type %q", *raw.Type)}
	}

	// A missing location is kept as an unpositioned entry.
	c := models.Component{
		Type:  typ,
		Style: raw.Style,
	}
	if raw.Location != nil {
		c.Location = cellref.Normalize(*raw.Location)
	}
	if raw.ID != nil {
		c.ID = strings.TrimSpace(*raw.ID)
	}
	if c.ID == "" {
		c.ID = NewID()
	}
	if raw.Name != nil {
		c.Name = *raw.Name
	}
	if raw.Prompt != nil {
		c.Prompt = *raw.Prompt
	}
	return c, nil
}

// DecodeYAML parses a YAML payload with the same rules as Decode.
func DecodeYAML(data []byte) (models.Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Config{}, docError("document", err)
	}
	if doc == nil {
		return models.Config{}, docError("component_list", errors.New("missing"))
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return models.Config{}, docError("document", err)
	}
	return Decode(asJSON)
}

// DecodeFile reads a payload from disk, choosing YAML for .yaml and .yml
// files and JSON otherwise.
func DecodeFile(path string) (models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

// Encode serialises cfg as JSON.
func Encode(cfg models.Config, pretty bool) ([]byte, error) {
	if cfg.ComponentList == nil {
		cfg.ComponentList = []models.Component{}
	}
	if pretty {
		return json.MarshalIndent(cfg, "", "  ")
	}
	return json.Marshal(cfg)
}
