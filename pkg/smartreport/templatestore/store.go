// Package templatestore keeps report templates on disk. A template is a
// workbook plus its component configuration, stored side by side under one
// identifier.
package templatestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/payload"
)

// File names inside a template directory.
const (
	WorkbookFile = "template.xlsx"
	ConfigFile   = "config.json"
	metaFile     = "meta.json"
)

// ErrNotFound indicates no template is stored under the id.
var ErrNotFound = errors.New("template not found")

// ErrInvalidID indicates an id that cannot be used as a directory name.
var ErrInvalidID = errors.New("invalid template id")

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Meta describes a stored template.
type Meta struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	Components int       `json:"components"`
}

// Template is a stored template with its contents.
type Template struct {
	Meta
	Workbook []byte
	Config   models.Config
}

// Store is a diskv-backed template store.
type Store struct {
	d   *diskv.Diskv
	log zerolog.Logger

	// Now stamps newly saved templates.
	Now func() time.Time
}

// Open returns a store rooted at basePath. The directory is created on the
// first write.
func Open(basePath string, logger zerolog.Logger) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		log: logger.With().Str("component", "templatestore").Logger(),
		Now: time.Now,
	}
}

// Save stores workbook and cfg under id, replacing any template already
// there. An empty id falls back to cfg.TemplateID and then to a generated
// one; an empty name gets a default. The stored config carries the id.
func (s *Store) Save(id, name string, workbook []byte, cfg models.Config) (Meta, error) {
	if id == "" {
		id = cfg.TemplateID
	}
	if id == "" {
		id = "template-" + uuid.NewString()
	}
	if err := checkID(id); err != nil {
		return Meta{}, err
	}
	if name == "" {
		name = "模板 " + id
	}

	cfg.TemplateID = id
	config, err := payload.Encode(cfg, true)
	if err != nil {
		return Meta{}, err
	}
	meta := Meta{
		ID:         id,
		Name:       name,
		CreatedAt:  s.Now().UTC(),
		Components: len(cfg.ComponentList),
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return Meta{}, err
	}

	// Meta goes last so a half-written template is never listed.
	if err := s.d.Write(key(id, WorkbookFile), workbook); err != nil {
		return Meta{}, err
	}
	if err := s.d.Write(key(id, ConfigFile), config); err != nil {
		return Meta{}, err
	}
	if err := s.d.Write(key(id, metaFile), metaJSON); err != nil {
		return Meta{}, err
	}
	s.log.Info().Str("id", id).Str("name", name).Int("components", meta.Components).Msg("template saved")
	return meta, nil
}

// Load returns the template stored under id.
func (s *Store) Load(id string) (Template, error) {
	meta, err := s.meta(id)
	if err != nil {
		return Template{}, err
	}
	workbook, err := s.d.Read(key(id, WorkbookFile))
	if err != nil {
		return Template{}, fmt.Errorf("read %s of %s: %w", WorkbookFile, id, err)
	}
	raw, err := s.d.Read(key(id, ConfigFile))
	if err != nil {
		return Template{}, fmt.Errorf("read %s of %s: %w", ConfigFile, id, err)
	}
	cfg, err := payload.Decode(raw)
	if err != nil {
		return Template{}, err
	}
	return Template{Meta: meta, Workbook: workbook, Config: cfg}, nil
}

// List returns every stored template, oldest first.
func (s *Store) List(ctx context.Context) ([]Meta, error) {
	var metas []Meta
	for k := range s.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(k)
		if pk.FileName != metaFile || len(pk.Path) != 1 {
			continue
		}
		meta, err := s.meta(pk.Path[0])
		if err != nil {
			s.log.Warn().Err(err).Str("key", k).Msg("skipping unreadable template")
			continue
		}
		metas = append(metas, meta)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].ID < metas[j].ID
		}
		return metas[i].CreatedAt.Before(metas[j].CreatedAt)
	})
	return metas, nil
}

// Delete removes the template stored under id.
func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if !s.d.Has(key(id, metaFile)) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for _, name := range []string{metaFile, ConfigFile, WorkbookFile} {
		if !s.d.Has(key(id, name)) {
			continue
		}
		if err := s.d.Erase(key(id, name)); err != nil {
			return err
		}
	}
	s.log.Info().Str("id", id).Msg("template deleted")
	return nil
}

func (s *Store) meta(id string) (Meta, error) {
	if err := checkID(id); err != nil {
		return Meta{}, err
	}
	if !s.d.Has(key(id, metaFile)) {
		return Meta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	raw, err := s.d.Read(key(id, metaFile))
	if err != nil {
		return Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, fmt.Errorf("decode %s of %s: %w", metaFile, id, err)
	}
	return meta, nil
}

func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// key makes `id/file`
func key(id, file string) string {
	return id + "/" + file
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}
