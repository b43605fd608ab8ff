package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"academy/internal/catalog"
	"academy/internal/domain"
)

// CatalogStore persists the whole catalog as one JSON blob.
type CatalogStore struct {
	kv       KV
	log      logrus.FieldLogger
	defaults func() domain.Catalog
}

func NewCatalogStore(kv KV, log logrus.FieldLogger) *CatalogStore {
	return &CatalogStore{kv: kv, log: log, defaults: catalog.Default}
}

// Load returns the stored catalog, or the built-in default when nothing is
// stored or the stored blob cannot be read. It never fails.
func (s *CatalogStore) Load(ctx context.Context) domain.Catalog {
	raw, ok, err := s.kv.Get(ctx, KeyCatalog)
	if err != nil {
		s.log.WithError(err).Warn("catalog store unreadable, using defaults")
		return s.defaults()
	}
	if !ok {
		return s.defaults()
	}

	c, err := decodeCatalog(raw)
	if err != nil {
		s.log.WithError(err).Debug("stored catalog is corrupt, using defaults")
		return s.defaults()
	}
	return c
}

// Save overwrites the stored catalog.
func (s *CatalogStore) Save(ctx context.Context, c domain.Catalog) error {
	b, err := json.Marshal(c.Normalize())
	if err != nil {
		return fmt.Errorf("store: encode catalog: %w", err)
	}
	return s.kv.Set(ctx, KeyCatalog, string(b))
}

func decodeCatalog(raw string) (domain.Catalog, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return domain.Catalog{}, err
	}
	if probe == nil {
		return domain.Catalog{}, fmt.Errorf("store: catalog is null")
	}
	if _, ok := probe["courses"]; !ok {
		return domain.Catalog{}, fmt.Errorf("store: catalog has no courses field")
	}

	var c domain.Catalog
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return domain.Catalog{}, err
	}
	return c.Normalize(), nil
}

// PublishTarget is the persisted remote coordinate of a publish.
type PublishTarget struct {
	Token string
	Repo  string
	Path  string
}

// SettingsStore keeps the three publish strings under their fixed keys.
type SettingsStore struct {
	kv KV
}

func NewSettingsStore(kv KV) *SettingsStore {
	return &SettingsStore{kv: kv}
}

// Load returns whatever is stored; missing keys come back empty.
func (s *SettingsStore) Load(ctx context.Context) (PublishTarget, error) {
	var t PublishTarget
	for key, dst := range map[string]*string{
		KeyGitHubToken: &t.Token,
		KeyGitHubRepo:  &t.Repo,
		KeyGitHubPath:  &t.Path,
	} {
		v, _, err := s.kv.Get(ctx, key)
		if err != nil {
			return PublishTarget{}, err
		}
		*dst = v
	}
	return t, nil
}

// Save writes all three strings, empty ones included.
func (s *SettingsStore) Save(ctx context.Context, t PublishTarget) error {
	for _, kv := range []struct{ key, value string }{
		{KeyGitHubToken, t.Token},
		{KeyGitHubRepo, t.Repo},
		{KeyGitHubPath, t.Path},
	} {
		if err := s.kv.Set(ctx, kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}
