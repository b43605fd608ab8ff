package app

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"academy/internal/domain"
	"academy/internal/publish"
	"academy/internal/store"
)

type CatalogStore interface {
	Load(ctx context.Context) domain.Catalog
	Save(ctx context.Context, c domain.Catalog) error
}

type SettingsStore interface {
	Load(ctx context.Context) (store.PublishTarget, error)
	Save(ctx context.Context, t store.PublishTarget) error
}

type Publisher interface {
	Preview(ctx context.Context, s publish.Settings, c domain.Catalog) (*publish.Plan, error)
	Write(ctx context.Context, plan *publish.Plan) (*publish.Result, error)
}

// Sink receives every successful publication (mirror upload, event).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, p domain.Publication) error
	Close() error
}
