package publish

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"academy/internal/github"
)

// ContentAPI is the slice of the contents API a publish needs.
type ContentAPI interface {
	GetContents(ctx context.Context, t github.Target) (*github.Contents, error)
	PutContents(ctx context.Context, t github.Target, req github.UpdateRequest) (*github.UpdateResponse, error)
}
