package ports

import (
	"context"

	"github.com/target/residence-console/internal/domain/resource"
)

// ResourceClient performs CRUD calls against one REST collection.
type ResourceClient interface {
	ListAll(ctx context.Context) ([]resource.Record, error)
	Create(ctx context.Context, body map[string]any) error
	Update(ctx context.Context, id string, body map[string]any) error
	Delete(ctx context.Context, id string) error
}

// ResourceClientFactory returns the client bound to a resource definition.
type ResourceClientFactory interface {
	For(def resource.Definition) ResourceClient
}

// ResourceClientFactoryFunc adapts a function to ResourceClientFactory.
type ResourceClientFactoryFunc func(def resource.Definition) ResourceClient

func (f ResourceClientFactoryFunc) For(def resource.Definition) ResourceClient { return f(def) }
