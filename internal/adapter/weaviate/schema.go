package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// SchemaAdapter implements vector.SchemaClient against the Weaviate schema
// API, so class creation and property backfill stay testable without a
// running instance.
type SchemaAdapter struct {
	client *weaviate.Client
}

func NewSchemaAdapter(client *weaviate.Client) *SchemaAdapter {
	return &SchemaAdapter{client: client}
}

func (a *SchemaAdapter) ClassExists(ctx context.Context, className string) (bool, error) {
	exists, err := a.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("checking class %s: %w", className, err)
	}
	return exists, nil
}

func (a *SchemaAdapter) CreateClass(ctx context.Context, class *models.Class) error {
	if err := a.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("creating class %s: %w", class.Class, err)
	}
	return nil
}

func (a *SchemaAdapter) GetClass(ctx context.Context, className string) (*models.Class, error) {
	class, err := a.client.Schema().ClassGetter().WithClassName(className).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching class %s: %w", className, err)
	}
	return class, nil
}

func (a *SchemaAdapter) AddProperty(ctx context.Context, className string, property *models.Property) error {
	if err := a.client.Schema().PropertyCreator().WithClassName(className).WithProperty(property).Do(ctx); err != nil {
		return fmt.Errorf("adding property %s to class %s: %w", property.Name, className, err)
	}
	return nil
}
