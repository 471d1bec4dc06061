package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"knowpilot/backend/internal/vector"
)

const insertBatchSize = 100

// Store implements vector.Store on a Weaviate instance. All operations are
// scoped to an explicit class; the A/B swap lives above this layer.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// ReplaceAll ensures the class exists, clears it, and batch-inserts the
// given entries.
func (s *Store) ReplaceAll(ctx context.Context, class string, entries []vector.Entry) error {
	if err := vector.EnsureClass(ctx, NewSchemaAdapter(s.client), class); err != nil {
		return fmt.Errorf("ensuring class %s: %w", class, err)
	}
	if err := s.Purge(ctx, class); err != nil {
		return fmt.Errorf("clearing class %s: %w", class, err)
	}

	for start := 0; start < len(entries); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for _, e := range entries[start:end] {
			batcher = batcher.WithObjects(&models.Object{
				Class: class,
				Properties: map[string]interface{}{
					"content":    e.Content,
					"source":     e.Source,
					"page":       e.Page,
					"chunkIndex": e.ChunkIndex,
				},
				Vector: models.C11yVector(e.Vector),
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return err
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("batch insert error: %s", obj.Result.Errors.Error[0].Message)
			}
		}
	}
	return nil
}

// Search runs a nearest-neighbor query by embedding vector, highest
// similarity first.
func (s *Store) Search(ctx context.Context, class string, vec []float32, k int) ([]vector.SearchResult, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "page"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(class).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []vector.SearchResult
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return results, nil
	}
	chunks, ok := data[class].([]interface{})
	if !ok {
		return results, nil
	}

	for _, c := range chunks {
		props, ok := c.(map[string]interface{})
		if !ok {
			continue
		}

		var result vector.SearchResult
		if content, ok := props["content"].(string); ok {
			result.Content = content
		}
		if source, ok := props["source"].(string); ok {
			result.Source = source
		}
		if page, ok := props["page"].(float64); ok {
			result.Page = int(page)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				result.Score = float32(certainty)
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Purge deletes every object in the class. The source property is set on
// every entry, so a wildcard match covers the whole class.
func (s *Store) Purge(ctx context.Context, class string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(class).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"source"}).
			WithOperator(filters.Like).
			WithValueText("*")).
		Do(ctx)
	return err
}

func (s *Store) Count(ctx context.Context, class string) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	agg, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := agg[class].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}
