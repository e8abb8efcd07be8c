package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassName is the Weaviate class holding indexed transcript clips.
const ClassName = "VideoClip"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema checks if the clip class exists and creates it if not
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassName)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "videoId",
			DataType: []string{"string"}, // YouTube ID (exact match)
		},
		{
			Name:     "title",
			DataType: []string{"text"},
		},
		{
			Name:     "channelName",
			DataType: []string{"text"},
		},
		{
			Name:     "startSeconds",
			DataType: []string{"int"},
		},
		{
			Name:     "endSeconds",
			DataType: []string{"int"},
		},
		{
			Name:     "sourceUrl",
			DataType: []string{"string"}, // URL as string (exact match)
		},
		{
			Name:     "thumbnailUrl",
			DataType: []string{"string"},
		},
		{
			Name:     "indexedAt",
			DataType: []string{"int"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassName,
			Description: "A timed segment of a video transcript",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ClassName)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassName, p); err != nil {
				return err
			}
		}
	}

	return nil
}
