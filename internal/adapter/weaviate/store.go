// Package weaviate persists clip records in a Weaviate instance. The class
// carries vectors supplied by the embedder (Vectorizer "none"), so nothing
// here depends on Weaviate-side modules.
package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"clipseek/internal/clip"
	"clipseek/internal/vector"
)

// getAllPageSize bounds each GraphQL page when walking the full corpus.
const getAllPageSize = 500

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// Add writes a batch of clip records in one request.
func (s *Store) Add(ctx context.Context, records []clip.Record) error {
	if len(records) == 0 {
		return nil
	}

	objects := make([]*models.Object, 0, len(records))
	for _, rec := range records {
		objects = append(objects, &models.Object{
			Class: vector.ClassName,
			Properties: map[string]interface{}{
				"content":      rec.Text,
				"videoId":      rec.VideoID,
				"title":        rec.Title,
				"channelName":  rec.ChannelName,
				"startSeconds": rec.StartSeconds,
				"endSeconds":   rec.EndSeconds,
				"sourceUrl":    rec.SourceURL,
				"thumbnailUrl": rec.ThumbnailURL,
				"indexedAt":    rec.IndexedAt,
			},
			Vector: rec.Vector,
		})
	}

	res, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range res {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch insert error: %s", obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// GetAll walks the whole class page by page and returns every record with
// its Weaviate object id. Vectors are not fetched.
func (s *Store) GetAll(ctx context.Context) ([]clip.Record, error) {
	fields := clipFields()
	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}},
	})

	var records []clip.Record
	offset := 0
	for {
		res, err := s.client.GraphQL().Get().
			WithClassName(vector.ClassName).
			WithFields(fields...).
			WithLimit(getAllPageSize).
			WithOffset(offset).
			Do(ctx)
		if err != nil {
			return nil, err
		}
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("graphql error: %v", res.Errors)
		}

		page := objectsFromResponse(res.Data)
		for _, props := range page {
			records = append(records, recordFromProps(props))
		}

		if len(page) < getAllPageSize {
			break
		}
		offset += getAllPageSize
	}

	return records, nil
}

// UpdateChannelName rewrites the channelName property on each given object.
func (s *Store) UpdateChannelName(ctx context.Context, ids []string, newName string) error {
	for _, id := range ids {
		err := s.client.Data().Updater().
			WithClassName(vector.ClassName).
			WithID(id).
			WithProperties(map[string]interface{}{
				"channelName": newName,
			}).
			WithMerge().
			Do(ctx)
		if err != nil {
			return fmt.Errorf("update object %s: %w", id, err)
		}
	}
	return nil
}

// Delete removes the given objects by id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		err := s.client.Data().Deleter().
			WithClassName(vector.ClassName).
			WithID(id).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("delete object %s: %w", id, err)
		}
	}
	return nil
}

// SimilaritySearch returns the k records nearest to the given vector.
func (s *Store) SimilaritySearch(ctx context.Context, queryVector []float32, k int) ([]clip.Record, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(queryVector)

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(clipFields()...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var records []clip.Record
	for _, props := range objectsFromResponse(res.Data) {
		records = append(records, recordFromProps(props))
	}
	return records, nil
}

func clipFields() []graphql.Field {
	return []graphql.Field{
		{Name: "content"},
		{Name: "videoId"},
		{Name: "title"},
		{Name: "channelName"},
		{Name: "startSeconds"},
		{Name: "endSeconds"},
		{Name: "sourceUrl"},
		{Name: "thumbnailUrl"},
		{Name: "indexedAt"},
	}
}

func objectsFromResponse(data map[string]models.JSONObject) []map[string]interface{} {
	var out []map[string]interface{}
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return out
	}
	raw, ok := get[vector.ClassName].([]interface{})
	if !ok {
		return out
	}
	for _, obj := range raw {
		if props, ok := obj.(map[string]interface{}); ok {
			out = append(out, props)
		}
	}
	return out
}

func recordFromProps(props map[string]interface{}) clip.Record {
	rec := clip.Record{}
	if content, ok := props["content"].(string); ok {
		rec.Text = content
	}
	if videoID, ok := props["videoId"].(string); ok {
		rec.VideoID = videoID
	}
	if title, ok := props["title"].(string); ok {
		rec.Title = title
	}
	if channel, ok := props["channelName"].(string); ok {
		rec.ChannelName = channel
	}
	if start, ok := props["startSeconds"].(float64); ok {
		rec.StartSeconds = int(start)
	}
	if end, ok := props["endSeconds"].(float64); ok {
		rec.EndSeconds = int(end)
	}
	if url, ok := props["sourceUrl"].(string); ok {
		rec.SourceURL = url
	}
	if thumb, ok := props["thumbnailUrl"].(string); ok {
		rec.ThumbnailURL = thumb
	}
	if indexed, ok := props["indexedAt"].(float64); ok {
		rec.IndexedAt = int64(indexed)
	}
	if additional, ok := props["_additional"].(map[string]interface{}); ok {
		if id, ok := additional["id"].(string); ok {
			rec.ID = id
		}
	}
	return rec
}
