// Package search answers questions against the indexed corpus: embed the
// query, pull nearest clips from the vector store, and filter them into a
// citable result set.
package search

import (
	"context"
	"fmt"

	"clipseek/internal/clip"
)

const (
	// DefaultLimit is used when a request does not specify how many clips
	// it wants.
	DefaultLimit = 5

	defaultOversample   = 2
	defaultSkipIntroSec = 120
)

type VectorSearcher interface {
	SimilaritySearch(ctx context.Context, queryVector []float32, k int) ([]clip.Record, error)
}

type Embedder interface {
	EmbedWithKey(ctx context.Context, apiKey, text string) ([]float32, error)
}

// Clip is one search hit shaped for the frontend.
type Clip struct {
	ID           string `json:"id"`
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelName  string `json:"channelName"`
	StartSeconds int    `json:"startSeconds"`
	EndSeconds   int    `json:"endSeconds"`
	Content      string `json:"content"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Result is the search response. Answer stays empty: the frontend renders
// the clip transcripts directly instead of a generated overview.
type Result struct {
	Answer        string `json:"answer"`
	RelevantClips []Clip `json:"relevantClips"`
}

// Options tune filtering; zero values fall back to the defaults above.
type Options struct {
	// Oversample multiplies the requested limit when querying the store,
	// leaving headroom for intro filtering.
	Oversample int
	// SkipIntroSeconds drops clips that start inside a video's opening
	// stretch, which tends to be teaser material rather than content.
	SkipIntroSeconds int
}

type Service struct {
	store    VectorSearcher
	embedder Embedder
	opts     Options
}

func NewService(store VectorSearcher, embedder Embedder, opts Options) *Service {
	if opts.Oversample < 1 {
		opts.Oversample = defaultOversample
	}
	if opts.SkipIntroSeconds == 0 {
		opts.SkipIntroSeconds = defaultSkipIntroSec
	}
	return &Service{store: store, embedder: embedder, opts: opts}
}

// Search returns up to limit clips relevant to the query. apiKey optionally
// overrides the configured embedding key (BYOK). Clip ids are assigned in
// acceptance order: clip_0, clip_1, and so on.
func (s *Service) Search(ctx context.Context, query string, limit int, apiKey string) (Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryVector, err := s.embedder.EmbedWithKey(ctx, apiKey, query)
	if err != nil {
		return Result{}, err
	}

	records, err := s.store.SimilaritySearch(ctx, queryVector, limit*s.opts.Oversample)
	if err != nil {
		return Result{}, fmt.Errorf("similarity search: %w", err)
	}

	result := Result{RelevantClips: []Clip{}}
	for _, rec := range records {
		if len(result.RelevantClips) >= limit {
			break
		}
		if rec.StartSeconds < s.opts.SkipIntroSeconds {
			continue
		}

		result.RelevantClips = append(result.RelevantClips, Clip{
			ID:           fmt.Sprintf("clip_%d", len(result.RelevantClips)),
			VideoID:      rec.VideoID,
			Title:        rec.Title,
			ChannelName:  rec.ChannelName,
			StartSeconds: rec.StartSeconds,
			EndSeconds:   rec.EndSeconds,
			Content:      rec.Text,
			ThumbnailURL: rec.ThumbnailURL,
		})
	}

	return result, nil
}
