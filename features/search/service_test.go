package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipseek/internal/clip"
)

type fakeSearcher struct {
	records []clip.Record
	err     error
	gotK    int
}

func (f *fakeSearcher) SimilaritySearch(ctx context.Context, queryVector []float32, k int) ([]clip.Record, error) {
	f.gotK = k
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > k {
		return f.records[:k], nil
	}
	return f.records, nil
}

type fakeEmbedder struct {
	err    error
	gotKey string
}

func (f *fakeEmbedder) EmbedWithKey(ctx context.Context, apiKey, text string) ([]float32, error) {
	f.gotKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.5, 0.5}, nil
}

func contentClip(i int, start int) clip.Record {
	return clip.Record{
		VideoID:      "aaaaaaaaaaa",
		Title:        "Some Video",
		ChannelName:  "Some Channel",
		StartSeconds: start,
		EndSeconds:   start + 60,
		Text:         fmt.Sprintf("clip body %d", i),
		ThumbnailURL: "https://img.youtube.com/vi/aaaaaaaaaaa/mqdefault.jpg",
	}
}

func TestSearch_AssignsCitationIDsInAcceptanceOrder(t *testing.T) {
	store := &fakeSearcher{records: []clip.Record{
		contentClip(0, 300),
		contentClip(1, 400),
		contentClip(2, 500),
	}}
	svc := NewService(store, &fakeEmbedder{}, Options{})

	result, err := svc.Search(context.Background(), "how do goroutines work", 5, "")
	require.NoError(t, err)

	assert.Empty(t, result.Answer)
	require.Len(t, result.RelevantClips, 3)
	for i, c := range result.RelevantClips {
		assert.Equal(t, fmt.Sprintf("clip_%d", i), c.ID)
	}
	assert.Equal(t, "clip body 0", result.RelevantClips[0].Content)
}

func TestSearch_SkipsIntroClips(t *testing.T) {
	store := &fakeSearcher{records: []clip.Record{
		contentClip(0, 0),   // intro, dropped
		contentClip(1, 119), // one second inside the boundary, dropped
		contentClip(2, 120), // exactly at the boundary, kept
		contentClip(3, 500),
	}}
	svc := NewService(store, &fakeEmbedder{}, Options{})

	result, err := svc.Search(context.Background(), "q", 5, "")
	require.NoError(t, err)

	require.Len(t, result.RelevantClips, 2)
	assert.Equal(t, 120, result.RelevantClips[0].StartSeconds)
	assert.Equal(t, "clip_0", result.RelevantClips[0].ID)
	assert.Equal(t, 500, result.RelevantClips[1].StartSeconds)
	assert.Equal(t, "clip_1", result.RelevantClips[1].ID)
}

func TestSearch_OversamplesStore(t *testing.T) {
	store := &fakeSearcher{}
	svc := NewService(store, &fakeEmbedder{}, Options{Oversample: 2})

	_, err := svc.Search(context.Background(), "q", 5, "")
	require.NoError(t, err)
	assert.Equal(t, 10, store.gotK)
}

func TestSearch_DefaultLimit(t *testing.T) {
	store := &fakeSearcher{}
	svc := NewService(store, &fakeEmbedder{}, Options{Oversample: 2})

	_, err := svc.Search(context.Background(), "q", 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit*2, store.gotK)
}

func TestSearch_CapsAtLimit(t *testing.T) {
	var records []clip.Record
	for i := 0; i < 10; i++ {
		records = append(records, contentClip(i, 200+i*60))
	}
	store := &fakeSearcher{records: records}
	svc := NewService(store, &fakeEmbedder{}, Options{})

	result, err := svc.Search(context.Background(), "q", 3, "")
	require.NoError(t, err)
	assert.Len(t, result.RelevantClips, 3)
}

func TestSearch_EmptyCorpusReturnsEmptySlice(t *testing.T) {
	svc := NewService(&fakeSearcher{}, &fakeEmbedder{}, Options{})

	result, err := svc.Search(context.Background(), "q", 5, "")
	require.NoError(t, err)
	assert.NotNil(t, result.RelevantClips)
	assert.Empty(t, result.RelevantClips)
	assert.Empty(t, result.Answer)
}

func TestSearch_PassesAPIKeyOverride(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := NewService(&fakeSearcher{}, embedder, Options{})

	_, err := svc.Search(context.Background(), "q", 5, "user-key")
	require.NoError(t, err)
	assert.Equal(t, "user-key", embedder.gotKey)
}

func TestSearch_EmbedError(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("no quota")}
	store := &fakeSearcher{}
	svc := NewService(store, embedder, Options{})

	_, err := svc.Search(context.Background(), "q", 5, "")
	assert.Error(t, err)
	assert.Zero(t, store.gotK)
}

func TestSearch_StoreError(t *testing.T) {
	store := &fakeSearcher{err: errors.New("weaviate down")}
	svc := NewService(store, &fakeEmbedder{}, Options{})

	_, err := svc.Search(context.Background(), "q", 5, "")
	assert.ErrorContains(t, err, "similarity search")
}
