package search

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipseek/internal/adapter/gemini"
	"clipseek/internal/clip"
)

func TestSearchHandler_OK(t *testing.T) {
	store := &fakeSearcher{records: []clip.Record{contentClip(0, 300)}}
	var logBuf bytes.Buffer
	handler := NewHandler(NewService(store, &fakeEmbedder{}, Options{}), NewQueryLogger(&logBuf))

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"goroutines","limit":3}`))
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Answer)
	require.Len(t, result.RelevantClips, 1)
	assert.Equal(t, "clip_0", result.RelevantClips[0].ID)

	// The query log got one JSONL entry.
	var entry QueryLogEntry
	require.NoError(t, json.Unmarshal(logBuf.Bytes(), &entry))
	assert.Equal(t, "goroutines", entry.Query)
	assert.Equal(t, 1, entry.NumResults)
}

func TestSearchHandler_EmptyQuery(t *testing.T) {
	handler := NewHandler(NewService(&fakeSearcher{}, &fakeEmbedder{}, Options{}), nil)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"   "}`))
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_InvalidBody(t *testing.T) {
	handler := NewHandler(NewService(&fakeSearcher{}, &fakeEmbedder{}, Options{}), nil)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_MissingAPIKey(t *testing.T) {
	embedder := &fakeEmbedder{err: gemini.ErrMissingAPIKey}
	handler := NewHandler(NewService(&fakeSearcher{}, embedder, Options{}), nil)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchHandler_ForwardsHeaderKey(t *testing.T) {
	embedder := &fakeEmbedder{}
	handler := NewHandler(NewService(&fakeSearcher{}, embedder, Options{}), nil)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"q"}`))
	req.Header.Set("X-API-Key", "user-key")
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-key", embedder.gotKey)
}

func TestSearchHandler_StoreError(t *testing.T) {
	store := &fakeSearcher{err: assert.AnError}
	handler := NewHandler(NewService(store, &fakeEmbedder{}, Options{}), nil)

	req := httptest.NewRequest("POST", "/api/search", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
