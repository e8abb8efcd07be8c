package youtube_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"clipseek/internal/youtube"
)

func TestOEmbedClient_Lookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("url"), "watch?v=abc123def45")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"title":       "Real Title",
			"author_name": "Real Channel",
		})
	}))
	defer ts.Close()

	c := youtube.NewOEmbedClient()
	c.SetBaseURL(ts.URL)

	title, channel := c.Lookup(context.Background(), "abc123def45")
	assert.Equal(t, "Real Title", title)
	assert.Equal(t, "Real Channel", channel)
}

func TestOEmbedClient_Lookup_Fallback(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		c := youtube.NewOEmbedClient()
		c.SetBaseURL(ts.URL)

		title, channel := c.Lookup(context.Background(), "abc123def45")
		assert.Equal(t, "Video abc123def45", title)
		assert.Equal(t, "Unknown Channel", channel)
	})

	t.Run("unreachable server", func(t *testing.T) {
		c := youtube.NewOEmbedClient()
		c.SetBaseURL("http://127.0.0.1:1")

		title, channel := c.Lookup(context.Background(), "abc123def45")
		assert.Equal(t, "Video abc123def45", title)
		assert.Equal(t, "Unknown Channel", channel)
	})

	t.Run("empty fields", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer ts.Close()

		c := youtube.NewOEmbedClient()
		c.SetBaseURL(ts.URL)

		title, channel := c.Lookup(context.Background(), "abc123def45")
		assert.Equal(t, "Video abc123def45", title)
		assert.Equal(t, "Unknown Channel", channel)
	})
}
