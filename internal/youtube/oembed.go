package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// OEmbedClient resolves a video's title and channel name through YouTube's
// oEmbed endpoint. It is more reliable for single videos than scraped
// metadata, which is why channel runs use it to pin the channel name.
type OEmbedClient struct {
	client  *http.Client
	baseURL string
}

func NewOEmbedClient() *OEmbedClient {
	return &OEmbedClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://www.youtube.com",
	}
}

func (c *OEmbedClient) SetBaseURL(u string) {
	c.baseURL = u
}

// Lookup returns the video's title and channel name. Any failure falls back
// to ("Video {id}", "Unknown Channel") rather than an error: metadata is
// decorative and must never block indexing.
func (c *OEmbedClient) Lookup(ctx context.Context, videoID string) (title, channel string) {
	title = fmt.Sprintf("Video %s", videoID)
	channel = "Unknown Channel"

	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	endpoint := fmt.Sprintf("%s/oembed?url=%s&format=json", c.baseURL, url.QueryEscape(watchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return title, channel
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("oembed lookup failed", "video_id", videoID, "error", err)
		return title, channel
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("oembed lookup non-200", "video_id", videoID, "status", resp.StatusCode)
		return title, channel
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return title, channel
	}

	if payload.Title != "" {
		title = payload.Title
	}
	if payload.AuthorName != "" {
		channel = payload.AuthorName
	}
	return title, channel
}
