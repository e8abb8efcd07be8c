package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"
)

// Video is one enumerated member of a channel or playlist. Title and Channel
// come from scraped metadata and may be the Unknown fallbacks.
type Video struct {
	ID      string
	Title   string
	Channel string
}

var (
	innertubeKeyRe = regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`)

	// Item renderers that wrap a single video in feed responses.
	videoRendererKeys = []string{"videoRenderer", "playlistVideoRenderer", "reelItemRenderer"}
)

// Scraper enumerates channel and playlist members without an API key, the
// way a browser does: the initial data blob of the public page, then the
// innertube browse endpoint for continuation pages.
type Scraper struct {
	client  *http.Client
	baseURL string
	pause   time.Duration
}

func NewScraper() *Scraper {
	return &Scraper{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://www.youtube.com",
		// Pause between continuation pages; larger channels rate-limit fast scrapes.
		pause: 1500 * time.Millisecond,
	}
}

func (s *Scraper) SetBaseURL(u string) {
	s.baseURL = u
}

func (s *Scraper) SetPause(d time.Duration) {
	s.pause = d
}

// ChannelVideos enumerates every video of a channel, oldest first. The
// channelRef is the full original reference (handle URL, /channel/, /c/ or
// /user/ form).
func (s *Scraper) ChannelVideos(ctx context.Context, channelRef string) ([]Video, error) {
	path, err := channelPath(channelRef)
	if err != nil {
		return nil, err
	}

	videos, err := s.enumerate(ctx, fmt.Sprintf("%s%s/videos?view=0&flow=grid", s.baseURL, path))
	if err != nil {
		return nil, err
	}

	// The videos tab is newest-first; ingestion wants oldest-first.
	for i, j := 0, len(videos)-1; i < j; i, j = i+1, j-1 {
		videos[i], videos[j] = videos[j], videos[i]
	}
	return videos, nil
}

// PlaylistVideos enumerates a playlist's members in playlist order.
func (s *Scraper) PlaylistVideos(ctx context.Context, playlistID string) ([]Video, error) {
	return s.enumerate(ctx, fmt.Sprintf("%s/playlist?list=%s", s.baseURL, url.QueryEscape(playlistID)))
}

func channelPath(channelRef string) (string, error) {
	u, err := url.Parse(channelRef)
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("invalid channel reference %q", channelRef)
	}
	return u.Path, nil
}

func (s *Scraper) enumerate(ctx context.Context, pageURL string) ([]Video, error) {
	body, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	data, err := extractInitialData(body)
	if err != nil {
		return nil, err
	}
	apiKey := extractInnertubeKey(body)

	var videos []Video
	collectVideos(data, &videos)
	token := findContinuation(data)

	// Continuation pages go through the innertube browse endpoint. Capped
	// to keep a malformed token loop from running forever.
	for page := 0; token != "" && apiKey != "" && page < 200; page++ {
		if s.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pause):
			}
		}

		next, err := s.fetchContinuation(ctx, apiKey, token)
		if err != nil {
			return nil, err
		}
		collectVideos(next, &videos)
		token = findContinuation(next)
	}

	return videos, nil
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Scraper) fetchContinuation(ctx context.Context, apiKey, token string) (interface{}, error) {
	payload, _ := json.Marshal(map[string]interface{}{
		"context": map[string]interface{}{
			"client": map[string]interface{}{
				"clientName":    "WEB",
				"clientVersion": "2.20240101.00.00",
			},
		},
		"continuation": token,
	})

	endpoint := fmt.Sprintf("%s/youtubei/v1/browse?key=%s", s.baseURL, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch continuation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch continuation: status %d", resp.StatusCode)
	}

	var data interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode continuation: %w", err)
	}
	return data, nil
}

// extractInitialData pulls the ytInitialData JSON object out of a page body
// by balancing braces from the first { after the marker. String literals are
// skipped so embedded braces don't break the count.
func extractInitialData(body []byte) (interface{}, error) {
	idx := bytes.Index(body, []byte("ytInitialData"))
	if idx < 0 {
		return nil, fmt.Errorf("ytInitialData not found in page")
	}
	start := bytes.IndexByte(body[idx:], '{')
	if start < 0 {
		return nil, fmt.Errorf("ytInitialData object not found in page")
	}
	start += idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				var data interface{}
				if err := json.Unmarshal(body[start:i+1], &data); err != nil {
					return nil, fmt.Errorf("decode ytInitialData: %w", err)
				}
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated ytInitialData object")
}

func extractInnertubeKey(body []byte) string {
	if m := innertubeKeyRe.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}

// collectVideos walks the response tree and gathers every video renderer.
// Feed responses vary in shape across channel, playlist and continuation
// payloads, so the walk is generic rather than schema-bound. Map keys are
// visited in sorted order to keep enumeration deterministic; the item lists
// themselves are JSON arrays, which preserve feed order.
func collectVideos(node interface{}, out *[]Video) {
	switch n := node.(type) {
	case map[string]interface{}:
		for _, key := range videoRendererKeys {
			if r, ok := n[key].(map[string]interface{}); ok {
				if v, ok := videoFromRenderer(r); ok {
					*out = append(*out, v)
				}
			}
		}
		for _, key := range sortedKeys(n) {
			collectVideos(n[key], out)
		}
	case []interface{}:
		for _, child := range n {
			collectVideos(child, out)
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func videoFromRenderer(r map[string]interface{}) (Video, bool) {
	id, _ := r["videoId"].(string)
	if id == "" {
		return Video{}, false
	}

	title := runsText(r["title"])
	if title == "" {
		title = runsText(r["headline"])
	}
	if title == "" {
		title = "Unknown Title"
	}

	// Owner metadata shape differs across response types; fall through the
	// known fields before giving up.
	channel := runsText(r["ownerText"])
	if channel == "" {
		channel = runsText(r["longBylineText"])
	}
	if channel == "" {
		channel = runsText(r["shortBylineText"])
	}
	if channel == "" {
		channel = "Unknown Channel"
	}

	return Video{ID: id, Title: title, Channel: channel}, true
}

// findContinuation returns the first continuation token in the tree, or ""
// when the feed is exhausted.
func findContinuation(node interface{}) string {
	switch n := node.(type) {
	case map[string]interface{}:
		if cmd, ok := n["continuationCommand"].(map[string]interface{}); ok {
			if token, ok := cmd["token"].(string); ok {
				return token
			}
		}
		for _, key := range sortedKeys(n) {
			if token := findContinuation(n[key]); token != "" {
				return token
			}
		}
	case []interface{}:
		for _, child := range n {
			if token := findContinuation(child); token != "" {
				return token
			}
		}
	}
	return ""
}

// runsText flattens the two text shapes the feed uses: {"runs":[{"text":..}]}
// and {"simpleText": ".."}.
func runsText(v interface{}) string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	if simple, ok := m["simpleText"].(string); ok {
		return simple
	}
	runs, ok := m["runs"].([]interface{})
	if !ok || len(runs) == 0 {
		return ""
	}
	text := ""
	for _, r := range runs {
		if rm, ok := r.(map[string]interface{}); ok {
			if t, ok := rm["text"].(string); ok {
				text += t
			}
		}
	}
	return text
}
