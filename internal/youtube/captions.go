package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"clipseek/internal/transcript"
)

// ErrNoCaptions marks the expected-absence case: the video exists but carries
// no caption track. Callers treat it as a normal skip, while other errors are
// transient fetch failures that could be retried.
var ErrNoCaptions = errors.New("no captions available")

var captionTracksRe = regexp.MustCompile(`"captionTracks":(\[.*?\])`)

// CaptionClient fetches a video's caption track. Discovery goes through the
// watch page (the captionTracks player config), the track itself through the
// timedtext endpoint it points at.
type CaptionClient struct {
	client  *http.Client
	baseURL string
}

func NewCaptionClient() *CaptionClient {
	return &CaptionClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: "https://www.youtube.com",
	}
}

func (c *CaptionClient) SetBaseURL(u string) {
	c.baseURL = u
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedTextBody struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the ordered caption fragments for a video. A video without
// any caption track yields ErrNoCaptions; network and decode failures yield
// ordinary errors.
func (c *CaptionClient) Fetch(ctx context.Context, videoID string) ([]transcript.CaptionFragment, error) {
	tracks, err := c.discoverTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}

	track := pickTrack(tracks)
	fragments, err := c.fetchTrack(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, ErrNoCaptions
	}
	return fragments, nil
}

func (c *CaptionClient) discoverTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	pageURL := fmt.Sprintf("%s/watch?v=%s", c.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch watch page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	m := captionTracksRe.FindSubmatch(body)
	if m == nil {
		// Player config without captionTracks means the video has none.
		return nil, nil
	}

	var tracks []captionTrack
	if err := json.Unmarshal(m[1], &tracks); err != nil {
		return nil, fmt.Errorf("decode caption tracks: %w", err)
	}
	return tracks, nil
}

// pickTrack prefers a manually authored English track, then any English
// track, then whatever comes first.
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

func (c *CaptionClient) fetchTrack(ctx context.Context, trackURL string) ([]transcript.CaptionFragment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch caption track: status %d", resp.StatusCode)
	}

	var doc timedTextBody
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode caption track: %w", err)
	}

	fragments := make([]transcript.CaptionFragment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		fragments = append(fragments, transcript.CaptionFragment{
			Text:     text,
			Start:    t.Start,
			Duration: t.Dur,
		})
	}
	return fragments, nil
}
