// Package library exposes management views over the indexed corpus: the
// per-channel catalog, channel renames, video deletion, and transcript export.
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"clipseek/internal/clip"
	"clipseek/internal/transcript"
)

// Error text doubles as the API response message the frontend displays.
var (
	ErrEmptyLibrary  = errors.New("Database is empty")
	ErrVideoNotFound = errors.New("Video not found")
)

// ChannelNotFoundError carries the name that failed to match.
type ChannelNotFoundError struct {
	Name string
}

func (e *ChannelNotFoundError) Error() string {
	return fmt.Sprintf("Channel '%s' not found", e.Name)
}

type ClipStore interface {
	GetAll(ctx context.Context) ([]clip.Record, error)
	UpdateChannelName(ctx context.Context, ids []string, newName string) error
	Delete(ctx context.Context, ids []string) error
}

type VideoEntry struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ClipCount    int    `json:"clipCount"`
	IndexedAt    int64  `json:"indexedAt"`
}

type ChannelEntry struct {
	Name       string       `json:"name"`
	VideoCount int          `json:"videoCount"`
	Videos     []VideoEntry `json:"videos"`
}

type Summary struct {
	Channels    []ChannelEntry `json:"channels"`
	TotalVideos int            `json:"totalVideos"`
	TotalClips  int            `json:"totalClips"`
}

// TranscriptResult holds one video's chunks ordered by start time.
type TranscriptResult struct {
	VideoID     string             `json:"videoId"`
	Title       string             `json:"title"`
	ChannelName string             `json:"channelName"`
	Chunks      []transcript.Chunk `json:"chunks"`
}

type Service struct {
	store ClipStore
}

func NewService(store ClipStore) *Service {
	return &Service{store: store}
}

// Library groups all indexed clips by channel, then by video. Channels come
// out sorted by name; within a channel videos keep first-seen order. Records
// without a video id still count toward TotalClips but are not listed.
func (s *Service) Library(ctx context.Context) (Summary, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return Summary{Channels: []ChannelEntry{}}, err
	}

	type channelAcc struct {
		videoOrder []string
		videos     map[string]*VideoEntry
	}

	channels := make(map[string]*channelAcc)
	var channelOrder []string

	for _, rec := range records {
		if rec.VideoID == "" {
			continue
		}

		channelName := rec.ChannelName
		if channelName == "" {
			channelName = "Unknown Channel"
		}

		acc, ok := channels[channelName]
		if !ok {
			acc = &channelAcc{videos: make(map[string]*VideoEntry)}
			channels[channelName] = acc
			channelOrder = append(channelOrder, channelName)
		}

		entry, ok := acc.videos[rec.VideoID]
		if !ok {
			title := rec.Title
			if title == "" {
				title = fmt.Sprintf("Video %s", rec.VideoID)
			}
			thumb := rec.ThumbnailURL
			if thumb == "" {
				thumb = clip.ThumbnailURL(rec.VideoID)
			}
			entry = &VideoEntry{
				VideoID:      rec.VideoID,
				Title:        title,
				ThumbnailURL: thumb,
				IndexedAt:    rec.IndexedAt,
			}
			acc.videos[rec.VideoID] = entry
			acc.videoOrder = append(acc.videoOrder, rec.VideoID)
		}
		entry.ClipCount++
	}

	sort.Strings(channelOrder)

	summary := Summary{
		Channels:   []ChannelEntry{},
		TotalClips: len(records),
	}
	for _, name := range channelOrder {
		acc := channels[name]
		videos := make([]VideoEntry, 0, len(acc.videoOrder))
		for _, id := range acc.videoOrder {
			videos = append(videos, *acc.videos[id])
		}
		summary.TotalVideos += len(videos)
		summary.Channels = append(summary.Channels, ChannelEntry{
			Name:       name,
			VideoCount: len(videos),
			Videos:     videos,
		})
	}

	return summary, nil
}

// RenameChannel rewrites the channel attribution on every clip of a channel
// and returns how many clips changed.
func (s *Service) RenameChannel(ctx context.Context, oldName, newName string) (int, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, ErrEmptyLibrary
	}

	var ids []string
	for _, rec := range records {
		if rec.ChannelName == oldName {
			ids = append(ids, rec.ID)
		}
	}
	if len(ids) == 0 {
		return 0, &ChannelNotFoundError{Name: oldName}
	}

	if err := s.store.UpdateChannelName(ctx, ids, newName); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// DeleteVideo removes every clip of a video and returns how many went away.
func (s *Service) DeleteVideo(ctx context.Context, videoID string) (int, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, ErrEmptyLibrary
	}

	var ids []string
	for _, rec := range records {
		if rec.VideoID == videoID {
			ids = append(ids, rec.ID)
		}
	}
	if len(ids) == 0 {
		return 0, ErrVideoNotFound
	}

	if err := s.store.Delete(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Transcript reassembles a video's chunks in playback order.
func (s *Service) Transcript(ctx context.Context, videoID string) (TranscriptResult, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return TranscriptResult{}, err
	}
	if len(records) == 0 {
		return TranscriptResult{}, ErrEmptyLibrary
	}

	result := TranscriptResult{VideoID: videoID}
	for _, rec := range records {
		if rec.VideoID != videoID {
			continue
		}
		if result.Title == "" {
			title := rec.Title
			if title == "" {
				title = fmt.Sprintf("Video %s", videoID)
			}
			channelName := rec.ChannelName
			if channelName == "" {
				channelName = "Unknown Channel"
			}
			result.Title = title
			result.ChannelName = channelName
		}
		result.Chunks = append(result.Chunks, transcript.Chunk{
			Text:         rec.Text,
			StartSeconds: rec.StartSeconds,
			EndSeconds:   rec.EndSeconds,
		})
	}

	if len(result.Chunks) == 0 {
		return TranscriptResult{}, ErrVideoNotFound
	}

	sort.Slice(result.Chunks, func(i, j int) bool {
		return result.Chunks[i].StartSeconds < result.Chunks[j].StartSeconds
	})

	return result, nil
}
