// Package ingest turns a YouTube reference (video, playlist, or channel URL)
// into indexed transcript clips, streaming human-readable progress messages
// while it works.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clipseek/internal/clip"
	"clipseek/internal/transcript"
	"clipseek/internal/youtube"
)

type Scraper interface {
	ChannelVideos(ctx context.Context, channelRef string) ([]youtube.Video, error)
	PlaylistVideos(ctx context.Context, playlistID string) ([]youtube.Video, error)
}

type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]transcript.CaptionFragment, error)
}

type MetadataLookup interface {
	Lookup(ctx context.Context, videoID string) (title, channelName string)
}

type ClipStore interface {
	Add(ctx context.Context, records []clip.Record) error
	GetAll(ctx context.Context) ([]clip.Record, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// Options tune the run without touching the collaborator seams.
type Options struct {
	ChunkSeconds int
	// UnitDelay is the pause between videos in bulk runs.
	UnitDelay time.Duration
}

type Service struct {
	scraper  Scraper
	captions CaptionFetcher
	metadata MetadataLookup
	store    ClipStore
	embedder Embedder
	pub      EventPublisher
	opts     Options
}

func NewService(scraper Scraper, captions CaptionFetcher, metadata MetadataLookup, store ClipStore, embedder Embedder, pub EventPublisher, opts Options) *Service {
	if opts.ChunkSeconds <= 0 {
		opts.ChunkSeconds = transcript.DefaultChunkSeconds
	}
	return &Service{
		scraper:  scraper,
		captions: captions,
		metadata: metadata,
		store:    store,
		embedder: embedder,
		pub:      pub,
		opts:     opts,
	}
}

// Run classifies the reference and drives the matching ingestion flow. The
// returned channel carries progress messages and is closed when the run ends;
// closure is the only completion signal. Cancelling the context stops the run.
func (s *Service) Run(ctx context.Context, reference string) <-chan string {
	events := make(chan string, 64)
	go func() {
		defer close(events)
		s.run(ctx, reference, events)
	}()
	return events
}

func (s *Service) run(ctx context.Context, reference string, events chan<- string) {
	ref := youtube.Classify(reference)
	emit(ctx, events, fmt.Sprintf("🔗 Detected URL type: %s", strings.ToUpper(string(ref.Kind))))

	var outcome runOutcome
	switch ref.Kind {
	case youtube.RefChannel:
		outcome = s.ingestChannel(ctx, ref.ID, events)
	case youtube.RefPlaylist:
		outcome = s.ingestPlaylist(ctx, ref.ID, events)
	case youtube.RefVideo:
		outcome = s.ingestVideo(ctx, ref.ID, events)
	default:
		emit(ctx, events, "❌ Could not detect URL type. Please provide a valid YouTube channel, playlist, or video URL.")
		emit(ctx, events, "   Examples:")
		emit(ctx, events, "   - Channel: https://www.youtube.com/@ChannelName")
		emit(ctx, events, "   - Playlist: https://www.youtube.com/playlist?list=PLxxxxx")
		emit(ctx, events, "   - Video: https://www.youtube.com/watch?v=xxxxx")
		outcome = runOutcome{err: "unrecognized reference"}
	}

	s.publishResult(reference, ref.Kind, outcome)
}

func (s *Service) ingestVideo(ctx context.Context, videoID string, events chan<- string) runOutcome {
	emit(ctx, events, fmt.Sprintf("🎬 Processing single video: %s", videoID))

	indexed := s.indexedVideoIDs(ctx)
	if indexed[videoID] {
		emit(ctx, events, "✅ This video is already indexed!")
		return runOutcome{}
	}

	emit(ctx, events, "📡 Fetching video info...")
	title, channelName := s.metadata.Lookup(ctx, videoID)
	emit(ctx, events, fmt.Sprintf("📺 %s by %s", title, channelName))

	emit(ctx, events, "📜 Fetching transcript...")
	chunks, err := s.transcriptChunks(ctx, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoCaptions) {
			emit(ctx, events, "❌ No transcript available for this video")
			return runOutcome{skipped: 1}
		}
		emit(ctx, events, fmt.Sprintf("❌ Error fetching transcript: %v", err))
		return runOutcome{err: err.Error()}
	}

	emit(ctx, events, fmt.Sprintf("📊 Found %d transcript chunks", len(chunks)))

	video := clip.VideoContext{VideoID: videoID, Title: title, ChannelName: channelName}
	if err := s.indexChunks(ctx, video, chunks); err != nil {
		emit(ctx, events, fmt.Sprintf("❌ Error indexing: %v", err))
		return runOutcome{err: err.Error()}
	}
	emit(ctx, events, fmt.Sprintf("✅ Indexed %d clips from video", len(chunks)))

	emit(ctx, events, "🎉 Complete!")
	return runOutcome{indexed: 1}
}

func (s *Service) ingestPlaylist(ctx context.Context, playlistID string, events chan<- string) runOutcome {
	emit(ctx, events, fmt.Sprintf("📋 Scanning playlist: %s", playlistID))

	videos, err := s.scraper.PlaylistVideos(ctx, playlistID)
	if err != nil {
		emit(ctx, events, fmt.Sprintf("❌ Error scanning playlist: %v", err))
		return runOutcome{err: err.Error()}
	}

	emit(ctx, events, fmt.Sprintf("📊 Found %d videos in playlist", len(videos)))

	indexed := s.indexedVideoIDs(ctx)
	emit(ctx, events, fmt.Sprintf("📚 Database contains %d previously indexed videos", len(indexed)))

	newVideos := filterNew(videos, indexed)
	if len(newVideos) == 0 {
		emit(ctx, events, "✅ All playlist videos already indexed!")
		return runOutcome{}
	}

	emit(ctx, events, fmt.Sprintf("🆕 %d new videos to index", len(newVideos)))

	// Playlists keep each video's own channel attribution.
	return s.ingestBatch(ctx, newVideos, "", events)
}

func (s *Service) ingestChannel(ctx context.Context, channelRef string, events chan<- string) runOutcome {
	emit(ctx, events, "🔍 Scanning channel for videos...")

	videos, err := s.scraper.ChannelVideos(ctx, channelRef)
	if err != nil {
		emit(ctx, events, fmt.Sprintf("❌ Error scanning channel: %v", err))
		return runOutcome{err: err.Error()}
	}

	emit(ctx, events, fmt.Sprintf("📊 Found %d videos in channel", len(videos)))

	// Scraped channel metadata is unreliable, so the channel name is pinned
	// from the first video's oEmbed data and applied to the whole run.
	channelName := "Unknown Channel"
	if len(videos) > 0 && videos[0].ID != "" {
		_, channelName = s.metadata.Lookup(ctx, videos[0].ID)
	}
	emit(ctx, events, fmt.Sprintf("📺 Channel: %s", channelName))

	indexed := s.indexedVideoIDs(ctx)
	emit(ctx, events, fmt.Sprintf("📚 Database contains %d previously indexed videos", len(indexed)))

	newVideos := filterNew(videos, indexed)
	if len(newVideos) == 0 {
		emit(ctx, events, "✅ All videos already indexed! Nothing new to process.")
		return runOutcome{}
	}

	emit(ctx, events, fmt.Sprintf("🆕 %d new videos to index", len(newVideos)))

	return s.ingestBatch(ctx, newVideos, channelName, events)
}

// ingestBatch walks the new videos one by one. channelOverride, when set,
// replaces each video's scraped channel attribution.
func (s *Service) ingestBatch(ctx context.Context, videos []youtube.Video, channelOverride string, events chan<- string) runOutcome {
	var out runOutcome

	for i, video := range videos {
		if ctx.Err() != nil {
			return out
		}

		emit(ctx, events, fmt.Sprintf("📥 [%d/%d] Processing: %s...", i+1, len(videos), truncate(video.Title, 50)))

		chunks, err := s.transcriptChunks(ctx, video.ID)
		if err != nil {
			if errors.Is(err, youtube.ErrNoCaptions) {
				emit(ctx, events, "   ⏭️ Skipped (no transcript available)")
			} else {
				emit(ctx, events, fmt.Sprintf("   ❌ Error fetching transcript: %v", err))
			}
			out.skipped++
			continue
		}

		channelName := video.Channel
		if channelOverride != "" {
			channelName = channelOverride
		}

		vc := clip.VideoContext{VideoID: video.ID, Title: video.Title, ChannelName: channelName}
		if err := s.indexChunks(ctx, vc, chunks); err != nil {
			emit(ctx, events, fmt.Sprintf("   ❌ Error indexing: %v", err))
			out.skipped++
			continue
		}
		out.indexed++
		emit(ctx, events, fmt.Sprintf("   ✅ Indexed %d clips", len(chunks)))

		if s.opts.UnitDelay > 0 && i < len(videos)-1 {
			select {
			case <-time.After(s.opts.UnitDelay):
			case <-ctx.Done():
				return out
			}
		}
	}

	emit(ctx, events, fmt.Sprintf("🎉 Complete! Indexed %d videos (%d skipped)", out.indexed, out.skipped))
	return out
}

// transcriptChunks fetches captions and chunks them. A video whose captions
// chunk down to nothing is treated the same as one with no caption track.
func (s *Service) transcriptChunks(ctx context.Context, videoID string) ([]transcript.Chunk, error) {
	fragments, err := s.captions.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	chunks := transcript.ChunkCaptions(fragments, s.opts.ChunkSeconds)
	if len(chunks) == 0 {
		return nil, youtube.ErrNoCaptions
	}
	return chunks, nil
}

// indexChunks embeds every chunk of one video and stores the records in a
// single batch. All records of a video share one indexedAt timestamp.
func (s *Service) indexChunks(ctx context.Context, video clip.VideoContext, chunks []transcript.Chunk) error {
	indexedAt := time.Now().Unix()

	records := make([]clip.Record, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return err
		}
		rec := clip.Compose(chunk, video, indexedAt)
		rec.Vector = vec
		records = append(records, rec)
	}

	return s.store.Add(ctx, records)
}

// indexedVideoIDs resolves the set of already-indexed videos. A store error
// degrades to an empty set so first runs against a fresh instance proceed.
func (s *Service) indexedVideoIDs(ctx context.Context) map[string]bool {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		slog.Warn("failed to list indexed clips, assuming empty corpus", "error", err)
		return map[string]bool{}
	}
	ids := make(map[string]bool)
	for _, rec := range records {
		if rec.VideoID != "" {
			ids[rec.VideoID] = true
		}
	}
	return ids
}

func filterNew(videos []youtube.Video, indexed map[string]bool) []youtube.Video {
	var out []youtube.Video
	for _, v := range videos {
		if !indexed[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

func emit(ctx context.Context, events chan<- string, msg string) bool {
	select {
	case events <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
