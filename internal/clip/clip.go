package clip

import (
	"fmt"

	"clipseek/internal/transcript"
)

const (
	watchURLTemplate     = "https://www.youtube.com/watch?v=%s"
	thumbnailURLTemplate = "https://img.youtube.com/vi/%s/mqdefault.jpg"
)

// Record is the unit of storage and retrieval: one transcript chunk plus the
// video metadata needed for citation and playback. ID is assigned by the
// vector store; it is empty until the record has been persisted.
type Record struct {
	ID           string
	Text         string
	VideoID      string
	Title        string
	ChannelName  string
	StartSeconds int
	EndSeconds   int
	SourceURL    string
	ThumbnailURL string
	IndexedAt    int64
	Vector       []float32
}

// VideoContext is the video-level metadata shared by all clips of one video.
type VideoContext struct {
	VideoID     string
	Title       string
	ChannelName string
}

// Compose attaches video context and derived URLs to a chunk. indexedAt is
// captured once per video so all its clips share the same value.
func Compose(chunk transcript.Chunk, video VideoContext, indexedAt int64) Record {
	return Record{
		Text:         chunk.Text,
		VideoID:      video.VideoID,
		Title:        video.Title,
		ChannelName:  video.ChannelName,
		StartSeconds: chunk.StartSeconds,
		EndSeconds:   chunk.EndSeconds,
		SourceURL:    WatchURL(video.VideoID),
		ThumbnailURL: ThumbnailURL(video.VideoID),
		IndexedAt:    indexedAt,
	}
}

func WatchURL(videoID string) string {
	return fmt.Sprintf(watchURLTemplate, videoID)
}

func ThumbnailURL(videoID string) string {
	return fmt.Sprintf(thumbnailURLTemplate, videoID)
}
