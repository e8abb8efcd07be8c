package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clipseek/internal/transcript"
)

func TestCompose(t *testing.T) {
	chunk := transcript.Chunk{Text: "some spoken words", StartSeconds: 120, EndSeconds: 185}
	video := VideoContext{VideoID: "dQw4w9WgXcQ", Title: "A Title", ChannelName: "A Channel"}

	rec := Compose(chunk, video, 1700000000)

	assert.Empty(t, rec.ID, "store assigns the id")
	assert.Equal(t, "some spoken words", rec.Text)
	assert.Equal(t, "dQw4w9WgXcQ", rec.VideoID)
	assert.Equal(t, "A Title", rec.Title)
	assert.Equal(t, "A Channel", rec.ChannelName)
	assert.Equal(t, 120, rec.StartSeconds)
	assert.Equal(t, 185, rec.EndSeconds)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", rec.SourceURL)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg", rec.ThumbnailURL)
	assert.Equal(t, int64(1700000000), rec.IndexedAt)
}

func TestCompose_SharedIndexedAt(t *testing.T) {
	video := VideoContext{VideoID: "v", Title: "t", ChannelName: "c"}
	a := Compose(transcript.Chunk{StartSeconds: 0, EndSeconds: 60}, video, 42)
	b := Compose(transcript.Chunk{StartSeconds: 60, EndSeconds: 120}, video, 42)
	assert.Equal(t, a.IndexedAt, b.IndexedAt)
}
