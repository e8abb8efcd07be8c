package transcript

import "strings"

// DefaultChunkSeconds is the target span of a single chunk. 60s keeps
// deep-link timestamps precise enough to land inside the quoted passage.
const DefaultChunkSeconds = 60

// CaptionFragment is one entry of a fetched caption track.
type CaptionFragment struct {
	Text     string
	Start    float64
	Duration float64
}

// Chunk is a contiguous span of transcript text bounded by whole-second
// timestamps. Chunks of one video are ordered and non-overlapping.
type Chunk struct {
	Text         string `json:"text"`
	StartSeconds int    `json:"start_seconds"`
	EndSeconds   int    `json:"end_seconds"`
}

// ChunkCaptions groups caption fragments into chunks of roughly chunkSeconds
// accumulated duration. A chunk closes on the fragment that pushes the
// accumulator to or past the threshold, ending at that fragment's end time.
// Whatever remains after the last fragment becomes a final, possibly short,
// chunk. The pass is greedy and lossless: fragments are never split, merged
// back, or carried over between chunks.
func ChunkCaptions(fragments []CaptionFragment, chunkSeconds int) []Chunk {
	if chunkSeconds <= 0 {
		chunkSeconds = DefaultChunkSeconds
	}

	var chunks []Chunk
	var buf strings.Builder
	var chunkStart float64
	var accumulated float64
	open := false

	for _, frag := range fragments {
		if !open {
			chunkStart = frag.Start
			open = true
		}

		buf.WriteString(" ")
		buf.WriteString(frag.Text)
		accumulated += frag.Duration

		if accumulated >= float64(chunkSeconds) {
			chunks = append(chunks, Chunk{
				Text:         strings.TrimSpace(buf.String()),
				StartSeconds: int(chunkStart),
				EndSeconds:   int(frag.Start + frag.Duration),
			})
			buf.Reset()
			accumulated = 0
			open = false
		}
	}

	if text := strings.TrimSpace(buf.String()); text != "" {
		last := fragments[len(fragments)-1]
		chunks = append(chunks, Chunk{
			Text:         text,
			StartSeconds: int(chunkStart),
			EndSeconds:   int(last.Start + last.Duration),
		})
	}

	return chunks
}
