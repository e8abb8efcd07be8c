package transcript

import (
	"fmt"
	"strings"
)

// SRTTimestamp renders whole seconds as the SRT timing format HH:MM:SS,mmm.
// Chunks carry whole-second boundaries, so milliseconds are always zero.
func SRTTimestamp(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d,000", hours, minutes, secs)
}

// RenderSRT serializes ordered chunks as an SRT document: 1-based sequence
// number, timing line, trimmed text, blank separator line.
func RenderSRT(chunks []Chunk) string {
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", SRTTimestamp(c.StartSeconds), SRTTimestamp(c.EndSeconds))
		b.WriteString(strings.TrimSpace(c.Text))
		b.WriteString("\n\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// SRTFilename builds a safe download filename from a video title and id.
// Anything outside alphanumerics, spaces, dashes and underscores is dropped,
// and the title is capped at 50 characters.
func SRTFilename(title, videoID string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if len(safe) > 50 {
		safe = safe[:50]
	}
	return fmt.Sprintf("%s_%s.srt", safe, videoID)
}
