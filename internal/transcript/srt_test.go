package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSRTTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00,000"},
		{59, "00:00:59,000"},
		{60, "00:01:00,000"},
		{3599, "00:59:59,000"},
		{3661, "01:01:01,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SRTTimestamp(tt.seconds))
	}
}

func TestRenderSRT(t *testing.T) {
	chunks := []Chunk{
		{Text: "first chunk ", StartSeconds: 0, EndSeconds: 70},
		{Text: "second chunk", StartSeconds: 70, EndSeconds: 133},
	}

	srt := RenderSRT(chunks)
	lines := strings.Split(srt, "\n")

	assert.Equal(t, "1", lines[0])
	assert.Equal(t, "00:00:00,000 --> 00:01:10,000", lines[1])
	assert.Equal(t, "first chunk", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "2", lines[4])
	assert.Equal(t, "00:01:10,000 --> 00:02:13,000", lines[5])
	assert.Equal(t, "second chunk", lines[6])
}

func TestRenderSRT_Empty(t *testing.T) {
	assert.Equal(t, "", RenderSRT(nil))
}

func TestSRTFilename(t *testing.T) {
	assert.Equal(t, "My Video - Part 2_abc123.srt", SRTFilename("My Video - Part 2", "abc123"))
	assert.Equal(t, "weird name_vid.srt", SRTFilename("weird? name!!", "vid"))

	long := strings.Repeat("a", 80)
	got := SRTFilename(long, "id")
	assert.Equal(t, strings.Repeat("a", 50)+"_id.srt", got)
}
