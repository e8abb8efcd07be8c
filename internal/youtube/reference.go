package youtube

import "regexp"

// RefKind names the unit of work an input reference resolves to.
type RefKind string

const (
	RefVideo    RefKind = "video"
	RefPlaylist RefKind = "playlist"
	RefChannel  RefKind = "channel"
	RefUnknown  RefKind = "unknown"
)

// Reference is a classified input. For videos and playlists ID holds the
// extracted identifier; for channels it holds the entire original reference,
// since channel enumeration needs the full locator, not a bare handle.
type Reference struct {
	Kind RefKind
	ID   string
}

// Video ids are exactly 11 characters of the URL-safe alphabet.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

var playlistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/playlist\?list=([a-zA-Z0-9_-]+)`),
}

var channelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/@([a-zA-Z0-9_.-]+)`),
	regexp.MustCompile(`youtube\.com/channel/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/c/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`youtube\.com/user/([a-zA-Z0-9_-]+)`),
}

// Classify determines which unit of work a reference names. Precedence is
// playlist, then video, then channel: a playlist URL's query string can carry
// a v= parameter too, and it must resolve to the playlist's bulk semantics
// rather than the embedded single video.
func Classify(reference string) Reference {
	for _, re := range playlistPatterns {
		if m := re.FindStringSubmatch(reference); m != nil {
			return Reference{Kind: RefPlaylist, ID: m[1]}
		}
	}

	for _, re := range videoPatterns {
		if m := re.FindStringSubmatch(reference); m != nil {
			return Reference{Kind: RefVideo, ID: m[1]}
		}
	}

	for _, re := range channelPatterns {
		if re.MatchString(reference) {
			return Reference{Kind: RefChannel, ID: reference}
		}
	}

	return Reference{Kind: RefUnknown}
}
