package audio

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"revoice/internal/media/ffprobe"
)

// Selection identifies the audio stream whose speech will be transcribed.
type Selection struct {
	Stream ffprobe.Stream
	// Index is the absolute ffprobe stream index, or -1 when the container has no audio.
	Index int
	// Ordinal is the position among audio streams, as used by ffmpeg's 0:a:N specifier.
	Ordinal int
	Reason  string
}

// Found reports whether an audio stream was selected.
func (s Selection) Found() bool {
	return s.Index >= 0
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Stream)
}

// Select picks the audio stream most likely to carry dialogue in the wanted
// language. Matching language outranks everything, then tracks that are not
// commentary or audio description, then the default disposition, then
// container order.
func Select(streams []ffprobe.Stream, want string) Selection {
	candidates := buildCandidates(streams, baseLanguage(want))
	if len(candidates) == 0 {
		return Selection{Index: -1, Ordinal: -1, Reason: "no audio streams"}
	}

	best := candidates[0]
	bestScore := scoreCandidate(best)
	for i := 1; i < len(candidates); i++ {
		if score := scoreCandidate(candidates[i]); score > bestScore {
			best = candidates[i]
			bestScore = score
		}
	}

	return Selection{
		Stream:  best.stream,
		Index:   best.stream.Index,
		Ordinal: best.order,
		Reason:  best.reason(),
	}
}

type candidate struct {
	stream         ffprobe.Stream
	order          int
	language       string
	title          string
	matchesWanted  bool
	isSecondary    bool
	channels       int
	defaultFlagged bool
}

func (c candidate) reason() string {
	parts := make([]string, 0, 3)
	if c.matchesWanted {
		parts = append(parts, "language match")
	}
	if c.defaultFlagged {
		parts = append(parts, "default track")
	}
	if c.isSecondary {
		parts = append(parts, "secondary track")
	}
	if len(parts) == 0 {
		return "first audio stream"
	}
	return strings.Join(parts, ", ")
}

func scoreCandidate(cand candidate) float64 {
	score := 0.0
	if cand.matchesWanted {
		score += 1000
	}
	if !cand.isSecondary {
		score += 500
	}
	if cand.defaultFlagged {
		score += 100
	}
	// Dialogue is clearest on mono or stereo mixes; surround tracks bury it in the center channel.
	if cand.channels > 0 && cand.channels <= 2 {
		score += 10
	}
	// Prefer earlier tracks when scores tie.
	score -= float64(cand.order) * 0.1
	return score
}

func buildCandidates(streams []ffprobe.Stream, want language.Base) []candidate {
	result := make([]candidate, 0)
	order := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		cand := candidate{
			stream:         stream,
			order:          order,
			language:       normalizeLanguage(stream.Tags),
			title:          normalizeTitle(stream.Tags),
			channels:       stream.Channels,
			defaultFlagged: stream.Disposition != nil && stream.Disposition["default"] == 1,
		}
		cand.matchesWanted = cand.language != "" && baseLanguage(cand.language) == want
		cand.isSecondary = detectSecondary(stream, cand.title)
		result = append(result, cand)
		order++
	}
	return result
}

// baseLanguage maps BCP 47 and ISO 639-2 codes ("en-US", "eng") to their base language.
func baseLanguage(code string) language.Base {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return language.Base{}
	}
	base, _ := tag.Base()
	return base
}

func normalizeLanguage(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "LANG"} {
		if value, ok := tags[key]; ok {
			value = strings.ToLower(strings.TrimSpace(value))
			if value == "und" {
				return ""
			}
			return value
		}
	}
	return ""
}

func normalizeTitle(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"title", "TITLE", "handler_name", "HANDLER_NAME"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func detectSecondary(stream ffprobe.Stream, normalizedTitle string) bool {
	if stream.Disposition != nil {
		if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
			return true
		}
	}
	for _, keyword := range []string{"commentary", "description", "descriptive"} {
		if strings.Contains(normalizedTitle, keyword) {
			return true
		}
	}
	return false
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := normalizeLanguage(stream.Tags); lang != "" {
		parts = append(parts, lang)
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
