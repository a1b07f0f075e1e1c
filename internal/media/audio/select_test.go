package audio

import (
	"testing"

	"revoice/internal/media/ffprobe"
)

func TestSelectPrefersLanguageMatch(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{
			Index:       1,
			CodecType:   "audio",
			CodecName:   "aac",
			Channels:    2,
			Tags:        map[string]string{"language": "fra"},
			Disposition: map[string]int{"default": 1},
		},
		{
			Index:     2,
			CodecType: "audio",
			CodecName: "aac",
			Channels:  2,
			Tags:      map[string]string{"language": "eng"},
		},
	}

	sel := Select(streams, "en-US")
	if sel.Index != 2 {
		t.Fatalf("expected english track (index 2), got %d", sel.Index)
	}
	if sel.Ordinal != 1 {
		t.Fatalf("expected second audio stream ordinal, got %d", sel.Ordinal)
	}
	if sel.Reason != "language match" {
		t.Fatalf("unexpected reason %q", sel.Reason)
	}
}

func TestSelectSkipsCommentary(t *testing.T) {
	streams := []ffprobe.Stream{
		{
			Index:       1,
			CodecType:   "audio",
			Channels:    2,
			Tags:        map[string]string{"language": "eng", "title": "Director Commentary"},
			Disposition: map[string]int{"default": 1},
		},
		{
			Index:     2,
			CodecType: "audio",
			Channels:  6,
			Tags:      map[string]string{"language": "en"},
		},
		{
			Index:       3,
			CodecType:   "audio",
			Channels:    2,
			Tags:        map[string]string{"language": "eng"},
			Disposition: map[string]int{"visual_impaired": 1},
		},
	}

	sel := Select(streams, "en-US")
	if sel.Index != 2 {
		t.Fatalf("expected main dialogue track (index 2), got %d", sel.Index)
	}
}

func TestSelectFallsBackToFirstAudio(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "audio", Channels: 2},
		{Index: 2, CodecType: "audio", Channels: 2},
	}

	sel := Select(streams, "en-US")
	if sel.Index != 1 || sel.Ordinal != 0 {
		t.Fatalf("expected first audio stream, got index %d ordinal %d", sel.Index, sel.Ordinal)
	}
	if sel.Reason != "first audio stream" {
		t.Fatalf("unexpected reason %q", sel.Reason)
	}
}

func TestSelectWithoutAudio(t *testing.T) {
	sel := Select([]ffprobe.Stream{{Index: 0, CodecType: "video"}}, "en-US")
	if sel.Found() {
		t.Fatalf("expected no selection, got %+v", sel)
	}
	if sel.Label() != "" {
		t.Fatalf("expected empty label, got %q", sel.Label())
	}
}

func TestSelectionLabel(t *testing.T) {
	sel := Select([]ffprobe.Stream{{
		Index:     1,
		CodecType: "audio",
		CodecLong: "AAC (Advanced Audio Coding)",
		Channels:  2,
		Tags:      map[string]string{"language": "eng", "title": "Main"},
	}}, "en")
	if got := sel.Label(); got != "eng | AAC (Advanced Audio Coding) | 2ch | Main" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestBaseLanguageResolvesISO6392(t *testing.T) {
	if baseLanguage("eng") != baseLanguage("en-US") {
		t.Fatal("expected eng and en-US to share a base language")
	}
	if baseLanguage("deu") == baseLanguage("en") {
		t.Fatal("expected deu and en to differ")
	}
}
