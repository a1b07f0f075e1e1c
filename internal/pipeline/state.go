package pipeline

// State is a point in the run lifecycle.
type State string

const (
	StatePending        State = "pending"
	StateUploaded       State = "uploaded"
	StateAudioExtracted State = "audio_extracted"
	StateDownmixed      State = "downmixed"
	StateTranscribed    State = "transcribed"
	StateCorrected      State = "corrected"
	StateSynthesized    State = "synthesized"
	StateMuxed          State = "muxed"
	StateDisplayed      State = "displayed"
	StateCleanedUp      State = "cleaned_up"
	StateFailed         State = "failed"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateCleanedUp || s == StateFailed
}

func (s State) String() string {
	return string(s)
}
