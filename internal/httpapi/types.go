package httpapi

import (
	"revoice/internal/pipeline"
	"revoice/internal/runlog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// RunResponse reports a finished upload run.
type RunResponse struct {
	RunID                string  `json:"run_id"`
	State                string  `json:"state"`
	SourceName           string  `json:"source_name"`
	Transcript           string  `json:"transcript"`
	Corrected            string  `json:"corrected"`
	AudioTrack           string  `json:"audio_track,omitempty"`
	AudioChannels        int     `json:"audio_channels,omitempty"`
	VideoDurationSeconds float64 `json:"video_duration_seconds,omitempty"`
	VideoURL             string  `json:"video_url,omitempty"`
	ElapsedMS            int64   `json:"elapsed_ms"`
	Error                string  `json:"error,omitempty"`
	ErrorKind            string  `json:"error_kind,omitempty"`
}

// RunListResponse lists recent runs, newest first.
type RunListResponse struct {
	Runs []runlog.Run `json:"runs"`
}

func fromResult(result pipeline.Result) RunResponse {
	resp := RunResponse{
		RunID:                result.RunID,
		State:                result.State.String(),
		SourceName:           result.SourceName,
		Transcript:           result.Transcript,
		Corrected:            result.Corrected,
		AudioTrack:           result.AudioTrack,
		AudioChannels:        result.AudioChannels,
		VideoDurationSeconds: result.VideoDuration,
		ElapsedMS:            result.Elapsed.Milliseconds(),
	}
	if result.OutputPath != "" {
		resp.VideoURL = "/api/runs/" + result.RunID + "/video"
	}
	return resp
}
