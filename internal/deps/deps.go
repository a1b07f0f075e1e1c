package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"revoice/internal/config"
)

// Requirement defines an external binary revoice relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MediaRequirements lists the ffmpeg and ffprobe binaries named in cfg.
func MediaRequirements(cfg *config.Config) []Requirement {
	ffmpegBinary, ffprobeBinary := "ffmpeg", "ffprobe"
	if cfg != nil {
		if v := strings.TrimSpace(cfg.Media.FFmpegBinary); v != "" {
			ffmpegBinary = v
		}
		if v := strings.TrimSpace(cfg.Media.FFprobeBinary); v != "" {
			ffprobeBinary = v
		}
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Extracts audio and muxes the synthesized voice"},
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Inspects streams and video duration"},
	}
}
