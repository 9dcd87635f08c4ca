// Package types defines shared data structures for uncomment.
package types

import "runtime/debug"

// Version is the application version. Set at build time via -ldflags.
// Falls back to module version from go install, or "dev" for local builds.
var Version = "dev"

func init() {
	// If version wasn't set via ldflags, try to get it from build info
	// This works when installed via: go install ...@version
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
}

// Language is a selectable entry in the language catalog.
type Language struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StripRequest is a single snippet submitted for comment removal.
type StripRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// StripResult is the outcome of stripping a single snippet.
type StripResult struct {
	Output        string  `json:"output"`
	Language      string  `json:"language"`
	Label         string  `json:"label"`
	ElapsedMillis float64 `json:"elapsed_ms"`
	OriginalLines int     `json:"original_lines"`
	ResultLines   int     `json:"result_lines"`
	Message       string  `json:"message"`
	Cached        bool    `json:"cached,omitempty"`
}

// FileResult reports on a single file processed in batch mode.
type FileResult struct {
	Path          string `json:"path"`
	OriginalLines int    `json:"original_lines"`
	ResultLines   int    `json:"result_lines"`
	Changed       bool   `json:"changed"`
	Written       bool   `json:"written,omitempty"`
	Output        string `json:"output,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchResult is the output of stripping a set of files.
type BatchResult struct {
	Language string       `json:"language"`
	Files    []FileResult `json:"files"`
	Changed  int          `json:"changed"`
	Failed   int          `json:"failed"`
}

// CacheStatus reports on the result cache.
type CacheStatus struct {
	Enabled  bool `json:"enabled"`
	Size     int  `json:"size"`
	Capacity int  `json:"capacity"`
}

// StatusResponse is the output of the status command and tool.
type StatusResponse struct {
	Version   string      `json:"version"`
	Languages int         `json:"languages"`
	Aliases   []string    `json:"aliases"`
	Cache     CacheStatus `json:"cache"`
}
