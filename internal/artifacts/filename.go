// Package artifacts indexes and reads the JSON snapshot files written by
// the external trading/backtesting engine. The engine owns the files; this
// package only derives metadata from their names and decodes their contents.
package artifacts

import (
	"regexp"
	"time"
)

// filenamePattern matches the engine's snapshot naming convention,
// e.g. NVDA_20250528_171416_analysis.json.
var filenamePattern = regexp.MustCompile(`^([A-Z]+)_(\d{8})_(\d{6})_analysis\.json$`)

// FileInfo is metadata derived purely from a snapshot filename.
type FileInfo struct {
	Filename  string    `json:"filename"`
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
}

// ParseFilename decomposes a snapshot filename into its metadata.
// Returns false for any name that does not match the engine's convention;
// such entries are dropped from indexes, never reported as errors.
// The embedded date and time are interpreted as naive local time.
func ParseFilename(name string) (FileInfo, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return FileInfo{}, false
	}

	ts, err := time.ParseInLocation("20060102150405", m[2]+m[3], time.Local)
	if err != nil {
		// Digits matched but do not form a calendar date (e.g. month 13).
		return FileInfo{}, false
	}

	return FileInfo{
		Filename:  name,
		Ticker:    m[1],
		Timestamp: ts,
	}, true
}
