package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/vire-research/internal/common"
)

// nonFiniteTokens are the bare literals the engine's serializer leaks into
// otherwise-valid JSON. Each is replaced with null before decoding.
var nonFiniteTokens = []string{"-Infinity", "Infinity", "NaN"}

// SanitizeNonFinite replaces bare NaN/Infinity/-Infinity tokens outside
// string literals with null, yielding standard JSON. Input that contains no
// such tokens is returned unchanged.
func SanitizeNonFinite(data []byte) []byte {
	var out *bytes.Buffer
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			if out != nil {
				out.WriteByte(c)
			}
			continue
		}

		if c == '"' {
			inString = true
			if out != nil {
				out.WriteByte(c)
			}
			continue
		}

		matched := 0
		for _, tok := range nonFiniteTokens {
			if len(data)-i >= len(tok) && string(data[i:i+len(tok)]) == tok {
				matched = len(tok)
				break
			}
		}
		if matched > 0 {
			if out == nil {
				out = bytes.NewBuffer(make([]byte, 0, len(data)))
				out.Write(data[:i])
			}
			out.WriteString("null")
			i += matched - 1
			continue
		}

		if out != nil {
			out.WriteByte(c)
		}
	}

	if out == nil {
		return data
	}
	return out.Bytes()
}

// decodeTolerant decodes artifact JSON into v, tolerating non-finite
// numeric tokens in the raw bytes.
func decodeTolerant(data []byte, v interface{}) error {
	return json.Unmarshal(SanitizeNonFinite(data), v)
}

// deepClean walks a decoded JSON value and replaces any non-finite float
// with nil. Decoded standard JSON cannot contain one, but values assembled
// in memory can; the cleanup utility runs it before re-encoding.
func deepClean(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		for i, e := range t {
			t[i] = deepClean(e)
		}
		return t
	case map[string]interface{}:
		for k, e := range t {
			t[k] = deepClean(e)
		}
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	default:
		return v
	}
}

// CleanFile rewrites one artifact file with every non-finite numeric leaf
// replaced by null, encoded as standard two-space-indented JSON. The
// rewrite is idempotent: cleaning an already-clean file reproduces it
// byte for byte.
func CleanFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var data interface{}
	if err := decodeTolerant(raw, &data); err != nil {
		return &ParseError{Filename: filepath.Base(path), Err: err}
	}

	cleaned, err := json.MarshalIndent(deepClean(data), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, cleaned, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CleanDirectory cleans every .json file in dir and returns the number of
// files rewritten. A missing directory is an error: the cleanup utility is
// operator-invoked and a bad path should fail loudly. Files that do not
// parse are logged and skipped.
func CleanDirectory(dir string, logger *common.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list backtest directory %s: %w", dir, err)
	}

	cleaned := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := CleanFile(path); err != nil {
			logger.Warn().Str("file", entry.Name()).Err(err).Msg("skipping unparseable backtest file")
			continue
		}
		logger.Info().Str("file", entry.Name()).Msg("cleaned backtest file")
		cleaned++
	}
	return cleaned, nil
}
