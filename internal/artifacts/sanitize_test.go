package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-research/internal/common"
)

func TestSanitizeNonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nan", `{"sharpe": NaN}`, `{"sharpe": null}`},
		{"infinity", `{"sortino": Infinity}`, `{"sortino": null}`},
		{"negative infinity", `{"drawdown": -Infinity}`, `{"drawdown": null}`},
		{"mixed", `[NaN, Infinity, -Infinity, 1.5]`, `[null, null, null, 1.5]`},
		{"clean passthrough", `{"value": 42}`, `{"value": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(SanitizeNonFinite([]byte(tt.in))))
		})
	}
}

func TestSanitizeNonFinite_LeavesStringsAlone(t *testing.T) {
	in := `{"reasoning": "returns were NaN and Infinity", "metric": NaN}`
	want := `{"reasoning": "returns were NaN and Infinity", "metric": null}`
	assert.Equal(t, want, string(SanitizeNonFinite([]byte(in))))
}

func TestSanitizeNonFinite_EscapedQuoteInString(t *testing.T) {
	in := `{"note": "said \"NaN\" twice", "v": Infinity}`
	want := `{"note": "said \"NaN\" twice", "v": null}`
	assert.Equal(t, want, string(SanitizeNonFinite([]byte(in))))
}

func TestSanitizeNonFinite_NoTokensReturnsInputUnchanged(t *testing.T) {
	in := []byte(`{"a":1,"b":"NaN in a string"}`)
	out := SanitizeNonFinite(in)
	assert.Equal(t, string(in), string(out))
}

func TestCleanFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "BTC_20250101_090000_analysis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"metrics": {"sharpe_ratio": NaN, "sortino_ratio": Infinity}, "final_value": 1050.5}`), 0644))

	require.NoError(t, CleanFile(path))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(first, &decoded), "cleaned output must be standard JSON")
	metrics := decoded["metrics"].(map[string]interface{})
	assert.Nil(t, metrics["sharpe_ratio"])
	assert.Nil(t, metrics["sortino_ratio"])
	assert.Equal(t, 1050.5, decoded["final_value"])

	// Second pass over an already-clean file reproduces it byte for byte.
	require.NoError(t, CleanFile(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCleanFile_Unparseable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0644))

	err := CleanFile(path)
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestCleanDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"v": NaN}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"v": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{oops"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not json"), 0644))

	count, err := CleanDirectory(dir, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, count, "broken file skipped, non-json ignored")
}

func TestCleanDirectory_MissingDirFails(t *testing.T) {
	_, err := CleanDirectory(filepath.Join(t.TempDir(), "nope"), common.NewSilentLogger())
	assert.Error(t, err)
}
