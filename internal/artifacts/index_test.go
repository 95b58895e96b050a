package artifacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifact drops an empty JSON file into dir.
func writeArtifact(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
}

func TestIndexRecords_SortedNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAPL_20250101_090000_analysis.json")
	writeArtifact(t, dir, "NVDA_20250315_120000_analysis.json")
	writeArtifact(t, dir, "MSFT_20250201_100000_analysis.json")
	writeArtifact(t, dir, "notes.txt")
	writeArtifact(t, dir, "random.json")

	records, err := NewIndex(dir).Records()
	require.NoError(t, err)
	require.Len(t, records, 3, "non-conforming names are dropped")

	assert.Equal(t, "NVDA_20250315_120000_analysis.json", records[0].Filename)
	assert.Equal(t, "MSFT_20250201_100000_analysis.json", records[1].Filename)
	assert.Equal(t, "AAPL_20250101_090000_analysis.json", records[2].Filename)
}

func TestIndexRecords_TiedTimestampsKeepDirectoryOrder(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "BBB_20250101_090000_analysis.json")
	writeArtifact(t, dir, "AAA_20250101_090000_analysis.json")
	writeArtifact(t, dir, "ZZZ_20250102_090000_analysis.json")

	records, err := NewIndex(dir).Records()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Equal timestamps retain directory (lexicographic) order.
	assert.Equal(t, "ZZZ_20250102_090000_analysis.json", records[0].Filename)
	assert.Equal(t, "AAA_20250101_090000_analysis.json", records[1].Filename)
	assert.Equal(t, "BBB_20250101_090000_analysis.json", records[2].Filename)
}

func TestIndexRecords_MissingDirIsEmpty(t *testing.T) {
	ix := NewIndex(filepath.Join(t.TempDir(), "does-not-exist"))

	records, err := ix.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIndexRecordsStrict_MissingDirFails(t *testing.T) {
	ix := NewIndex(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := ix.RecordsStrict()
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestIndexRecords_SkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "AAPL_20250101_090000_analysis.json"), 0755))
	writeArtifact(t, dir, "NVDA_20250315_120000_analysis.json")

	records, err := NewIndex(dir).Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "NVDA", records[0].Ticker)
}

func TestIndexByTicker(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAPL_20250101_090000_analysis.json")
	writeArtifact(t, dir, "AAPL_20250301_090000_analysis.json")
	writeArtifact(t, dir, "NVDA_20250201_090000_analysis.json")

	records, err := NewIndex(dir).ByTicker("aapl")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AAPL_20250301_090000_analysis.json", records[0].Filename)
	assert.Equal(t, "AAPL_20250101_090000_analysis.json", records[1].Filename)
}

func TestIndexByDate(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAPL_20250101_090000_analysis.json")
	writeArtifact(t, dir, "NVDA_20250101_170000_analysis.json")
	writeArtifact(t, dir, "MSFT_20250102_090000_analysis.json")

	records, err := NewIndex(dir).ByDate("20250101")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "NVDA_20250101_170000_analysis.json", records[0].Filename)
}

func TestIndexTickersAndDates(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "NVDA_20250101_090000_analysis.json")
	writeArtifact(t, dir, "AAPL_20250101_170000_analysis.json")
	writeArtifact(t, dir, "AAPL_20250301_090000_analysis.json")

	ix := NewIndex(dir)

	tickers, err := ix.Tickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, tickers)

	dates, err := ix.Dates()
	require.NoError(t, err)
	assert.Equal(t, []string{"20250301", "20250101"}, dates)
}

func TestIndexLatest_OrdersByModTime(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "AAPL_20990101_090000_analysis.json")
	writeArtifact(t, dir, "feed.json")
	writeArtifact(t, dir, "readme.txt")

	// The embedded timestamp says 2099 but the mtime ordering must win.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "AAPL_20990101_090000_analysis.json"), old, old))

	records, err := NewIndex(dir).Latest(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "feed.json", records[0].Filename)
	assert.Equal(t, "AAPL_20990101_090000_analysis.json", records[1].Filename)
	assert.Equal(t, "AAPL", records[1].Ticker)
	assert.Empty(t, records[0].Ticker)
}

func TestIndexLatest_Limit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		writeArtifact(t, dir, name)
	}

	records, err := NewIndex(dir).Latest(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestIndexLatest_MissingDirIsEmpty(t *testing.T) {
	records, err := NewIndex(filepath.Join(t.TempDir(), "nope")).Latest(5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestIndexResolve_RejectsTraversal(t *testing.T) {
	ix := NewIndex(t.TempDir())

	for _, name := range []string{"", "../escape.json", "sub/file.json", "/etc/passwd"} {
		_, err := ix.resolve(name)
		assert.Error(t, err, "name %q must be rejected", name)
	}

	path, err := ix.resolve("AAPL_20250101_090000_analysis.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ix.Dir(), "AAPL_20250101_090000_analysis.json"), path)
}
