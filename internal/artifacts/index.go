package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Index lists the snapshot files in one artifact directory. It holds no
// state beyond the directory path: every call re-reads the listing, since
// the external engine adds and removes files at any time.
type Index struct {
	dir string
}

// NewIndex creates an index over the given directory.
func NewIndex(dir string) *Index {
	return &Index{dir: dir}
}

// Dir returns the indexed directory path.
func (ix *Index) Dir() string {
	return ix.dir
}

// Records returns metadata for every filename matching the engine's naming
// convention, sorted by embedded timestamp descending. Ties keep directory
// order. A missing directory yields an empty list, not an error.
func (ix *Index) Records() ([]FileInfo, error) {
	records, err := ix.RecordsStrict()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// RecordsStrict is Records but surfaces a missing directory as an error.
// The admin backtest listing relies on the hard failure; everything else
// uses the lenient Records.
func (ix *Index) RecordsStrict() ([]FileInfo, error) {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list artifact directory %s: %w", ix.dir, err)
	}

	records := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := ParseFilename(entry.Name()); ok {
			records = append(records, info)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	return records, nil
}

// ByTicker returns the records for one ticker, newest first.
func (ix *Index) ByTicker(ticker string) ([]FileInfo, error) {
	records, err := ix.Records()
	if err != nil {
		return nil, err
	}

	ticker = strings.ToUpper(ticker)
	out := make([]FileInfo, 0, len(records))
	for _, r := range records {
		if r.Ticker == ticker {
			out = append(out, r)
		}
	}
	return out, nil
}

// ByDate returns the records whose embedded date (YYYYMMDD) matches.
func (ix *Index) ByDate(date string) ([]FileInfo, error) {
	records, err := ix.Records()
	if err != nil {
		return nil, err
	}

	out := make([]FileInfo, 0, len(records))
	for _, r := range records {
		if r.Timestamp.Format("20060102") == date {
			out = append(out, r)
		}
	}
	return out, nil
}

// Latest returns up to limit entries ordered by file modification time,
// newest first. Unlike Records it admits any .json file: the homepage feed
// directory is not guaranteed to use the dated naming convention, so the
// filesystem mtime stands in for the embedded timestamp. A missing
// directory yields an empty list.
func (ix *Index) Latest(limit int) ([]FileInfo, error) {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list artifact directory %s: %w", ix.dir, err)
	}

	records := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		rec := FileInfo{Filename: entry.Name(), Timestamp: fi.ModTime()}
		if parsed, ok := ParseFilename(entry.Name()); ok {
			rec.Ticker = parsed.Ticker
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Tickers returns the distinct tickers present in the index, sorted.
func (ix *Index) Tickers() ([]string, error) {
	records, err := ix.Records()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Ticker] = struct{}{}
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Dates returns the distinct snapshot dates (YYYYMMDD), newest first.
func (ix *Index) Dates() ([]string, error) {
	records, err := ix.Records()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Timestamp.Format("20060102")] = struct{}{}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// resolve joins a bare filename onto the index directory, rejecting names
// that escape it.
func (ix *Index) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid artifact filename %q", filename)
	}
	return filepath.Join(ix.dir, filename), nil
}
