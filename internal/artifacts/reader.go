package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/models"
)

// ErrNotFound indicates the referenced artifact file does not exist.
var ErrNotFound = errors.New("artifact not found")

// ParseError indicates an artifact file exists but does not contain valid
// JSON. Kept distinct from ErrNotFound so batch readers can skip-and-log
// instead of aborting a directory scan.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse artifact %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// defaultReadConcurrency bounds parallel reads when no limit is configured.
const defaultReadConcurrency = 8

// Store reads analysis and backtest artifacts from their designated
// directories. All reads are tolerant of non-finite numeric tokens in the
// raw JSON; derived outputs never carry them.
type Store struct {
	analyses    *Index
	backtests   *Index
	logger      *common.Logger
	concurrency int
}

// NewStore creates an artifact store over the two engine directories.
func NewStore(analysisDir, backtestDir string, concurrency int, logger *common.Logger) *Store {
	if concurrency <= 0 {
		concurrency = defaultReadConcurrency
	}
	return &Store{
		analyses:    NewIndex(analysisDir),
		backtests:   NewIndex(backtestDir),
		logger:      logger,
		concurrency: concurrency,
	}
}

// AnalysisIndex returns the index over the analysis snapshot directory.
func (s *Store) AnalysisIndex() *Index { return s.analyses }

// BacktestIndex returns the index over the backtest result directory.
func (s *Store) BacktestIndex() *Index { return s.backtests }

// readFile loads and decodes one artifact file into v.
func readFile(ix *Index, filename string, v interface{}) error {
	path, err := ix.resolve(filename)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return fmt.Errorf("failed to read artifact %s: %w", filename, err)
	}

	if err := decodeTolerant(raw, v); err != nil {
		return &ParseError{Filename: filename, Err: err}
	}
	return nil
}

// ReadAnalysis loads one analysis snapshot by filename.
func (s *Store) ReadAnalysis(ctx context.Context, filename string) (*models.AnalysisData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data models.AnalysisData
	if err := readFile(s.analyses, filename, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ReadBacktest loads one backtest result by filename.
func (s *Store) ReadBacktest(ctx context.Context, filename string) (*models.BacktestData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data models.BacktestData
	if err := readFile(s.backtests, filename, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// AnalysisRecord pairs an analysis snapshot with its file metadata.
type AnalysisRecord struct {
	FileInfo FileInfo             `json:"fileInfo"`
	Data     *models.AnalysisData `json:"data"`
}

// BacktestRecord pairs a backtest result with its file metadata.
type BacktestRecord struct {
	FileInfo FileInfo             `json:"fileInfo"`
	Data     *models.BacktestData `json:"data"`
}

// ReadAnalyses reads the given records concurrently. Individual failures
// are logged and dropped; survivors keep the input ordering. The call
// returns once every read has either succeeded or failed.
func (s *Store) ReadAnalyses(ctx context.Context, records []FileInfo) []AnalysisRecord {
	results := make([]*models.AnalysisData, len(records))
	s.readBatch(ctx, s.analyses, records, func(i int, raw []byte) error {
		var data models.AnalysisData
		if err := decodeTolerant(raw, &data); err != nil {
			return err
		}
		results[i] = &data
		return nil
	})

	out := make([]AnalysisRecord, 0, len(records))
	for i, data := range results {
		if data != nil {
			out = append(out, AnalysisRecord{FileInfo: records[i], Data: data})
		}
	}
	return out
}

// ReadBacktests reads the given records concurrently with the same
// skip-and-log semantics as ReadAnalyses.
func (s *Store) ReadBacktests(ctx context.Context, records []FileInfo) []BacktestRecord {
	results := make([]*models.BacktestData, len(records))
	s.readBatch(ctx, s.backtests, records, func(i int, raw []byte) error {
		var data models.BacktestData
		if err := decodeTolerant(raw, &data); err != nil {
			return err
		}
		results[i] = &data
		return nil
	})

	out := make([]BacktestRecord, 0, len(records))
	for i, data := range results {
		if data != nil {
			out = append(out, BacktestRecord{FileInfo: records[i], Data: data})
		}
	}
	return out
}

// readBatch fans file reads out over a bounded worker pool. decode is
// called with the slot index and raw bytes; its error marks that slot
// failed. One bad file never aborts the batch.
func (s *Store) readBatch(ctx context.Context, ix *Index, records []FileInfo, decode func(int, []byte) error) {
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, rec := range records {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			path, err := ix.resolve(rec.Filename)
			if err != nil {
				s.logger.Warn().Str("file", rec.Filename).Err(err).Msg("skipping artifact with invalid name")
				return
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				s.logger.Warn().Str("file", rec.Filename).Err(err).Msg("skipping unreadable artifact")
				return
			}
			if err := decode(i, raw); err != nil {
				s.logger.Warn().Str("file", rec.Filename).Err(err).Msg("skipping unparseable artifact")
			}
		}(i, rec)
	}

	wg.Wait()
}
