package reports

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/taobook/internal/domain"
)

const (
	defaultRunDir   = "./wal/reports"
	runSegmentLimit = 1000
	runMaxSegments  = 100
	reportKeyPrefix = "report_row_"
)

// RunStore persists report rows in a WAL so a run's output survives
// restarts and can be replayed by the dashboard stream. Each store instance
// tags its rows with a fresh run ID.
type RunStore struct {
	wal   *gowal.Wal
	runID string
	mu    sync.RWMutex
}

// NewRunStore initializes a WAL-backed run store under the provided
// directory.
func NewRunStore(dir string) (*RunStore, error) {
	if dir == "" {
		dir = defaultRunDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "run_",
		SegmentThreshold: runSegmentLimit,
		MaxSegments:      runMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init report run WAL")
	}

	return &RunStore{wal: wal, runID: uuid.New().String()}, nil
}

// RunID returns the identifier tagging rows appended by this instance.
func (s *RunStore) RunID() string {
	return s.runID
}

// Append writes one report row to the WAL.
func (s *RunStore) Append(row domain.ReportRow) error {
	if s == nil || s.wal == nil {
		return errors.New("report run store is not initialized")
	}

	payload, err := json.Marshal(row)
	if err != nil {
		return errors.Wrap(err, "marshal report row")
	}

	key := fmt.Sprintf("%s%s", reportKeyPrefix, s.runID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RowsAfter returns all report rows written after the provided WAL index.
func (s *RunStore) RowsAfter(index uint64) ([]domain.ReportRowRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("report run store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.ReportRowRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, reportKeyPrefix) {
			continue
		}
		var row domain.ReportRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, errors.Wrap(err, "decode report row")
		}
		records = append(records, domain.ReportRowRecord{
			Index: idx,
			RunID: strings.TrimPrefix(key, reportKeyPrefix),
			Row:   row,
		})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *RunStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *RunStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("report run store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
