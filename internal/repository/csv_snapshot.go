package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinPager/internal/domain/models"
	drepo "CoinPager/internal/domain/repository"
)

const (
	filePrefix = "coinbase_daily_"
	fileSuffix = ".csv"
	timeLayout = "2006-01-02_150405"
	dateLayout = "2006-01-02"
)

var header = []string{"symbol", "product_id", "date_utc", "close_usd", "error"}

// CSVSnapshotStore keeps export snapshots as delimited files in one
// directory. The filename encodes the creation timestamp; the newest file
// is the canonical snapshot and older ones are deleted at job start.
type CSVSnapshotStore struct {
	dir string
}

// NewCSVSnapshotStore creates the store, ensuring the directory exists.
func NewCSVSnapshotStore(dir string) (*CSVSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &CSVSnapshotStore{dir: dir}, nil
}

// Cleanup deletes all snapshot files matching the naming pattern.
func (s *CSVSnapshotStore) Cleanup() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	for _, p := range paths {
		// best effort; a file vanishing mid-cleanup is fine
		_ = os.Remove(p)
	}
	return nil
}

// Create opens a new snapshot named after the creation time and writes the
// header row.
func (s *CSVSnapshotStore) Create(now time.Time) (drepo.SnapshotWriter, error) {
	name := filePrefix + now.UTC().Format(timeLayout) + fileSuffix
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	w.Flush()

	return &snapshotWriter{f: f, w: w, name: name, path: path}, nil
}

// Load parses the most recent snapshot into per-symbol series. Error rows
// and unparseable rows are skipped; each series is sorted ascending by date.
func (s *CSVSnapshotStore) Load() (map[string]models.PriceSeries, string, error) {
	path, err := s.latest()
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		// The snapshot may have been replaced between selection and open.
		return nil, "", drepo.ErrNoSnapshot
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	data := make(map[string]models.PriceSeries)
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("read snapshot: %w", err)
		}
		if first {
			first = false
			continue // header
		}
		if len(rec) < 5 || rec[4] != "" {
			continue
		}
		sym := rec[0]
		date, err := time.Parse(dateLayout, rec[2])
		if err != nil {
			continue
		}
		close, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			continue
		}
		data[sym] = append(data[sym], models.DailyPrice{Date: date, Close: close})
	}

	for sym := range data {
		series := data[sym]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	}

	return data, filepath.Base(path), nil
}

// latest picks the newest snapshot, preferring the timestamp encoded in the
// filename over filesystem mtime.
func (s *CSVSnapshotStore) latest() (string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, filePrefix+"*"+fileSuffix))
	if err != nil || len(paths) == 0 {
		return "", drepo.ErrNoSnapshot
	}

	best := ""
	var bestKey time.Time
	for _, p := range paths {
		key, ok := stampFromName(filepath.Base(p))
		if !ok {
			info, err := os.Stat(p)
			if err != nil {
				continue
			}
			key = info.ModTime()
		}
		if best == "" || key.After(bestKey) {
			best, bestKey = p, key
		}
	}
	if best == "" {
		return "", drepo.ErrNoSnapshot
	}
	return best, nil
}

func stampFromName(name string) (time.Time, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type snapshotWriter struct {
	f    *os.File
	w    *csv.Writer
	name string
	path string
}

// WriteSeries appends one row per daily close and flushes, so readers never
// observe a torn row.
func (sw *snapshotWriter) WriteSeries(symbol, productID string, series models.PriceSeries) error {
	for _, p := range series {
		row := []string{
			symbol,
			productID,
			p.Date.UTC().Format(dateLayout),
			strconv.FormatFloat(p.Close, 'f', -1, 64),
			"",
		}
		if err := sw.w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	sw.w.Flush()
	return sw.w.Error()
}

// WriteError records a per-symbol acquisition failure.
func (sw *snapshotWriter) WriteError(symbol, productID, tag string) error {
	if err := sw.w.Write([]string{symbol, productID, "", "", tag}); err != nil {
		return fmt.Errorf("write error row: %w", err)
	}
	sw.w.Flush()
	return sw.w.Error()
}

func (sw *snapshotWriter) Filename() string { return sw.name }

func (sw *snapshotWriter) Path() string { return sw.path }

func (sw *snapshotWriter) Close() error {
	sw.w.Flush()
	if err := sw.w.Error(); err != nil {
		sw.f.Close()
		return err
	}
	return sw.f.Close()
}
