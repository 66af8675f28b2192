package readinglog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/jgoulah/oil-notifier/internal/domain/gauge"
	apperrors "github.com/jgoulah/oil-notifier/pkg/errors"
	"github.com/jgoulah/oil-notifier/pkg/util"
)

var header = []string{"timestamp", "percentage", "confidence", "raw_result", "snapshot"}

// headerLine is the header as writeRecord renders it; Latest skips it.
var headerLine = strings.Join(header, ",")

const lockRetryDelay = 50 * time.Millisecond

// CSVStore is the append-only reading log backed by a single CSV file.
// Appends are serialized across processes through a sibling lock file, so
// overlapping scheduled runs cannot interleave partial rows. A crash between
// write and sync leaves at most one torn trailing line, which the next
// append heals and Latest skips.
type CSVStore struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewCSVStore constructs the store for one log file path.
func NewCSVStore(path string, logger *slog.Logger) *CSVStore {
	return &CSVStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.With("component", "readinglog.csv"),
	}
}

// Append durably records one reading. The row is synced to disk before the
// call returns.
func (s *CSVStore) Append(ctx context.Context, reading gauge.Reading) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.Wrap("storage_error", "create log directory", err)
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return apperrors.Wrap("storage_error", "acquire log lock", err)
	}
	if !locked {
		return apperrors.Wrap("storage_error", "log lock unavailable", nil)
	}
	defer s.lock.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return apperrors.Wrap("storage_error", "open log file", err)
	}
	defer f.Close()

	var buf bytes.Buffer

	info, err := f.Stat()
	if err != nil {
		return apperrors.Wrap("storage_error", "stat log file", err)
	}
	switch {
	case info.Size() == 0:
		writeRecord(&buf, header)
	default:
		torn, err := endsMidLine(f, info.Size())
		if err != nil {
			return apperrors.Wrap("storage_error", "inspect log tail", err)
		}
		if torn {
			s.logger.Warn("log file ends mid-line, sealing torn row")
			buf.WriteByte('\n')
		}
	}

	writeRecord(&buf, encodeReading(reading))

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return apperrors.Wrap("storage_error", "seek log end", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return apperrors.Wrap("storage_error", "append log row", err)
	}
	if err := f.Sync(); err != nil {
		return apperrors.Wrap("storage_error", "sync log file", err)
	}
	return nil
}

// Latest returns up to n readings ordered oldest to newest. n <= 0 returns
// the full log. Rows a crash left unfinished are skipped.
func (s *CSVStore) Latest(ctx context.Context, n int) ([]gauge.Reading, error) {
	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "acquire log lock", err)
	}
	if !locked {
		return nil, apperrors.Wrap("storage_error", "log lock unavailable", nil)
	}
	defer s.lock.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "open log file", err)
	}
	defer f.Close()

	// Writers keep every record on a single physical line, so each line
	// parses as its own record. A torn line with an unbalanced quote then
	// fails alone instead of consuming the sealed rows written after it.
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var readings []gauge.Reading
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line == headerLine {
			continue
		}
		reading, ok := decodeLine(line)
		if !ok {
			s.logger.Warn("skipping malformed log row", "bytes", len(line))
			continue
		}
		readings = append(readings, reading)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap("storage_error", "read log file", err)
	}

	if n > 0 && len(readings) > n {
		readings = readings[len(readings)-n:]
	}
	return readings, nil
}

// decodeLine parses one physical line as a standalone CSV record.
func decodeLine(line string) (gauge.Reading, bool) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	record, err := r.Read()
	if err != nil {
		return gauge.Reading{}, false
	}
	return decodeRecord(record)
}

// endsMidLine reports whether the file's last byte is not a newline,
// meaning the previous writer died mid-row.
func endsMidLine(f *os.File, size int64) (bool, error) {
	tail := make([]byte, 1)
	if _, err := f.ReadAt(tail, size-1); err != nil {
		return false, err
	}
	return tail[0] != '\n', nil
}

func writeRecord(buf *bytes.Buffer, record []string) {
	w := csv.NewWriter(buf)
	// Write on a buffer cannot fail; Flush surfaces nothing new.
	_ = w.Write(record)
	w.Flush()
}

// encodeReading flattens one reading to a CSV row. Newlines in the raw model
// output collapse to spaces so every record stays on a single line; that
// keeps torn-row detection a one-byte check.
func encodeReading(reading gauge.Reading) []string {
	percentage := ""
	if reading.Percentage != nil {
		percentage = strconv.Itoa(*reading.Percentage)
	}

	raw := strings.ReplaceAll(reading.RawOutput, "\r", " ")
	raw = strings.ReplaceAll(raw, "\n", " ")

	return []string{
		util.FormatLogTime(reading.Timestamp),
		percentage,
		reading.Confidence,
		raw,
		reading.SnapshotPath,
	}
}

func decodeRecord(record []string) (gauge.Reading, bool) {
	if len(record) != len(header) {
		return gauge.Reading{}, false
	}

	ts, err := util.ParseLogTime(record[0])
	if err != nil {
		return gauge.Reading{}, false
	}

	var percentage *int
	if record[1] != "" {
		if v, err := strconv.Atoi(record[1]); err == nil {
			percentage = &v
		}
	}

	return gauge.Reading{
		Timestamp:    ts,
		Percentage:   percentage,
		Confidence:   record[2],
		RawOutput:    record[3],
		SnapshotPath: record[4],
	}, true
}

var _ gauge.ReadingStore = (*CSVStore)(nil)
