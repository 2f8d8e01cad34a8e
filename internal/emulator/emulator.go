package emulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/twinflow/twinflow/internal/measure"
	"github.com/twinflow/twinflow/internal/ring"
)

// ErrEmptyTrace is returned by Open when the trace file has no header
// row. An empty trace is fatal before any goroutine starts consuming.
var ErrEmptyTrace = errors.New("emulator: trace file is empty")

// Emulator replays a delimited trace file as a paced measurement
// producer. It writes one measurement per data row into the ring
// buffer, sleeping Period between emissions, and closes the buffer on
// exit whatever the exit reason - that close is the pipeline's
// termination protocol.
type Emulator struct {
	path    string
	buf     *ring.Ring[*measure.Measurement]
	period  time.Duration
	file    *os.File
	scanner *bufio.Scanner

	delimiter rune
	columns   []string

	// OnReading, when set before Run, is called after each measurement
	// is written. Used for tracking output; runs on the producer
	// goroutine.
	OnReading func(m *measure.Measurement)

	produced atomic.Int64
	elapsed  atomic.Int64
}

// Open opens the trace file and parses its header row: delimiter
// detection plus column names. Header problems surface here, before
// the producer goroutine exists.
func Open(path string, buf *ring.Ring[*measure.Measurement], period time.Duration) (*Emulator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("emulator: open trace: %w", err)
	}

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		closeErr := f.Close()
		if err := scanner.Err(); err != nil {
			return nil, errors.Join(fmt.Errorf("emulator: read header: %w", err), closeErr)
		}
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrEmptyTrace, path), closeErr)
	}
	header := strings.TrimSpace(scanner.Text())
	if header == "" {
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrEmptyTrace, path), f.Close())
	}

	delimiter := DetectDelimiter(header)
	var columns []string
	for _, h := range strings.Split(header, string(delimiter)) {
		columns = append(columns, strings.TrimSpace(h))
	}

	return &Emulator{
		path:      path,
		buf:       buf,
		period:    period,
		file:      f,
		scanner:   scanner,
		delimiter: delimiter,
		columns:   columns,
	}, nil
}

// Columns returns the column names from the header row.
func (e *Emulator) Columns() []string { return e.columns }

// Delimiter returns the detected field delimiter.
func (e *Emulator) Delimiter() rune { return e.delimiter }

// ReadingsProduced returns the number of measurements written so far.
func (e *Emulator) ReadingsProduced() int64 { return e.produced.Load() }

// Elapsed returns the wall time of the last completed Run.
func (e *Emulator) Elapsed() time.Duration { return time.Duration(e.elapsed.Load()) }

// Run streams the data rows into the ring buffer until the file is
// exhausted or ctx is cancelled. The buffer is closed on every exit
// path so the consumer always observes end of stream.
func (e *Emulator) Run(ctx context.Context) error {
	started := time.Now()
	defer func() {
		e.elapsed.Store(int64(time.Since(started)))
		e.buf.Close()
		if err := e.file.Close(); err != nil {
			slog.Error("emulator: closing trace file", "path", e.path, "error", err)
		}
	}()

	slog.Debug("emulator starting",
		"path", e.path,
		"columns", e.columns,
		"period", e.period,
		"capacity", e.buf.Cap(),
	)

	index := 0
	for e.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(e.scanner.Text())
		if line == "" {
			continue
		}

		m := e.parseLine(index, line)
		e.buf.Write(m)
		e.produced.Add(1)
		index++

		if e.OnReading != nil {
			e.OnReading(m)
		}

		if e.period > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.period):
			}
		}
	}
	if err := e.scanner.Err(); err != nil {
		return fmt.Errorf("emulator: read trace: %w", err)
	}

	slog.Debug("emulator finished", "readings", e.produced.Load(), "dropped", e.buf.TotalDropped())
	return nil
}

// parseLine builds a measurement from one data row. Rows shorter than
// the header simply lack the trailing columns.
func (e *Emulator) parseLine(index int, line string) *measure.Measurement {
	parts := strings.Split(line, string(e.delimiter))
	fields := make([]measure.Field, 0, len(e.columns))
	for i, col := range e.columns {
		if i >= len(parts) {
			break
		}
		fields = append(fields, measure.F(col, ParseValue(strings.TrimSpace(parts[i]))))
	}
	return measure.New(index, fields...)
}

// ParseValue parses one cell: integer when it survives ParseInt, float
// when it contains a decimal point after ","→"." normalization,
// otherwise the raw string. Empty cells are absent.
func ParseValue(s string) measure.Value {
	if s == "" {
		return measure.Null{}
	}
	normalized := strings.ReplaceAll(s, ",", ".")
	if strings.Contains(normalized, ".") {
		if f, err := strconv.ParseFloat(normalized, 64); err == nil {
			return measure.Float(f)
		}
		return measure.Str(s)
	}
	if n, err := strconv.ParseInt(normalized, 10, 64); err == nil {
		return measure.Int(n)
	}
	return measure.Str(s)
}

// DetectDelimiter picks the delimiter with the highest header-row
// count among tab, semicolon, and comma; ties resolve in that order.
func DetectDelimiter(header string) rune {
	t := strings.Count(header, "\t")
	s := strings.Count(header, ";")
	c := strings.Count(header, ",")
	switch {
	case t >= s && t >= c:
		return '\t'
	case s >= c:
		return ';'
	default:
		return ','
	}
}
