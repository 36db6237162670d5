package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
)

const (
	SummaryFile = "summary.csv"

	// logs are read by spreadsheet tools that expect a UTF-8 byte order mark
	bom = "\ufeff"
)

// DetailName is the per-pair log file name, e.g. log_k1-0.00014400_k2-0.00096000.csv.
func DetailName(g control.Gains) string {
	return fmt.Sprintf("log_k1%.8f_k2%.8f.csv", g.K1, g.K2)
}

// SummaryRecord is one line of summary.csv. A record whose trace never
// reached the time-constant threshold has Arrived unset and its time
// constant is written as a bare "0".
type SummaryRecord struct {
	Gains        control.Gains `json:"gains"`
	TimeConstant float64       `json:"time_constant"`
	Arrived      bool          `json:"arrived"`
	Diagnostic   string        `json:"diagnostic"`
}

// notArrived is the time constant text of a trace that never crossed the
// threshold.
const notArrived = "0"

// SummaryWriter appends k1,k2,timeConstant,diagnostic lines.
type SummaryWriter struct {
	f *os.File
	w *csv.Writer
}

// OpenSummary opens path for appending, writing the byte order mark only if
// the file is new or empty.
func OpenSummary(path string) (*SummaryWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if _, err := io.WriteString(f, bom); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &SummaryWriter{f: f, w: csv.NewWriter(f)}, nil
}

func (s *SummaryWriter) Write(rec SummaryRecord) error {
	tc := notArrived
	if rec.Arrived {
		tc = dynamo.FormatFloat(rec.TimeConstant)
	}
	row := []string{
		dynamo.FormatFloat(rec.Gains.K1),
		dynamo.FormatFloat(rec.Gains.K2),
		tc,
	}
	row = append(row, strings.Split(rec.Diagnostic, ",")...)

	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *SummaryWriter) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// WriteDetail writes trace to path, replacing any existing file. Every field
// is followed by a comma, fields in StepRecord.Fields order.
func WriteDetail(path string, trace dynamo.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(bom); err != nil {
		return err
	}

	w := csv.NewWriter(bw)
	row := make([]string, 7)
	for _, rec := range trace {
		for i, v := range rec.Fields() {
			row[i] = dynamo.FormatFloat(v)
		}
		// empty last field yields the trailing comma
		row[6] = ""
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// ReadDetail parses a file written by WriteDetail.
func ReadDetail(path string) (dynamo.Trace, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	trace := make(dynamo.Trace, 0, len(records))
	for line, record := range records {
		vals, err := parseFloats(record, 6)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line+1, err)
		}
		trace = append(trace, dynamo.StepRecord{
			T: vals[0], Z: vals[1], Accel: vals[2], V: vals[3], DeltaV: vals[4], Force: vals[5],
		})
	}
	return trace, nil
}

// ReadSummary parses summary.csv. The diagnostic keeps everything after the
// third column.
func ReadSummary(path string) ([]SummaryRecord, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make([]SummaryRecord, 0, len(records))
	for line, record := range records {
		if len(record) < 4 {
			return nil, fmt.Errorf("%s:%d: expected at least 4 fields, got %d", path, line+1, len(record))
		}
		vals, err := parseFloats(record[:3], 3)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line+1, err)
		}
		out = append(out, SummaryRecord{
			Gains:        control.Gains{K1: vals[0], K2: vals[1]},
			TimeConstant: vals[2],
			Arrived:      record[2] != notArrived,
			Diagnostic:   strings.Join(record[3:], ","),
		})
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		if _, err := br.Discard(len(bom)); err != nil {
			return nil, err
		}
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseFloats(record []string, n int) ([]float64, error) {
	if len(record) < n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(record))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
