// Package journal writes a compressed JSON-lines record per simulation tick.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Record is one journal line.
type Record struct {
	RunID       string         `json:"run_id"`
	Tick        uint64         `json:"tick"`
	Frame       uint32         `json:"frame"`
	Seed        uint32         `json:"seed"`
	Commands    map[string]int `json:"commands,omitempty"`
	Spawned     int            `json:"spawned,omitempty"`
	Removed     int            `json:"removed,omitempty"`
	Advanced    int            `json:"advanced,omitempty"`
	Completed   []uint64       `json:"completed,omitempty"`
	Demolished  []uint64       `json:"demolished,omitempty"`
	Electricity []uint64       `json:"electricity_edges,omitempty"`
	Water       []uint64       `json:"water_edges,omitempty"`
}

// Writer appends records to <dir>/<runID>.jsonl.zst.
type Writer struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Open creates the journal file for a run.
func Open(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, runID+".jsonl.zst")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open journal encoder: %w", err)
	}
	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

// Path returns the journal file location.
func (w *Writer) Path() string { return w.path }

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return errors.New("journal closed")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode journal record: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and closes the journal. Calling Close twice is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	var errs []error
	errs = append(errs, w.w.Flush())
	errs = append(errs, w.enc.Close())
	errs = append(errs, w.f.Close())
	w.w, w.enc, w.f = nil, nil, nil
	return errors.Join(errs...)
}

// ReadFile decodes every record of a journal file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open journal decoder: %w", err)
	}
	defer dec.Close()
	return decode(dec)
}

func decode(r io.Reader) ([]Record, error) {
	var out []Record
	jd := json.NewDecoder(r)
	for {
		var rec Record
		if err := jd.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("decode journal record %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
}
