package trace

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/flowpilot-io/flowpilot/iox"
)

// maxRecordSize bounds one encoded record. A record is a version string
// plus a fixed set of integer fields, well under a kilobyte; a larger
// declared length means a corrupt prefix, not a real record, and must not
// drive the allocation below.
const maxRecordSize = 1 << 16

// Reader decodes tick records from a trace stream.
type Reader struct {
	r io.Reader
}

// NewReader creates a trace reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next returns the next record. io.EOF signals a clean end of trace.
func (t *Reader) Next() (*TickRecord, error) {
	var lengthBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(t.r, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("trace record truncated: %w", err)
	}
	length := binary.BigEndian.Uint32(lengthBuf[:])
	if length > maxRecordSize {
		return nil, fmt.Errorf("trace record length %d exceeds %d, trace corrupt", length, maxRecordSize)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(t.r, payload); err != nil {
		return nil, fmt.Errorf("trace record truncated: %w", err)
	}

	var record TickRecord
	if err := msgpack.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("trace decode: %w", err)
	}
	return &record, nil
}

// Replay streams records from r to fn. A speed > 0 reproduces the
// recorded inter-tick timing, scaled; speed <= 0 replays without delay.
func Replay(r io.Reader, speed float64, fn func(*TickRecord) error) error {
	reader := NewReader(r)
	var prev int64
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if prev != 0 && speed > 0 {
			gap := time.Duration(record.TsMicros-prev) * time.Microsecond
			if speed != 1 {
				gap = time.Duration(float64(gap) / speed)
			}
			if gap > 0 {
				time.Sleep(gap)
			}
		}
		if err := fn(record); err != nil {
			return err
		}
		prev = record.TsMicros
	}
}

// ReplayFile opens a trace file and replays its records.
func ReplayFile(path string, speed float64, fn func(*TickRecord) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(f)
	return Replay(f, speed, fn)
}
