package sse

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	defaultChunkSize     = 32 * 1024
	defaultMaxRecordSize = 16 * 1024 * 1024
)

// ErrRecordTooLarge is returned when the carry-over buffer grows past the
// configured maximum without a delimiter being seen.
var ErrRecordTooLarge = errors.New("sse: record exceeds maximum size")

var delimiter = []byte(Delimiter)

// Reader reads records from a source io.Reader, optionally writing the
// decoded bytes verbatim to a destination io.Writer.
//
// ┌──────────────────┐
// │ source io.Reader │  one Read == one transport chunk
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  UTF-8 decoder   │  stateful, holds split codepoints
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │  carry-over buf  │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  Reader.Next()   │
// └──────────────────┘
type Reader struct {
	src  io.Reader
	dest io.Writer

	chunk         []byte
	maxRecordSize int

	// pending holds decoded text after the last delimiter seen.
	pending []byte
	// queue holds complete records that have not been returned yet.
	queue []Record

	done bool
	err  error
}

// Option configures a Reader.
type Option func(*Reader)

// WithChunkSize sets the size of the buffer handed to each Read call.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.chunk = make([]byte, n)
		}
	}
}

// WithMaxRecordSize bounds the size of a single undelimited record.
func WithMaxRecordSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxRecordSize = n
		}
	}
}

// NewReader returns a Reader that parses records from src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	return NewTeeReader(src, io.Discard, opts...)
}

// NewTeeReader returns a Reader that parses records from src and writes
// every decoded chunk through to dest as it is read.
func NewTeeReader(src io.Reader, dest io.Writer, opts ...Option) *Reader {
	if dest == nil {
		dest = io.Discard
	}

	r := &Reader{
		src:           transform.NewReader(src, unicode.UTF8.NewDecoder()),
		dest:          dest,
		maxRecordSize: defaultMaxRecordSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.chunk == nil {
		r.chunk = make([]byte, defaultChunkSize)
	}

	return r
}

// Next returns the next complete record. It blocks until a delimiter has been
// read or the source is exhausted. Next returns nil, nil once the source is
// exhausted and every record has been returned.
//
// Records completed before a read error are always returned before the error.
func (r *Reader) Next() (*Record, error) {
	for {
		if len(r.queue) > 0 {
			rec := r.queue[0]
			r.queue = r.queue[1:]
			return &rec, nil
		}

		if r.done {
			return nil, r.err
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			if _, werr := r.dest.Write(r.chunk[:n]); werr != nil {
				r.finish(fmt.Errorf("sse: writing to destination: %w", werr))
				continue
			}
			if ferr := r.feed(r.chunk[:n]); ferr != nil {
				r.finish(ferr)
				continue
			}
		}

		switch {
		case errors.Is(err, io.EOF):
			r.flush()
			r.finish(nil)
		case err != nil:
			r.finish(err)
		}
	}
}

// feed appends decoded text to the carry-over buffer and queues every
// record that is now complete.
func (r *Reader) feed(p []byte) error {
	// A delimiter may straddle the previous and the current chunk, so the
	// search resumes one byte before the newly appended data.
	start := len(r.pending) - (len(delimiter) - 1)
	if start < 0 {
		start = 0
	}
	r.pending = append(r.pending, p...)

	for {
		i := bytes.Index(r.pending[start:], delimiter)
		if i < 0 {
			break
		}
		end := start + i
		r.push(r.pending[:end])
		r.pending = r.pending[end+len(delimiter):]
		start = 0
	}

	if len(r.pending) > r.maxRecordSize {
		return ErrRecordTooLarge
	}

	return nil
}

// flush yields a trailing fragment when the stream ends without a final
// delimiter.
func (r *Reader) flush() {
	r.push(r.pending)
	r.pending = nil
}

func (r *Reader) push(raw []byte) {
	// Blank records come from leading or repeated blank lines.
	if len(bytes.Trim(raw, "\n")) == 0 {
		return
	}
	r.queue = append(r.queue, Record{Raw: string(raw)})
}

func (r *Reader) finish(err error) {
	r.done = true
	r.err = err
}
