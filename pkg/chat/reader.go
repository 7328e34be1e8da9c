package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/papercomputeco/neat/pkg/logger"
	"github.com/papercomputeco/neat/pkg/sse"
	"github.com/papercomputeco/neat/pkg/utils"
)

// payload is the JSON object carried by a "data: " record. Both fields may
// be null on the wire.
type payload struct {
	Text *string `json:"text"`
	Type *string `json:"type"`
}

var errNullPayload = errors.New("payload is null")

// PayloadError describes a data record whose payload is not a JSON object.
// It is reported per record and never ends the stream.
type PayloadError struct {
	Payload string
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("decoding record payload %q: %v", utils.Truncate(e.Payload, 64), e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// StreamReader converts a live response body into an ordered, lazy sequence
// of bot messages. It is not safe for concurrent use and cannot be restarted.
type StreamReader struct {
	records *sse.Reader
	logger  *slog.Logger

	skipped   int
	discarded int
}

// ReaderOption configures a StreamReader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	logger  *slog.Logger
	tee     io.Writer
	sseOpts []sse.Option
}

// WithReaderLogger sets the logger used to report skipped records.
func WithReaderLogger(l *slog.Logger) ReaderOption {
	return func(c *readerConfig) {
		c.logger = l
	}
}

// WithTee mirrors the decoded wire stream to w.
func WithTee(w io.Writer) ReaderOption {
	return func(c *readerConfig) {
		c.tee = w
	}
}

// WithSSEOptions passes options through to the underlying record reader.
func WithSSEOptions(opts ...sse.Option) ReaderOption {
	return func(c *readerConfig) {
		c.sseOpts = append(c.sseOpts, opts...)
	}
}

// NewStreamReader returns a StreamReader over body.
func NewStreamReader(body io.Reader, opts ...ReaderOption) *StreamReader {
	c := &readerConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}

	return &StreamReader{
		records: sse.NewTeeReader(body, c.tee, c.sseOpts...),
		logger:  c.logger,
	}
}

// Next returns the next decoded message. It returns nil, nil once the stream
// is exhausted. Records without the "data: " prefix are discarded and
// records with an undecodable payload are skipped; neither ends the stream.
func (r *StreamReader) Next() (*Message, error) {
	for {
		rec, err := r.records.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}

		data, ok := rec.Payload()
		if !ok {
			r.discarded++
			r.logger.Debug("discarding record without data prefix",
				"record", utils.Truncate(rec.Raw, 50),
			)
			continue
		}

		msg, err := decodeMessage(data)
		if err != nil {
			r.skipped++
			r.logger.Warn("skipping malformed record", "error", err)
			continue
		}

		r.logger.Debug("decoded message",
			"type", string(msg.Type),
			"text", utils.Truncate(msg.Text, 50),
		)
		return &msg, nil
	}
}

// All returns the remaining messages as an iterator. Iteration stops after
// the first error is yielded.
func (r *StreamReader) All() iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for {
			msg, err := r.Next()
			if err != nil {
				yield(Message{}, err)
				return
			}
			if msg == nil {
				return
			}
			if !yield(*msg, nil) {
				return
			}
		}
	}
}

// Drain reads the stream to exhaustion, handing each message to sink as soon
// as it is decoded. It returns the number of messages delivered.
func (r *StreamReader) Drain(ctx context.Context, sink func(Message)) (int, error) {
	n := 0
	for msg, err := range r.All() {
		if err != nil {
			return n, err
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		sink(msg)
		n++
	}
	return n, nil
}

// Skipped returns the number of data records dropped because their payload
// could not be decoded.
func (r *StreamReader) Skipped() int {
	return r.skipped
}

// Discarded returns the number of records dropped for lacking the data prefix.
func (r *StreamReader) Discarded() int {
	return r.discarded
}

func decodeMessage(data string) (Message, error) {
	if strings.TrimSpace(data) == "null" {
		return Message{}, &PayloadError{Payload: data, Err: errNullPayload}
	}

	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Message{}, &PayloadError{Payload: data, Err: err}
	}

	var text string
	if p.Text != nil {
		text = *p.Text
	}

	typ := TypePlain
	if p.Type != nil {
		typ = Type(*p.Type)
	}

	return NewBotMessage(text, typ), nil
}
