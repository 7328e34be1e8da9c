package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/neat/pkg/logger"
	"github.com/papercomputeco/neat/pkg/utils"
)

var (
	// ErrEmptyMessage is returned when the input is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy is returned when a submit arrives while a request is in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrClosed is returned by submits after Close.
	ErrClosed = errors.New("session is closed")
)

// Phase is the request state of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is a snapshot of a Session.
type State struct {
	// Input is the pending message text.
	Input string

	// Messages is the conversation in arrival order.
	Messages []Message

	Phase Phase
}

// Busy reports whether a request is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseSending
}

// Streamer opens the response stream for a single user message. The caller
// closes the returned body.
type Streamer interface {
	Stream(ctx context.Context, text string) (io.ReadCloser, error)
}

// flight tracks the request currently being streamed.
type flight struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Session drives the idle → sending → idle cycle of one chat UI: it appends
// the user message, issues one request, appends every streamed bot message
// and always returns to idle, appending an error message on failure.
//
// A Session is safe for concurrent use. Observers run on the submitting
// goroutine, in append order, outside the session lock.
type Session struct {
	streamer   Streamer
	logger     *slog.Logger
	observers  []func(Message)
	readerOpts []ReaderOption
	preempt    bool

	mu     sync.Mutex
	state  State
	flight *flight
	closed bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. It is also handed to every StreamReader.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithObserver registers fn to be called for every appended message.
// Observers must not call Close.
func WithObserver(fn func(Message)) SessionOption {
	return func(s *Session) {
		s.observers = append(s.observers, fn)
	}
}

// WithPreempt makes a submit during an in-flight request cancel that request
// and wait for it to finish instead of failing with ErrBusy.
func WithPreempt(preempt bool) SessionOption {
	return func(s *Session) {
		s.preempt = preempt
	}
}

// WithStreamReaderOptions passes options to the StreamReader built for each
// response.
func WithStreamReaderOptions(opts ...ReaderOption) SessionOption {
	return func(s *Session) {
		s.readerOpts = append(s.readerOpts, opts...)
	}
}

// NewSession creates an idle Session that sends through streamer.
func NewSession(streamer Streamer, opts ...SessionOption) *Session {
	s := &Session{
		streamer: streamer,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetInput replaces the pending input text.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Input = text
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Input:    s.state.Input,
		Messages: slices.Clone(s.state.Messages),
		Phase:    s.state.Phase,
	}
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase == PhaseSending
}

// Submit sends the pending input. It blocks until the response stream is
// exhausted, fails, or is canceled. On success the input is cleared; on
// failure it is kept so it can be sent again.
func (s *Session) Submit(ctx context.Context) error {
	return s.submit(ctx, nil)
}

// Send sets the input to text and submits it.
func (s *Session) Send(ctx context.Context, text string) error {
	return s.submit(ctx, &text)
}

// Cancel aborts the in-flight request, if any, and reports whether there
// was one. The aborted submit still appends its error message and returns
// the session to idle.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	f := s.flight
	s.mu.Unlock()

	if f == nil {
		return false
	}
	f.cancel()
	return true
}

// Close aborts any in-flight request, waits for it to wind down and rejects
// every later submit with ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	f := s.flight
	s.mu.Unlock()

	if f != nil {
		f.cancel()
		<-f.done
	}
	return nil
}

func (s *Session) submit(parent context.Context, text *string) (err error) {
	ctx, f, msg, err := s.begin(parent, text)
	if err != nil {
		return err
	}
	defer func() { s.end(f, err) }()

	s.notify(msg)
	return s.run(ctx, msg.Text)
}

// begin moves the session to sending and appends the user message.
func (s *Session) begin(parent context.Context, text *string) (context.Context, *flight, Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.closed {
			return nil, nil, Message{}, ErrClosed
		}

		input := s.state.Input
		if text != nil {
			input = *text
		}
		if strings.TrimSpace(input) == "" {
			return nil, nil, Message{}, ErrEmptyMessage
		}

		if s.flight == nil {
			s.state.Input = input
			break
		}
		if !s.preempt {
			return nil, nil, Message{}, ErrBusy
		}

		f := s.flight
		s.mu.Unlock()
		s.logger.Debug("preempting in-flight request")
		f.cancel()
		<-f.done
		s.mu.Lock()
	}

	ctx, cancel := context.WithCancel(parent)
	f := &flight{cancel: cancel, done: make(chan struct{})}
	s.flight = f
	s.state.Phase = PhaseSending

	msg := NewUserMessage(s.state.Input)
	s.state.Messages = append(s.state.Messages, msg)

	return ctx, f, msg, nil
}

// run issues the request and appends every message streamed back.
func (s *Session) run(ctx context.Context, text string) error {
	start := time.Now()
	s.logger.Debug("sending message", "text", utils.Truncate(text, 50))

	body, err := s.streamer.Stream(ctx, text)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	// Closing the body unblocks a read stalled on the transport.
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer func() {
		stop()
		_ = body.Close()
	}()

	opts := append([]ReaderOption{WithReaderLogger(s.logger)}, s.readerOpts...)
	reader := NewStreamReader(body, opts...)

	n, err := reader.Drain(ctx, s.append)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("reading stream: %w", err)
	}

	s.logger.Debug("stream complete",
		"messages", n,
		"skipped", reader.Skipped(),
		"discarded", reader.Discarded(),
		"duration", time.Since(start),
	)
	return nil
}

// end returns the session to idle. It runs for every accepted submit.
func (s *Session) end(f *flight, err error) {
	f.cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("request canceled")
		} else {
			s.logger.Warn("request failed", "error", err)
		}
		s.append(NewBotMessage(failureText(err), TypeError))
	} else {
		s.mu.Lock()
		s.state.Input = ""
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.state.Phase = PhaseIdle
	s.flight = nil
	s.mu.Unlock()

	close(f.done)
}

func (s *Session) append(msg Message) {
	s.mu.Lock()
	s.state.Messages = append(s.state.Messages, msg)
	s.mu.Unlock()

	s.notify(msg)
}

func (s *Session) notify(msg Message) {
	for _, fn := range s.observers {
		fn(msg)
	}
}

func failureText(err error) string {
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	return err.Error()
}
