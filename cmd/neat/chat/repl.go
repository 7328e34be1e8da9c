package chatcmder

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/cliui"
)

const exitCommand = "/exit"

// lineREPL reads one message per input line and sends it through session.
// An interrupt cancels the reply in flight, or ends the loop when idle.
type lineREPL struct {
	session    *chat.Session
	in         io.Reader
	out        io.Writer
	interrupts <-chan os.Signal

	// prompt is printed before every read. Empty disables prompting.
	prompt string
	// timing prints the elapsed time after each reply.
	timing bool
}

func (c *chatCommander) runLine(ctx context.Context, streamer chat.Streamer, opts []chat.SessionOption) error {
	render := c.newRenderer()
	out := c.out

	session := chat.NewSession(streamer, append(opts, chat.WithObserver(func(m chat.Message) {
		// The user already sees what they typed.
		if m.Sender == chat.SenderUser {
			return
		}
		fmt.Fprintln(out, render.render(m))
	}))...)
	defer session.Close()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("Endpoint:"), cliui.NameStyle.Render(c.endpoint))
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	repl := &lineREPL{
		session:    session,
		in:         c.in,
		out:        out,
		interrupts: interrupts,
		prompt:     userPrompt,
		timing:     true,
	}
	return repl.run(ctx)
}

func (c *chatCommander) runJSON(ctx context.Context, streamer chat.Streamer, opts []chat.SessionOption) error {
	enc := json.NewEncoder(c.out)
	session := chat.NewSession(streamer, append(opts, chat.WithObserver(func(m chat.Message) {
		if err := enc.Encode(m); err != nil {
			c.logger.Warn("writing message", "error", err)
		}
	}))...)
	defer session.Close()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	repl := &lineREPL{
		session:    session,
		in:         c.in,
		out:        c.out,
		interrupts: interrupts,
	}
	return repl.run(ctx)
}

func (r *lineREPL) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if r.prompt != "" {
			fmt.Fprint(r.out, r.prompt)
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case <-r.interrupts:
			r.endPrompt()
			return nil
		case l, ok := <-lines:
			if !ok {
				r.endPrompt()
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if line == exitCommand {
			return nil
		}

		if err := r.send(ctx, line); err != nil {
			return err
		}
	}
}

// send submits line and waits for the reply. Only failures of the loop
// itself are returned; request failures are already rendered as messages.
func (r *lineREPL) send(ctx context.Context, line string) error {
	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- r.session.Send(ctx, line) }()

	for {
		select {
		case err := <-done:
			if r.timing {
				fmt.Fprintf(r.out, "%s %s\n\n",
					cliui.Mark(err),
					cliui.DimStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(time.Since(start)))),
				)
			}
			if errors.Is(err, chat.ErrClosed) {
				return err
			}
			return nil
		case <-r.interrupts:
			r.session.Cancel()
		}
	}
}

func (r *lineREPL) endPrompt() {
	if r.prompt != "" {
		fmt.Fprintln(r.out)
	}
}
