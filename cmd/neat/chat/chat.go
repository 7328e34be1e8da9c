// Package chatcmder provides the chat command: an interactive client for a
// local agent server that streams its replies.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/client"
	"github.com/papercomputeco/neat/pkg/cliui"
	"github.com/papercomputeco/neat/pkg/config"
	"github.com/papercomputeco/neat/pkg/logger"
)

const chatLongDesc string = `Start an interactive chat session with a local agent server.

Each message is sent as GET <endpoint>/chat?user_message=... and the reply is
streamed back as "data: " records. Thoughts, tool calls, images and answers
are shown as they arrive.

Modes:
  auto   tui when stdin and stdout are terminals, line otherwise
  tui    full screen UI. esc cancels a reply, ctrl+c quits
  line   prompt based REPL. ctrl+c cancels a reply, or quits when idle
  json   reads one message per stdin line, writes every message as NDJSON

Examples:
  neat chat
  neat chat --endpoint http://localhost:8000 --mode line
  neat chat --image-dir ./images --timeout 2m
  echo "hi" | neat chat --mode json`

const chatShortDesc string = "Interactive chat with a local agent server"

var chatFlags = config.FlagSet{
	config.FlagEndpoint: {Name: "endpoint", Shorthand: "e", ViperKey: "client.endpoint", Description: "Agent server URL"},
	config.FlagTimeout:  {Name: "timeout", ViperKey: "client.timeout", Description: "Timeout for a whole reply (0 for none)"},
	config.FlagMode:     {Name: "mode", ViperKey: "chat.mode", Description: "UI mode: auto|tui|line|json"},
	config.FlagImageDir: {Name: "image-dir", ViperKey: "chat.image_dir", Description: "Directory to save received images in"},
	config.FlagPlain:    {Name: "plain", ViperKey: "chat.plain", Description: "Print answers without markdown rendering"},
	config.FlagLogJSON:  {Name: "log-json", ViperKey: "log.json", Description: "Write logs as JSON"},
	config.FlagLogFile:  {Name: "log-file", ViperKey: "log.file", Description: "Also write logs to this file"},
}

var chatFlagKeys = []string{
	config.FlagEndpoint,
	config.FlagTimeout,
	config.FlagMode,
	config.FlagImageDir,
	config.FlagPlain,
	config.FlagLogJSON,
	config.FlagLogFile,
}

type chatCommander struct {
	endpoint string
	timeout  time.Duration
	mode     string
	imageDir string
	plain    bool
	logJSON  bool
	logFile  string
	raw      bool
	debug    bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger *slog.Logger
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:          "chat",
		Short:        chatShortDesc,
		Long:         chatLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, chatFlags, chatFlagKeys)

			cmder.endpoint = v.GetString("client.endpoint")
			cmder.timeout = v.GetDuration("client.timeout")
			cmder.mode = v.GetString("chat.mode")
			cmder.imageDir = v.GetString("chat.image_dir")
			cmder.plain = v.GetBool("chat.plain")
			cmder.logJSON = v.GetBool("log.json")
			cmder.logFile = v.GetString("log.file")

			if cmder.timeout < 0 {
				return fmt.Errorf("invalid timeout %s: must not be negative", cmder.timeout)
			}
			if !slices.Contains(config.ValidModes(), cmder.mode) {
				return fmt.Errorf("invalid mode %q (available: %v)", cmder.mode, config.ValidModes())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, chatFlags, config.FlagEndpoint, &cmder.endpoint)
	config.AddDurationFlag(cmd, chatFlags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, chatFlags, config.FlagMode, &cmder.mode)
	config.AddStringFlag(cmd, chatFlags, config.FlagImageDir, &cmder.imageDir)
	config.AddBoolFlag(cmd, chatFlags, config.FlagPlain, &cmder.plain)
	config.AddBoolFlag(cmd, chatFlags, config.FlagLogJSON, &cmder.logJSON)
	config.AddStringFlag(cmd, chatFlags, config.FlagLogFile, &cmder.logFile)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Mirror the raw response stream to stderr")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	mode := c.resolveMode()

	l, closeLog, err := c.newLogger(mode)
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = l

	cl, err := client.New(client.Config{Endpoint: c.endpoint, Timeout: c.timeout}, c.logger)
	if err != nil {
		return err
	}

	c.logger.Debug("starting chat",
		"endpoint", cl.Endpoint(),
		"mode", mode,
		"timeout", c.timeout,
	)

	opts := []chat.SessionOption{chat.WithLogger(c.logger)}
	if c.raw {
		opts = append(opts, chat.WithStreamReaderOptions(chat.WithTee(c.errOut)))
	}

	switch mode {
	case config.ModeTUI:
		return c.runTUI(ctx, cl, opts)
	case config.ModeJSON:
		return c.runJSON(ctx, cl, opts)
	default:
		return c.runLine(ctx, cl, opts)
	}
}

// resolveMode maps auto onto tui or line depending on the attached terminal.
func (c *chatCommander) resolveMode() string {
	if c.mode != config.ModeAuto {
		return c.mode
	}
	if isTerminal(c.in) && isTerminal(c.out) {
		return config.ModeTUI
	}
	return config.ModeLine
}

// newLogger builds the command logger. The TUI owns the terminal, so in tui
// mode records only go to the log file.
func (c *chatCommander) newLogger(mode string) (*slog.Logger, func(), error) {
	var stderrLog, fileLog *slog.Logger
	closeLog := func() {}

	if mode != config.ModeTUI {
		stderrLog = logger.New(
			logger.WithDebug(c.debug),
			logger.WithPretty(isTerminal(c.errOut)),
			logger.WithJSON(c.logJSON),
			logger.WithWriter(c.errOut),
		)
	}

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		closeLog = func() { _ = f.Close() }
		fileLog = logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithSource(c.debug),
			logger.WithWriter(f),
		)
	}

	return logger.Multi(stderrLog, fileLog), closeLog, nil
}

func (c *chatCommander) newRenderer() *renderer {
	r := &renderer{
		imageDir: c.imageDir,
		logger:   c.logger,
	}
	if !c.plain {
		r.markdown = cliui.NewMarkdownRenderer(c.markdownStyle())
	}
	return r
}

// markdownStyle picks the glamour style once. Asking the terminal for its
// background reads the reply from stdin, so it must happen before the line
// reader or the TUI start reading input.
func (c *chatCommander) markdownStyle() string {
	switch {
	case !cliui.ColorEnabled() || !isTerminal(c.out):
		return styles.NoTTYStyle
	case lipgloss.HasDarkBackground():
		return styles.DarkStyle
	default:
		return styles.LightStyle
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
