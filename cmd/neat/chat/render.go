package chatcmder

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/cliui"
)

var userPrompt = cliui.UserStyle.Render("you> ")

// renderer formats messages for the terminal. Image messages are saved to
// imageDir as a side effect, so each message must be rendered exactly once.
type renderer struct {
	// markdown renders answers. Nil prints them as styled plain text.
	markdown *cliui.MarkdownRenderer
	width    int
	imageDir string
	logger   *slog.Logger
}

func (r *renderer) render(m chat.Message) string {
	if m.Sender == chat.SenderUser {
		return userPrompt + m.Text
	}

	switch m.Type {
	case chat.TypeThought:
		return cliui.ThoughtStyle.Render("… " + m.Text)
	case chat.TypeFunctionCall:
		return cliui.ToolStyle.Render("⚙ " + m.Text)
	case chat.TypeImage:
		return r.renderImage(m)
	case chat.TypeError:
		return cliui.FailMark + " " + cliui.ErrorStyle.Render(m.Text)
	default:
		return r.renderAnswer(m.Text)
	}
}

func (r *renderer) renderAnswer(text string) string {
	if r.markdown == nil {
		return cliui.AnswerStyle.Render(text)
	}

	out, err := r.markdown.Render(text, r.width)
	if err != nil {
		r.logger.Debug("markdown rendering failed", "error", err)
		return cliui.AnswerStyle.Render(text)
	}
	return strings.Trim(out, "\n")
}

func (r *renderer) renderImage(m chat.Message) string {
	data, err := m.ImageData()
	if err != nil {
		return cliui.FailMark + " " + cliui.ErrorStyle.Render(fmt.Sprintf("unreadable image: %v", err))
	}

	summary := fmt.Sprintf("[image %s, %d bytes]", http.DetectContentType(data), len(data))
	if r.imageDir == "" {
		return cliui.DimStyle.Render(summary)
	}

	path, err := chat.SaveImage(r.imageDir, m)
	if err != nil {
		r.logger.Warn("saving image failed", "error", err)
		return cliui.DimStyle.Render(summary) + " " + cliui.FailMark
	}

	r.logger.Debug("saved image", "path", path)
	return cliui.DimStyle.Render(summary+" saved to ") + cliui.ValueStyle.Render(path)
}
