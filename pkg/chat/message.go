// Package chat implements the client side of a neat conversation: the
// message model, the streaming reader that turns a server response into
// messages, and the Session that drives one request per user submission.
package chat

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ImageDataURIPrefix is prepended to the base64 payload of image messages so
// the text can be used directly as an image source.
const ImageDataURIPrefix = "data:image/png;base64,"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Type classifies bot messages. The zero value is a plain message.
type Type string

const (
	TypePlain        Type = ""
	TypeThought      Type = "thought"
	TypeFunctionCall Type = "function_call"
	TypeImage        Type = "image"
	TypeAnswer       Type = "answer"

	// TypeError is never sent by the server. The Session appends it when a
	// request or stream fails.
	TypeError Type = "error"
)

// ErrNotImage is returned by ImageData for non-image messages.
var ErrNotImage = errors.New("message is not an image")

// Message is the unit exchanged and rendered in a conversation.
// Messages are values: a Session hands out copies and never edits a message
// once it has been appended.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Type   Type   `json:"type,omitempty"`
}

// NewUserMessage creates a message authored by the user. User messages are
// always plain.
func NewUserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// NewBotMessage creates a message authored by the bot. Image payloads are
// rewritten into a data URI.
func NewBotMessage(text string, typ Type) Message {
	if typ == TypeImage && !strings.HasPrefix(text, ImageDataURIPrefix) {
		text = ImageDataURIPrefix + text
	}
	return Message{Text: text, Sender: SenderBot, Type: typ}
}

// IsImage reports whether m carries an image data URI.
func (m Message) IsImage() bool {
	return m.Sender == SenderBot && m.Type == TypeImage
}

// ImageData decodes the base64 image bytes of an image message.
func (m Message) ImageData() ([]byte, error) {
	if !m.IsImage() {
		return nil, ErrNotImage
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(m.Text, ImageDataURIPrefix))
}
