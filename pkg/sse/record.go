// Package sse provides a minimal, purpose-built reader for the record framing
// used by the neat agent server: UTF-8 text where records are separated by a
// blank line and qualifying records carry a "data: " prefix.
//
// Unlike a line scanner, the reader makes no assumption about how the
// transport chunks the stream. Records may be split at any byte, including in
// the middle of a multi-byte character or in the middle of the delimiter.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

import "strings"

const (
	// Delimiter separates two records in the stream.
	Delimiter = "\n\n"

	// DataPrefix marks a record that carries a payload.
	DataPrefix = "data: "
)

// Record is a single blank-line delimited unit of the stream.
type Record struct {
	// Raw is the full decoded record text without the trailing delimiter.
	Raw string
}

// Payload returns the record text following the "data: " prefix.
// ok is false for records that do not start with the prefix (comments,
// keep-alives, event or id lines), which callers should discard.
func (r Record) Payload() (payload string, ok bool) {
	payload, ok = strings.CutPrefix(r.Raw, DataPrefix)
	if !ok {
		return "", false
	}
	return payload, true
}
