package renderer

import (
	"bytes"
	"io"
)

// ConditionalBlock buffers everything the block writes and copies it to w
// only when the block reports the section is worth keeping. Reports with
// optional sections write them through this to avoid dangling headers.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	var buf bytes.Buffer
	if block(&buf) {
		io.Copy(w, &buf)
	}
}
