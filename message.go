package lineecho

import "bytes"

const (
	// Delimiter marks the end of a message on the wire.
	Delimiter byte = '\n'
	// DefaultCapacity bounds a single received message, delimiter included.
	DefaultCapacity = 4096
)

// Terminated reports whether msg ends with the delimiter.
func Terminated(msg []byte) bool {
	return len(msg) > 0 && msg[len(msg)-1] == Delimiter
}

// Terminate returns msg with the delimiter appended, unless it already
// ends with one. The input slice is never modified.
func Terminate(msg []byte) []byte {
	if Terminated(msg) {
		return bytes.Clone(msg)
	}
	out := make([]byte, 0, len(msg)+1)
	out = append(out, msg...)
	return append(out, Delimiter)
}
