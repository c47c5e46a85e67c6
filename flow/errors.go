// Package flow wraps the data TCP connection and the patched kernel's
// control-plugin socket options: statistics retrieval and user-space
// congestion-window assignment.
package flow

import "fmt"

// SocketError wraps a failure on the data connection with the operation
// that failed. Socket errors are fatal to the goroutine that encountered
// them; nothing in this package retries.
type SocketError struct {
	// Op is the operation that failed (e.g. "write", "stats", "set_window").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("flow %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *SocketError) Unwrap() error {
	return e.Err
}
