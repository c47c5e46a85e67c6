// Package iox provides small I/O cleanup helpers shared by the flow,
// trace, and CLI layers.
package iox

import "io"

// DiscardClose closes c and discards the error. Use where a close error
// is unactionable, e.g. releasing the flow handle on an error path:
//
//	defer iox.DiscardClose(conn)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c, for t.Cleanup
// registration in tests:
//
//	t.Cleanup(iox.CloseFunc(recorder))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error. For non-Close
// cleanup such as a final flush on shutdown:
//
//	defer iox.DiscardErr(w.Flush)
func DiscardErr(fn func() error) { _ = fn() }
