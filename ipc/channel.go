package ipc

import (
	"fmt"
	"net"

	"github.com/flowpilot-io/flowpilot/types"
)

// DefaultEndpoint is the well-known local endpoint of the decision process.
const DefaultEndpoint = "/tmp/astraea.sock"

// Channel is a connection-oriented, message-based conduit to the decision
// process. A nil Channel is valid: Send silently drops and Receive reports
// no connection. The control loop and the shutdown path work identically
// whether or not RL mode is enabled.
//
// The channel is not safe for concurrent use; after startup only the
// control loop touches it, plus one final End from the lifecycle watcher
// after the loop has observed the stop flag.
type Channel struct {
	conn    net.Conn
	decoder *FrameDecoder
}

// Dial establishes a session to the decision process over a unix-domain
// socket. Failure here is fatal at startup; there is no retry.
func Dial(endpoint string) (*Channel, error) {
	conn, err := net.Dial("unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("decision process unreachable at %s: %w", endpoint, err)
	}
	return &Channel{
		conn:    conn,
		decoder: NewFrameDecoder(conn),
	}, nil
}

// Send encodes and writes one full frame. A nil or unconnected channel
// drops the message without error.
func (c *Channel) Send(msg *types.ControlMessage) error {
	if c == nil || c.conn == nil {
		return nil
	}
	frame, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("channel send: %w", err)
	}
	return nil
}

// Receive blocks until one full frame is available and returns the raw
// payload for the caller to parse. There is no timeout: an unresponsive
// decision process stalls the caller indefinitely. Known liveness risk,
// accepted so that a slow decision never silently degrades to stale
// windows.
func (c *Channel) Receive() ([]byte, error) {
	if c == nil || c.conn == nil {
		return nil, fmt.Errorf("channel not connected")
	}
	return c.decoder.ReadFrame()
}

// Handshake sends a start message and adopts the flow identifier assigned
// by the decision process.
func (c *Channel) Handshake() (int, error) {
	if err := c.Send(&types.ControlMessage{Kind: types.KindStart}); err != nil {
		return 0, fmt.Errorf("handshake send: %w", err)
	}
	payload, err := c.Receive()
	if err != nil {
		return 0, fmt.Errorf("handshake receive: %w", err)
	}
	reply, err := DecodeReply(payload)
	if err != nil {
		return 0, fmt.Errorf("handshake reply: %w", err)
	}
	if reply.FlowID == nil {
		return 0, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("handshake reply missing flow_id: %s", payload),
		}
	}
	return *reply.FlowID, nil
}

// Close closes the underlying connection. Safe on a nil channel.
func (c *Channel) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
