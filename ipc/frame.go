// Package ipc implements the framed message protocol spoken to the
// decision process: a 2-byte big-endian length prefix followed by a JSON
// payload. Both ends use network byte order for the prefix.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/flowpilot-io/flowpilot/types"
)

// Frame size constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 2
	// MaxPayloadSize is the largest payload expressible in the prefix.
	MaxPayloadSize = 1<<16 - 1
)

// FrameErrorKind classifies frame encoding and decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame: the
	// peer closed before the declared length could be read.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a payload exceeding MaxPayloadSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a payload that does not parse as the
	// expected document, including a decision reply without cwnd.
	FrameErrorDecode
)

// FrameError represents a framing or payload error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a payload decode error. Malformed
// replies are recovered locally: the control loop skips the tick.
func IsMalformed(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.Kind == FrameErrorDecode
	}
	return false
}

// EncodeMessage encodes a control message as a length-prefixed JSON frame.
// The state field is omitted from the payload entirely when the message
// carries no snapshot.
func EncodeMessage(msg *types.ControlMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode control message",
			Err:  err,
		}
	}
	if len(payload) > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	frame := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint16(frame[:LengthPrefixSize], uint16(len(payload)))
	copy(frame[LengthPrefixSize:], payload)
	return frame, nil
}

// FrameDecoder decodes length-prefixed frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder creates a new frame decoder.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r}
}

// ReadFrame reads a single frame and returns the raw payload bytes.
//
// Errors:
//   - io.EOF: stream ended cleanly between frames
//   - *FrameError with Kind=FrameErrorPartial: peer closed mid-frame
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint16(lengthBuf[:])

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	return payload, nil
}

// DecodeReply decodes a decision-process reply payload. A reply without a
// cwnd field is malformed: the caller must not change the window.
func DecodeReply(payload []byte) (*types.ControlReply, error) {
	var reply types.ControlReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode reply",
			Err:  err,
		}
	}
	if reply.Cwnd == nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  fmt.Sprintf("reply missing cwnd: %s", payload),
		}
	}
	return &reply, nil
}

// DecodeMessage decodes a payload as a control message. Used by the replay
// tooling and tests; the client itself only ever decodes replies.
func DecodeMessage(payload []byte) (*types.ControlMessage, error) {
	var msg types.ControlMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode control message",
			Err:  err,
		}
	}
	return &msg, nil
}
