package flow

import (
	"fmt"
	"net"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/flowpilot-io/flowpilot/types"
)

// RequestKind tells the kernel what to do with its sampling window when
// statistics are read.
type RequestKind int32

const (
	// RequestNone reads statistics without touching the sampling window.
	RequestNone RequestKind = iota
	// RequestAction reads statistics and resets the window; used by the
	// control loop once per tick.
	RequestAction
	// RequestObserve reads statistics for an out-of-band observation.
	RequestObserve
)

// Socket option numbers from the control-plugin kernel patch. These sit
// above the last upstream TCP option and must match the running kernel.
const (
	optPluginEnable = 45
	optPluginStats  = 46
	optPluginCwnd   = 47
)

// kernelStats mirrors the struct the patched kernel fills on a stats read.
// The leading req field is in/out: the request kind is written before the
// getsockopt call.
type kernelStats struct {
	req           int32
	minRTT        uint32
	avgURTT       uint32
	cnt           uint32
	srtt          uint32
	cwnd          uint32
	packetsOut    uint32
	retransOut    uint32
	maxPacketsOut uint32
	thrCnt        uint32
	_             [2]uint32 // pad to 8-byte alignment
	avgThr        uint64
	pacingRate    uint64
	lossBytes     uint64
}

// Conn is the handle for one controlled TCP data flow. The traffic
// generator owns the write path exclusively; the control loop owns the
// statistics and window-assignment path exclusively. No lock is needed on
// the handle itself.
type Conn struct {
	tcp *net.TCPConn
	raw syscall.RawConn
}

// Dial connects the data flow. SO_REUSEADDR is set before connecting and
// TCP_NODELAY after, matching the flow setup the decision process was
// trained against.
func Dial(addr string) (*Conn, error) {
	dialer := net.Dialer{
		Control: func(_, _ string, raw syscall.RawConn) error {
			var sockErr error
			err := raw.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, &SocketError{Op: "connect", Err: err}
	}
	tcp := conn.(*net.TCPConn)
	if err := tcp.SetNoDelay(true); err != nil {
		_ = tcp.Close()
		return nil, &SocketError{Op: "set_nodelay", Err: err}
	}
	raw, err := tcp.SyscallConn()
	if err != nil {
		_ = tcp.Close()
		return nil, &SocketError{Op: "raw_conn", Err: err}
	}
	return &Conn{tcp: tcp, raw: raw}, nil
}

// SetCongestionControl selects the kernel congestion-control algorithm by
// name. Default for the data flow is cubic.
func (c *Conn) SetCongestionControl(name string) error {
	err := c.control("set_congestion_control", func(fd int) error {
		return unix.SetsockoptString(fd, unix.IPPROTO_TCP, unix.TCP_CONGESTION, name)
	})
	return err
}

// EnableControlPlugin activates the control-plugin capability on the
// socket. Must be called after the connection is established; the kernel
// ignores the option on an unconnected socket.
func (c *Conn) EnableControlPlugin(mode int) error {
	return c.control("enable_control_plugin", func(fd int) error {
		return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, optPluginEnable, mode)
	})
}

// Stats reads the current flow statistics from the kernel.
func (c *Conn) Stats(kind RequestKind) (*types.StateSnapshot, error) {
	var stats kernelStats
	err := c.control("stats", func(fd int) error {
		stats.req = int32(kind)
		length := uint32(unsafe.Sizeof(stats))
		_, _, errno := unix.Syscall6(
			unix.SYS_GETSOCKOPT,
			uintptr(fd),
			uintptr(unix.IPPROTO_TCP),
			uintptr(optPluginStats),
			uintptr(unsafe.Pointer(&stats)),
			uintptr(unsafe.Pointer(&length)),
			0,
		)
		if errno != 0 {
			return errno
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.StateSnapshot{
		MinRTT:        stats.minRTT,
		AvgURTT:       stats.avgURTT,
		Cnt:           stats.cnt,
		SRTT:          stats.srtt,
		AvgThr:        stats.avgThr,
		ThrCnt:        stats.thrCnt,
		PacingRate:    stats.pacingRate,
		LossBytes:     stats.lossBytes,
		PacketsOut:    stats.packetsOut,
		RetransOut:    stats.retransOut,
		MaxPacketsOut: stats.maxPacketsOut,
		Cwnd:          stats.cwnd,
	}, nil
}

// SetWindow assigns the congestion window, in packets, overriding the
// kernel's native algorithm while the control plugin is active.
func (c *Conn) SetWindow(cwnd int) error {
	return c.control("set_window", func(fd int) error {
		return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, optPluginCwnd, cwnd)
	})
}

// Write writes filler payload on the data path. Blocking here is the
// intended backpressure that paces the traffic generator.
func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.tcp.Write(p)
	if err != nil {
		return n, &SocketError{Op: "write", Err: err}
	}
	return n, nil
}

// Close closes the data connection.
func (c *Conn) Close() error {
	return c.tcp.Close()
}

// control runs fn against the raw socket descriptor and classifies
// failures as socket errors.
func (c *Conn) control(op string, fn func(fd int) error) error {
	var sockErr error
	err := c.raw.Control(func(fd uintptr) {
		sockErr = fn(int(fd))
	})
	if err != nil {
		return &SocketError{Op: op, Err: err}
	}
	if sockErr != nil {
		return &SocketError{Op: op, Err: sockErr}
	}
	return nil
}

// String implements fmt.Stringer for RequestKind, used in trace logging.
func (k RequestKind) String() string {
	switch k {
	case RequestNone:
		return "none"
	case RequestAction:
		return "action"
	case RequestObserve:
		return "observe"
	default:
		return fmt.Sprintf("request(%d)", int32(k))
	}
}
