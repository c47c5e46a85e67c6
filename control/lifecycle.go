package control

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/flowpilot-io/flowpilot/log"
	"github.com/flowpilot-io/flowpilot/types"
)

// GracePeriod is how long the termination sequence waits for the end
// message and in-flight writes to leave the process before exiting.
const GracePeriod = 100 * time.Microsecond

// Lifecycle coordinates best-effort shutdown. Signals are received on a
// channel by a dedicated watcher goroutine rather than inside an
// asynchronous handler, so the termination sequence is free to log, close
// files, and send the end message without reentrancy constraints.
//
// The sequence deliberately does not join the worker goroutines: both
// observe the liveness flag within one iteration, and the process exits
// right after the grace period.
//
// The watcher is registered before the channel is dialed or any sink is
// opened, so a signal during a stalled dial or handshake still runs the
// termination sequence. Channel and closers are attached as startup
// proceeds, under a lock shared with Terminate.
type Lifecycle struct {
	session *Session
	grace   time.Duration
	exit    func(int)
	log     *log.Logger

	mu      sync.Mutex
	channel Decider
	closers []io.Closer
}

// NewLifecycle creates a lifecycle watcher. The channel may be nil and
// closers empty at construction; attach them as startup opens them.
func NewLifecycle(session *Session, channel Decider, logger *log.Logger, closers ...io.Closer) *Lifecycle {
	return &Lifecycle{
		session: session,
		channel: channel,
		closers: closers,
		grace:   GracePeriod,
		exit:    os.Exit,
		log:     logger,
	}
}

// AttachChannel sets the decision channel used for the end message.
func (lc *Lifecycle) AttachChannel(channel Decider) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.channel = channel
}

// AddCloser registers a sink to close during termination; pass the
// performance log and trace recorder as they are opened.
func (lc *Lifecycle) AddCloser(c io.Closer) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.closers = append(lc.closers, c)
}

// Watch registers for termination signals and runs the termination
// sequence when the first one arrives. Later signals are absorbed by the
// exactly-once Stop.
func (lc *Lifecycle) Watch(sigs ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		<-ch
		lc.log.Info("caught signal, exiting", nil)
		lc.Terminate()
	}()
}

// Terminate runs the shutdown sequence exactly once: clear the liveness
// flag, close the log sinks, announce flow termination, wait the grace
// period, exit non-zero. Send and close errors are swallowed; shutdown
// must not itself fail to exit.
func (lc *Lifecycle) Terminate() {
	if !lc.session.Stop() {
		return
	}
	lc.mu.Lock()
	closers := lc.closers
	channel := lc.channel
	lc.mu.Unlock()

	for _, c := range closers {
		_ = c.Close()
	}
	if channel != nil {
		_ = channel.Send(&types.ControlMessage{
			Kind:   types.KindEnd,
			FlowID: lc.session.FlowID(),
		})
	}
	time.Sleep(lc.grace)
	lc.exit(1)
}
