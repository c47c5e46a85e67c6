package control

import (
	"bytes"
	"io"

	"github.com/flowpilot-io/flowpilot/log"
	"github.com/flowpilot-io/flowpilot/metrics"
)

// PayloadSize is the size of the filler buffer written per iteration.
const PayloadSize = 8192

// Generator saturates the data flow: it writes a fixed filler buffer as
// fast as the socket accepts it while the session is live. The write
// call's own backpressure paces the volume to the network's capacity;
// there is no explicit rate limiting.
type Generator struct {
	session   *Session
	w         io.Writer
	payload   []byte
	collector *metrics.Collector
	log       *log.Logger
}

// NewGenerator creates a traffic generator writing to w. The generator
// owns the flow's write path exclusively.
func NewGenerator(session *Session, w io.Writer, logger *log.Logger, collector *metrics.Collector) *Generator {
	return &Generator{
		session:   session,
		w:         w,
		payload:   bytes.Repeat([]byte{'a'}, PayloadSize),
		collector: collector,
		log:       logger,
	}
}

// Run writes filler payload until the liveness flag clears. A write
// failure is fatal to this goroutine and returned as-is; the flow handle
// has already classified it as a socket error.
func (g *Generator) Run() error {
	for g.session.Live() {
		n, err := g.w.Write(g.payload)
		g.collector.AddBytes(int64(n))
		if err != nil {
			return err
		}
	}
	g.log.Info("traffic generator exiting", nil)
	return nil
}
