// Package log provides structured logging with per-flow context.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for the control loop and generator
//     (high performance, structured fields)
//   - SugaredLogger: Printf-style logging for CLI surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flowpilot-io/flowpilot/types"
)

// Logger provides structured logging with flow context. Every entry
// carries the session id and flow id so interleaved multi-flow runs can be
// separated downstream. The metadata and writer are retained so derived
// loggers rebuild the context fields rather than stacking duplicates.
type Logger struct {
	zap  *zap.Logger
	meta types.FlowMeta
	w    io.Writer
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger with flow context. Output defaults to
// os.Stderr; stdout stays clean for the dashboard and replay output.
func NewLogger(meta *types.FlowMeta) *Logger {
	return newLoggerWithWriter(meta, os.Stderr)
}

// WithOutput returns a new logger with a different output writer.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	meta := l.meta
	return newLoggerWithWriter(&meta, w)
}

// WithFlowID returns a logger whose entries carry the given flow id,
// replacing the one from construction. The run command uses this after the
// handshake reassigns the identifier.
func (l *Logger) WithFlowID(flowID int) *Logger {
	meta := l.meta
	meta.FlowID = flowID
	return newLoggerWithWriter(&meta, l.w)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
}

func newLoggerWithWriter(meta *types.FlowMeta, w io.Writer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)

	contextFields := []zap.Field{
		zap.String("session_id", meta.SessionID),
		zap.Int("flow_id", meta.FlowID),
	}
	if meta.Algorithm != "" {
		contextFields = append(contextFields, zap.String("algorithm", meta.Algorithm))
	}

	return &Logger{zap: zap.New(core).With(contextFields...), meta: *meta, w: w}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
