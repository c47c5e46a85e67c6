package types

// Version is the canonical project version.
// The CLI and the tick-trace format share this version; trace files written
// by one minor version are readable by the next.
const Version = "0.3.0"
