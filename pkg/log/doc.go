// Package log provides the logging abstraction used by notifier components.
//
// The Logger interface can be implemented by any logging library. A zerolog
// adapter and a no-op logger are provided; components default to the no-op
// logger so that embedding applications opt in to output explicitly.
package log
