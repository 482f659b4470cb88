/*
NAME
  xclog.go

DESCRIPTION
  xclog provides the dependency-free diagnostic logging hook shared by the
  register, bitstream and codec/* packages. It follows the same shape as
  protocol/rtmp's in-package Log type: a plain function value rather than a
  concrete logger interface, so callers that don't care can pass Nop and
  callers that do can adapt any logger of their choosing with one line.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package xclog defines the Log hook used to report non-fatal diagnostics
// (reserved-bit mismatches, unknown CMD codes, residual bits after
// extraction, and similar) without failing the surrounding operation.
package xclog

import "fmt"

// Log levels, in the same ordering as protocol/rtmp's Log levels.
const (
	DebugLevel int8 = -1
	InfoLevel  int8 = 0
	WarnLevel  int8 = 1
	ErrorLevel int8 = 2
	FatalLevel int8 = 5
)

// Log is the diagnostic hook type threaded through Decoder/Encoder and the
// extraction/emission helpers. params follow the "key, value, key, value..."
// convention used by structured loggers.
type Log func(level int8, message string, params ...interface{})

// Nop discards every message. It is the default when no logger is supplied.
func Nop(int8, string, ...interface{}) {}

// Std writes every message to the given printer (e.g. log.Printf) formatted
// as "LEVEL message key=value key=value...".
func Std(printf func(format string, args ...interface{})) Log {
	return func(level int8, message string, params ...interface{}) {
		s := message
		for i := 0; i+1 < len(params); i += 2 {
			s += fmt.Sprintf(" %v=%v", params[i], params[i+1])
		}
		printf("%s %s", levelName(level), s)
	}
}

func levelName(level int8) string {
	switch {
	case level <= DebugLevel:
		return "DEBUG"
	case level == InfoLevel:
		return "INFO"
	case level == WarnLevel:
		return "WARN"
	case level == ErrorLevel:
		return "ERROR"
	default:
		return "FATAL"
	}
}
