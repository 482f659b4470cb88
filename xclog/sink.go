/*
NAME
  sink.go

DESCRIPTION
  sink.go provides a rotating on-disk destination for diagnostic output,
  for long-running decode/verify tools that want bounded, persistent logs
  the way revid keeps bounded logs for unattended recorders.

AUTHORS
  The openfpga xc6bit contributors.
*/

package xclog

import (
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingFileSink returns a Log that appends formatted diagnostics to path,
// rotating once the file exceeds maxMegabytes and keeping maxBackups old
// files around.
func RotatingFileSink(path string, maxMegabytes, maxBackups int) Log {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxMegabytes,
		MaxBackups: maxBackups,
	}
	return Std(func(format string, args ...interface{}) {
		fmt.Fprintf(io.Writer(w), format+"\n", args...)
	})
}
