/*
NAME
  xclog_test.go

DESCRIPTION
  xclog_test.go contains testing for the diagnostic hook found in
  xclog.go.

AUTHORS
  The openfpga xc6bit contributors.
*/

package xclog

import (
	"fmt"
	"strings"
	"testing"
)

// TestStdFormatting checks level names and key=value rendering.
func TestStdFormatting(t *testing.T) {
	var got []string
	log := Std(func(format string, args ...interface{}) {
		got = append(got, fmt.Sprintf(format, args...))
	})
	log(WarnLevel, "odd bits", "count", 3, "where", "iob")
	log(DebugLevel, "noise")
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0] != "WARN odd bits count=3 where=iob" {
		t.Errorf("got %q", got[0])
	}
	if !strings.HasPrefix(got[1], "DEBUG ") {
		t.Errorf("got %q", got[1])
	}
}

// TestNop checks the default hook is callable.
func TestNop(t *testing.T) {
	Nop(ErrorLevel, "ignored", "k", "v")
}
