/*
NAME
  log.go

DESCRIPTION
  log.go holds the ConfigLog: the bounded, ordered record of register
  actions a parse produces and an emission consumes, together with the
  derived indices of the IDCODE and FLR writes and the marker separating
  the pre-FDRI prologue from the post-FDRI epilogue.

AUTHORS
  The openfpga xc6bit contributors.
*/

package register

import "github.com/openfpga/xc6bit/xcerr"

// MaxRegActions bounds the number of register actions a log can hold.
const MaxRegActions = 256

// Value is the payload of a register action. Most registers carry a
// single integer; FAR_MAJ carries a (major, minor) pair.
type Value interface{ value() }

// Int is a plain integer register value.
type Int uint32

// Far is the two-word FAR_MAJ payload.
type Far struct {
	Maj uint16
	Min uint16
}

func (Int) value() {}
func (Far) value() {}

// Action is one recorded register access.
type Action struct {
	Reg Reg
	Val Value
}

// Log is the ordered register-action record of one bitstream.
type Log struct {
	acts [MaxRegActions]Action
	n    int

	// Indices into the action list, -1 while unseen.
	IdcodeIdx         int
	FLRIdx            int
	NumRegsBeforeBits int
}

// NewLog returns an empty log with all indices unset.
func NewLog() *Log {
	return &Log{IdcodeIdx: -1, FLRIdx: -1, NumRegsBeforeBits: -1}
}

// Append records an action, failing once the fixed capacity is exhausted.
func (l *Log) Append(a Action) error {
	if l.n >= MaxRegActions {
		return xcerr.Newf(xcerr.PayloadOverflow, "register log full at %d actions", MaxRegActions)
	}
	l.acts[l.n] = a
	l.n++
	return nil
}

// Len returns the number of recorded actions.
func (l *Log) Len() int { return l.n }

// At returns action i.
func (l *Log) At(i int) Action { return l.acts[i] }

// IDCode returns the value of the logged IDCODE write, or 0 if none was
// recorded.
func (l *Log) IDCode() uint32 {
	if l.IdcodeIdx < 0 {
		return 0
	}
	v, _ := l.acts[l.IdcodeIdx].Val.(Int)
	return uint32(v)
}

// FLR returns the value of the logged FLR write, or -1 if none was
// recorded.
func (l *Log) FLR() int {
	if l.FLRIdx < 0 {
		return -1
	}
	v, _ := l.acts[l.FLRIdx].Val.(Int)
	return int(v)
}
