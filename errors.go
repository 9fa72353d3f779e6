// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mtbdd

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors reported by operations that could not complete. Node returning
// operations record them in the BDD (see Err) and return Null.
var (
	ErrOverflow = errors.New("node limit exceeded")
	ErrAborted  = errors.New("operation aborted")
)

// Errors returned by Dump and Undump.
var (
	ErrDumpFormat = errors.New("bad format in BDD dump")
	ErrDumpEOF    = errors.New("unexpected end of BDD dump")
	ErrDumpIO     = errors.New("i/o error in BDD dump")
	ErrDumpVars   = errors.New("bad variable list for BDD dump")
)

// errRetry is used internally when a checkpoint decides that the variable
// order should be improved. The operation unwinds, we reorder, then retry.
var errRetry = errors.New("retry after reordering")

// Error returns the error status of the BDD. We return an empty string if
// there are no errors.
func (b *BDD) Error() string {
	if b.error == nil {
		return ""
	}
	return b.error.Error()
}

// Errored returns true if there was an error during a computation.
func (b *BDD) Errored() bool {
	return b.error != nil
}

// Err returns the error status of the BDD, or nil. The result can be tested
// with errors.Is against ErrOverflow and ErrAborted.
func (b *BDD) Err() error {
	return b.error
}

// ClearError resets the error status of the BDD. Overflows and aborts leave
// the BDD in a consistent state, so computations can resume afterwards.
func (b *BDD) ClearError() {
	b.error = nil
}

func (b *BDD) seterror(err error, format string, a ...interface{}) Node {
	msg := fmt.Sprintf(format, a...)
	if b.error != nil {
		b.error = errors.Wrapf(err, "%s; %s", msg, b.error.Error())
	} else {
		b.error = errors.Wrap(err, msg)
	}
	b.logger.WithField("error", b.error.Error()).Debug("operation failed")
	return Null
}

// warn is used when an argument is wrong but representable. The operation
// degrades to a safe default.
func (b *BDD) warn(format string, a ...interface{}) {
	b.logger.Warnf(format, a...)
}

// fatal reports the violation of an internal invariant. It does not return.
func (b *BDD) fatal(format string, a ...interface{}) {
	b.logger.Panicf(format, a...)
}
