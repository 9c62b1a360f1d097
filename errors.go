// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dspi

import "errors"

var (
	// ErrBadInstance indicates the instance is not a DSPI module on the chip.
	ErrBadInstance = errors.New("unknown instance")

	// ErrBadConfig indicates the Config contains an out of range field.
	ErrBadConfig = errors.New("invalid config")

	// ErrNotInitialised indicates the instance has not been initialised by
	// MasterInit.
	ErrNotInitialised = errors.New("not initialised")

	// ErrCapacity indicates the TX queue lacks room for the message.
	// Nothing is queued.
	ErrCapacity = errors.New("insufficient queue capacity")

	// ErrBusy indicates a transaction is already in flight on the instance.
	ErrBusy = errors.New("busy")

	// ErrEmptyMessage indicates a send with no data.
	ErrEmptyMessage = errors.New("empty message")

	// ErrShortRead indicates fewer words were received than were sent.
	ErrShortRead = errors.New("short read")

	// ErrAborted indicates the transaction was abandoned by Abort.
	ErrAborted = errors.New("aborted")
)
