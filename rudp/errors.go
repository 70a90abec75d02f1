package rudp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrChannelNumberOutOfRange is returned when a channel id is used outside
// the configured channel count.
type ErrChannelNumberOutOfRange struct {
	Got, Max ChannelID
}

func (e ErrChannelNumberOutOfRange) Error() string {
	return fmt.Sprintf("rudp: channel %d > max channel id %d", e.Got, e.Max)
}

// ResendExhaustedError reports that an outgoing packet exceeded
// Config.MaxResendAttempts. The connection is disconnected as a side effect
// of the Tick call that produces this condition; the error is informational
// (surfaced to a Logger), not returned to a caller.
type ResendExhaustedError struct {
	Seq      Seq
	Attempts int
}

func (e ResendExhaustedError) Error() string {
	return fmt.Sprintf("rudp: seq %d exceeded max resend attempts (%d)", e.Seq, e.Attempts)
}

// errAllocationFailed wraps an Allocator failure with a stack trace: this is
// the one failure mode serious enough to propagate as a fatal error to the
// dispatch loop, so the extra cost of capturing a trace here (rather than
// fmt.Errorf's plain %w) pays for itself at the point it's logged.
func errAllocationFailed(cause error) error {
	return errors.Wrap(cause, "rudp: buffer allocation failed")
}
