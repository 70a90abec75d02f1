package rudp

import "github.com/pkg/errors"

// Config carries the tunables shared by every channel on a connection.
type Config struct {
	// WindowSize is the capacity of the send and receive sliding windows:
	// how many in-flight sequences a reliable channel tracks at once.
	WindowSize int

	// MaxResendAttempts is how many times a reliable send is retried
	// before the connection is disconnected.
	MaxResendAttempts int

	// ResendExtraDelayMS is added to the current RTT estimate to form the
	// resend threshold: a packet is retransmitted once
	// now - last_sent_at > RoundtripMS + ResendExtraDelayMS.
	ResendExtraDelayMS int64

	// RecommendedTickInterval is not read by this package; it documents
	// how often a dispatch loop should call Tick for reliable channels to
	// make timely progress; it should run at least twice per resend
	// threshold to keep retransmissions prompt.
	RecommendedTickInterval int64
}

// DefaultConfig returns sensible defaults: window 64, 10 max resend
// attempts, 50ms extra resend delay.
func DefaultConfig() Config {
	return Config{
		WindowSize:              64,
		MaxResendAttempts:       10,
		ResendExtraDelayMS:      50,
		RecommendedTickInterval: 100,
	}
}

// Validate enforces the positivity invariants a channel relies on.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return errors.Errorf("rudp: WindowSize must be positive, got %d", c.WindowSize)
	}
	if c.MaxResendAttempts <= 0 {
		return errors.Errorf("rudp: MaxResendAttempts must be positive, got %d", c.MaxResendAttempts)
	}
	if c.ResendExtraDelayMS < 0 {
		return errors.Errorf("rudp: ResendExtraDelayMS must not be negative, got %d", c.ResendExtraDelayMS)
	}
	return nil
}
