package rudp

import "time"

var (
	_ Channel = (*Unreliable)(nil)
	_ Channel = (*Reliable)(nil)
	_ Channel = (*Sequenced)(nil)
)

// Channel is the interface a dispatch loop drives.
type Channel interface {
	// CreateOutgoing frames an outgoing application payload. For
	// Unreliable, ownership of the returned buffer passes to the caller,
	// who must Release it after transmission. For Reliable and Sequenced,
	// the channel retains ownership for retransmission and the caller
	// must not release it.
	CreateOutgoing(payload []byte) (buf []byte, callerMustRelease bool, err error)

	// HandleIncoming processes a received datagram (channel-id byte
	// already stripped by the caller). It returns the application payload
	// slice, if any is ready for delivery, and whether Poll should be
	// called again immediately.
	HandleIncoming(payload []byte) (app []byte, hasMore bool, err error)

	// HandleAck processes a received ack datagram's payload (sequence
	// bytes only).
	HandleAck(payload []byte) error

	// Poll drains one buffered in-order payload, if any. Only Sequenced
	// ever returns ok == true; Unreliable and Reliable deliver
	// immediately from HandleIncoming instead.
	Poll() (buf []byte, ok bool)

	// Tick drives retransmission of unacked outgoing packets.
	Tick()

	// Reset releases all retained buffers and returns sequence counters
	// to their initial state.
	Reset()
}

// outgoingSlot is a pending outgoing packet awaiting its ack.
type outgoingSlot struct {
	buffer      []byte
	firstSentAt time.Time
	lastSentAt  time.Time
	attempts    int
	alive       bool
}

// outgoing factors the send/ack/tick logic shared by Reliable and Sequenced.
// Unreliable does not use it — it never retains a buffer past
// CreateOutgoing.
type outgoing struct {
	id    ChannelID
	cfg   Config
	conn  Connection
	alloc Allocator
	clock Clock
	log   Logger

	txLast          Seq // incremented before use; the first assigned sequence is 1.
	txLowestUnacked Seq
	win             *window[outgoingSlot]
}

func newOutgoing(id ChannelID, cfg Config, conn Connection, alloc Allocator, clock Clock, log Logger) outgoing {
	return outgoing{
		id:    id,
		cfg:   cfg,
		conn:  conn,
		alloc: alloc,
		clock: clock,
		log:   log,
		win:   newWindow[outgoingSlot](cfg.WindowSize),
	}
}

// create assigns the next sequence, frames payload behind a 4-byte data
// header, and retains the buffer in the send window for retransmission.
// Ownership stays with the channel; the caller must not release it.
func (o *outgoing) create(payload []byte) (buf []byte, err error) {
	o.txLast++
	sn := o.txLast

	buf, err = o.alloc.Allocate(dataHeaderSize + len(payload))
	if err != nil {
		return nil, errAllocationFailed(err)
	}
	putDataHeader(buf, o.id, sn)
	copy(buf[dataHeaderSize:], payload)

	now := o.clock.Now()
	o.win.set(sn, outgoingSlot{
		buffer:      buf,
		firstSentAt: now,
		lastSentAt:  now,
		attempts:    1,
		alive:       true,
	})

	return buf, nil
}

// handleAck processes receipt of an ack for sn: frees the buffer, emits an
// RTT sample measured against the *original* transmission, and advances
// txLowestUnacked across any now-contiguously-acked slots.
//
// The only watermark touched here is txLowestUnacked, the send floor —
// acking never advances a receive-side counter.
func (o *outgoing) handleAck(sn Seq) {
	slot := o.win.get(sn)
	if !slot.alive {
		return
	}

	o.conn.AddRoundtripSample(o.clock.Now().Sub(slot.firstSentAt).Milliseconds())
	o.alloc.Release(slot.buffer)
	*slot = outgoingSlot{}

	for o.txLowestUnacked != o.txLast {
		next := o.win.get(o.txLowestUnacked + 1)
		if next.alive {
			break
		}
		o.txLowestUnacked++
	}
}

// tick retransmits outgoing packets that have gone unacked past the resend
// threshold, and disconnects on resend exhaustion. It iterates only the
// outgoing in-flight window (txLowestUnacked, txLast].
func (o *outgoing) tick() {
	if o.txLowestUnacked == o.txLast {
		return // nothing in flight
	}

	threshold := time.Duration(o.conn.RoundtripMS()+o.cfg.ResendExtraDelayMS) * time.Millisecond
	now := o.clock.Now()

	for sn := o.txLowestUnacked + 1; ; sn++ {
		slot := o.win.get(sn)
		if slot.alive {
			if slot.attempts > o.cfg.MaxResendAttempts {
				o.log.Error("resend attempts exhausted, disconnecting",
					"channel", o.id, "seq", sn, "attempts", slot.attempts,
					"err", ResendExhaustedError{Seq: sn, Attempts: slot.attempts})
				o.conn.Disconnect()
				return
			}

			if now.Sub(slot.lastSentAt) > threshold {
				if err := o.conn.SendRaw(slot.buffer); err != nil {
					o.log.Warn("resend failed", "channel", o.id, "seq", sn, "err", err)
				}
				slot.attempts++
				slot.lastSentAt = now
			}
		}

		if sn == o.txLast {
			break
		}
	}
}

// reset releases every retained outgoing buffer and zeroes the window.
func (o *outgoing) reset() {
	for sn := o.txLowestUnacked + 1; sn != o.txLast+1; sn++ {
		slot := o.win.get(sn)
		if slot.alive {
			o.alloc.Release(slot.buffer)
		}
	}
	o.win.release()
	o.txLast = 0
	o.txLowestUnacked = 0
}

// sendAck transmits a 4-byte ack datagram for sn and immediately releases
// its buffer. Acks are never retransmitted or tracked for resend.
func sendAck(conn Connection, alloc Allocator, log Logger, id ChannelID, sn Seq) {
	buf, err := alloc.Allocate(ackPktSize)
	if err != nil {
		log.Error("ack allocation failed", "channel", id, "seq", sn, "err", err)
		return
	}
	putAckPkt(buf, id, sn)
	if err := conn.SendRaw(buf); err != nil {
		log.Warn("ack send failed", "channel", id, "seq", sn, "err", err)
	}
	alloc.Release(buf)
}
