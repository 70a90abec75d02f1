package rudp

// Reliable is a guaranteed-delivery, unordered channel: every payload is
// delivered exactly once, but not necessarily in the order it was sent.
type Reliable struct {
	out outgoing

	rxLowest Seq
	acked    *window[bool]
}

// NewReliable constructs a Reliable channel bound to conn.
func NewReliable(id ChannelID, cfg Config, conn Connection, alloc Allocator, clock Clock, log Logger) *Reliable {
	if log == nil {
		log = nopLogger{}
	}
	return &Reliable{
		out:   newOutgoing(id, cfg, conn, alloc, clock, log),
		acked: newWindow[bool](cfg.WindowSize),
	}
}

// CreateOutgoing assigns the next sequence, frames payload, and retains the
// buffer for retransmission until acked. The caller must not release it.
func (r *Reliable) CreateOutgoing(payload []byte) (buf []byte, callerMustRelease bool, err error) {
	buf, err = r.out.create(payload)
	return buf, false, err
}

// HandleIncoming processes a received data payload. Stale and duplicate
// sequences still get an ack re-sent, defending against a lost ack (spec
// invariant 5). Every new sequence — in order or not — is delivered
// immediately; ordering is not this channel's job.
func (r *Reliable) HandleIncoming(payload []byte) (app []byte, hasMore bool, err error) {
	sn, ok := parseDataHeader(payload)
	if !ok {
		return nil, false, nil
	}
	app = payload[2:]

	if Distance(sn, r.rxLowest) <= 0 || *r.acked.get(sn) {
		sendAck(r.out.conn, r.out.alloc, r.out.log, r.out.id, sn)
		return nil, false, nil
	}

	if sn == r.rxLowest+1 {
		r.rxLowest = sn
		for *r.acked.get(r.rxLowest + 1) {
			r.acked.set(r.rxLowest+1, false)
			r.rxLowest++
		}
		sendAck(r.out.conn, r.out.alloc, r.out.log, r.out.id, sn)
		return app, false, nil
	}

	r.acked.set(sn, true)
	sendAck(r.out.conn, r.out.alloc, r.out.log, r.out.id, sn)
	return app, false, nil
}

// HandleAck processes an ack for one outgoing sequence.
func (r *Reliable) HandleAck(payload []byte) error {
	sn, ok := parseAckPkt(payload)
	if !ok {
		return nil
	}
	r.out.handleAck(sn)
	return nil
}

// Poll always returns nothing: Reliable delivers immediately from
// HandleIncoming, it never buffers for order.
func (r *Reliable) Poll() (buf []byte, ok bool) { return nil, false }

// Tick retransmits unacked outgoing packets past the resend threshold, and
// disconnects on resend exhaustion.
func (r *Reliable) Tick() { r.out.tick() }

// Reset releases all retained outgoing buffers and returns every counter,
// on both the send and receive side, to its initial state.
func (r *Reliable) Reset() {
	r.out.reset()
	r.rxLowest = 0
	r.acked.release()
}
