package rudp

// pendingIncoming is a buffered out-of-order payload awaiting its turn.
type pendingIncoming struct {
	buffer []byte
	alive  bool
}

// Sequenced is a guaranteed-delivery, strictly-in-order channel: payloads
// are delivered to the application in exactly the sequence they were sent,
// with out-of-order arrivals held in a receive window until the gap before
// them closes.
type Sequenced struct {
	out outgoing

	rxLowest Seq
	inWin    *window[pendingIncoming]
}

// NewSequenced constructs a Sequenced channel bound to conn.
func NewSequenced(id ChannelID, cfg Config, conn Connection, alloc Allocator, clock Clock, log Logger) *Sequenced {
	if log == nil {
		log = nopLogger{}
	}
	return &Sequenced{
		out:   newOutgoing(id, cfg, conn, alloc, clock, log),
		inWin: newWindow[pendingIncoming](cfg.WindowSize),
	}
}

// CreateOutgoing assigns the next sequence, frames payload, and retains the
// buffer for retransmission until acked. The caller must not release it.
func (s *Sequenced) CreateOutgoing(payload []byte) (buf []byte, callerMustRelease bool, err error) {
	buf, err = s.out.create(payload)
	return buf, false, err
}

// HandleIncoming processes a received data payload. In-order arrivals are
// delivered immediately; out-of-order arrivals are copied into the receive
// window and held until Poll can release them in order. Either way an ack
// is sent, including for stale/duplicate sequences, so a lost ack
// doesn't stall the sender.
func (s *Sequenced) HandleIncoming(payload []byte) (app []byte, hasMore bool, err error) {
	sn, ok := parseDataHeader(payload)
	if !ok {
		return nil, false, nil
	}

	if Distance(sn, s.rxLowest) <= 0 || s.inWin.get(sn).alive {
		sendAck(s.out.conn, s.out.alloc, s.out.log, s.out.id, sn)
		return nil, false, nil
	}

	if sn == s.rxLowest+1 {
		s.rxLowest = sn
		sendAck(s.out.conn, s.out.alloc, s.out.log, s.out.id, sn)
		return payload[2:], s.inWin.get(s.rxLowest + 1).alive, nil
	}

	app2 := payload[2:]
	buf, allocErr := s.out.alloc.Allocate(len(app2))
	if allocErr != nil {
		return nil, false, errAllocationFailed(allocErr)
	}
	copy(buf, app2)
	s.inWin.set(sn, pendingIncoming{buffer: buf, alive: true})

	sendAck(s.out.conn, s.out.alloc, s.out.log, s.out.id, sn)
	return nil, false, nil
}

// HandleAck processes an ack for one outgoing sequence.
func (s *Sequenced) HandleAck(payload []byte) error {
	sn, ok := parseAckPkt(payload)
	if !ok {
		return nil
	}
	s.out.handleAck(sn)
	return nil
}

// Poll releases the next in-order payload from the receive window, if its
// gap has closed. Ownership of the returned buffer transfers to the caller.
func (s *Sequenced) Poll() (buf []byte, ok bool) {
	slot := s.inWin.get(s.rxLowest + 1)
	if !slot.alive {
		return nil, false
	}

	s.rxLowest++
	buf = slot.buffer
	*slot = pendingIncoming{}
	return buf, true
}

// Tick retransmits unacked outgoing packets past the resend threshold, and
// disconnects on resend exhaustion.
func (s *Sequenced) Tick() { s.out.tick() }

// Reset releases all retained buffers — both the outgoing window and the
// receive window's held out-of-order payloads — and returns every counter
// to its initial state.
func (s *Sequenced) Reset() {
	s.out.reset()

	for i := 0; i < len(s.inWin.slots); i++ {
		slot := &s.inWin.slots[i]
		if slot.alive {
			s.out.alloc.Release(slot.buffer)
		}
	}
	s.inWin.release()
	s.rxLowest = 0
}
