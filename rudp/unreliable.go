package rudp

// Unreliable is a best-effort channel: no acks, no retransmission, no
// ordering guarantee. It drops sequences at or behind its receive watermark,
// and suppresses duplicates of sequences ahead of it through a W-slot window
// indexed by sequence modulo W.
type Unreliable struct {
	id    ChannelID
	cfg   Config
	conn  Connection
	alloc Allocator
	clock Clock
	log   Logger

	txLast   Seq
	rxLowest Seq
	acked    *window[bool]
}

// NewUnreliable constructs an Unreliable channel bound to conn.
func NewUnreliable(id ChannelID, cfg Config, conn Connection, alloc Allocator, clock Clock, log Logger) *Unreliable {
	if log == nil {
		log = nopLogger{}
	}
	return &Unreliable{
		id:    id,
		cfg:   cfg,
		conn:  conn,
		alloc: alloc,
		clock: clock,
		log:   log,
		acked: newWindow[bool](cfg.WindowSize),
	}
}

// CreateOutgoing assigns the next sequence and frames payload. Ownership of
// the buffer passes to the caller, who must Release it after transmission —
// this channel retains nothing.
func (u *Unreliable) CreateOutgoing(payload []byte) (buf []byte, callerMustRelease bool, err error) {
	u.txLast++
	sn := u.txLast

	buf, err = u.alloc.Allocate(dataHeaderSize + len(payload))
	if err != nil {
		return nil, false, errAllocationFailed(err)
	}
	putDataHeader(buf, u.id, sn)
	copy(buf[dataHeaderSize:], payload)

	return buf, true, nil
}

// HandleIncoming processes a received data payload. It never buffers for
// ordering: future sequences are delivered immediately, and hasMore is
// always false.
func (u *Unreliable) HandleIncoming(payload []byte) (app []byte, hasMore bool, err error) {
	sn, ok := parseDataHeader(payload)
	if !ok {
		return nil, false, nil // malformed, too short to read a sequence
	}
	app = payload[2:]

	if Distance(sn, u.rxLowest) <= 0 || *u.acked.get(sn) {
		return nil, false, nil // stale or duplicate
	}

	if sn == u.rxLowest+1 {
		u.rxLowest = sn
		for *u.acked.get(u.rxLowest + 1) {
			u.acked.set(u.rxLowest+1, false)
			u.rxLowest++
		}
		return app, false, nil
	}

	// Future: record it so a later duplicate is dropped, but deliver now —
	// Unreliable does not hold payloads for ordering.
	u.acked.set(sn, true)
	return app, false, nil
}

// HandleAck is a no-op: Unreliable never sends or expects acks.
func (u *Unreliable) HandleAck(payload []byte) error { return nil }

// Poll always returns nothing: Unreliable never buffers for delivery.
func (u *Unreliable) Poll() (buf []byte, ok bool) { return nil, false }

// Tick is a no-op: Unreliable never retransmits.
func (u *Unreliable) Tick() {}

// Reset returns sequence counters to zero. There is nothing to release:
// Unreliable retains no buffers.
func (u *Unreliable) Reset() {
	u.txLast = 0
	u.rxLowest = 0
	u.acked.release()
}
