// Package dispatch wires rudp channels to a real net.PacketConn. It is a
// reference integration, not part of the channel layer itself: the channel
// package never imports it, and nothing in rudp depends on its presence.
//
// It ticks every one of a peer's channels and drains Poll on whichever
// channel a datagram arrived for, synchronously on a single goroutine,
// rather than spawning a goroutine per peer the way a socket-facing
// implementation typically would.
package dispatch

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hollowpine/relay/rudp"
)

// UDPConnection adapts a net.PacketConn/net.Addr pair to rudp.Connection,
// tracking a smoothed round-trip estimate and a stable ID for log
// correlation across the lifetime of one peer.
type UDPConnection struct {
	id   uuid.UUID
	pc   net.PacketConn
	addr net.Addr
	log  *slog.Logger

	mu             sync.Mutex
	rttMS          int64
	disconnectedFn func()
}

// NewUDPConnection constructs a Connection bound to one remote peer.
// onDisconnect, if non-nil, is invoked exactly once when a channel gives up
// on a packet after exhausting its resend attempts.
func NewUDPConnection(pc net.PacketConn, addr net.Addr, log *slog.Logger, onDisconnect func()) *UDPConnection {
	if log == nil {
		log = slog.Default()
	}
	return &UDPConnection{
		id:             uuid.New(),
		pc:             pc,
		addr:           addr,
		log:            log.With("peer", addr.String()),
		rttMS:          100,
		disconnectedFn: onDisconnect,
	}
}

// ID is the connection's stable identifier, included in every log line this
// adapter emits so a multi-peer dispatcher's log stream stays attributable.
func (u *UDPConnection) ID() uuid.UUID { return u.id }

func (u *UDPConnection) SendRaw(buf []byte) error {
	_, err := u.pc.WriteTo(buf, u.addr)
	if err != nil {
		u.log.Warn("send failed", "conn", u.id, "err", err)
	}
	return err
}

// AddRoundtripSample folds one measured round trip into a smoothed
// estimate, same shape as a standard RTO estimator's EWMA but without the
// variance term: this module only needs a resend threshold, not a full TCP
// RTO.
func (u *UDPConnection) AddRoundtripSample(ms int64) {
	const weight = 8 // 1/8 new sample, matching a typical smoothing gain
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rttMS += (ms - u.rttMS) / weight
}

func (u *UDPConnection) RoundtripMS() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rttMS
}

func (u *UDPConnection) Disconnect() {
	u.log.Error("disconnecting, resend attempts exhausted", "conn", u.id)
	u.mu.Lock()
	fn := u.disconnectedFn
	u.disconnectedFn = nil
	u.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Dispatcher owns the set of channels for one peer and drives them from one
// goroutine: demultiplexing inbound datagrams by message type and channel
// id, periodic ticking, and draining whatever a Sequenced channel's Poll
// has ready.
type Dispatcher struct {
	conn     *UDPConnection
	channels []rudp.Channel
	log      *slog.Logger
}

// NewDispatcher builds a Dispatcher over channels, indexed by rudp.ChannelID.
func NewDispatcher(conn *UDPConnection, channels []rudp.Channel, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{conn: conn, channels: channels, log: log}
}

// HandleDatagram demultiplexes one received datagram to the channel it
// names, delivering or buffering its payload as that channel dictates.
func (d *Dispatcher) HandleDatagram(datagram []byte) (delivered [][]byte, err error) {
	if len(datagram) < 2 {
		return nil, nil
	}
	msgType := rudp.MessageType(datagram[0])
	chID := rudp.ChannelID(datagram[1])
	if int(chID) >= len(d.channels) {
		return nil, rudp.ErrChannelNumberOutOfRange{Got: chID, Max: rudp.ChannelID(len(d.channels) - 1)}
	}
	ch := d.channels[chID]
	body := datagram[2:]

	switch msgType {
	case rudp.MessageAck:
		if err := ch.HandleAck(body); err != nil {
			d.log.Warn("ack handling failed", "channel", chID, "err", err)
			return nil, err
		}
		return nil, nil
	case rudp.MessageData:
		app, _, err := ch.HandleIncoming(body)
		if err != nil {
			d.log.Warn("incoming handling failed", "channel", chID, "err", err)
			return nil, err
		}
		if app != nil {
			delivered = append(delivered, app)
		}
		for {
			buf, ok := ch.Poll()
			if !ok {
				break
			}
			delivered = append(delivered, buf)
		}
		return delivered, nil
	default:
		return nil, nil
	}
}

// Send frames payload on channel id and transmits it, releasing the buffer
// immediately if the channel handed back ownership.
func (d *Dispatcher) Send(id rudp.ChannelID, payload []byte, alloc rudp.Allocator) error {
	ch := d.channels[id]
	buf, callerMustRelease, err := ch.CreateOutgoing(payload)
	if err != nil {
		return err
	}
	sendErr := d.conn.SendRaw(buf)
	if callerMustRelease {
		alloc.Release(buf)
	}
	return sendErr
}

// Tick drives every channel's resend logic once. A caller should invoke
// this at roughly Config.RecommendedTickInterval.
func (d *Dispatcher) Tick() {
	for _, ch := range d.channels {
		ch.Tick()
	}
}

// Run ticks every channel on interval until stop is closed.
func (d *Dispatcher) Run(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			d.Tick()
		case <-stop:
			return
		}
	}
}
