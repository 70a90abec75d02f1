/*
Package rudp implements the channel layer of a UDP reliability transport:
the per-channel state machines that sit between a raw datagram socket and
an application, adding ordering and delivery guarantees on top of
unreliable, out-of-order, possibly duplicated packet delivery.

Three channel variants are provided: Unreliable (best-effort,
duplicate-suppressed), Reliable (guaranteed delivery, unordered), and
Sequenced (guaranteed delivery, strict order). All three share the same
wire framing. Reliable and Sequenced also share the ack and retransmission
protocol and differ only in their receive-side policy; Unreliable sends no
acks and never retransmits.

A channel is not safe for concurrent use. It is meant to be driven by a
single dispatch loop per connection: HandleIncoming, HandleAck,
CreateOutgoing, Poll, Tick and Reset must all be called serially. Socket
I/O, connection establishment, heartbeats, fragmentation and encryption are
not this package's concern — they belong to the Connection collaborator
the caller supplies.
*/
package rudp

import "encoding/binary"

var le = binary.LittleEndian

// ChannelID identifies one of a connection's independent channels.
type ChannelID uint8
