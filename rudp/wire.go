package rudp

// MessageType is the first byte of every channel-framed datagram.
type MessageType uint8

const (
	// MessageData carries an application payload, with a sequence number
	// attached so the receiver can order, dedupe and ack it.
	MessageData MessageType = iota
	// MessageAck acknowledges receipt of exactly one sequence number.
	MessageAck
)

const (
	// dataHeaderSize is MessageData + channel id + sequence.
	dataHeaderSize = 1 + 1 + 2
	// ackPktSize is MessageAck + channel id + acked sequence.
	ackPktSize = 1 + 1 + 2
)

// putDataHeader writes the 4-byte data header into buf[:4].
func putDataHeader(buf []byte, ch ChannelID, sn Seq) {
	buf[0] = uint8(MessageData)
	buf[1] = uint8(ch)
	le.PutUint16(buf[2:4], uint16(sn))
}

// parseDataHeader reads the sequence number out of a data packet payload
// (the MessageType/channel-id bytes are assumed already stripped by the
// caller's outer framing).
func parseDataHeader(payload []byte) (sn Seq, ok bool) {
	if len(payload) < 2 {
		return 0, false
	}
	return Seq(le.Uint16(payload[0:2])), true
}

// putAckPkt writes a complete 4-byte ack datagram into buf[:4].
func putAckPkt(buf []byte, ch ChannelID, sn Seq) {
	buf[0] = uint8(MessageAck)
	buf[1] = uint8(ch)
	le.PutUint16(buf[2:4], uint16(sn))
}

// parseAckPkt reads the acked sequence number out of an ack payload (bytes
// after the MessageType/channel-id, per handle_ack's input contract).
func parseAckPkt(payload []byte) (sn Seq, ok bool) {
	if len(payload) < 2 {
		return 0, false
	}
	return Seq(le.Uint16(payload[0:2])), true
}
