package rudp

// dataPayload builds the bytes HandleIncoming expects: the 2-byte
// little-endian sequence number followed by the application payload, with
// the MessageType and channel-id bytes already stripped by the (external)
// dispatcher before it calls HandleIncoming.
func dataPayload(sn Seq, app string) []byte {
	buf := make([]byte, 2+len(app))
	le.PutUint16(buf[0:2], uint16(sn))
	copy(buf[2:], app)
	return buf
}

// ackPayload builds the bytes HandleAck expects: the 2-byte little-endian
// acked sequence number.
func ackPayload(sn Seq) []byte {
	buf := make([]byte, 2)
	le.PutUint16(buf, uint16(sn))
	return buf
}
