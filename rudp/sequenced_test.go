package rudp

import "testing"

// TestSequencedOutOfOrderArrival covers arrivals 2, 3, 1, 4
// (peer sent 1,2,3,4 carrying A,B,C,D) must surface A, B, C, D in that
// order via the combination of HandleIncoming's direct in-order return and
// Poll draining what was held.
func TestSequencedOutOfOrderArrival(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewSequenced(0, newTestConfig(), conn, alloc, clock, nil)

	// seq 2 arrives first: held, nothing delivered, poll yields nothing.
	app, hasMore, err := ch.HandleIncoming(dataPayload(2, "B"))
	if err != nil {
		t.Fatal(err)
	}
	if app != nil || hasMore {
		t.Fatalf("seq 2 (future): app=%v hasMore=%v, want nil,false", app, hasMore)
	}
	if _, ok := ch.Poll(); ok {
		t.Fatal("poll yielded something before the gap at seq 1 closed")
	}

	// seq 3 arrives: also held.
	if app, _, err := ch.HandleIncoming(dataPayload(3, "C")); err != nil || app != nil {
		t.Fatalf("seq 3 (future): app=%v err=%v", app, err)
	}
	if _, ok := ch.Poll(); ok {
		t.Fatal("poll yielded something with seq 1 still missing")
	}

	// seq 1 arrives: closes the gap, delivered directly, hints more is
	// ready because seq 2 is already buffered.
	app, hasMore, err = ch.HandleIncoming(dataPayload(1, "A"))
	if err != nil {
		t.Fatal(err)
	}
	if string(app) != "A" {
		t.Fatalf("seq 1 delivery = %q, want A", app)
	}
	if !hasMore {
		t.Fatal("expected hasMore after seq 1, since seq 2 is already buffered")
	}

	buf, ok := ch.Poll()
	if !ok || string(buf) != "B" {
		t.Fatalf("first poll = (%q, %v), want (B, true)", buf, ok)
	}
	buf, ok = ch.Poll()
	if !ok || string(buf) != "C" {
		t.Fatalf("second poll = (%q, %v), want (C, true)", buf, ok)
	}
	if _, ok := ch.Poll(); ok {
		t.Fatal("third poll yielded something, want nothing until seq 4 arrives")
	}

	// seq 4 arrives: in order, delivered directly.
	app, hasMore, err = ch.HandleIncoming(dataPayload(4, "D"))
	if err != nil {
		t.Fatal(err)
	}
	if string(app) != "D" || hasMore {
		t.Fatalf("seq 4 delivery = (%q, %v), want (D, false)", app, hasMore)
	}

	gotAcks := conn.acksSent()
	wantAcks := []Seq{2, 3, 1, 4}
	if len(gotAcks) != len(wantAcks) {
		t.Fatalf("got %d acks, want %d", len(gotAcks), len(wantAcks))
	}
	for i, w := range wantAcks {
		if gotAcks[i] != w {
			t.Errorf("ack %d = %d, want %d", i, gotAcks[i], w)
		}
	}
}

// TestSequencedDuplicateSuppression verifies a duplicate of an already-buffered future sequence is
// dropped, still acked.
func TestSequencedDuplicateSuppression(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewSequenced(0, newTestConfig(), conn, alloc, clock, nil)

	if _, _, err := ch.HandleIncoming(dataPayload(2, "B")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ch.HandleIncoming(dataPayload(2, "B")); err != nil {
		t.Fatal(err)
	}

	if got := len(conn.acksSent()); got != 2 {
		t.Fatalf("got %d acks, want 2", got)
	}
	if alloc.outstandingCount() != 1 {
		t.Fatalf("outstanding buffers = %d, want 1 (duplicate must not allocate a second)",
			alloc.outstandingCount())
	}
}

// TestSequencedInOrderDelivery verifies that, across a fully in-order
// stream (the common case, not just the reordered one), HandleIncoming
// returns each payload directly, in send order, with no gaps.
func TestSequencedInOrderDelivery(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewSequenced(0, newTestConfig(), conn, alloc, clock, nil)

	for sn, data := range []string{"A", "B", "C"} {
		app, _, err := ch.HandleIncoming(dataPayload(Seq(sn+1), data))
		if err != nil {
			t.Fatal(err)
		}
		if string(app) != data {
			t.Fatalf("seq %d delivered %q, want %q", sn+1, app, data)
		}
	}
}

// TestSequencedResetReleasesHeldBuffers verifies Reset releases buffers
// held in the receive-side out-of-order window, not just the send side.
func TestSequencedResetReleasesHeldBuffers(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewSequenced(0, newTestConfig(), conn, alloc, clock, nil)

	if _, _, err := ch.HandleIncoming(dataPayload(2, "B")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ch.HandleIncoming(dataPayload(3, "C")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ch.CreateOutgoing([]byte("out")); err != nil {
		t.Fatal(err)
	}

	if alloc.outstandingCount() == 0 {
		t.Fatal("expected outstanding buffers before reset")
	}

	ch.Reset()

	if alloc.outstandingCount() != 0 {
		t.Fatalf("outstanding buffers after reset = %d, want 0", alloc.outstandingCount())
	}
	if ch.rxLowest != 0 || ch.out.txLast != 0 {
		t.Fatalf("counters after reset: rxLowest=%d txLast=%d, want 0,0", ch.rxLowest, ch.out.txLast)
	}
}
