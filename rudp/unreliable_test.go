package rudp

import "testing"

func TestUnreliableDeliversFutureImmediately(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewUnreliable(0, newTestConfig(), conn, alloc, clock, nil)

	app, hasMore, err := ch.HandleIncoming(dataPayload(5, "X"))
	if err != nil {
		t.Fatal(err)
	}
	if string(app) != "X" || hasMore {
		t.Fatalf("got (%q, %v), want (X, false)", app, hasMore)
	}
	if got := len(conn.acksSent()); got != 0 {
		t.Fatalf("unreliable channel sent %d acks, want 0", got)
	}
}

func TestUnreliableDropsStaleAndDuplicate(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewUnreliable(0, newTestConfig(), conn, alloc, clock, nil)

	if _, _, err := ch.HandleIncoming(dataPayload(1, "A")); err != nil {
		t.Fatal(err)
	}
	// seq 1 is now rxLowest; a resend of it must be dropped.
	app, _, err := ch.HandleIncoming(dataPayload(1, "A"))
	if err != nil {
		t.Fatal(err)
	}
	if app != nil {
		t.Fatal("stale seq 1 delivered again")
	}

	// A future seq delivered once, then duplicated, must drop the dup.
	if _, _, err := ch.HandleIncoming(dataPayload(5, "E")); err != nil {
		t.Fatal(err)
	}
	app, _, err = ch.HandleIncoming(dataPayload(5, "E"))
	if err != nil {
		t.Fatal(err)
	}
	if app != nil {
		t.Fatal("duplicate future seq 5 delivered again")
	}
}

func TestUnreliableAdvancesWatermarkThroughAckedFutures(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewUnreliable(0, newTestConfig(), conn, alloc, clock, nil)

	// seq 2 and 3 arrive out of order before seq 1.
	if _, _, err := ch.HandleIncoming(dataPayload(2, "B")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ch.HandleIncoming(dataPayload(3, "C")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ch.HandleIncoming(dataPayload(1, "A")); err != nil {
		t.Fatal(err)
	}

	if ch.rxLowest != 3 {
		t.Fatalf("rxLowest = %d, want 3 (seq 1 should drain the already-seen 2 and 3)", ch.rxLowest)
	}
}

func TestUnreliableCreateOutgoingOwnershipToCaller(t *testing.T) {
	conn := &fakeConnection{}
	alloc := newFakeAllocator(t)
	clock := newFakeClock()
	ch := NewUnreliable(0, newTestConfig(), conn, alloc, clock, nil)

	buf, callerMustRelease, err := ch.CreateOutgoing([]byte("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if !callerMustRelease {
		t.Fatal("Unreliable must hand buffer ownership to the caller")
	}
	if alloc.outstandingCount() != 1 {
		t.Fatalf("outstanding = %d, want 1 before caller releases", alloc.outstandingCount())
	}
	alloc.Release(buf)
	if alloc.outstandingCount() != 0 {
		t.Fatalf("outstanding = %d, want 0 after caller releases", alloc.outstandingCount())
	}
}
