package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("parking.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindCheckedIn, Timestamp: time.Now(), Payload: "ABC123"})

	select {
	case evt := <-ch:
		if evt.Kind != KindCheckedIn {
			t.Errorf("got kind %q, want %s", evt.Kind, KindCheckedIn)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("worker.", 10)
	defer unsub()

	b.Emit(KindCheckedOut, nil)
	b.Emit(KindWorkerStateChanged, nil)

	select {
	case evt := <-ch:
		if evt.Kind != KindWorkerStateChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, KindWorkerStateChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitStampsTime(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 1)
	defer unsub()

	before := time.Now()
	b.Emit(KindCheckedIn, nil)
	evt := <-ch
	if evt.Timestamp.Before(before) {
		t.Errorf("timestamp %v is before emit time %v", evt.Timestamp, before)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("parking.", 10)
	unsub()

	b.Emit(KindCheckedIn, nil)

	select {
	case evt, ok := <-ch:
		if ok {
			t.Errorf("received event after unsubscribe: %v", evt)
		}
	case <-time.After(50 * time.Millisecond):
		t.Error("channel not closed by unsubscribe")
	}
	unsub()
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("parking.", 1)
	defer unsub()

	b.Emit(KindCheckedIn, nil)
	b.Emit(KindCheckedOut, nil)

	evt := <-ch
	if evt.Kind != KindCheckedIn {
		t.Errorf("got %q, want %s", evt.Kind, KindCheckedIn)
	}
}

func TestNilBus(t *testing.T) {
	var b *Bus
	b.Emit(KindCheckedIn, nil)

	ch, unsub := b.Subscribe("parking.", 1)
	if _, ok := <-ch; ok {
		t.Error("nil bus subscription delivered an event")
	}
	unsub()
	unsub()
}
