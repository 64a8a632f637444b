package realtime

import (
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub(4)

	id1, ch1 := hub.Subscribe()
	id2, ch2 := hub.Subscribe()
	defer hub.Unsubscribe(id1)
	defer hub.Unsubscribe(id2)

	hub.Publish(Update{Lane: "text", State: "loading"})

	for _, ch := range []<-chan Update{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Lane != "text" || got.State != "loading" {
				t.Errorf("unexpected update: %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("listener did not receive update")
		}
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub(1)
	id, ch := hub.Subscribe()
	defer hub.Unsubscribe(id)

	hub.Publish(Update{State: "loading"})
	hub.Publish(Update{State: "succeeded"}) // dropped: buffer full

	first := <-ch
	if first.State != "loading" {
		t.Errorf("first update = %q, want loading", first.State)
	}
	select {
	case extra := <-ch:
		t.Errorf("expected second update to be dropped, got %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(1)
	id, ch := hub.Subscribe()

	hub.Unsubscribe(id)
	if _, open := <-ch; open {
		t.Error("channel should be closed after unsubscribe")
	}
	if hub.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", hub.ListenerCount())
	}

	// Publishing with no listeners must not panic.
	hub.Publish(Update{State: "idle"})
}
