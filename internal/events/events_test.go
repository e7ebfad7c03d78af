package events_test

import (
	"errors"
	"testing"

	"mqlite/internal/events"
)

func TestSubscribeReceivesEvents(t *testing.T) {
	bus := events.NewBus()
	var got []events.Kind
	cancel := bus.Subscribe(func(ev events.Event) {
		got = append(got, ev.Kind)
	})

	bus.Emit(events.Event{Kind: events.KindListening})
	bus.Emit(events.Event{Kind: events.KindError, Err: errors.New("boom")})
	cancel()
	bus.Emit(events.Event{Kind: events.KindClosed})

	if len(got) != 2 || got[0] != events.KindListening || got[1] != events.KindError {
		t.Fatalf("unexpected events: %v", got)
	}
	if bus.Subscribers() != 0 {
		t.Fatalf("expected no subscribers after cancel, got %d", bus.Subscribers())
	}
}

func TestEmitStampsTime(t *testing.T) {
	bus := events.NewBus()
	var ev events.Event
	bus.Subscribe(func(e events.Event) { ev = e })
	bus.Emit(events.Event{Kind: events.KindPublish, UUID: "abc"})
	if ev.Time.IsZero() {
		t.Fatal("expected emit to stamp the event time")
	}
	if ev.UUID != "abc" {
		t.Fatalf("unexpected uuid %q", ev.UUID)
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	bus := events.NewBus()
	ch, cancel := bus.Channel(1)
	defer cancel()

	bus.Emit(events.Event{Kind: events.KindMessage})
	bus.Emit(events.Event{Kind: events.KindMessage})

	if ev := <-ch; ev.Kind != events.KindMessage {
		t.Fatalf("unexpected kind %q", ev.Kind)
	}
	if bus.Dropped() != 1 {
		t.Fatalf("expected one dropped event, got %d", bus.Dropped())
	}
}

func TestChannelCancelClosesChannel(t *testing.T) {
	bus := events.NewBus()
	ch, cancel := bus.Channel(4)
	cancel()
	cancel()
	bus.Emit(events.Event{Kind: events.KindClose})
	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *events.Bus
	bus.Emit(events.Event{Kind: events.KindClosed})
	bus.Subscribe(func(events.Event) {})()
	if bus.Subscribers() != 0 {
		t.Fatal("nil bus should report zero subscribers")
	}
}
