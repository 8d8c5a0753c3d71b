package game

import (
	"sync"
	"time"

	"github.com/lox/headsup/poker"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeHandStart   EventType = "hand_start"
	EventTypeAction      EventType = "action"
	EventTypeStageChange EventType = "stage_change"
	EventTypeHandEnd     EventType = "hand_end"
	EventTypeGameOver    EventType = "game_over"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent is anything published by the engine. Every event carries the
// snapshot taken right after the change it describes.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	State() Snapshot
}

type baseEvent struct {
	snapshot  Snapshot
	timestamp time.Time
}

func (e baseEvent) Timestamp() time.Time { return e.timestamp }
func (e baseEvent) State() Snapshot      { return e.snapshot }

// HandStartEvent is published once blinds are posted and cards dealt
type HandStartEvent struct {
	baseEvent
	HandNumber      int
	SmallBlindActor Actor
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }

// ActionEvent is published when either party acts
type ActionEvent struct {
	baseEvent
	Actor  Actor
	Action Action
	// Amount is the chips the action put into the pot.
	Amount int
	// Refund is any uncalled excess returned by the action.
	Refund int
}

func (e ActionEvent) EventType() EventType { return EventTypeAction }

// StageChangeEvent is published when a new street is dealt
type StageChangeEvent struct {
	baseEvent
	Stage     Stage
	Community []poker.Card
}

func (e StageChangeEvent) EventType() EventType { return EventTypeStageChange }

// HandEndEvent is published when the pot has been awarded
type HandEndEvent struct {
	baseEvent
	Result HandResult
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }

// GameOverEvent is published when a stack reaches zero
type GameOverEvent struct {
	baseEvent
	Winner Actor
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }

// EventSubscriber can subscribe to game events. OnEvent is called on the
// engine's goroutine and must not block.
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to EventSubscriber.
type SubscriberFunc func(GameEvent)

func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
}

type subscription struct {
	id         int
	subscriber EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe adds a subscriber to receive events and returns a function that
// removes it again.
func (bus *EventBus) Subscribe(subscriber EventSubscriber) (unsubscribe func()) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.nextID++
	id := bus.nextID
	bus.subscribers = append(bus.subscribers, subscription{id: id, subscriber: subscriber})
	return func() { bus.unsubscribe(id) }
}

func (bus *EventBus) unsubscribe(id int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub.id == id {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *EventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.subscriber.OnEvent(event)
	}
}
