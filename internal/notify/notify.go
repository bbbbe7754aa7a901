// Package notify fans domain events out to live dashboards and, when
// configured, to a kafka topic. Delivery is best effort.
package notify

import (
	"context"
	"sync"
	"time"
)

const (
	TypeStockUpdate = "stock_update"
	TypeOrderUpdate = "order_update"
	TypeUserStatus  = "user_status_update"
)

type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	User    *Actor      `json:"user,omitempty"`
	At      time.Time   `json:"at"`
}

func NewEvent(typ, action string, data interface{}) Event {
	return Event{Type: typ, Action: action, Data: data, At: time.Now().UTC()}
}

// Notifier must not block the caller on slow sinks.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Actions() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}
