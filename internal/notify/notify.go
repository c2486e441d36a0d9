// Package notify is the toast contract: fire-and-forget user-facing notices
// published to whoever is rendering them.
package notify

import "sync"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notice struct {
	Kind    Kind
	Message string
}

type Notifier interface {
	Notify(kind Kind, message string)
}

// Bus is an in-process Notifier with subscribers. Publishing never blocks;
// a subscriber that falls behind loses notices rather than stalling the UI.
type Bus struct {
	mu   sync.Mutex
	subs []chan Notice
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Notify(kind Kind, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- Notice{Kind: kind, Message: message}:
		default:
		}
	}
}

// Subscribe returns a buffered channel of notices and a cancel func that
// removes the subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Notice, func()) {
	ch := make(chan Notice, 16)

	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}
