package notification

import (
	"log"
	"sync"

	"github.com/gen2brain/beeep"
)

// Notifier is a fire-and-forget desktop notification sink.
type Notifier interface {
	Notify(title, body string)
}

// Desktop shows OS toasts through beeep. Failures are logged and dropped.
type Desktop struct {
	AppName string
}

func NewDesktop(appName string) Desktop {
	if appName != "" {
		beeep.AppName = appName
	}
	return Desktop{AppName: appName}
}

func (d Desktop) Notify(title, body string) {
	log.Printf("notify: %s | %s", title, body)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notify: panic: %v", r)
			}
		}()
		if err := beeep.Notify(title, body, ""); err != nil {
			log.Printf("Failed to show notification: %v", err)
		}
	}()
}

// Func adapts a plain function.
type Func func(title, body string)

func (f Func) Notify(title, body string) { f(title, body) }

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(string, string) {}

// Message is one recorded notification.
type Message struct {
	Title string
	Body  string
}

// Recorder keeps every notification in order.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Notify(title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Title: title, Body: body})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Titles is a convenience for assertions.
func (r *Recorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Title
	}
	return out
}
