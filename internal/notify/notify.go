package notify

import (
	"context"
	"sync"
)

// Variant controls how a toast is presented
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a transient user notification
type Toast struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Success builds a default-variant toast
func Success(description string) Toast {
	return Toast{Title: "Success", Description: description, Variant: VariantDefault}
}

// Error builds a destructive toast
func Error(description string) Toast {
	return Toast{Title: "Error", Description: description, Variant: VariantDestructive}
}

// Notifier delivers toasts to the user
type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}

// Func adapts a function to Notifier
type Func func(ctx context.Context, toast Toast)

func (f Func) Notify(ctx context.Context, toast Toast) {
	f(ctx, toast)
}

// Multi fans a toast out to every notifier
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, toast Toast) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, toast)
		}
	}
}

// Discard drops every toast
var Discard Notifier = Func(func(context.Context, Toast) {})

// Recorder keeps every toast it receives
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(_ context.Context, toast Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, toast)
}

// Toasts returns a copy of the received toasts
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Count returns how many toasts of variant were received
func (r *Recorder) Count(variant Variant) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.toasts {
		if t.Variant == variant {
			n++
		}
	}
	return n
}
