package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrSealed is returned by Listen once the registry has been frozen.
var ErrSealed = errors.New("relay: registry is sealed")

// Event is a named tag with an optional opaque payload.
type Event struct {
	Tag     string
	Payload string
}

// Handler reacts to a single event delivery.
type Handler func(Event) error

// Relay dispatches events to the handlers registered for their tag.
// Handlers run synchronously on the goroutine that calls Emit.
type Relay struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	sealed   bool
	log      *slog.Logger
}

func New(logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		handlers: make(map[string][]Handler),
		log:      logger,
	}
}

// Listen appends h to the handlers of tag.
func (r *Relay) Listen(tag string, h Handler) error {
	if tag == "" {
		return errors.New("relay: empty event tag")
	}
	if h == nil {
		return fmt.Errorf("relay: nil handler for %q", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: cannot listen on %q", ErrSealed, tag)
	}
	r.handlers[tag] = append(r.handlers[tag], h)
	return nil
}

// Seal freezes the registry. Emit keeps working.
func (r *Relay) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Listeners reports how many handlers are registered for tag.
func (r *Relay) Listeners(tag string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[tag])
}

// Emit delivers the event to every handler of tag in registration order.
// A failing handler does not prevent later handlers from running; all
// failures are returned joined.
func (r *Relay) Emit(tag, payload string) error {
	r.mu.RLock()
	hs := r.handlers[tag]
	r.mu.RUnlock()

	if len(hs) == 0 {
		r.log.Debug("event dropped, no listeners", "tag", tag)
		return nil
	}

	ev := Event{Tag: tag, Payload: payload}
	var errs []error
	for _, h := range hs {
		if err := deliver(h, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tag, err))
		}
	}
	return errors.Join(errs...)
}

func deliver(h Handler, ev Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return h(ev)
}
