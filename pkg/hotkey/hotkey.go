package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vcaesar/keycode"
)

// ErrDuplicate is returned when a combination is bound twice.
var ErrDuplicate = errors.New("hotkey: combination already registered")

var modifiers = map[string]string{
	"alt":     "alt",
	"option":  "alt",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"cmd":     "cmd",
	"command": "cmd",
	"meta":    "cmd",
	"super":   "cmd",
	"win":     "cmd",
}

// ParseCombo parses a combo like "Alt+Ctrl+C" into gohook key names,
// modifiers sorted first and the key last.
func ParseCombo(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("hotkey: empty combo")
	}
	parts := strings.Split(strings.ToLower(s), "+")
	key := strings.TrimSpace(parts[len(parts)-1])
	if _, ok := modifiers[key]; ok {
		return nil, fmt.Errorf("hotkey: %q has no key after its modifiers", s)
	}
	if _, ok := keycode.Keycode[key]; !ok {
		return nil, fmt.Errorf("hotkey: unsupported key %q in %q", key, s)
	}

	seen := map[string]bool{}
	var mods []string
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		m, ok := modifiers[p]
		if !ok {
			return nil, fmt.Errorf("hotkey: unknown modifier %q in %q", p, s)
		}
		if !seen[m] {
			seen[m] = true
			mods = append(mods, m)
		}
	}
	if len(mods) == 0 {
		return nil, fmt.Errorf("hotkey: %q needs at least one modifier", s)
	}
	sort.Strings(mods)
	return append(mods, key), nil
}

// Hook is the global key hook the listener registers combinations with.
type Hook interface {
	Register(keys []string, cb func())
	// Run blocks until ctx is done.
	Run(ctx context.Context) error
}

// Listener binds combinations to callbacks on a Hook.
type Listener struct {
	hook  Hook
	bound map[string]bool
	log   *slog.Logger
}

func NewListener(h Hook, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{hook: h, bound: map[string]bool{}, log: logger}
}

// Bind registers fire for combo. Binding the same combination twice,
// in any modifier order, fails with ErrDuplicate. Native hotkey APIs
// reject such a registration themselves; the gohook-based hook does not,
// so the check lives here instead.
func (l *Listener) Bind(combo string, fire func()) error {
	keys, err := ParseCombo(combo)
	if err != nil {
		return err
	}
	id := strings.Join(keys, "+")
	if l.bound[id] {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	l.bound[id] = true
	l.hook.Register(keys, fire)
	l.log.Info("hotkey bound", "combo", id)
	return nil
}

// Bound reports the number of registered combinations.
func (l *Listener) Bound() int {
	return len(l.bound)
}

// Run listens until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	if len(l.bound) == 0 {
		l.log.Warn("no hotkeys bound")
		<-ctx.Done()
		return nil
	}
	return l.hook.Run(ctx)
}
