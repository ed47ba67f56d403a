package hotkey

import (
	"context"

	hook "github.com/robotn/gohook"
)

// SystemHook implements Hook using the process-wide gohook listener.
type SystemHook struct{}

func (SystemHook) Register(keys []string, cb func()) {
	hook.Register(hook.KeyDown, keys, func(hook.Event) {
		cb()
	})
}

func (SystemHook) Run(ctx context.Context) error {
	evChan := hook.Start()
	go func() {
		<-ctx.Done()
		hook.End()
	}()
	<-hook.Process(evChan)
	return nil
}
