package keys

import (
	"fmt"
	"runtime"
	"time"
)

// Key names as understood by robotgo.
const (
	KeyCmd       = "cmd"
	KeyLeftCtrl  = "lctrl"
	KeyC         = "c"
	KeyBackspace = "backspace"
)

type Direction int

const (
	Press Direction = iota
	Release
	Click
)

func (d Direction) String() string {
	switch d {
	case Press:
		return "press"
	case Release:
		return "release"
	case Click:
		return "click"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Stroke is a single synthesized key action.
type Stroke struct {
	Key string
	Dir Direction
}

// CopySequence returns the "copy selection" strokes for goos.
// macOS uses Cmd and releases it first in case the hotkey left it held.
func CopySequence(goos string) []Stroke {
	if goos == "darwin" {
		return []Stroke{
			{KeyCmd, Release},
			{KeyCmd, Press},
			{KeyC, Click},
			{KeyCmd, Release},
		}
	}
	return []Stroke{
		{KeyLeftCtrl, Press},
		{KeyC, Click},
		{KeyLeftCtrl, Release},
	}
}

func DeleteSequence() []Stroke {
	return []Stroke{{KeyBackspace, Click}}
}

// Injector sends key events to the OS input stream.
type Injector interface {
	Toggle(key string, down bool) error
	Tap(key string) error
}

// Simulator plays stroke sequences through an Injector.
type Simulator struct {
	Injector Injector
	GOOS     string
	// Delay is slept between strokes so the focused app sees the modifier.
	Delay time.Duration
}

// NewSystemSimulator returns a Simulator driving the real keyboard.
func NewSystemSimulator(delay time.Duration) *Simulator {
	return &Simulator{
		Injector: RobotInjector{},
		GOOS:     runtime.GOOS,
		Delay:    delay,
	}
}

// Copy sends the platform copy shortcut.
func (s *Simulator) Copy() error {
	return s.play(CopySequence(s.GOOS))
}

// Delete sends a single backspace.
func (s *Simulator) Delete() error {
	return s.play(DeleteSequence())
}

func (s *Simulator) play(seq []Stroke) error {
	for i, st := range seq {
		if i > 0 && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		var err error
		switch st.Dir {
		case Press:
			err = s.Injector.Toggle(st.Key, true)
		case Release:
			err = s.Injector.Toggle(st.Key, false)
		case Click:
			err = s.Injector.Tap(st.Key)
		default:
			err = fmt.Errorf("unknown direction %v", st.Dir)
		}
		if err != nil {
			return fmt.Errorf("keys: %s %s: %w", st.Dir, st.Key, err)
		}
	}
	return nil
}
