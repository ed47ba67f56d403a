package keys

import "github.com/go-vgo/robotgo"

// RobotInjector implements Injector using robotgo.
type RobotInjector struct{}

func (RobotInjector) Toggle(key string, down bool) error {
	if down {
		return robotgo.KeyToggle(key, "down")
	}
	return robotgo.KeyToggle(key, "up")
}

func (RobotInjector) Tap(key string) error {
	return robotgo.KeyTap(key)
}
