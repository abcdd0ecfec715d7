package eventloop

import (
	"fmt"
	"strings"
)

// Command is a UI or remote-control request executed by the Loop.
type Command int

const (
	Start Command = iota
	Stop
	Reload
	OpenSettings
	Exit
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Stop:
		return "stop"
	case Reload:
		return "reload"
	case OpenSettings:
		return "settings"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// ParseCommand is the inverse of Command.String.
func ParseCommand(s string) (Command, error) {
	for _, c := range []Command{Start, Stop, Reload, OpenSettings, Exit} {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}
