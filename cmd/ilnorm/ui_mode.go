package main

import (
	"fmt"
	"os"
	"strings"
)

// toggle is the auto|on|off setting shared by --ui and --color.
type toggle string

const (
	toggleAuto toggle = "auto"
	toggleOn   toggle = "on"
	toggleOff  toggle = "off"
)

func readToggle(flag, value string) (toggle, error) {
	switch t := toggle(strings.TrimSpace(strings.ToLower(value))); t {
	case "":
		return toggleAuto, nil
	case toggleAuto, toggleOn, toggleOff:
		return t, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// enabled resolves auto with detect.
func (t toggle) enabled(detect func() bool) bool {
	switch t {
	case toggleOn:
		return true
	case toggleOff:
		return false
	default:
		return detect()
	}
}

func stdoutIsTerminal() bool { return isTerminal(os.Stdout) }
