package bk178x

import (
	"fmt"
	"slices"
	"strings"
)

// checkPortName rejects names that cannot refer to a serial device.
func checkPortName(name string) error {
	if strings.Contains(name, "..") {
		return fmt.Errorf("invalid port name %q: contains path traversal", name)
	}
	if !isValidPortPattern(name) {
		return fmt.Errorf("port name doesn't match expected pattern: %s", name)
	}
	return nil
}

// isPortAvailable reports whether name is currently enumerated by the OS.
func isPortAvailable(name string) (bool, error) {
	if err := checkPortName(name); err != nil {
		return false, err
	}
	ports, err := AvailablePorts()
	if err != nil {
		return false, err
	}
	return slices.Contains(ports, name), nil
}

// isValidPortPattern accepts COM1..COM999 and /dev/tty*, /dev/cu*.
func isValidPortPattern(name string) bool {
	if rest, ok := strings.CutPrefix(name, "COM"); ok {
		return len(rest) >= 1 && len(rest) <= 3 && strings.Trim(rest, "0123456789") == ""
	}
	return strings.HasPrefix(name, "/dev/tty") || strings.HasPrefix(name, "/dev/cu")
}
