package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Station-Manager/bk178x"
)

// commandHelp lists the interactive commands.
const commandHelp = `commands:
  remote on|off      select remote or front-panel control
  output on|off      switch the output
  voltage <mV>       set the voltage setpoint in millivolts
  current <mA>       set the current limit in milliamps
  localkey on|off    enable or disable the local key`

// runLine parses one "name arg" command line and executes it on c.
func runLine(ctx context.Context, c bk178x.Client, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return fmt.Errorf("expected \"<command> <value>\", got %q", line)
	}
	return runCommand(ctx, c, fields[0], fields[1])
}

func runCommand(ctx context.Context, c bk178x.Client, name, arg string) error {
	switch strings.ToLower(name) {
	case "remote":
		v, err := parseSwitch(arg)
		if err != nil {
			return err
		}
		return c.SetRemoteMode(ctx, v)
	case "output":
		v, err := parseSwitch(arg)
		if err != nil {
			return err
		}
		return c.SetOutput(ctx, v)
	case "voltage":
		mv, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("voltage: %w", err)
		}
		return c.SetVoltage(ctx, uint32(mv))
	case "current":
		ma, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return fmt.Errorf("current: %w", err)
		}
		return c.SetCurrent(ctx, uint16(ma))
	case "localkey":
		v, err := parseSwitch(arg)
		if err != nil {
			return err
		}
		return c.EnableLocalKey(ctx, v)
	}
	return fmt.Errorf("unknown command %q", name)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
