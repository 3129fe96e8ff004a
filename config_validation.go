package bk178x

import (
	"fmt"
)

// ValidateConfig validates serial port configuration parameters
func ValidateConfig(cfg *Config) error {
	// Validate port name
	if cfg.PortName == "" {
		return fmt.Errorf("port name cannot be empty")
	}
	if err := checkPortName(cfg.PortName); err != nil {
		return err
	}

	// Validate baud rate
	if !isValidBaudRate(cfg.BaudRate) {
		return fmt.Errorf("invalid baud rate %d, must be one of: %v", cfg.BaudRate, validBaudRates)
	}

	// Validate data bits
	if !DataBits(cfg.DataBits).Valid() {
		return fmt.Errorf("data bits must be 5-8, got: %d", cfg.DataBits)
	}

	if _, err := ParseParity(cfg.Parity); err != nil {
		return err
	}
	if _, err := StopBitsFromFloat(cfg.StopBits); err != nil {
		return err
	}

	// Validate timeouts
	if cfg.ReplyTimeout < 0 {
		return fmt.Errorf("reply timeout cannot be negative: %v", cfg.ReplyTimeout)
	}
	if cfg.CommandGap < 0 {
		return fmt.Errorf("command gap cannot be negative: %v", cfg.CommandGap)
	}

	return nil
}

func isValidBaudRate(rate int) bool {
	for _, v := range validBaudRates {
		if rate == v.Int() {
			return true
		}
	}
	return false
}
