package bk178x

import (
	"fmt"
	"os"
	"time"

	gobug "go.bug.st/serial"
	"gopkg.in/yaml.v3"
)

// DefaultReplyTimeout bounds the wait for a complete status reply.
const DefaultReplyTimeout = 1000 * time.Millisecond

// Config holds configuration for opening a supply on a serial port.
type Config struct {
	// PortName is the path to the serial device, e.g. /dev/ttyUSB0.
	PortName string `yaml:"port"`

	BaudRate int     `yaml:"baud_rate"`
	DataBits int     `yaml:"data_bits"`
	Parity   string  `yaml:"parity"`
	StopBits float64 `yaml:"stop_bits"`

	// Address is the device address written to byte 1 of every frame.
	// Zero is the default, unaddressed device.
	Address uint8 `yaml:"address"`

	// ReplyTimeout caps the wait for one complete reply frame.
	ReplyTimeout time.Duration `yaml:"reply_timeout"`

	// CommandGap is the minimum spacing between two commands. Zero disables
	// pacing.
	CommandGap time.Duration `yaml:"command_gap"`

	DTR bool `yaml:"dtr"`
	RTS bool `yaml:"rts"`
}

// withDefaults returns a copy of cfg with zero fields set to the supply's
// factory settings (4800 8N1, one second reply timeout).
func (cfg Config) withDefaults() Config {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate.Int()
	}
	if cfg.DataBits == 0 {
		cfg.DataBits = DataBits8.Int()
	}
	if cfg.StopBits == 0 {
		cfg.StopBits = 1
	}
	if cfg.ReplyTimeout == 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	return cfg
}

// mode converts an already validated configuration into a serial mode.
func (cfg Config) mode() (*gobug.Mode, error) {
	parity, err := ParseParity(cfg.Parity)
	if err != nil {
		return nil, err
	}
	stopBits, err := StopBitsFromFloat(cfg.StopBits)
	if err != nil {
		return nil, err
	}
	return &gobug.Mode{
		BaudRate: BaudRate(cfg.BaudRate).Int(),
		DataBits: DataBits(cfg.DataBits).Int(),
		Parity:   parity.Get(),
		StopBits: stopBits.Get(),
	}, nil
}

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg = cfg.withDefaults()
	if err = ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}
