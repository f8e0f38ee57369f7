// Package config holds the board configuration: link speed and the wiring
// and motion defaults of each motor slot.
package config

import (
	"encoding/json"
	"errors"

	"gostepper/command"
	"gostepper/core"
	"gostepper/protocol"
)

// Motion defaults applied at boot
const (
	DefaultMaxSpeed     = 600.0  // steps/s
	DefaultAcceleration = 1600.0 // steps/s^2
)

// MotorConfig is the wiring and boot-time motion setup of one motor slot
type MotorConfig struct {
	Pins         [core.CoilCount]uint8 `json:"pins"`         // IN1..IN4, all zero = virtual motor
	MaxSpeed     float64               `json:"max_speed"`    // steps/s
	Acceleration float64               `json:"acceleration"` // steps/s^2
}

// Virtual reports whether the slot has no coils wired
func (m MotorConfig) Virtual() bool {
	return m.Pins == [core.CoilCount]uint8{}
}

// Config is the complete board configuration
type Config struct {
	Baud   int           `json:"baud"`
	Motors []MotorConfig `json:"motors"`
}

// LoadConfig parses a JSON configuration, applies defaults and validates it
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the motor count and that no pin drives two coils
func (c *Config) Validate() error {
	if len(c.Motors) == 0 {
		return errors.New("config: no motors configured")
	}
	if len(c.Motors) > command.MaxMotors {
		return errors.New("config: " + core.Itoa(int64(len(c.Motors))) +
			" motors configured, at most " + core.Itoa(command.MaxMotors) + " supported")
	}
	if c.Baud <= 0 {
		return errors.New("config: invalid baud rate " + core.Itoa(int64(c.Baud)))
	}

	owner := make(map[uint8]int)
	for i, m := range c.Motors {
		if m.Virtual() {
			continue
		}
		for _, pin := range m.Pins {
			if prev, used := owner[pin]; used && prev != i {
				return errors.New("config: pin " + core.Itoa(int64(pin)) +
					" used by motors " + core.Itoa(int64(prev+1)) + " and " + core.Itoa(int64(i+1)))
			}
			owner[pin] = i
		}
	}

	return nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Baud == 0 {
		config.Baud = protocol.DefaultBaud
	}

	for i, motor := range config.Motors {
		if motor.MaxSpeed == 0 {
			motor.MaxSpeed = DefaultMaxSpeed
		}
		if motor.Acceleration == 0 {
			motor.Acceleration = DefaultAcceleration
		}
		config.Motors[i] = motor
	}
}

// Default returns the wiring of the reference ESP32 board: four 28BYJ-48
// motors on ULN2003 drivers plus an unwired fifth slot
func Default() *Config {
	return &Config{
		Baud: protocol.DefaultBaud,
		Motors: []MotorConfig{
			{Pins: [4]uint8{5, 19, 18, 21}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{Pins: [4]uint8{2, 16, 4, 17}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{Pins: [4]uint8{13, 14, 12, 27}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{Pins: [4]uint8{26, 33, 25, 32}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
		},
	}
}

// Pico returns the wiring of a Raspberry Pi Pico board: four motors on
// consecutive GPIOs from GP2 plus an unwired fifth slot
func Pico() *Config {
	return &Config{
		Baud: protocol.DefaultBaud,
		Motors: []MotorConfig{
			{Pins: [4]uint8{2, 3, 4, 5}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{Pins: [4]uint8{6, 7, 8, 9}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{Pins: [4]uint8{10, 11, 12, 13}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{Pins: [4]uint8{14, 15, 16, 17}, MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
			{MaxSpeed: DefaultMaxSpeed, Acceleration: DefaultAcceleration},
		},
	}
}
