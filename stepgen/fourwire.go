package stepgen

import (
	"errors"

	"gostepper/core"
)

// fullStepPattern is the FULL4WIRE coil sequence; bit i drives IN(i+1)
var fullStepPattern = [4]uint8{
	0b0101, // IN1 IN3
	0b0110, // IN2 IN3
	0b1010, // IN2 IN4
	0b1001, // IN1 IN4
}

// FourWire drives a 4-wire stepper through a driver board (ULN2003, L298N)
// by energizing two coils at a time
type FourWire struct {
	gpio    core.GPIODriver
	pins    [core.CoilCount]core.GPIOPin
	lastSet uint8
}

// NewFourWire creates a 4-wire backend on the given GPIO driver
func NewFourWire(gpio core.GPIODriver) *FourWire {
	return &FourWire{gpio: gpio}
}

// Init configures the four coil pins as outputs, driven low
func (b *FourWire) Init(pins [core.CoilCount]core.GPIOPin) error {
	if b.gpio == nil {
		return errors.New("fourwire: no GPIO driver")
	}

	b.pins = pins
	for _, pin := range pins {
		if err := b.gpio.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	b.Release()
	return nil
}

// Step energizes the coil pair for the given position
func (b *FourWire) Step(position int64) {
	b.setOutputs(fullStepPattern[position&0x3])
}

// Release drives all coils low
func (b *FourWire) Release() {
	b.setOutputs(0)
}

// GetName returns the backend name
func (b *FourWire) GetName() string {
	return "FULL4WIRE"
}

// Outputs returns the last coil mask written
func (b *FourWire) Outputs() uint8 {
	return b.lastSet
}

func (b *FourWire) setOutputs(mask uint8) {
	for i, pin := range b.pins {
		// Errors are ignored: a step cannot be retried and the next step
		// rewrites every coil anyway
		_ = b.gpio.SetPin(pin, mask&(1<<uint(i)) != 0)
	}
	b.lastSet = mask
}
