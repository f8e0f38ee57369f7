package core

// CoilCount is the number of driven wires on a FULL4WIRE stepper
const CoilCount = 4

// StepperBackend defines the hardware abstraction the motion code steps through.
// Implementations energize coils on GPIO, or do nothing for virtual motors.
type StepperBackend interface {
	// Init configures the output pins; pins are ordered IN1..IN4
	Init(pins [CoilCount]GPIOPin) error

	// Step energizes the coil pattern for the given position.
	// Only the low two bits matter for a full-step sequence.
	Step(position int64)

	// Release de-energizes all coils
	Release()

	// GetName returns backend implementation name
	GetName() string
}
