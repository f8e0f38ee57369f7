package control

import (
	"errors"

	"gostepper/config"
	"gostepper/core"
	"gostepper/stepgen"
)

// BuildSteppers creates one stepper per configured motor slot with its boot
// speed and acceleration applied. Virtual slots, or every slot when gpio is
// nil, get no coil backend and only track position.
func BuildSteppers(cfg *config.Config, gpio core.GPIODriver) ([]*stepgen.Stepper, error) {
	if cfg == nil {
		return nil, errors.New("control: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steppers := make([]*stepgen.Stepper, 0, len(cfg.Motors))
	for i, mc := range cfg.Motors {
		name := "motor" + core.Itoa(int64(i+1))

		var backend core.StepperBackend
		if gpio != nil && !mc.Virtual() {
			coils := stepgen.NewFourWire(gpio)
			var pins [core.CoilCount]core.GPIOPin
			for j, p := range mc.Pins {
				pins[j] = core.GPIOPin(p)
			}
			if err := coils.Init(pins); err != nil {
				return nil, errors.New(name + ": " + err.Error())
			}
			backend = coils
		}

		s := stepgen.NewStepper(name, backend)
		s.SetMaxSpeed(mc.MaxSpeed)
		s.SetAcceleration(mc.Acceleration)
		steppers = append(steppers, s)

		core.DebugPrintln("[CTL] " + name + " ready, backend=" + backendName(backend))
	}

	return steppers, nil
}

// NewFromConfig builds the steppers described by cfg and a controller
// driving them
func NewFromConfig(cfg *config.Config, gpio core.GPIODriver) (*Controller, []*stepgen.Stepper, error) {
	steppers, err := BuildSteppers(cfg, gpio)
	if err != nil {
		return nil, nil, err
	}

	motors := make([]Motor, len(steppers))
	for i, s := range steppers {
		motors[i] = s
	}

	ctl, err := NewController(motors...)
	if err != nil {
		return nil, nil, err
	}
	return ctl, steppers, nil
}

func backendName(b core.StepperBackend) string {
	if b == nil {
		return "virtual"
	}
	return b.GetName()
}
