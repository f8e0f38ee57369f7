package control

import "testing"

// fakeMotor records collaborator calls and moves one step per Run toward
// its target
type fakeMotor struct {
	maxSpeed float64
	accel    float64
	pos      int64
	target   int64

	runs     int
	stops    int
	releases int
}

func (m *fakeMotor) SetMaxSpeed(speed float64)            { m.maxSpeed = speed }
func (m *fakeMotor) SetAcceleration(acceleration float64) { m.accel = acceleration }
func (m *fakeMotor) MoveTo(absolute int64)                { m.target = absolute }
func (m *fakeMotor) Stop()                                { m.stops++ }
func (m *fakeMotor) Release()                             { m.releases++ }
func (m *fakeMotor) DistanceToGo() int64                  { return m.target - m.pos }
func (m *fakeMotor) CurrentPosition() int64               { return m.pos }
func (m *fakeMotor) TargetPosition() int64                { return m.target }
func (m *fakeMotor) MaxSpeed() float64                    { return m.maxSpeed }
func (m *fakeMotor) Acceleration() float64                { return m.accel }

func (m *fakeMotor) SetCurrentPosition(position int64) {
	m.pos = position
	m.target = position
}

func (m *fakeMotor) Run() bool {
	m.runs++
	switch {
	case m.pos < m.target:
		m.pos++
	case m.pos > m.target:
		m.pos--
	}
	return m.pos != m.target
}

func newFakeTable(t testing.TB, n int) (*Table, []*fakeMotor) {
	fakes := make([]*fakeMotor, n)
	motors := make([]Motor, n)
	for i := range fakes {
		fakes[i] = &fakeMotor{maxSpeed: 600, accel: 1600}
		motors[i] = fakes[i]
	}
	table, err := NewTable(motors...)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table, fakes
}
