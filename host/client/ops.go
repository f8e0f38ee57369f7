package client

import (
	"context"
	"fmt"
	"time"

	"gostepper/command"
)

// SetSpeed sets the max speed (and twice that as acceleration) of the
// selected motors
func (c *Client) SetSpeed(ctx context.Context, sel command.Selector, speed float64) error {
	_, err := c.Exec(ctx, command.SetSpeed(sel, speed))
	return err
}

// SetGoal sets the target position of the selected motors
func (c *Client) SetGoal(ctx context.Context, sel command.Selector, goal int64) error {
	_, err := c.Exec(ctx, command.SetGoal(sel, goal))
	return err
}

// Move starts the selected motors toward their goals
func (c *Client) Move(ctx context.Context, sel command.Selector) error {
	_, err := c.Exec(ctx, command.SetRunState(sel, command.RunMove))
	return err
}

// Stop halts the selected motors
func (c *Client) Stop(ctx context.Context, sel command.Selector) error {
	_, err := c.Exec(ctx, command.SetRunState(sel, command.RunStop))
	return err
}

// Zero stops every motor and makes its current position 0
func (c *Client) Zero(ctx context.Context) error {
	_, err := c.Exec(ctx, command.Zero())
	return err
}

// Query reads one field of the selected motors
func (c *Client) Query(ctx context.Context, sel command.Selector, field command.Field) ([]command.Status, error) {
	return c.Exec(ctx, command.Query(sel, field))
}

// Positions returns the current position of each selected motor
func (c *Client) Positions(ctx context.Context, sel command.Selector) (map[command.MotorID]int64, error) {
	statuses, err := c.Query(ctx, sel, command.FieldPos)
	if err != nil {
		return nil, err
	}

	positions := make(map[command.MotorID]int64, len(statuses))
	for _, st := range statuses {
		pos, err := st.Int()
		if err != nil {
			return nil, fmt.Errorf("motor %d position: %w", st.Motor, err)
		}
		positions[st.Motor] = pos
	}
	return positions, nil
}

// Running reports whether any selected motor is still flagged running
func (c *Client) Running(ctx context.Context, sel command.Selector) (bool, error) {
	statuses, err := c.Query(ctx, sel, command.FieldState)
	if err != nil {
		return false, err
	}

	for _, st := range statuses {
		running, err := st.Bool()
		if err != nil {
			return false, fmt.Errorf("motor %d state: %w", st.Motor, err)
		}
		if running {
			return true, nil
		}
	}
	return false, nil
}

// WaitIdle polls the run state of the selected motors every poll interval
// until none of them is running or ctx ends
func (c *Client) WaitIdle(ctx context.Context, sel command.Selector, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		running, err := c.Running(ctx, sel)
		if err != nil {
			return err
		}
		if !running {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
