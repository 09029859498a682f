// Package clock implements the Command-Frame Ticker (C6): a monotonic
// frame counter driven by wall-clock time, at a tunable simulation speed.
//
// Grounded on
// _examples/original_source/src/synchronisation/command_frame_ticker.rs.
package clock

import (
	"time"

	"github.com/TimonPost/net-sync/internal/types"
)

// Ticker advances a CommandFrame once at least simulationSpeed
// milliseconds have elapsed since the last advance.
type Ticker struct {
	lastExecution   time.Time
	commandFrame    types.CommandFrame
	simulationSpeed float32 // milliseconds per tick
}

// New constructs a Ticker at frame 0 with the given simulation speed in
// milliseconds per tick.
func New(simulationSpeedMs float32) *Ticker {
	return &Ticker{
		lastExecution:   time.Now(),
		simulationSpeed: simulationSpeedMs,
	}
}

// SetCommandFrame hard-sets the frame, used for resync.
func (t *Ticker) SetCommandFrame(frame types.CommandFrame) { t.commandFrame = frame }

// CommandFrame returns the current frame.
func (t *Ticker) CommandFrame() types.CommandFrame { return t.commandFrame }

// SimulationSpeed returns the current tick period in milliseconds.
func (t *Ticker) SimulationSpeed() float32 { return t.simulationSpeed }

// LastExecution returns the wall-clock time of the last advance.
func (t *Ticker) LastExecution() time.Time { return t.lastExecution }

// CanTick reports whether enough wall-clock time has elapsed to advance.
func (t *Ticker) CanTick() bool {
	return time.Since(t.lastExecution) >= time.Duration(t.simulationSpeed)*time.Millisecond
}

// Advance increments the frame and resets the last-execution clock.
func (t *Ticker) Advance() {
	t.commandFrame++
	t.lastExecution = time.Now()
}

// TryTick advances the frame if CanTick, reporting whether it did.
func (t *Ticker) TryTick() bool {
	canTick := t.CanTick()
	if canTick {
		t.Advance()
	}
	return canTick
}

// AdjustSimulation updates the simulation speed, e.g. in response to the
// server's command-frame-offset feedback.
func (t *Ticker) AdjustSimulation(newSpeedMs float32) { t.simulationSpeed = newSpeedMs }
