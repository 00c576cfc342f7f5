// Package servo layers angle-based servo control on top of the pca9685
// driver.
package servo

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Seann-Moser/pca9685/pkg/pca9685"
)

// Pulse range defaults in PWM counter ticks. At the 50 Hz servo frequency the
// full cycle is 20 ms over 4096 ticks, so ~0.5 ms is 102 ticks (0 degrees)
// and ~2.5 ms is 512 ticks (180 degrees).
const (
	DefaultMinPulse = 102
	DefaultMaxPulse = 512

	// Frequency is the PWM base frequency servos expect.
	Frequency = 50

	neutralAngle = 90
)

// Group controls a set of servos on one chip and remembers the last angle
// commanded per channel. The chip cannot report positions back, so the cache
// is the only notion of "current angle".
type Group struct {
	dev *pca9685.Dev

	mu       sync.Mutex
	angles   map[int]uint8
	minPulse float64
	maxPulse float64
	stagger  int
}

// Option configures a Group.
type Option func(*Group)

// WithPulseRange overrides the counter-tick values for 0 and 180 degrees,
// for servos with a non-standard pulse range.
func WithPulseRange(min, max int) Option {
	return func(g *Group) {
		g.minPulse = float64(min)
		g.maxPulse = float64(max)
	}
}

// WithStagger offsets each channel's rising edge by channel*step ticks, so
// servos on the same supply don't all draw current at the same instant.
func WithStagger(step int) Option {
	return func(g *Group) {
		g.stagger = step
	}
}

// New returns a Group driving servos through dev.
func New(dev *pca9685.Dev, opts ...Option) *Group {
	g := &Group{
		dev:      dev,
		angles:   map[int]uint8{},
		minPulse: DefaultMinPulse,
		maxPulse: DefaultMaxPulse,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// SetAngle moves the servo on channel to angle degrees (0-180, values above
// 180 are treated as 180).
func (g *Group) SetAngle(channel int, angle uint8) error {
	if angle > 180 {
		angle = 180
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	pulse := g.minPulse + (g.maxPulse-g.minPulse)*float64(angle)/180.0
	if err := g.dev.SetChannelValue(channel, int(pulse), channel*g.stagger); err != nil {
		return errors.Wrapf(err, "servo: channel %d", channel)
	}
	g.angles[channel] = angle
	return nil
}

// SetXY moves a pan/tilt pair. Both channels are attempted even if the first
// fails.
func (g *Group) SetXY(channelX, channelY int, x, y uint8) error {
	var result error
	if err := g.SetAngle(channelX, x); err != nil {
		result = multierror.Append(result, err)
	}
	if err := g.SetAngle(channelY, y); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

// Angle reports the last commanded angle for channel; channels never
// commanded report the neutral position.
func (g *Group) Angle(channel int) uint8 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a, ok := g.angles[channel]; ok {
		return a
	}
	return neutralAngle
}

// Reset returns every channel this Group has driven to the neutral position.
func (g *Group) Reset() error {
	g.mu.Lock()
	channels := make([]int, 0, len(g.angles))
	for ch := range g.angles {
		channels = append(channels, ch)
	}
	g.mu.Unlock()

	var result error
	for _, ch := range channels {
		if err := g.SetAngle(ch, neutralAngle); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

// Close stops the PWM signal on every channel of the chip. Most servos hold
// no torque without a signal.
func (g *Group) Close() error {
	return g.dev.SetAllPWM(0, 0)
}
