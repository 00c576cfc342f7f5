// Package pca9685 drives the NXP PCA9685, a 16-channel 12-bit PWM controller,
// over a register-oriented bus.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCA9685.pdf
package pca9685

import (
	"time"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
)

// Frequency range errors returned by SetFrequency. The chip's prescaler only
// reaches from ~24 Hz to ~1526 Hz.
var (
	ErrFrequencyTooHigh = errors.New("pca9685: frequency too high (max ~1526 Hz)")
	ErrFrequencyTooLow  = errors.New("pca9685: frequency too low (min ~24 Hz)")
)

// settleDelay is the wait the chip requires after a prescaler change before
// the oscillator is stable.
const settleDelay = 5 * time.Millisecond

// Dev is a handle to one PCA9685. It holds no chip state beyond the
// transport; every operation is a fresh bus transaction. Dev is not safe for
// concurrent use: multi-step sequences (notably SetFrequency) must not be
// interleaved with other writes to the same chip.
type Dev struct {
	t      Transport
	addr   uint16
	logger Logger
	debug  bool
}

// New returns a Dev using the given transport.
func New(t Transport, opts ...Option) *Dev {
	d := &Dev{
		t:      t,
		addr:   DefaultAddress,
		logger: stdLogger{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// NewI2C returns a Dev on a periph.io I2C bus, at DefaultAddress unless
// WithAddress says otherwise.
func NewI2C(bus i2c.Bus, opts ...Option) *Dev {
	d := New(nil, opts...)
	d.t = NewI2CTransport(bus, d.addr)
	return d
}

// writeReg sends one register write frame: the address byte followed by the
// payload. Transport errors pass through untouched; retries are the caller's
// business.
func (d *Dev) writeReg(reg register, payload ...byte) error {
	if d.debug {
		d.logger.Printf("pca9685: 0x%02X <- % X", byte(reg), payload)
	}
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, byte(reg))
	buf = append(buf, payload...)
	return d.t.Write(buf)
}

// readReg writes the register address, then reads the register's single byte
// back.
func (d *Dev) readReg(reg register) (byte, error) {
	var r [1]byte
	if err := d.t.WriteRead([]byte{byte(reg)}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func checkChannel(channel int) error {
	if channel < 0 || channel >= ChannelCount {
		return errors.Errorf("pca9685: channel must be in 0..%d, got %d", ChannelCount-1, channel)
	}
	return nil
}

// SetPWM programs a channel's raw on and off counter values (0..4095): the
// output rises when the 12-bit counter passes on and falls when it passes
// off. High bytes are written before low bytes so a torn update never pairs
// a new low byte with a stale high byte of the old value.
func (d *Dev) SetPWM(channel int, on, off uint16) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if err := d.writeReg(chanOnHigh(channel), byte(on>>8)&0x0F); err != nil {
		return err
	}
	if err := d.writeReg(chanOffHigh(channel), byte(off>>8)&0x0F); err != nil {
		return err
	}
	if err := d.writeReg(chanOnLow(channel), byte(on)); err != nil {
		return err
	}
	return d.writeReg(chanOffLow(channel), byte(off))
}

// SetAllPWM programs every channel at once through the ALL_CHAN registers,
// with the same high-bytes-first policy as SetPWM.
func (d *Dev) SetAllPWM(on, off uint16) error {
	if err := d.writeReg(regAllChanOnHigh, byte(on>>8)&0x0F); err != nil {
		return err
	}
	if err := d.writeReg(regAllChanOffHigh, byte(off>>8)&0x0F); err != nil {
		return err
	}
	if err := d.writeReg(regAllChanOnLow, byte(on)); err != nil {
		return err
	}
	return d.writeReg(regAllChanOffLow, byte(off))
}

// SetChannelValue sets a channel's on-time in counter ticks (0..4095).
// Values outside that range are clamped to the nearest boundary with a
// logged warning rather than an error. offset shifts the channel's rising
// edge within the cycle and wraps modulo 4096, so callers can stagger
// channels (spreading transition points reduces simultaneous current draw)
// without managing the range themselves.
func (d *Dev) SetChannelValue(channel int, onTime, offset int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if onTime < 0 {
		d.logger.Printf("pca9685: channel %d: value %d below 0, clamped to 0", channel, onTime)
		onTime = 0
	} else if onTime > CounterMax {
		d.logger.Printf("pca9685: channel %d: value %d above %d, clamped to %d", channel, onTime, CounterMax, CounterMax)
		onTime = CounterMax
	}
	offset = ((offset % counterRange) + counterRange) % counterRange
	off := (onTime + offset) % counterRange
	return d.SetPWM(channel, uint16(offset), uint16(off))
}

// SetFullOn forces a channel's output high, bypassing the counter
// comparison, until the next PWM write to the channel.
func (d *Dev) SetFullOn(channel int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if err := d.writeReg(chanOnHigh(channel), fullOnOffFlag); err != nil {
		return err
	}
	if err := d.writeReg(chanOnLow(channel), 0); err != nil {
		return err
	}
	if err := d.writeReg(chanOffHigh(channel), 0); err != nil {
		return err
	}
	return d.writeReg(chanOffLow(channel), 0)
}

// SetFullOff forces a channel's output low. The full-off flag wins over
// full-on if both are set, so it is written first.
func (d *Dev) SetFullOff(channel int) error {
	if err := checkChannel(channel); err != nil {
		return err
	}
	if err := d.writeReg(chanOffHigh(channel), fullOnOffFlag); err != nil {
		return err
	}
	if err := d.writeReg(chanOnHigh(channel), 0); err != nil {
		return err
	}
	if err := d.writeReg(chanOnLow(channel), 0); err != nil {
		return err
	}
	return d.writeReg(chanOffLow(channel), 0)
}

// SetDefaultMode restores the documented mode defaults: MODE1 idle with
// restart disabled, MODE2 totem-pole outputs.
func (d *Dev) SetDefaultMode() error {
	if err := d.writeReg(regMode1, 0x00); err != nil {
		return err
	}
	return d.writeReg(regMode2, mode2OutDrive)
}

// SetFrequency reprograms the PWM base frequency and returns the frequency
// actually achieved, which is generally not the requested one since the
// prescaler is an integer divisor of the 25 MHz oscillator.
//
// The chip only accepts prescaler writes while asleep, so the call reads
// MODE1, enters sleep with the restart bit cleared, writes the prescaler,
// restores the original MODE1, waits out the oscillator settle time and then
// raises the restart bit. A failure mid-sequence leaves the chip in whatever
// state the last successful write produced; callers should re-initialize
// after one.
func (d *Dev) SetFrequency(hz float64) (float64, error) {
	if hz <= 0 {
		return 0, errors.Wrapf(ErrFrequencyTooLow, "requested %g Hz", hz)
	}
	oldMode, err := d.readReg(regMode1)
	if err != nil {
		return 0, err
	}
	sleepMode := (oldMode &^ mode1Restart) | mode1Sleep
	if err := d.writeReg(regMode1, sleepMode); err != nil {
		return 0, err
	}
	// Round half up, matching the datasheet's prescale equation.
	div := int(float64(oscillatorHz)/(counterRange*hz)+0.5) - 1
	if div < prescaleMin {
		return 0, errors.Wrapf(ErrFrequencyTooHigh, "requested %g Hz needs prescale %d", hz, div)
	}
	if div > prescaleMax {
		return 0, errors.Wrapf(ErrFrequencyTooLow, "requested %g Hz needs prescale %d", hz, div)
	}
	if err := d.writeReg(regPreScale, byte(div)); err != nil {
		return 0, err
	}
	if err := d.writeReg(regMode1, oldMode); err != nil {
		return 0, err
	}
	time.Sleep(settleDelay)
	if err := d.writeReg(regMode1, oldMode|mode1Restart); err != nil {
		return 0, err
	}
	return actualFrequency(div), nil
}

// Frequency reads the prescaler back and reports the current PWM base
// frequency.
func (d *Dev) Frequency() (float64, error) {
	div, err := d.readReg(regPreScale)
	if err != nil {
		return 0, err
	}
	return actualFrequency(int(div)), nil
}

func actualFrequency(div int) float64 {
	return float64(oscillatorHz) / (float64(div+1) * counterRange)
}
