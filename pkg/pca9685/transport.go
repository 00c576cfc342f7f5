package pca9685

import (
	"github.com/pkg/errors"
	gobotI2c "gobot.io/x/gobot/drivers/i2c"
	"periph.io/x/conn/v3/i2c"
)

// Transport is the bus-level collaborator the driver talks through. Any
// register-oriented bus (kernel I2C, a test double, an SPI bridge) can back
// it. Both operations carry frames whose first byte is a register address.
type Transport interface {
	// Write sends one frame to the device.
	Write(buf []byte) error
	// WriteRead sends w, then reads exactly len(r) bytes back into r.
	WriteRead(w, r []byte) error
}

// i2cTransport adapts a periph.io i2c.Dev to Transport.
type i2cTransport struct {
	dev i2c.Dev
}

// NewI2CTransport returns a Transport backed by a periph.io I2C bus. addr is
// the chip's bus address, normally DefaultAddress.
func NewI2CTransport(bus i2c.Bus, addr uint16) Transport {
	return &i2cTransport{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

func (t *i2cTransport) Write(buf []byte) error {
	return t.dev.Tx(buf, nil)
}

func (t *i2cTransport) WriteRead(w, r []byte) error {
	return t.dev.Tx(w, r)
}

// gobotTransport adapts an established gobot i2c.Connection (from any gobot
// platform adaptor, e.g. raspi) to Transport.
type gobotTransport struct {
	conn gobotI2c.Connection
}

// NewGobotTransport returns a Transport backed by a gobot I2C connection.
func NewGobotTransport(conn gobotI2c.Connection) Transport {
	return &gobotTransport{conn: conn}
}

func (t *gobotTransport) Write(buf []byte) error {
	n, err := t.conn.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.Errorf("pca9685: short write: %d of %d bytes", n, len(buf))
	}
	return nil
}

func (t *gobotTransport) WriteRead(w, r []byte) error {
	// The common case is a single-register read, which gobot exposes as a
	// combined transaction.
	if len(w) == 1 && len(r) == 1 {
		b, err := t.conn.ReadByteData(w[0])
		if err != nil {
			return err
		}
		r[0] = b
		return nil
	}
	if err := t.Write(w); err != nil {
		return err
	}
	n, err := t.conn.Read(r)
	if err != nil {
		return err
	}
	if n != len(r) {
		return errors.Errorf("pca9685: short read: %d of %d bytes", n, len(r))
	}
	return nil
}
