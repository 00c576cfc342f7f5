package pca9685

import "log"

// Logger receives the driver's diagnostics: clamp warnings, and a per-write
// trace when debug is enabled. The stdlib logger is used unless one is
// injected with WithLogger.
type Logger interface {
	Printf(format string, v ...interface{})
}

type stdLogger struct{}

func (stdLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Option configures a Dev.
type Option func(*Dev)

// WithAddress sets the chip's bus address for transports built by the
// driver itself (NewI2C). The default is DefaultAddress (0x40).
func WithAddress(addr uint16) Option {
	return func(d *Dev) {
		d.addr = addr
	}
}

// WithLogger injects the diagnostics sink.
func WithLogger(l Logger) Option {
	return func(d *Dev) {
		d.logger = l
	}
}

// WithDebug traces every register write through the logger.
func WithDebug() Option {
	return func(d *Dev) {
		d.debug = true
	}
}
