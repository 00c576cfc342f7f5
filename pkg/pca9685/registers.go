package pca9685

// register is a PCA9685 register address. The full map comes from the
// datasheet (NXP PCA9685, table 4); per-channel registers are derived from
// chanOnLow, so an invalid register name cannot be constructed at runtime.
type register byte

const (
	regMode1      register = 0x00
	regMode2      register = 0x01
	regSubAdr1    register = 0x02
	regSubAdr2    register = 0x03
	regSubAdr3    register = 0x04
	regAllCallAdr register = 0x05

	// First per-channel register. Each of the 16 channels owns a block of
	// four: ON_L, ON_H, OFF_L, OFF_H.
	regChanBase register = 0x06

	regAllChanOnLow   register = 0xFA
	regAllChanOnHigh  register = 0xFB
	regAllChanOffLow  register = 0xFC
	regAllChanOffHigh register = 0xFD
	regPreScale       register = 0xFE
	regTestMode       register = 0xFF
)

// Offsets of the four per-channel registers within a channel block.
const (
	ofsOnLow   = 0
	ofsOnHigh  = 1
	ofsOffLow  = 2
	ofsOffHigh = 3

	chanRegStride = 4
)

// MODE1 bits.
const (
	mode1AllCall = 0x01
	mode1Sleep   = 0x10
	mode1Restart = 0x80
)

// MODE2 bits. outDrive (totem-pole outputs) is the documented power-on
// default.
const (
	mode2OutDrive = 0x04
)

// Bit 4 of CHANn_ON_H forces the output fully on; the same bit in
// CHANn_OFF_H forces it fully off and wins if both are set.
const fullOnOffFlag = 0x10

const (
	// ChannelCount is the number of PWM outputs on the chip.
	ChannelCount = 16

	// CounterMax is the highest value of the chip's 12-bit PWM counter.
	CounterMax = 4095

	counterRange = CounterMax + 1

	// oscillatorHz is the chip's internal clock. PWM base frequency is
	// oscillatorHz / ((prescale+1) * 4096).
	oscillatorHz = 25000000

	// Legal prescale range per the datasheet. 3 gives ~1526 Hz, 255
	// gives ~24 Hz.
	prescaleMin = 3
	prescaleMax = 255
)

// DefaultAddress is the chip's bus address with all address pins low.
const DefaultAddress = 0x40

func chanOnLow(channel int) register {
	return regChanBase + register(channel*chanRegStride) + ofsOnLow
}

func chanOnHigh(channel int) register {
	return regChanBase + register(channel*chanRegStride) + ofsOnHigh
}

func chanOffLow(channel int) register {
	return regChanBase + register(channel*chanRegStride) + ofsOffLow
}

func chanOffHigh(channel int) register {
	return regChanBase + register(channel*chanRegStride) + ofsOffHigh
}
