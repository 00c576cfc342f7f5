/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/Seann-Moser/pca9685/pkg/pca9685"
)

var (
	busName string
	address uint16
	debug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pca9685",
	Short: "Example commands for the PCA9685 PWM driver",
	Long: `Thin example wrappers around the pca9685 driver package.

These are illustrative only: they open an I2C bus via periph.io, hand it to
the driver and invoke one operation. All the chip logic lives in pkg/pca9685.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&busName, "bus", "", "I2C bus name or number (empty for the first available)")
	rootCmd.PersistentFlags().Uint16Var(&address, "address", pca9685.DefaultAddress, "chip bus address")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "trace every register write")
}

// openDev initializes the periph.io host, opens the I2C bus and returns a
// driver handle plus the bus closer.
func openDev() (*pca9685.Dev, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, err
	}
	opts := []pca9685.Option{pca9685.WithAddress(address)}
	if debug {
		opts = append(opts, pca9685.WithDebug())
	}
	return pca9685.NewI2C(bus, opts...), bus.Close, nil
}
