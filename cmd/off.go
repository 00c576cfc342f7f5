package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	hostio "github.com/Seann-Moser/pca9685/pkg/io"
)

var (
	oeChip string
	oeLine int
)

// offCmd stops all PWM output and restores the chip's default mode.
var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Stop PWM on all 16 channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, closeBus, err := openDev()
		if err != nil {
			return err
		}
		defer closeBus()

		if err := dev.SetAllPWM(0, 0); err != nil {
			return err
		}
		if err := dev.SetDefaultMode(); err != nil {
			return err
		}

		// Optionally blank the outputs at the /OE pin as well.
		if oeLine >= 0 {
			oe, err := hostio.NewOutputEnable(oeChip, oeLine)
			if err != nil {
				return err
			}
			defer oe.Close()
			if err := oe.Disable(); err != nil {
				return err
			}
		}

		fmt.Println("all channels off")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(offCmd)
	offCmd.Flags().StringVar(&oeChip, "oe-chip", "gpiochip0", "GPIO chip holding the /OE line")
	offCmd.Flags().IntVar(&oeLine, "oe-line", -1, "GPIO line wired to /OE (-1 to skip)")
}
