package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Seann-Moser/pca9685/pkg/servo"
)

var sweepChannel int

// sweepCmd sweeps one servo back and forth until interrupted.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep a servo channel between 0 and 180 degrees",
	RunE: func(cmd *cobra.Command, args []string) error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		dev, closeBus, err := openDev()
		if err != nil {
			return err
		}
		defer closeBus()

		actual, err := dev.SetFrequency(servo.Frequency)
		if err != nil {
			return err
		}
		fmt.Printf("PWM base frequency set, achieved %.1f Hz\n", actual)

		g := servo.New(dev)
		defer g.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		go func() {
			<-sigs
			cancel()
		}()

		angle, step := 0, 5
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(50 * time.Millisecond):
			}
			if err := g.SetAngle(sweepChannel, uint8(angle)); err != nil {
				return err
			}
			angle += step
			if angle >= 180 || angle <= 0 {
				step = -step
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepChannel, "channel", 0, "servo channel (0-15)")
}
