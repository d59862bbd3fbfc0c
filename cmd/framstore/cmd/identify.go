package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// identifyCmd represents the identify command
var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Read the device ID over SPI (sim device only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		if e.fram == nil {
			return errors.New("identify requires an SPI-backed device (--device sim)")
		}

		id, err := e.fram.ReadID()
		if err != nil {
			return err
		}

		cmd.Printf("RDID: %s\n", id)
		cmd.Printf("manufacturer: %#02x  continuation: %#02x  product: %#04x\n",
			id.Manufacturer, id.Continuation, id.ProductID)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}
