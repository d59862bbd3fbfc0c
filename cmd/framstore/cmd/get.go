package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mstovari/framstore/pkg/store"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Load the authoritative record and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		payload := make([]byte, e.store.PayloadSize())

		if err := e.store.Load(payload); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				cmd.Println("no valid record stored")

				return nil
			}

			return err
		}

		cmd.Println(hex.EncodeToString(payload))

		return nil
	},
}

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <hex-payload>",
	Short: "Commit a new record generation immediately",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("payload must be hex encoded: %w", err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		if err := e.store.StoreImmediate(payload); err != nil {
			return err
		}

		cmd.Printf("committed generation %d\n", e.store.LastSeq())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
}
