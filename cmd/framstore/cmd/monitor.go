package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mstovari/framstore/pkg/store"
)

// counters is the demonstration record the monitor loop persists.
type counters struct {
	UptimeSec uint32
	Ticks     uint32
	Flags     uint8
	Pad       [3]uint8
}

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the demonstration loop: tick, defer, flush",
	Long: `monitor keeps a small counters record alive across restarts. On
startup it loads the last committed state (or initializes it on virgin
media), then periodically updates the counters in memory and commits
them with one deferred store plus flush per interval.

Interrupt the process at any point: the payload-then-header commit
ordering guarantees the previous generation stays intact.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.Close() }()

		// PayloadSize from the config must agree with the counters
		// layout; NewTyped rejects a mismatch.
		tp, err := store.NewTyped[counters](e.dev, store.Config{
			Base:        e.cfg.Store.BaseAddress,
			Slots:       e.cfg.Store.Slots,
			Version:     e.cfg.Store.Version,
			PayloadSize: e.cfg.Store.PayloadSize,
		})
		if err != nil {
			return err
		}

		logger := e.logger

		state, err := tp.Load()

		switch {
		case err == nil:
			logger.Info("loaded state",
				zap.Uint32("uptime_sec", state.UptimeSec),
				zap.Uint32("ticks", state.Ticks))

		case errors.Is(err, store.ErrNotFound):
			logger.Info("no stored state, initializing")

			if err := tp.StoreImmediate(state); err != nil {
				return err
			}

		default:
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("shutting down, flushing")

				if err := tp.Flush(); err != nil {
					return err
				}

				return nil

			case <-ticker.C:
				state.UptimeSec += uint32(interval / time.Second)
				state.Ticks++

				if err := tp.StoreDeferred(state); err != nil {
					return err
				}

				if err := tp.Flush(); err != nil {
					logger.Warn("flush failed, will retry next tick", zap.Error(err))

					continue
				}

				logger.Info("state saved",
					zap.Uint32("ticks", state.Ticks),
					zap.Uint32("seq", tp.Store().LastSeq()))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().Duration("interval", 60*time.Second, "Commit interval")
}
