package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mstovari/framstore/pkg/config"
	"github.com/mstovari/framstore/pkg/device"
	"github.com/mstovari/framstore/pkg/mb85rs"
	"github.com/mstovari/framstore/pkg/metrics"
	"github.com/mstovari/framstore/pkg/store"
)

// env bundles everything a subcommand needs: resolved configuration,
// logger, metrics registry, the opened device and the store over it.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	reg    *prometheus.Registry
	dev    device.Device
	fram   *mb85rs.FRAM // non-nil only for the sim device kind
	store  *store.Store

	closers []func() error
}

// openEnv resolves configuration and brings up the device and store.
// Callers must Close the returned env.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, logger: logger, reg: prometheus.NewRegistry()}

	if err := e.openDevice(); err != nil {
		return nil, err
	}

	s, err := store.New(metrics.NewInstrumentedDevice(e.dev, e.reg), store.Config{
		Base:        cfg.Store.BaseAddress,
		Slots:       cfg.Store.Slots,
		Version:     cfg.Store.Version,
		PayloadSize: cfg.Store.PayloadSize,
		Metrics:     metrics.NewStoreMetrics(e.reg),
	})
	if err != nil {
		_ = e.Close()

		return nil, err
	}

	e.store = s

	logger.Debug("store opened",
		zap.String("store_id", s.ID()),
		zap.String("device", cfg.Device.Kind),
		zap.Int("slots", cfg.Store.Slots),
		zap.Uint32("base", cfg.Store.BaseAddress))

	return e, nil
}

// openDevice builds the configured backing device.
func (e *env) openDevice() error {
	cfg := e.cfg

	switch cfg.Device.Kind {
	case config.DeviceMem:
		e.dev = device.NewMemDevice(cfg.Device.Size)

	case config.DeviceFile:
		dev, err := device.NewFileDevice(cfg.Device.Path, cfg.Device.Size)
		if err != nil {
			return err
		}

		e.dev = dev
		e.closers = append(e.closers, dev.Close)

	case config.DevicePebble:
		dev, err := device.NewPebbleDevice(cfg.Device.Path, cfg.Device.Size)
		if err != nil {
			return err
		}

		e.dev = dev
		e.closers = append(e.closers, dev.Close)

	case config.DeviceSim:
		fram, err := mb85rs.New(mb85rs.NewSimBus(cfg.Device.Size), cfg.Device.Size)
		if err != nil {
			return err
		}

		e.fram = fram
		e.dev = fram

	default:
		return fmt.Errorf("unknown device kind %q", cfg.Device.Kind)
	}

	return nil
}

// Close releases device resources and flushes the logger.
func (e *env) Close() error {
	var firstErr error

	for _, closeFn := range e.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	_ = e.logger.Sync()

	return firstErr
}

// newLogger builds a console zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
