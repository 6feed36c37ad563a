// Package flowgen is the command-line application around a Hardware: it
// owns the logger, the descriptor and the snapshot, and exposes the editing
// operations of the CLI.
package flowgen

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/takehaya/flowgen/pkg/hardware"
	"github.com/takehaya/flowgen/pkg/logger"
)

var ErrNotFound = errors.New("not found")

type CancelFunc func(ctx context.Context) error

type Flowgen struct {
	Logger        *zap.Logger
	Hardware      *hardware.Hardware
	cleanupFnList []CancelFunc

	fs  afero.Fs
	cfg Config
}

type Option func(*Flowgen)

// WithLogger replaces the logger built from Config.LoggerConfig.
func WithLogger(l *zap.Logger) Option {
	return func(f *Flowgen) { f.Logger = l }
}

// WithFs sets the filesystem holding the descriptor, the snapshot and the
// exports.
func WithFs(fs afero.Fs) Option {
	return func(f *Flowgen) { f.fs = fs }
}

// NewFlowgen builds the hardware from the configured descriptor, then loads
// the configured snapshot if the file exists.
func NewFlowgen(cfg Config, opts ...Option) (*Flowgen, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	f := &Flowgen{fs: afero.NewOsFs(), cfg: cfg}
	for _, opt := range opts {
		opt(f)
	}
	if f.Logger == nil {
		lg, cleanup, err := logger.NewLogger(cfg.LoggerConfig)
		if err != nil {
			return nil, fmt.Errorf("failed init logger: %w", err)
		}
		f.Logger = lg
		f.cleanupFnList = append(f.cleanupFnList, cleanup)
	}

	desc, err := hardware.LoadDescriptor(f.fs, cfg.Descriptor)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed load descriptor: %w", err)
	}
	hw, err := hardware.New(desc, hardware.WithLogger(f.Logger), hardware.WithFs(f.fs))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed init hardware: %w", err)
	}
	f.Hardware = hw

	if cfg.Snapshot != "" {
		exists, err := afero.Exists(f.fs, cfg.Snapshot)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed stat snapshot: %w", err)
		}
		if exists {
			if err := hw.Load(cfg.Snapshot); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed load snapshot: %w", err)
			}
		} else {
			f.Logger.Info("no snapshot yet, starting from defaults", zap.String("path", cfg.Snapshot))
		}
	}
	return f, nil
}

// Save writes the snapshot back when one is configured.
func (f *Flowgen) Save() error {
	if f.cfg.Snapshot == "" {
		f.Logger.Warn("no snapshot configured, changes are not kept")
		return nil
	}
	if err := f.Hardware.SaveTo(f.cfg.Snapshot); err != nil {
		return fmt.Errorf("failed save snapshot: %w", err)
	}
	return nil
}

// Export writes the hardware configuration to path, or to stdout when path
// is empty.
func (f *Flowgen) Export(path string) error {
	if path == "" {
		return f.Hardware.Export(os.Stdout)
	}
	return f.Hardware.ExportFile(path)
}

func (f *Flowgen) Reset() {
	f.Hardware.Reset()
	f.Logger.Info("hardware reset")
}

func (f *Flowgen) Close() {
	for _, fn := range f.cleanupFnList {
		if err := fn(context.Background()); err != nil {
			f.Logger.Error("failed to cleanup", zap.Error(err))
		}
	}
	f.cleanupFnList = nil
	f.Logger.Debug("flowgen cleanup completed")
}
