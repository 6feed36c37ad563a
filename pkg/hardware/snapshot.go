package hardware

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/takehaya/flowgen/pkg/flow"
)

const snapshotVersion = 1

// Snapshot is the persisted image of every flow.
type Snapshot struct {
	Version int          `yaml:"version"`
	Flows   []flow.State `yaml:"flows"`
}

func (h *Hardware) Snapshot() Snapshot {
	s := Snapshot{Version: snapshotVersion}
	for _, g := range h.flows {
		s.Flows = append(s.Flows, g.State())
	}
	return s
}

// Save writes the snapshot to the current target.
func (h *Hardware) Save() error {
	if h.target == "" {
		return ErrNoTarget
	}
	return h.save(h.target)
}

// SaveTo makes path the current target and writes the snapshot to it. The
// target is kept even when the write fails.
func (h *Hardware) SaveTo(path string) error {
	h.target = path
	return h.save(path)
}

func (h *Hardware) save(path string) error {
	data, err := yaml.Marshal(h.Snapshot())
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	if err := writeFileAtomic(h.fs, path, data); err != nil {
		h.log.Error("snapshot save failed", zap.String("path", path), zap.Error(err))
		return errors.Wrapf(err, "failed to save snapshot to %s", path)
	}
	h.log.Info("snapshot saved", zap.String("path", path), zap.Int("flows", len(h.flows)))
	return nil
}

// Load reads a snapshot and applies it flow by flow, in order. Flows,
// modifiers and fields the current descriptor no longer has are skipped, as
// are modifiers whose type changed and fields that cannot take their saved
// value; skips are logged. An unreadable or malformed snapshot changes
// nothing.
func (h *Hardware) Load(path string) error {
	data, err := afero.ReadFile(h.fs, path)
	if err != nil {
		h.log.Error("snapshot load failed", zap.String("path", path), zap.Error(err))
		return errors.Wrapf(err, "failed to read snapshot %s", path)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		h.log.Error("snapshot load failed", zap.String("path", path), zap.Error(err))
		return errors.WithMessage(err, path)
	}

	for i, saved := range snap.Flows {
		if i >= len(h.flows) {
			h.log.Warn("flows skipped, not in descriptor",
				zap.Int("saved", len(snap.Flows)), zap.Int("current", len(h.flows)))
			break
		}
		for _, skip := range multierr.Errors(h.flows[i].Restore(saved)) {
			h.log.Warn("setting skipped", zap.Int("flow", i+1), zap.Error(skip))
		}
	}
	h.target = path
	h.log.Info("snapshot loaded", zap.String("path", path), zap.Int("flows", len(snap.Flows)))
	return nil
}

// DecodeSnapshot parses and checks a snapshot document without applying it.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(ErrSnapshotFormat, err.Error())
	}
	if s.Version != snapshotVersion {
		return nil, errors.Wrapf(ErrSnapshotFormat, "unsupported version %d", s.Version)
	}
	return &s, nil
}

// writeFileAtomic writes data next to path then renames it over path.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(name)
		return err
	}
	if err := fs.Rename(name, path); err != nil {
		_ = fs.Remove(name)
		return err
	}
	return nil
}
