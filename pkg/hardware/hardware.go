// Package hardware is the top-level aggregate of the traffic generator: it
// builds the flows from a descriptor, renders the exported configuration
// and persists the operator's settings.
package hardware

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/takehaya/flowgen/pkg/flow"
	"github.com/takehaya/flowgen/pkg/modifier"
)

const banner = "--------------------\n"

type Hardware struct {
	log   *zap.Logger
	fs    afero.Fs
	desc  *Descriptor
	flows []*flow.Generator
	// last snapshot file saved to or loaded from
	target string
}

type Option func(*Hardware)

func WithLogger(l *zap.Logger) Option {
	return func(h *Hardware) {
		if l != nil {
			h.log = l
		}
	}
}

// WithFs sets the filesystem used for snapshots and exports. The default is
// the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(h *Hardware) {
		if fs != nil {
			h.fs = fs
		}
	}
}

// New builds desc.Instances flows, each holding the descriptor's modifiers
// in order. Only the first flow starts enabled.
func New(desc *Descriptor, opts ...Option) (*Hardware, error) {
	h := &Hardware{
		log:  zap.NewNop(),
		fs:   afero.NewOsFs(),
		desc: desc,
	}
	for _, opt := range opts {
		opt(h)
	}
	if desc == nil || desc.Instances < 1 {
		return nil, &DescriptorError{Key: "instances", Message: "the number of flows should be a positive integer"}
	}

	for i := 0; i < desc.Instances; i++ {
		g := flow.New()
		for _, md := range desc.Modifiers {
			config := make(modifier.Options, len(md.Config))
			for k, v := range md.Config {
				config[k] = v
			}
			m, ok, err := modifier.New(md.Type, g, config)
			if !ok {
				return nil, &DescriptorError{Path: desc.Source, Key: "type", Message: "unknown modifier type " + md.Type}
			}
			if err != nil {
				return nil, fmt.Errorf("failed to build flow %d: %w", i+1, err)
			}
			if err := g.AddModifier(m); err != nil {
				return nil, fmt.Errorf("failed to build flow %d: %w", i+1, err)
			}
		}
		h.flows = append(h.flows, g)
	}
	h.flows[0].SetEnabled(true)

	h.log.Debug("hardware built",
		zap.String("descriptor", desc.Source),
		zap.Int("flows", len(h.flows)),
		zap.Int("modifiers", len(desc.Modifiers)))
	return h, nil
}

func (h *Hardware) Descriptor() *Descriptor { return h.desc }

func (h *Hardware) Flows() []*flow.Generator {
	return append([]*flow.Generator(nil), h.flows...)
}

// Flow returns flow n, counted from 1, or nil.
func (h *Hardware) Flow(n int) *flow.Generator {
	if n < 1 || n > len(h.flows) {
		return nil
	}
	return h.flows[n-1]
}

// Target is the snapshot file Save writes to.
func (h *Hardware) Target() string { return h.target }

// Reset puts every flow back to its initial state: flow 1 enabled, the
// others disabled, every field at its default.
func (h *Hardware) Reset() {
	for _, g := range h.flows {
		g.Reset()
	}
	h.flows[0].SetEnabled(true)
}

// ConfigData renders the export text: a banner then the chained modifiers
// of every enabled flow.
func (h *Hardware) ConfigData() string {
	var sb strings.Builder
	for i, g := range h.flows {
		if !g.Enabled() {
			continue
		}
		sb.WriteString(banner)
		fmt.Fprintf(&sb, "-- Flow %d\n", i+1)
		if d := g.Description(); d != "" {
			sb.WriteString("-- \n")
			for _, line := range strings.Split(d, "\n") {
				sb.WriteString("-- " + line + "\n")
			}
		}
		sb.WriteString(banner)
		sb.WriteString(g.ConfigData())
	}
	return sb.String()
}

func (h *Hardware) Export(w io.Writer) error {
	if _, err := io.WriteString(w, h.ConfigData()); err != nil {
		return errors.Wrap(err, "failed to export configuration")
	}
	return nil
}

// ExportFile writes the export text to path, replacing it atomically.
func (h *Hardware) ExportFile(path string) error {
	if err := writeFileAtomic(h.fs, path, []byte(h.ConfigData())); err != nil {
		h.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return errors.Wrapf(err, "failed to export configuration to %s", path)
	}
	h.log.Info("configuration exported", zap.String("path", path))
	return nil
}
