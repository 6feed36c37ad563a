package modifier

import (
	"go.uber.org/multierr"

	"github.com/takehaya/flowgen/pkg/field"
)

// State is the persisted form of a modifier.
type State struct {
	ID      int           `yaml:"id"`
	Type    string        `yaml:"type"`
	Enabled bool          `yaml:"enabled"`
	Fields  []field.State `yaml:"fields"`
}

// State captures the enabled flag and every field carrying an identifier.
func (b *Base) State() State {
	s := State{ID: b.id, Type: b.info.Tag, Enabled: b.Enabled()}
	for _, f := range b.fields {
		if f.ID() == "" {
			continue
		}
		s.Fields = append(s.Fields, field.Snapshot(f))
	}
	return s
}

// Restore copies a persisted state of the same modifier type. Fields
// unknown to this modifier are ignored; fields that cannot take their saved
// value are skipped and reported in the returned error.
func (b *Base) Restore(s State) error {
	if s.Type != b.info.Tag {
		return b.errorf(ErrIncompatible, "this modifier may not be used (different type for this id)")
	}
	var errs error
	if !b.info.Mandatory {
		_ = b.SetEnabled(s.Enabled)
	}
	for _, fs := range s.Fields {
		f := b.Field(fs.ID)
		if f == nil {
			continue
		}
		errs = multierr.Append(errs, field.Restore(f, fs))
	}
	return errs
}
